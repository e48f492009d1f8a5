package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"clova-webhook/internal/domain"
	"clova-webhook/internal/templates"
)

type fakeDynamo struct {
	getOut       *dynamodb.GetItemOutput
	getErr       error
	putErr       error
	lastGetInput *dynamodb.GetItemInput
	lastPutInput *dynamodb.PutItemInput
	putNames     []string
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.lastGetInput = in
	return f.getOut, f.getErr
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.lastPutInput = in
	f.putNames = append(f.putNames, in.Item["name"].(*types.AttributeValueMemberS).Value)
	return &dynamodb.PutItemOutput{}, f.putErr
}

func makeTemplateItem(name, body string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":   &types.AttributeValueMemberS{Value: templatePK(name)},
		"SK":   &types.AttributeValueMemberS{Value: skBody},
		"body": &types.AttributeValueMemberS{Value: body},
	}
}

func mustNewClient(t *testing.T, db *fakeDynamo) *Client {
	t.Helper()
	c, err := New(db, "test-table")
	require.NoError(t, err)
	return c
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, "t")
	require.ErrorContains(t, err, "must not be nil")
	_, err = New(&fakeDynamo{}, " ")
	require.ErrorContains(t, err, "table name")
}

func TestTemplate_HappyPath(t *testing.T) {
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{Item: makeTemplateItem("welcome", "Hi {{.name}}")}}
	c := mustNewClient(t, db)

	tpl, err := c.Template(context.Background(), "welcome")
	require.NoError(t, err)
	require.Equal(t, domain.Template{Name: "welcome", Body: "Hi {{.name}}"}, tpl)

	require.Equal(t, "test-table", aws.ToString(db.lastGetInput.TableName))
	pk := db.lastGetInput.Key["PK"].(*types.AttributeValueMemberS)
	sk := db.lastGetInput.Key["SK"].(*types.AttributeValueMemberS)
	require.Equal(t, "TEMPLATE#welcome", pk.Value)
	require.Equal(t, "BODY", sk.Value)
}

func TestTemplate_NotFound(t *testing.T) {
	c := mustNewClient(t, &fakeDynamo{getOut: &dynamodb.GetItemOutput{}})
	_, err := c.Template(context.Background(), "missing")
	require.ErrorIs(t, err, templates.ErrNotFound)
}

func TestTemplate_Errors(t *testing.T) {
	c := mustNewClient(t, &fakeDynamo{getErr: errors.New("boom")})
	_, err := c.Template(context.Background(), "welcome")
	require.ErrorContains(t, err, "boom")

	bad := map[string]types.AttributeValue{"body": &types.AttributeValueMemberN{Value: "1"}}
	c = mustNewClient(t, &fakeDynamo{getOut: &dynamodb.GetItemOutput{Item: bad}})
	_, err = c.Template(context.Background(), "welcome")
	require.ErrorContains(t, err, "not a string")
}

func TestPutTemplate(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	require.NoError(t, c.PutTemplate(context.Background(), domain.Template{Name: "bye", Body: "Bye"}))

	item := db.lastPutInput.Item
	require.Equal(t, "TEMPLATE#bye", item["PK"].(*types.AttributeValueMemberS).Value)
	require.Equal(t, "Bye", item["body"].(*types.AttributeValueMemberS).Value)

	require.Error(t, c.PutTemplate(context.Background(), domain.Template{}))

	db.putErr = errors.New("boom")
	require.ErrorContains(t, c.PutTemplate(context.Background(), domain.Template{Name: "x"}), "boom")
}

func TestSeed(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	tpls := []domain.Template{{Name: "bye", Body: "Bye"}, {Name: "welcome", Body: "Hi {{.Name}}"}}
	require.NoError(t, c.Seed(context.Background(), tpls))
	require.Equal(t, []string{"bye", "welcome"}, db.putNames)
	require.Equal(t, "test-table", aws.ToString(db.lastPutInput.TableName))

	require.NoError(t, c.Seed(context.Background(), nil))

	db.putErr = errors.New("throttled")
	err := c.Seed(context.Background(), tpls)
	require.ErrorContains(t, err, `"bye"`)
	require.ErrorContains(t, err, "throttled")
}
