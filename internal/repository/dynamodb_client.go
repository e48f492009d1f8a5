package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"clova-webhook/internal/domain"
	"clova-webhook/internal/templates"
)

const (
	pkPrefixTemplate = "TEMPLATE#"
	skBody           = "BODY"
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Client reads speech templates from a DynamoDB table. Items are keyed
// PK=TEMPLATE#<name>, SK=BODY with the text in the "body" attribute.
type Client struct {
	api       dynamodbAPI
	tableName string
}

var _ templates.Source = (*Client)(nil)

func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName}, nil
}

func templatePK(name string) string {
	return pkPrefixTemplate + name
}

// Template fetches one template. A missing item yields templates.ErrNotFound.
func (c *Client) Template(ctx context.Context, name string) (domain.Template, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: templatePK(name)},
			"SK": &types.AttributeValueMemberS{Value: skBody},
		},
	})
	if err != nil {
		return domain.Template{}, fmt.Errorf("repository: Template get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.Template{}, fmt.Errorf("repository: template %q: %w", name, templates.ErrNotFound)
	}

	body, err := strAttr(out.Item, "body")
	if err != nil {
		return domain.Template{}, fmt.Errorf("repository: Template decode: %w", err)
	}
	return domain.Template{Name: name, Body: body}, nil
}

// PutTemplate writes or replaces a template; used to seed the table.
func (c *Client) PutTemplate(ctx context.Context, tpl domain.Template) error {
	if strings.TrimSpace(tpl.Name) == "" {
		return errors.New("repository: PutTemplate: name is required")
	}
	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item: map[string]types.AttributeValue{
			"PK":   &types.AttributeValueMemberS{Value: templatePK(tpl.Name)},
			"SK":   &types.AttributeValueMemberS{Value: skBody},
			"name": &types.AttributeValueMemberS{Value: tpl.Name},
			"body": &types.AttributeValueMemberS{Value: tpl.Body},
		},
	})
	if err != nil {
		return fmt.Errorf("repository: PutTemplate: %w", err)
	}
	return nil
}

// Seed writes every template, stopping at the first failure.
func (c *Client) Seed(ctx context.Context, tpls []domain.Template) error {
	for _, tpl := range tpls {
		if err := c.PutTemplate(ctx, tpl); err != nil {
			return fmt.Errorf("repository: Seed %q: %w", tpl.Name, err)
		}
	}
	return nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}
