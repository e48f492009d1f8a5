package directive

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenMike(t *testing.T) {
	raw, err := json.Marshal(OpenMike())
	require.NoError(t, err)
	require.JSONEq(t, `{"header":{"name":"KeepConversation","namespace":"Clova"},"payload":{"explicit":true}}`, string(raw))
}

func TestEmoji(t *testing.T) {
	d, err := Emoji(Positive)
	require.NoError(t, err)
	require.Equal(t, "RenderTemplate", d.Header.Name)
	require.Equal(t, map[string]any{"type": "string", "value": "U+1F600"}, d.Payload["emoji"])

	_, err = Emoji(3)
	require.ErrorContains(t, err, "unknown emoji label")
	_, err = Emoji(-1)
	require.Error(t, err)
}

func TestNew_NilPayload(t *testing.T) {
	d := New("AudioPlayer", "Stop", nil)
	raw, err := json.Marshal(d)
	require.NoError(t, err)
	require.JSONEq(t, `{"header":{"name":"Stop","namespace":"AudioPlayer"},"payload":{}}`, string(raw))
}
