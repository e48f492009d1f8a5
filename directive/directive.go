// Package directive holds CEK directive payloads. Directives are opaque to the
// response builder; the helpers here only cover the ones the samples use.
package directive

import "fmt"

// Directive is a platform instruction attached to a response.
type Directive struct {
	Header  Header         `json:"header"`
	Payload map[string]any `json:"payload"`
}

type Header struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
}

const namespaceClova = "Clova"

// Emoji labels returned by the sentiment analysis API.
const (
	Neutral  = 0
	Positive = 1
	Negative = 2
)

var emojiChars = []string{"U+1F610", "U+1F600", "U+1F61E"}

// New builds a directive with an arbitrary payload.
func New(namespace, name string, payload map[string]any) Directive {
	if payload == nil {
		payload = map[string]any{}
	}
	return Directive{Header: Header{Name: name, Namespace: namespace}, Payload: payload}
}

// OpenMike keeps the microphone open after the response is played.
func OpenMike() Directive {
	return New(namespaceClova, "KeepConversation", map[string]any{"explicit": true})
}

// Emoji renders the face matching a sentiment label (Neutral, Positive or Negative).
func Emoji(label int) (Directive, error) {
	if label < 0 || label >= len(emojiChars) {
		return Directive{}, fmt.Errorf("directive: unknown emoji label %d", label)
	}
	return New(namespaceClova, "RenderTemplate", map[string]any{
		"emoji":          map[string]any{"type": "string", "value": emojiChars[label]},
		"failureMessage": map[string]any{"type": "string", "value": ""},
		"meta": map[string]any{
			"version": map[string]any{"type": "string", "value": ""},
		},
		"type": "TomorrowWeather",
	}), nil
}
