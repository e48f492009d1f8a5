// Package speech builds the speech info objects carried in CEK output speech.
package speech

const (
	TypePlainText = "PlainText"
	TypeURL       = "URL"

	Korean   = "ko"
	English  = "en"
	Japanese = "ja"
)

// Value is one speech info object. Link values carry an empty language tag.
type Value struct {
	Type  string `json:"type"`
	Lang  string `json:"lang"`
	Value string `json:"value"`
}

// Text returns spoken text in the given language.
func Text(value, lang string) Value {
	return Value{Type: TypePlainText, Lang: lang, Value: value}
}

// Link returns a playable audio resource.
func Link(url string) Value {
	return Value{Type: TypeURL, Lang: "", Value: url}
}

func InKorean(text string) Value   { return Text(text, Korean) }
func InEnglish(text string) Value  { return Text(text, English) }
func InJapanese(text string) Value { return Text(text, Japanese) }

// IsLink reports whether v points to an audio resource.
func (v Value) IsLink() bool { return v.Type == TypeURL }
