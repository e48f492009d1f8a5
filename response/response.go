// Package response builds CEK extension responses.
//
// A response is created with one of the variant constructors, which fix
// shouldEndSession, and grown with the chaining Add* methods:
//
//	response.Question(speech.InEnglish("Welcome")).
//		Reprompt(speech.InEnglish("Are you still there?"))
//
// The session attributes are not part of the builder. They are passed to
// Render so that mutations made after the response was built are included.
package response

import (
	"encoding/json"
	"fmt"

	"clova-webhook/directive"
	"clova-webhook/speech"
)

// Version is the CEK protocol version written to every response.
const Version = "0.1.0"

const (
	SimpleSpeech = "SimpleSpeech"
	SpeechList   = "SpeechList"
	SpeechSet    = "SpeechSet"
)

// Renderer is anything a handler can return to the dispatcher.
type Renderer interface {
	Render(sessionAttributes map[string]any) ([]byte, error)
}

// Response accumulates output speech, reprompt and directives.
type Response struct {
	endSession bool
	speech     []speech.Value
	brief      *speech.Value
	reprompt   *speech.Value
	directives []directive.Directive
}

// Statement ends the session after the speech is played.
func Statement(v speech.Value) *Response {
	return &Response{endSession: true, speech: []speech.Value{v}}
}

// Question keeps the session open and waits for the user's answer.
func Question(v speech.Value) *Response {
	return &Response{endSession: false, speech: []speech.Value{v}}
}

// Brief is the dual-track variant: brief is what a display-less device
// reads first; AddSpeech fills the verbose track. Until AddSpeech is called
// the SpeechSet carries no verbose member. A Brief response ends the session,
// so a Reprompt set on it is never rendered.
func Brief(brief speech.Value) *Response {
	return &Response{endSession: true, brief: &brief}
}

// AddSpeech appends a speech value. Two or more values turn the output into a
// SpeechList; the list is never collapsed back.
func (r *Response) AddSpeech(v speech.Value) *Response {
	r.speech = append(r.speech, v)
	return r
}

// Reprompt sets the single speech value played when the user does not answer.
// It is only rendered while the session stays open.
func (r *Response) Reprompt(v speech.Value) *Response {
	r.reprompt = &v
	return r
}

func (r *Response) AddDirective(d directive.Directive) *Response {
	r.directives = append(r.directives, d)
	return r
}

func (r *Response) ShouldEndSession() bool { return r.endSession }

// Speech returns a copy of the accumulated speech values (the verbose track
// for Brief responses).
func (r *Response) Speech() []speech.Value {
	return append([]speech.Value(nil), r.speech...)
}

type envelope struct {
	Version           string         `json:"version"`
	Response          body           `json:"response"`
	SessionAttributes map[string]any `json:"sessionAttributes"`
}

type body struct {
	Card             map[string]any        `json:"card"`
	Directives       []directive.Directive `json:"directives"`
	OutputSpeech     outputSpeech          `json:"outputSpeech"`
	ShouldEndSession bool                  `json:"shouldEndSession"`
	Reprompt         *reprompt             `json:"reprompt,omitempty"`
}

type outputSpeech struct {
	Type    string        `json:"type"`
	Values  any           `json:"values,omitempty"`
	Brief   *speech.Value `json:"brief,omitempty"`
	Verbose *outputSpeech `json:"verbose,omitempty"`
}

type reprompt struct {
	OutputSpeech outputSpeech `json:"outputSpeech"`
}

func track(values []speech.Value) *outputSpeech {
	switch len(values) {
	case 0:
		return nil
	case 1:
		return &outputSpeech{Type: SimpleSpeech, Values: values[0]}
	default:
		return &outputSpeech{Type: SpeechList, Values: append([]speech.Value(nil), values...)}
	}
}

func (r *Response) body() body {
	b := body{
		Card:             map[string]any{},
		Directives:       append([]directive.Directive{}, r.directives...),
		ShouldEndSession: r.endSession,
	}
	if r.brief != nil {
		b.OutputSpeech = outputSpeech{Type: SpeechSet, Brief: r.brief, Verbose: track(r.speech)}
	} else if t := track(r.speech); t != nil {
		b.OutputSpeech = *t
	}
	if r.reprompt != nil && !r.endSession {
		b.Reprompt = &reprompt{OutputSpeech: outputSpeech{Type: SimpleSpeech, Values: *r.reprompt}}
	}
	return b
}

// Render serializes the response together with the session attributes as
// they are at the time of the call.
func (r *Response) Render(sessionAttributes map[string]any) ([]byte, error) {
	if sessionAttributes == nil {
		sessionAttributes = map[string]any{}
	}
	raw, err := json.Marshal(envelope{
		Version:           Version,
		Response:          r.body(),
		SessionAttributes: sessionAttributes,
	})
	if err != nil {
		return nil, fmt.Errorf("response: marshal: %w", err)
	}
	return raw, nil
}

// Empty renders "{}". It is what the dispatcher answers to a
// SessionEndedRequest nobody handles.
type Empty struct{}

func (Empty) Render(map[string]any) ([]byte, error) { return []byte("{}"), nil }
