package clova

import (
	"log/slog"
	"maps"

	"clova-webhook/field"
	"clova-webhook/speech"
)

// Kind is the classified request type.
type Kind string

const (
	KindLaunch       Kind = "LaunchRequest"
	KindIntent       Kind = "IntentRequest"
	KindSessionEnded Kind = "SessionEndedRequest"
	KindEvent        Kind = "EventRequest"
	KindUnhandled    Kind = "Unhandled"
)

// Classify compares the request type literally against the known kinds.
func Classify(requestType string) Kind {
	switch Kind(requestType) {
	case KindLaunch, KindIntent, KindSessionEnded, KindEvent:
		return Kind(requestType)
	default:
		return KindUnhandled
	}
}

// Session is the platform session of the current call. Attributes is owned by
// the call; whatever it holds when the response is rendered is sent back as
// sessionAttributes.
type Session struct {
	ID         string
	New        bool
	User       field.Node
	Attributes map[string]any
}

// Call carries the state of one request through the handlers. A new Call is
// built for every request and is never shared.
type Call struct {
	Version     string
	Request     field.Node
	Context     field.Node
	Session     *Session
	Kind        Kind
	RequestType string
	// Lang is the extension's default language, used by Say.
	Lang   string
	Logger *slog.Logger

	convertErrors map[string]error
}

func newCall(envelope field.Node, lang string, logger *slog.Logger) *Call {
	request := envelope.Field("request")
	requestType, _ := request.Field("type").AsString()
	version, _ := envelope.Field("version").AsString()

	sessionNode := envelope.Field("session")
	sessionID, _ := sessionNode.Field("sessionId").AsString()
	isNew, _ := sessionNode.Field("new").AsBool()
	attrs := map[string]any{}
	if a := sessionNode.Field("sessionAttributes"); a.IsObject() {
		attrs = a.Map()
	}

	return &Call{
		Version: version,
		Request: request,
		Context: envelope.Field("context"),
		Session: &Session{
			ID:         sessionID,
			New:        isNew,
			User:       sessionNode.Field("user"),
			Attributes: attrs,
		},
		Kind:        Classify(requestType),
		RequestType: requestType,
		Lang:        lang,
		Logger:      logger.With("request_type", requestType, "session_id", sessionID),
	}
}

// ConvertErrors returns the conversion errors of the most recent parameter
// resolution in this call, keyed by parameter name.
func (c *Call) ConvertErrors() map[string]error {
	return maps.Clone(c.convertErrors)
}

// IntentName is request.intent.name, or "" for non-intent requests.
func (c *Call) IntentName() string {
	name, _ := c.Request.Path("intent", "name").AsString()
	return name
}

// UserID is context.System.user.userId.
func (c *Call) UserID() string {
	id, _ := c.Context.Path("System", "user", "userId").AsString()
	return id
}

// ApplicationID is context.System.application.applicationId.
func (c *Call) ApplicationID() string {
	node := c.Context.Path("System", "application", "applicationId")
	if node.IsMissing() {
		return ""
	}
	id, _ := node.Text()
	return id
}

// Event returns request.event of an EventRequest.
func (c *Call) Event() (namespace, name string, payload field.Node) {
	ev := c.Request.Field("event")
	namespace, _ = ev.Field("namespace").AsString()
	name, _ = ev.Field("name").AsString()
	return namespace, name, ev.Field("payload")
}

// Say is speech text in the extension's default language.
func (c *Call) Say(text string) speech.Value {
	return speech.Text(text, c.Lang)
}
