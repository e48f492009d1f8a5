// Package clova dispatches Clova Extension Kit requests to registered
// handlers.
//
// An Extension holds the registrations. Handle parses one request envelope,
// optionally verifies the application ID, classifies the request, runs the
// matching handler and renders what it returns:
//
//	ext := clova.New(clova.WithApplicationIDs("com.example.dice"))
//	ext.Launch(func(ctx context.Context, call *clova.Call) (response.Renderer, error) {
//		return response.Question(call.Say("How many dice?")), nil
//	})
//	_ = ext.Intent(clova.Intent{
//		Name:     "ThrowDiceIntent",
//		Params:   []string{"count"},
//		Mapping:  map[string]string{"count": "diceCount"},
//		Convert:  map[string]clova.Converter{"count": clova.ToInt},
//		Defaults: map[string]clova.Default{"count": clova.Literal(1)},
//		Handle:   throwDice,
//	})
//
// All per-request state lives in the *Call handed to the handlers, so one
// Extension can serve concurrent requests.
package clova

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"clova-webhook/field"
	"clova-webhook/response"
	"clova-webhook/speech"
)

// ContentType is set on every rendered response.
const ContentType = "application/json;charset=utf-8"

// Result is the HTTP-shaped outcome of Handle.
type Result struct {
	StatusCode int
	Header     map[string]string
	Body       []byte
}

type Option func(*Extension)

func WithLogger(l *slog.Logger) Option {
	return func(e *Extension) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithVerifier installs the application ID gate.
func WithVerifier(v Verifier) Option {
	return func(e *Extension) { e.verifier = v }
}

// WithApplicationIDs installs an AllowList gate. An empty list leaves
// verification without a gate.
func WithApplicationIDs(ids ...string) Option {
	return func(e *Extension) {
		if len(ids) == 0 {
			return
		}
		e.verifier = AllowList(ids)
	}
}

// WithVerifyRequests turns the application ID check on or off. It is on by
// default; tests and local mocks usually turn it off.
func WithVerifyRequests(verify bool) Option {
	return func(e *Extension) { e.verifyRequests = verify }
}

// WithPrettyDebugLogs indents the payloads logged at debug level.
func WithPrettyDebugLogs(pretty bool) Option {
	return func(e *Extension) { e.prettyDebug = pretty }
}

// WithDefaultLang sets the language used by Call.Say.
func WithDefaultLang(lang string) Option {
	return func(e *Extension) {
		if lang != "" {
			e.lang = lang
		}
	}
}

func WithObserver(o Observer) Option {
	return func(e *Extension) {
		if o != nil {
			e.observer = o
		}
	}
}

// Extension routes requests to handlers. Registration methods may be called
// while requests are being served.
type Extension struct {
	logger         *slog.Logger
	verifier       Verifier
	verifyRequests bool
	prettyDebug    bool
	lang           string
	observer       Observer
	unverifiedOnce sync.Once

	mu             sync.RWMutex
	launch         HandlerFunc
	sessionEnded   HandlerFunc
	sessionStarted HookFunc
	event          HandlerFunc
	intents        map[string]Intent
	defaultIntent  *Intent
}

func New(opts ...Option) *Extension {
	e := &Extension{
		logger:         slog.Default(),
		verifyRequests: true,
		lang:           speech.Korean,
		observer:       nopObserver{},
		intents:        map[string]Intent{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Extension) Launch(fn HandlerFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.launch = fn
}

func (e *Extension) SessionEnded(fn HandlerFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sessionEnded = fn
}

// SessionStarted registers a hook run before the handler of any request whose
// session is flagged new, whether it is a launch or an intent.
func (e *Extension) SessionStarted(fn HookFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sessionStarted = fn
}

// Event registers the handler for EventRequest.
func (e *Extension) Event(fn HandlerFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.event = fn
}

// Intent registers a handler for in.Name. A later registration for the same
// name replaces the earlier one.
func (e *Extension) Intent(in Intent) error {
	if in.Name == "" {
		return errors.New("clova: intent name must not be empty")
	}
	if err := in.validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.intents[in.Name]; exists {
		e.logger.Warn("intent handler replaced", "intent", in.Name)
	}
	e.intents[in.Name] = in
	return nil
}

// DefaultIntent registers the handler for intents without a registration of
// their own. in.Name is ignored.
func (e *Extension) DefaultIntent(in Intent) error {
	if err := in.validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.defaultIntent = &in
	return nil
}

// route returns the registration serving name: the exact match, else the
// default intent. The returned label is the registered name, or
// DefaultIntentLabel for the default intent.
func (e *Extension) route(name string) (Intent, string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if in, ok := e.intents[name]; ok {
		return in, in.Name, nil
	}
	if e.defaultIntent != nil {
		return *e.defaultIntent, DefaultIntentLabel, nil
	}
	return Intent{}, "", newError(ErrorUnroutableIntent, "no_handler",
		fmt.Errorf("intent %q not found and no default intent registered", name))
}

// Handle serves one raw request envelope.
//
// Malformed JSON and failed verification return an *Error before any handler
// runs. A request nobody handles yields a 400 with an empty body, except
// SessionEndedRequest which yields a 200 "{}". Handler errors and unroutable
// intents are returned to the caller.
func (e *Extension) Handle(ctx context.Context, raw []byte) (Result, error) {
	start := time.Now()
	kind := KindUnhandled
	outcome := OutcomeFailed
	defer func() { e.observer.ObserveCall(kind, outcome, time.Since(start)) }()

	envelope, err := field.Parse(raw)
	if err != nil {
		outcome = OutcomeRejected
		return Result{}, newError(ErrorMalformedPayload, "invalid_json", err)
	}
	if !envelope.IsObject() {
		outcome = OutcomeRejected
		return Result{}, newError(ErrorMalformedPayload, "not_an_object", nil)
	}
	e.dump("request payload", envelope)

	if err := e.verify(ctx, envelope); err != nil {
		outcome = OutcomeRejected
		return Result{}, err
	}

	call := newCall(envelope, e.lang, e.logger)
	kind = call.Kind

	if call.Session.New {
		if hook := e.hook(); hook != nil {
			if err := hook(ctx, call); err != nil {
				return Result{}, fmt.Errorf("clova: session started hook: %w", err)
			}
		}
	}

	renderer, err := e.dispatch(ctx, call)
	if err != nil {
		return Result{}, err
	}
	if renderer == nil {
		outcome = OutcomeNoHandler
		call.Logger.Warn("handler is not defined")
		return Result{StatusCode: 400}, nil
	}

	body, err := renderer.Render(call.Session.Attributes)
	if err != nil {
		return Result{}, fmt.Errorf("clova: render response: %w", err)
	}
	e.dumpRaw("response payload", body)

	outcome = OutcomeHandled
	return Result{
		StatusCode: 200,
		Header:     map[string]string{"Content-Type": ContentType},
		Body:       body,
	}, nil
}

func (e *Extension) dispatch(ctx context.Context, call *Call) (response.Renderer, error) {
	e.mu.RLock()
	launch, sessionEnded, event := e.launch, e.sessionEnded, e.event
	e.mu.RUnlock()

	switch call.Kind {
	case KindLaunch:
		if launch == nil {
			return nil, nil
		}
		return invoke("launch", func() (response.Renderer, error) { return launch(ctx, call) })
	case KindSessionEnded:
		if sessionEnded == nil {
			call.Logger.Info("SessionEndedRequest handler is not defined")
			return response.Empty{}, nil
		}
		return invoke("session ended", func() (response.Renderer, error) { return sessionEnded(ctx, call) })
	case KindEvent:
		if event == nil {
			return nil, nil
		}
		return invoke("event", func() (response.Renderer, error) { return event(ctx, call) })
	case KindIntent:
		return e.dispatchIntent(ctx, call)
	default:
		return nil, nil
	}
}

func (e *Extension) dispatchIntent(ctx context.Context, call *Call) (response.Renderer, error) {
	name := call.IntentName()
	in, label, err := e.route(name)
	if err != nil {
		return nil, err
	}

	args, convErrs := Resolve(in.Params, in.Mapping, in.Convert, in.Defaults, requestData(call.Request))
	call.convertErrors = convErrs
	for param, cerr := range convErrs {
		call.Logger.Debug("slot conversion failed", "intent", name, "param", param, "err", cerr)
		e.observer.ObserveConvertError(label, param)
	}

	return invoke("intent "+name, func() (response.Renderer, error) { return in.Handle(ctx, call, args) })
}

// invoke runs a handler, wrapping its error and normalising a typed nil
// result to "no result".
func invoke(what string, fn func() (response.Renderer, error)) (response.Renderer, error) {
	r, err := fn()
	if err != nil {
		return nil, fmt.Errorf("clova: %s handler: %w", what, err)
	}
	if r == nil {
		return nil, nil
	}
	if v := reflect.ValueOf(r); v.Kind() == reflect.Pointer && v.IsNil() {
		return nil, nil
	}
	return r, nil
}

func (e *Extension) hook() HookFunc {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sessionStarted
}

func (e *Extension) verify(ctx context.Context, envelope field.Node) error {
	if !e.verifyRequests {
		return nil
	}
	if e.verifier == nil {
		e.unverifiedOnce.Do(func() {
			e.logger.Warn("application id verification is disabled: no application ids configured")
		})
		return nil
	}
	var id string
	if node := envelope.Path("context", "System", "application", "applicationId"); !node.IsMissing() {
		id, _ = node.Text()
	}
	if id == "" {
		return newError(ErrorVerification, "missing_application_id", nil)
	}
	if err := e.verifier.Verify(ctx, id); err != nil {
		return newError(ErrorVerification, "application_id_mismatch", err)
	}
	return nil
}

func (e *Extension) dump(msg string, v any) {
	if !e.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	var (
		raw []byte
		err error
	)
	if e.prettyDebug {
		raw, err = json.MarshalIndent(v, "", "  ")
	} else {
		raw, err = json.Marshal(v)
	}
	if err != nil {
		return
	}
	e.logger.Debug(msg, "payload", string(raw))
}

func (e *Extension) dumpRaw(msg string, raw []byte) {
	if !e.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	e.dump(msg, json.RawMessage(raw))
}
