package clova

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"clova-webhook/response"
)

// HandlerFunc serves launch, session-ended and event requests.
type HandlerFunc func(ctx context.Context, call *Call) (response.Renderer, error)

// IntentFunc serves an intent. args holds one value per declared parameter.
type IntentFunc func(ctx context.Context, call *Call, args Args) (response.Renderer, error)

// HookFunc runs before the handler when a new session starts.
type HookFunc func(ctx context.Context, call *Call) error

// Converter turns the string form of a slot value into a typed value.
type Converter func(raw string) (any, error)

// Intent is the registration record of one intent handler.
type Intent struct {
	Name string
	// Params are the handler's parameter names, in the order the values are
	// passed in Args.
	Params []string
	// Mapping maps a parameter name to the slot name it reads. Parameters
	// without an entry read the slot of the same name.
	Mapping map[string]string
	// Convert holds per-parameter converters, applied to present values only.
	Convert map[string]Converter
	// Defaults are used when the slot is missing or empty.
	Defaults map[string]Default
	Handle   IntentFunc
}

func (in Intent) validate() error {
	if in.Handle == nil {
		return fmt.Errorf("clova: intent %q: handler must not be nil", in.Name)
	}
	seen := make(map[string]struct{}, len(in.Params))
	for _, p := range in.Params {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("clova: intent %q: empty parameter name", in.Name)
		}
		if _, dup := seen[p]; dup {
			return fmt.Errorf("clova: intent %q: duplicate parameter %q", in.Name, p)
		}
		seen[p] = struct{}{}
	}
	return nil
}

// Default is either a literal value or a producer called on every use.
type Default struct {
	value   any
	produce func() any
}

func Literal(v any) Default { return Default{value: v} }

// Producer defers the default to call time, e.g. for clocks or random values.
func Producer(fn func() any) Default { return Default{produce: fn} }

func (d Default) resolve() any {
	if d.produce != nil {
		return d.produce()
	}
	return d.value
}

func ToInt(raw string) (any, error) {
	return strconv.Atoi(strings.TrimSpace(raw))
}

func ToFloat(raw string) (any, error) {
	return strconv.ParseFloat(strings.TrimSpace(raw), 64)
}

func ToBool(raw string) (any, error) {
	return strconv.ParseBool(strings.TrimSpace(raw))
}

// ToTime parses the value with the given time layout.
func ToTime(layout string) Converter {
	return func(raw string) (any, error) {
		return time.Parse(layout, strings.TrimSpace(raw))
	}
}

// Args are the resolved handler arguments in declaration order. Absent values
// without a default are nil.
type Args struct {
	names  []string
	values []any
}

func (a Args) Len() int { return len(a.values) }

func (a Args) At(i int) any {
	if i < 0 || i >= len(a.values) {
		return nil
	}
	return a.values[i]
}

func (a Args) Names() []string { return append([]string(nil), a.names...) }
func (a Args) Values() []any   { return append([]any(nil), a.values...) }

// Value returns the argument of the named parameter.
func (a Args) Value(name string) (any, bool) {
	for i, n := range a.names {
		if n == name {
			return a.values[i], true
		}
	}
	return nil, false
}

// String returns the named argument if it is a string.
func (a Args) String(name string) (string, bool) {
	v, _ := a.Value(name)
	s, ok := v.(string)
	return s, ok
}

// Int returns the named argument if it is an int.
func (a Args) Int(name string) (int, bool) {
	v, _ := a.Value(name)
	n, ok := v.(int)
	return n, ok
}
