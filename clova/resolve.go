package clova

import (
	"fmt"

	"clova-webhook/field"
)

// Resolve maps request data onto the declared parameters.
//
// For every parameter, in order: the lookup key is mapping[p] or p; a missing,
// null or empty-string value is absent and replaced by the parameter's default
// if there is one; a present value is passed through its converter if there is
// one. A failing converter does not abort resolution: the error is returned
// under the parameter name and the raw value is kept.
func Resolve(
	params []string,
	mapping map[string]string,
	convert map[string]Converter,
	defaults map[string]Default,
	data map[string]field.Node,
) (Args, map[string]error) {
	args := Args{
		names:  append([]string(nil), params...),
		values: make([]any, 0, len(params)),
	}
	errs := map[string]error{}

	for _, p := range params {
		key, ok := mapping[p]
		if !ok {
			key = p
		}
		node := data[key]

		if absent(node) {
			var v any
			if d, ok := defaults[p]; ok {
				v = d.resolve()
			}
			args.values = append(args.values, v)
			continue
		}

		raw := rawValue(node)
		conv, ok := convert[p]
		if !ok || conv == nil {
			args.values = append(args.values, raw)
			continue
		}
		text, ok := node.Text()
		if !ok {
			errs[p] = fmt.Errorf("parameter %q: %w", p, ErrNotConvertible)
			args.values = append(args.values, raw)
			continue
		}
		converted, err := conv(text)
		if err != nil {
			errs[p] = err
			args.values = append(args.values, raw)
			continue
		}
		args.values = append(args.values, converted)
	}
	return args, errs
}

func absent(n field.Node) bool {
	if n.IsMissing() {
		return true
	}
	s, ok := n.AsString()
	return ok && s == ""
}

func rawValue(n field.Node) any {
	if s, ok := n.AsString(); ok {
		return s
	}
	return n.Value()
}

// requestData builds the resolver input for a call. Requests carrying an
// intent contribute their slots keyed by each slot's own name (falling back
// to the collection key when a slot has no name); any other request
// contributes its top-level fields.
func requestData(request field.Node) map[string]field.Node {
	data := map[string]field.Node{}
	intent := request.Field("intent")
	if !intent.IsMissing() {
		slots := intent.Field("slots")
		for _, key := range slots.Keys() {
			slot := slots.Field(key)
			name, ok := slot.Field("name").AsString()
			if !ok || name == "" {
				name = key
			}
			data[name] = slot.Field("value")
		}
		return data
	}
	for _, key := range request.Keys() {
		data[key] = request.Field(key)
	}
	return data
}
