package skill

import (
	"context"
	"errors"
	"fmt"

	"clova-webhook/clova"
	"clova-webhook/response"
)

// ColorKey is the session attribute holding the user's color.
const ColorKey = "COLOR"

// Color registers the session demo: the user tells a favorite color, which is
// kept in the session attributes and read back by a later intent.
func Color(ext *clova.Extension, tpl Renderer) error {
	if ext == nil {
		return errors.New("skill: extension must not be nil")
	}
	if tpl == nil {
		return errors.New("skill: renderer must not be nil")
	}
	c := &colorSkill{tpl: tpl}

	ext.Launch(c.launch)
	if err := ext.Intent(clova.Intent{
		Name:    "MyColorIsIntent",
		Params:  []string{"color"},
		Mapping: map[string]string{"color": "Color"},
		Handle:  c.myColorIs,
	}); err != nil {
		return err
	}
	return ext.Intent(clova.Intent{Name: "WhatsMyColorIntent", Handle: c.whatsMyColor})
}

type colorSkill struct {
	tpl Renderer
}

func (c *colorSkill) question(ctx context.Context, call *clova.Call, text, reprompt string, data any) (response.Renderer, error) {
	q, err := c.tpl.Render(ctx, text, data)
	if err != nil {
		return nil, fmt.Errorf("skill: render %s: %w", text, err)
	}
	r, err := c.tpl.Render(ctx, reprompt, data)
	if err != nil {
		return nil, fmt.Errorf("skill: render %s: %w", reprompt, err)
	}
	return response.Question(call.Say(q)).Reprompt(call.Say(r)), nil
}

func (c *colorSkill) launch(ctx context.Context, call *clova.Call) (response.Renderer, error) {
	return c.question(ctx, call, "welcome", "welcome_reprompt", nil)
}

func (c *colorSkill) myColorIs(ctx context.Context, call *clova.Call, args clova.Args) (response.Renderer, error) {
	color, ok := args.String("color")
	if !ok {
		return c.question(ctx, call, "unknown_color", "unknown_color_reprompt", nil)
	}
	call.Session.Attributes[ColorKey] = color
	return c.question(ctx, call, "known_color", "known_color_reprompt", map[string]any{"color": color})
}

func (c *colorSkill) whatsMyColor(ctx context.Context, call *clova.Call, _ clova.Args) (response.Renderer, error) {
	color, ok := call.Session.Attributes[ColorKey].(string)
	if !ok {
		return c.question(ctx, call, "unknown_color_reprompt", "unknown_color_reprompt", nil)
	}
	text, err := c.tpl.Render(ctx, "known_color_bye", map[string]any{"color": color})
	if err != nil {
		return nil, fmt.Errorf("skill: render known_color_bye: %w", err)
	}
	return response.Statement(call.Say(text)), nil
}
