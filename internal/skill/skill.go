// Package skill holds sample extensions built on package clova.
package skill

import (
	"context"
	"math/rand/v2"
)

// Renderer renders a named speech template.
type Renderer interface {
	Render(ctx context.Context, name string, data any) (string, error)
}

// Rand returns an integer in [0, n).
type Rand func(n int) int

func defaultRand(r Rand) Rand {
	if r == nil {
		return rand.IntN
	}
	return r
}
