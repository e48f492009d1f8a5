package clova

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// Verifier decides whether a request for applicationID may be served.
type Verifier interface {
	Verify(ctx context.Context, applicationID string) error
}

// AllowList accepts the listed application IDs.
type AllowList []string

// ParseAllowList splits a comma-separated list, dropping blanks.
func ParseAllowList(s string) AllowList {
	var out AllowList
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

func (a AllowList) Verify(_ context.Context, applicationID string) error {
	if slices.Contains(a, applicationID) {
		return nil
	}
	return fmt.Errorf("clova: application id %q is not allowed", applicationID)
}
