package host

import (
	"context"

	"github.com/mamaar/jsxsplit/pkg/refactor"
)

// StaticPrompter answers every prompt with a fixed value. An empty value
// behaves like a cancelled prompt.
type StaticPrompter struct {
	Value string
}

func (p StaticPrompter) Prompt(ctx context.Context, _ refactor.PromptOptions) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	return p.Value, p.Value != "", nil
}
