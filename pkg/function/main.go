package function

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// HookFunc computes a hook response from a raw request body.
type HookFunc[T any] func(ctx context.Context, body []byte) (T, error)

// Run reads a whole request from r, calls fn, and writes the JSON encoded response to w.
func Run[T any](ctx context.Context, r io.Reader, w io.Writer, fn HookFunc[T]) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading request: %w", err)
	}

	resp, err := fn(ctx, body)
	if err != nil {
		return err
	}

	err = json.NewEncoder(w).Encode(resp)
	if err != nil {
		return fmt.Errorf("writing response: %w", err)
	}
	return nil
}
