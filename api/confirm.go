package api

import "context"

type confirmKey struct{}

// WithConfirmation records whether the caller approved a destructive action
// for the lifetime of ctx.
func WithConfirmation(ctx context.Context, ok bool) context.Context {
	return context.WithValue(ctx, confirmKey{}, ok)
}

// RequestConfirmer answers confirmation prompts from the flag an HTTP request
// carried, since a request cannot stop and ask.
type RequestConfirmer struct{}

func (RequestConfirmer) ConfirmDestructive(ctx context.Context, message string) bool {
	ok, _ := ctx.Value(confirmKey{}).(bool)
	return ok
}
