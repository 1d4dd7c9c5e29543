package middleware

import (
	"context"
	"net/http"

	gojson "github.com/goccy/go-json"

	keystone "github.com/keystone-go/keystone"
)

// ctxKeyDecoded is a typed context key for storing Decoded[T].
// Using a generic struct type ensures uniqueness per T.
type ctxKeyDecoded[T any] struct{}

// ContextWithDecoded attaches a Decoded[T] to the context.
func ContextWithDecoded[T any](ctx context.Context, d keystone.Decoded[T]) context.Context {
	return context.WithValue(ctx, ctxKeyDecoded[T]{}, d)
}

// DecodedFromContext retrieves a Decoded[T] from context.
func DecodedFromContext[T any](ctx context.Context) (keystone.Decoded[T], bool) {
	v, ok := ctx.Value(ctxKeyDecoded[T]{}).(keystone.Decoded[T])
	return v, ok
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues keystone.Issues) map[string]any {
	return map[string]any{"issues": issues}
}

// ValidateJSON decodes the request body via rec, stores Decoded[T] in the
// request context on success, or replies 400 with Issues when decoding fails.
// Fields absent from the body carry their defaults into the handler.
func ValidateJSON[T any](rec keystone.Record[T], next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dm, err := keystone.DecodeFromWithMeta(r.Context(), rec, keystone.JSONReader(r.Body))
		if err != nil {
			if iss, ok := keystone.AsIssues(err); ok {
				writeJSON(w, http.StatusBadRequest, ErrorPayload(iss))
				return
			}
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithDecoded(r.Context(), dm)))
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = gojson.NewEncoder(w).Encode(payload)
}
