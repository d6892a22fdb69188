package auth

import "context"

type ctxKey string

const (
	ctxKeySub       ctxKey = "sub"
	ctxKeySessionID ctxKey = "sid"
)

func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, ctxKeySub, sub)
}

func SubjectFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxKeySub); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func WithSessionID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, ctxKeySessionID, sid)
}

// SessionIDFromContext returns the learner session scope, or "" when
// the request carries no session (callers fall back to an in-memory
// store).
func SessionIDFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxKeySessionID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
