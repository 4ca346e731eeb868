package requestdata

import "context"

type ctxKey struct{}

// RequestData is attached to every request context by middleware. UserID is
// zero until the auth middleware has validated a token.
type RequestData struct {
	RequestID string
	UserID    int64
	IsAdmin   bool
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, ctxKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(ctxKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

// UserID returns the authenticated user, or false when the request is anonymous.
func UserID(ctx context.Context) (int64, bool) {
	rd := GetRequestData(ctx)
	if rd == nil || rd.UserID == 0 {
		return 0, false
	}
	return rd.UserID, true
}
