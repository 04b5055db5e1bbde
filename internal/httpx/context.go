package httpx

import (
	"context"
	"net/http"

	"comicgallery/internal/platform/logging"
)

type contextKey string

const subjectKey contextKey = "subject"

// SubjectFrom returns the authenticated session subject, or "" for anonymous requests.
func SubjectFrom(r *http.Request) string {
	if v, ok := r.Context().Value(subjectKey).(string); ok {
		return v
	}
	return ""
}

func ContextWithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey, subject)
}

func RequestIDFrom(r *http.Request) string {
	return logging.RequestID(r.Context())
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return logging.WithRequestID(ctx, requestID)
}
