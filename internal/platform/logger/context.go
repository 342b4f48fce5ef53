package logger

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	actorIDKey   contextKey = "actor_id"
)

// WithRequestID は ctx にリクエスト ID を格納します。
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithActorID は ctx に操作主体の ID を格納します。
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorIDKey, actorID)
}

// RequestID は ctx からリクエスト ID を取り出します。
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// ActorID は ctx から操作主体の ID を取り出します。
func ActorID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(actorIDKey).(string)
	return v
}

// FromContext は ctx に格納された request_id と actor_id を付与したロガーを返します。
func FromContext(ctx context.Context) *slog.Logger {
	l := Get()

	var fields []any
	if id := RequestID(ctx); id != "" {
		fields = append(fields, "request_id", id)
	}
	if id := ActorID(ctx); id != "" {
		fields = append(fields, "actor_id", id)
	}
	if len(fields) > 0 {
		l = l.With(fields...)
	}
	return l
}
