package core

import (
	"context"
	"log/slog"
)

// RequestMeta identifies the client behind a write. It travels on the
// context from the HTTP layer to the write log lines.
type RequestMeta struct {
	IP        string
	UserAgent string
}

type requestMetaKey struct{}

// WithRequestMeta records the client of a write on ctx.
func WithRequestMeta(ctx context.Context, m RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, m)
}

// RequestMetaFrom returns the client recorded on ctx; zero when the write did
// not come through HTTP.
func RequestMetaFrom(ctx context.Context) RequestMeta {
	m, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return m
}

// LogValue logs the client as a group: client.ip, client.ua.
func (m RequestMeta) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("ip", m.IP),
		slog.String("ua", m.UserAgent),
	)
}
