package repository

import (
	"context"
	"fmt"
	"strings"
)

// Open returns the Store selected by the url scheme:
//
//	postgres://, postgresql://  PostgreSQL
//	sqlite://<path>, file:<path> SQLite
//	memory://                   in-memory
func Open(ctx context.Context, url string, opts ...Option) (Store, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return NewPostgresStore(ctx, url, opts...)
	case strings.HasPrefix(url, "sqlite://"):
		return NewSQLiteStore(ctx, strings.TrimPrefix(url, "sqlite://"), opts...)
	case strings.HasPrefix(url, "file:"):
		return NewSQLiteStore(ctx, url, opts...)
	case url == "memory://" || url == "memory:":
		return NewMemStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedURL, redact(url))
	}
}

// redact drops credentials from url before it is logged.
func redact(url string) string {
	at := strings.LastIndex(url, "@")
	scheme := strings.Index(url, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return url
	}
	return url[:scheme+3] + "***" + url[at:]
}
