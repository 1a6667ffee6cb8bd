package repository

const defaultMaxConns = 10

// Option configures a database-backed store.
type Option func(*options)

type options struct {
	maxConns int
}

func newOptions(opts []Option) options {
	o := options{maxConns: defaultMaxConns}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithMaxConns bounds the connection pool.
func WithMaxConns(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxConns = n
		}
	}
}
