package memorydb

import (
	"time"

	"github.com/Aleph-Alpha/querykit/v1/field"
	"github.com/Aleph-Alpha/querykit/v1/observability"
	"github.com/Aleph-Alpha/querykit/v1/schema"
)

// DefaultRetryInterval is how long a persister waits before retrying a
// failed snapshot write.
const DefaultRetryInterval = 5 * time.Second

// Logger is the logging surface memorydb needs. *logger.Logger satisfies it.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

type nopLogger struct{}

func (nopLogger) Info(string, error, ...map[string]interface{})  {}
func (nopLogger) Debug(string, error, ...map[string]interface{}) {}
func (nopLogger) Warn(string, error, ...map[string]interface{})  {}
func (nopLogger) Error(string, error, ...map[string]interface{}) {}

type options struct {
	logger        Logger
	observer      observability.Observer
	store         SnapshotStore
	retryInterval time.Duration
	registry      *schema.Registry
}

// Option configures a Database.
type Option func(*options)

// WithLogger routes persistence diagnostics to l.
func WithLogger(l Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver reports every table operation to obs.
func WithObserver(obs observability.Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithStore makes the database durable: every table is loaded from and
// snapshotted to s.
func WithStore(s SnapshotStore) Option {
	return func(o *options) { o.store = s }
}

// WithRetryInterval sets the delay before a failed snapshot write is retried.
func WithRetryInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.retryInterval = d
		}
	}
}

// WithRegistry shares a schema registry with other components. Table
// descriptors are registered in it.
func WithRegistry(r *schema.Registry) Option {
	return func(o *options) { o.registry = r }
}

type tableOptions[T any] struct {
	id field.Expr[T]
}

// TableOption configures a single table.
type TableOption[T any] func(*tableOptions[T])

// WithID declares the path holding each record's unique id. Writes that
// would store two records with equal ids fail with ErrDuplicateKey.
func WithID[T, K any](p field.Path[T, K]) TableOption[T] {
	return func(o *tableOptions[T]) { o.id = p }
}
