package sqlgateway

import (
	"context"
	"github.com/denismitr/zmigrate/internal/retry"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"sync"
	"time"
)

const (
	DefaultConnectionAttempts    = 10
	DefaultConnectionTimeout     = 60 * time.Second
	DefaultConnectionAttemptStep = 500 * time.Millisecond
)

type ConnectOptions struct {
	MaxAttempts int
	MaxTimeout  time.Duration
	RetryStep   time.Duration
}

func NewDefaultConnectOptions() *ConnectOptions {
	return &ConnectOptions{
		MaxAttempts: DefaultConnectionAttempts,
		MaxTimeout:  DefaultConnectionTimeout,
		RetryStep:   DefaultConnectionAttemptStep,
	}
}

type Connector interface {
	Connect(ctx context.Context) (*sqlx.Conn, error)
	Close() error
}

// RetryingConnector hands out one dedicated connection for the lifetime of a run.
// Closing it releases that connection and then the pool.
type RetryingConnector struct {
	mu      sync.Mutex
	options *ConnectOptions
	db      *sqlx.DB
	conn    *sqlx.Conn
	closed  bool
}

var _ Connector = (*RetryingConnector)(nil)

func MakeRetryingConnector(db *sqlx.DB, options *ConnectOptions) *RetryingConnector {
	if options == nil {
		options = NewDefaultConnectOptions()
	}

	return &RetryingConnector{db: db, options: options}
}

func (c *RetryingConnector) Connect(ctx context.Context) (*sqlx.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrConnectorClosed
	}

	if c.conn != nil {
		return c.conn, nil
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.options.MaxTimeout)
	defer cancel()

	var conn *sqlx.Conn
	err := retry.Incremental(timeoutCtx, c.options.RetryStep, c.options.MaxAttempts, func(attempt int) error {
		var err error
		conn, err = c.db.Connx(timeoutCtx)
		if err != nil {
			return retry.Error(errors.Wrap(err, "could not establish DB connection"), attempt)
		}

		if err := conn.PingContext(timeoutCtx); err != nil {
			_ = conn.Close()
			return retry.Error(errors.Wrap(err, "db ping failed"), attempt)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	c.conn = conn

	return conn, nil
}

func (c *RetryingConnector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	var result error
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			result = errors.Wrap(err, "retrying connector could not close the connection")
		}
		c.conn = nil
	}

	if err := c.db.Close(); err != nil && result == nil {
		result = errors.Wrap(err, "retrying connector could not close the database")
	}

	return result
}
