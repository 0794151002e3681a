// Package listener carries room change notifications between server
// instances over PostgreSQL LISTEN/NOTIFY.
package listener

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/roomchat/internal/dbx"
	"github.com/dmitrijs2005/roomchat/internal/logging"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sethvargo/go-retry"
)

// Channel is the NOTIFY channel; payloads are room IDs.
const Channel = "roomchat_changes"

// Notifier announces room changes with pg_notify. Every instance's Listener,
// the sender's included, receives them.
type Notifier struct {
	db dbx.DBTX
}

func NewNotifier(db dbx.DBTX) *Notifier {
	return &Notifier{db: db}
}

func (n *Notifier) Notify(ctx context.Context, roomID string) error {
	if _, err := n.db.ExecContext(ctx, `SELECT pg_notify($1, $2)`, Channel, roomID); err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	return nil
}

// Publisher receives the notifications, normally a services.Hub.
type Publisher interface {
	Publish(roomID string)
	PublishAll()
}

type conn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

// connect is a seam for tests.
var connect = func(ctx context.Context, dsn string) (conn, error) {
	c, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Listener holds a dedicated pgx connection subscribed to Channel and
// forwards every payload to a Publisher.
type Listener struct {
	dsn    string
	target Publisher
	logger logging.Logger

	retryBase time.Duration
	retryCap  time.Duration
}

func New(dsn string, target Publisher, logger logging.Logger) *Listener {
	return &Listener{
		dsn:       dsn,
		target:    target,
		logger:    logger.With("module", "listener"),
		retryBase: 500 * time.Millisecond,
		retryCap:  30 * time.Second,
	}
}

// Run listens until ctx is done, reconnecting with capped exponential
// backoff. After each (re)connect all watchers are signalled, since
// notifications sent while disconnected are lost.
func (l *Listener) Run(ctx context.Context) error {
	b := retry.WithCappedDuration(l.retryCap, retry.NewExponential(l.retryBase))

	err := retry.Do(ctx, b, func(ctx context.Context) error {
		err := l.listenOnce(ctx)
		if ctx.Err() != nil {
			return nil
		}
		l.logger.Warn(ctx, "listen connection lost", "error", err)
		return retry.RetryableError(err)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (l *Listener) listenOnce(ctx context.Context) error {
	c, err := connect(ctx, l.dsn)
	if err != nil {
		return err
	}
	defer c.Close(context.Background())

	if _, err := c.Exec(ctx, "LISTEN "+pgx.Identifier{Channel}.Sanitize()); err != nil {
		return err
	}
	l.logger.Info(ctx, "listening for room changes", "channel", Channel)
	l.target.PublishAll()

	for {
		n, err := c.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		l.target.Publish(n.Payload)
	}
}
