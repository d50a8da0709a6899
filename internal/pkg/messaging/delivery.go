package messaging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shandysiswandi/otpflow/internal/pkg/stacktrace"
	"go.uber.org/atomic"
)

// delivery adapts a broker message to Message. The responded flag makes the
// first Ack or Nack win even when handler and auto-ack race.
type delivery struct {
	body      []byte
	headers   []Header
	responded *atomic.Bool
	ack       func() error
	nack      func() error
}

func newDelivery(body []byte, headers []Header, ack, nack func() error) *delivery {
	return &delivery{
		body:      body,
		headers:   headers,
		responded: atomic.NewBool(false),
		ack:       ack,
		nack:      nack,
	}
}

func (d *delivery) Body() []byte      { return d.body }
func (d *delivery) Headers() []Header { return d.headers }

func (d *delivery) Ack(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.responded.Swap(true) {
		return nil
	}

	return d.ack()
}

func (d *delivery) Nack(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.responded.Swap(true) {
		return nil
	}

	return d.nack()
}

// dispatch runs handler with panic recovery and applies auto-ack.
func dispatch(ctx context.Context, kind string, handler Handler, d *delivery, autoAck bool) error {
	herr := callHandlerWithRecover(ctx, kind, func() error {
		return handler(ctx, d)
	})

	if !autoAck || d.responded.Load() {
		return herr
	}

	if herr != nil {
		if err := d.Nack(ctx); err != nil {
			return err
		}
		return herr
	}

	return d.Ack(ctx)
}

func callHandlerWithRecover(ctx context.Context, kind string, fn func() error) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			slog.ErrorContext(ctx, "panic in messaging handler", "kind", kind, "panic", rvr, stacktrace.Attr())
			err = fmt.Errorf("messaging: panic in %s handler: %v", kind, rvr)
		}
	}()

	return fn()
}
