package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Notification is a rendered plain-text email.
type Notification struct {
	To       string
	Subject  string
	Body     string
	Template string
}

// NotificationGateway hands a notification to a delivery channel.
type NotificationGateway interface {
	Notify(ctx context.Context, n Notification) error
}

const defaultNotifyTimeout = 10 * time.Second

// Dispatcher delivers notifications off the request path. Delivery failures
// are logged and counted; they never reach the caller of Dispatch.
type Dispatcher struct {
	gateway NotificationGateway
	timeout time.Duration
	logger  *logrus.Logger
	wg      sync.WaitGroup
}

func NewDispatcher(gateway NotificationGateway, timeout time.Duration, logger *logrus.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	return &Dispatcher{gateway: gateway, timeout: timeout, logger: orDiscard(logger)}
}

// Dispatch sends notes in the background and returns immediately. The
// returned channel yields one error per failed note and is closed when all
// deliveries have finished; callers may ignore it.
func (d *Dispatcher) Dispatch(ctx context.Context, notes ...Notification) <-chan error {
	errs := make(chan error, len(notes))
	if d == nil || d.gateway == nil || len(notes) == 0 {
		close(errs)
		return errs
	}

	base := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer close(errs)
		for _, n := range notes {
			if err := d.deliver(base, n); err != nil {
				notificationsFailed.Add(1)
				d.logger.WithError(err).WithFields(logrus.Fields{
					"to":       n.To,
					"template": n.Template,
				}).Warn("notification failed")
				errs <- err
			}
		}
	}()
	return errs
}

func (d *Dispatcher) deliver(ctx context.Context, n Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notification gateway panic: %v", r)
		}
	}()
	c, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.gateway.Notify(c, n)
}

// Wait blocks until every dispatched delivery has finished.
func (d *Dispatcher) Wait() {
	if d != nil {
		d.wg.Wait()
	}
}
