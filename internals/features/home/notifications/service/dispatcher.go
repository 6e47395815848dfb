package service

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"gorm.io/datatypes"

	"booklend_backend/internals/features/home/notifications/model"
	userModel "booklend_backend/internals/features/users/users/model"
)

type RecipientDirectory interface {
	FindUserByID(ctx context.Context, id uuid.UUID) (*userModel.UserModel, error)
}

type DeliveryRecorder interface {
	RecordDelivery(ctx context.Context, d *model.NotificationDeliveryModel) error
}

const defaultDeliveryTimeout = 30 * time.Second

// Dispatcher delivers notifications in the background. Dispatch never blocks
// and delivery errors never reach the caller: they are logged and recorded.
type Dispatcher struct {
	sender    Sender
	directory RecipientDirectory
	recorder  DeliveryRecorder
	sem       *semaphore.Weighted
	timeout   time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

type DispatcherOption func(*Dispatcher)

func WithDeliveryTimeout(d time.Duration) DispatcherOption {
	return func(dp *Dispatcher) {
		if d > 0 {
			dp.timeout = d
		}
	}
}

// NewDispatcher allows at most workers deliveries in flight. directory and
// recorder may be nil.
func NewDispatcher(sender Sender, directory RecipientDirectory, recorder DeliveryRecorder, workers int, opts ...DispatcherOption) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	d := &Dispatcher{
		sender:    sender,
		directory: directory,
		recorder:  recorder,
		sem:       semaphore.NewWeighted(int64(workers)),
		timeout:   defaultDeliveryTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) Dispatch(msg Message) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		log.Printf("[WARN] notification %s for user %s dropped: dispatcher closed", msg.Kind, msg.UserID)
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.deliver(msg)
	}()
}

// Close stops accepting messages and waits for in-flight deliveries.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) deliver(msg Message) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] notification %s panicked: %v", msg.Kind, r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.sem.Acquire(ctx, 1); err != nil {
		d.record(msg, model.DeliveryStatusFailed, err)
		return
	}
	defer d.sem.Release(1)

	if strings.TrimSpace(msg.To) == "" {
		to, err := d.lookup(ctx, msg.UserID)
		if err != nil {
			log.Printf("[WARN] notification %s: recipient %s unresolved: %v", msg.Kind, msg.UserID, err)
			d.record(msg, model.DeliveryStatusSkipped, err)
			return
		}
		msg.To = to
	}

	if err := d.sender.Send(ctx, msg); err != nil {
		log.Printf("[ERROR] notification %s to %s failed: %v", msg.Kind, msg.To, err)
		d.record(msg, model.DeliveryStatusFailed, err)
		return
	}
	d.record(msg, model.DeliveryStatusSent, nil)
}

func (d *Dispatcher) lookup(ctx context.Context, userID uuid.UUID) (string, error) {
	if d.directory == nil {
		return "", ErrNoRecipient
	}
	u, err := d.directory.FindUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if u == nil || strings.TrimSpace(u.Email) == "" {
		return "", ErrNoRecipient
	}
	return u.Email, nil
}

func (d *Dispatcher) record(msg Message, status string, cause error) {
	if d.recorder == nil {
		return
	}

	row := &model.NotificationDeliveryModel{
		NotificationDeliveryUserID:  msg.UserID,
		NotificationDeliveryKind:    msg.Kind,
		NotificationDeliveryTo:      msg.To,
		NotificationDeliverySubject: msg.Subject,
		NotificationDeliveryText:    msg.Text,
		NotificationDeliveryStatus:  status,
	}
	if cause != nil {
		s := cause.Error()
		row.NotificationDeliveryError = &s
	}
	if len(msg.Meta) > 0 {
		if b, err := sonic.Marshal(msg.Meta); err == nil {
			row.NotificationDeliveryMeta = datatypes.JSON(b)
		}
	}

	// the delivery context may already be spent
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.recorder.RecordDelivery(ctx, row); err != nil {
		log.Printf("[ERROR] record notification %s for %s: %v", msg.Kind, msg.UserID, err)
	}
}
