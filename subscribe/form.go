package subscribe

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Subscriber relays an address to wherever subscriptions are collected.
type Subscriber interface {
	Subscribe(ctx context.Context, email string) error
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(ctx context.Context, email string) error

// Subscribe calls f.
func (f SubscriberFunc) Subscribe(ctx context.Context, email string) error {
	return f(ctx, email)
}

// Form tracks the submission state of one subscription form.
type Form struct {
	mu    sync.Mutex
	state State
	sub   Subscriber
	log   *zap.Logger
}

// NewForm returns an Idle form that submits through sub.
func NewForm(sub Subscriber, log *zap.Logger) *Form {
	if log == nil {
		log = zap.NewNop()
	}
	return &Form{state: Idle{}, sub: sub, log: log}
}

// State returns the current state.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Message returns the text currently displayed under the form.
func (f *Form) Message() string {
	return Message(f.State())
}

// Submit sends email once and settles the form to Success or Failed. Any
// completed response counts as success; only transport errors fail. The
// address is not validated here.
func (f *Form) Submit(ctx context.Context, email string) State {
	f.mu.Lock()
	f.state = Submitting{Previous: Settled(f.state)}
	f.mu.Unlock()

	var next State = Success{}
	if err := f.sub.Subscribe(ctx, email); err != nil {
		f.log.Error("subscription failed", zap.Error(err))
		next = Failed{Reason: err}
	}

	f.mu.Lock()
	f.state = next
	f.mu.Unlock()
	return next
}
