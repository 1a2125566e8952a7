package subscribe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func endpoint(t *testing.T, status int, got *atomic.Int32, email *atomic.Value) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Add(1)
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("not multipart: %v", err)
		}
		email.Store(r.FormValue("email"))
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSubmitSuccess(t *testing.T) {
	var calls atomic.Int32
	var email atomic.Value
	srv := endpoint(t, http.StatusOK, &calls, &email)

	f := NewForm(NewClient(srv.URL), nil)
	st := f.Submit(context.Background(), "a@b.co")

	assert.Equal(t, Success{}, st)
	assert.Equal(t, "Thanks for subscribing!", f.Message())
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "a@b.co", email.Load())
}

func TestSubmitErrorStatusStillSucceeds(t *testing.T) {
	var calls atomic.Int32
	var email atomic.Value
	srv := endpoint(t, http.StatusInternalServerError, &calls, &email)

	f := NewForm(NewClient(srv.URL), nil)
	assert.Equal(t, Success{}, f.Submit(context.Background(), ""))
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "", email.Load())
}

func TestSubmitTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	core, logs := observer.New(zapcore.ErrorLevel)
	f := NewForm(NewClient(url), zap.New(core))
	st := f.Submit(context.Background(), "a@b.co")

	failed, ok := st.(Failed)
	require.True(t, ok, "state = %#v", st)
	assert.Error(t, failed.Reason)
	assert.Equal(t, "Error subscribing", f.Message())
	assert.Equal(t, 1, logs.FilterMessage("subscription failed").Len())
}

func TestSubmitCancelledContext(t *testing.T) {
	var calls atomic.Int32
	var email atomic.Value
	srv := endpoint(t, http.StatusOK, &calls, &email)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	st := NewForm(NewClient(srv.URL), nil).Submit(ctx, "a@b.co")
	assert.IsType(t, Failed{}, st)
}

func TestSubmitKeepsPreviousOutcomeWhilePending(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	fail := true
	sub := SubscriberFunc(func(ctx context.Context, email string) error {
		if fail {
			return errors.New("offline")
		}
		close(entered)
		<-release
		return nil
	})
	f := NewForm(sub, nil)
	assert.Equal(t, Idle{}, f.State())
	assert.Empty(t, f.Message())

	f.Submit(context.Background(), "a@b.co")
	assert.Equal(t, "Error subscribing", f.Message())

	fail = false
	done := make(chan State)
	go func() { done <- f.Submit(context.Background(), "a@b.co") }()
	<-entered

	pending, ok := f.State().(Submitting)
	require.True(t, ok)
	assert.IsType(t, Failed{}, pending.Previous)
	assert.Equal(t, "Error subscribing", f.Message())

	close(release)
	assert.Equal(t, Success{}, <-done)
	assert.Equal(t, "Thanks for subscribing!", f.Message())
}

func TestMessage(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Idle{}, ""},
		{nil, ""},
		{Success{}, SuccessMessage},
		{Failed{Reason: errors.New("x")}, FailureMessage},
		{Submitting{Previous: Idle{}}, ""},
		{Submitting{Previous: Success{}}, SuccessMessage},
		{Submitting{Previous: Submitting{Previous: Failed{}}}, FailureMessage},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Message(tt.state), "Message(%#v)", tt.state)
	}
}

func TestOutcomeRoundTrip(t *testing.T) {
	for _, s := range []State{Idle{}, Success{}, Failed{}} {
		assert.Equal(t, Message(s), Message(FromOutcome(Outcome(s))))
	}
}

func TestDefaultEndpoint(t *testing.T) {
	assert.Equal(t, DefaultEndpoint, NewClient("").Endpoint())
}
