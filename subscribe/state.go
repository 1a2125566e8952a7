// Package subscribe implements the newsletter sign-up: a small state machine
// for one form and a client that relays the address to the collecting
// endpoint.
package subscribe

// Messages shown for a settled submission.
const (
	SuccessMessage = "Thanks for subscribing!"
	FailureMessage = "Error subscribing"
)

// State is the result of a form submission. It is one of Idle, Submitting,
// Success or Failed.
type State interface {
	isState()
}

// Idle is a form that has not been submitted.
type Idle struct{}

// Submitting is a form waiting on the endpoint. Previous is the last settled
// state, which stays on screen until the new outcome arrives.
type Submitting struct {
	Previous State
}

// Success means the endpoint accepted the request.
type Success struct{}

// Failed means the request never completed. Reason is for logs only.
type Failed struct {
	Reason error
}

func (Idle) isState()       {}
func (Submitting) isState() {}
func (Success) isState()    {}
func (Failed) isState()     {}

// Settled unwraps a Submitting state to the outcome shown while it is pending.
func Settled(s State) State {
	for {
		sub, ok := s.(Submitting)
		if !ok {
			break
		}
		s = sub.Previous
	}
	if s == nil {
		return Idle{}
	}
	return s
}

// Message returns the text displayed for s, or "" when nothing is shown.
func Message(s State) string {
	switch Settled(s).(type) {
	case Success:
		return SuccessMessage
	case Failed:
		return FailureMessage
	default:
		return ""
	}
}

// Outcome names a settled state for metrics and flash storage.
func Outcome(s State) string {
	switch Settled(s).(type) {
	case Success:
		return "success"
	case Failed:
		return "fail"
	default:
		return ""
	}
}

// FromOutcome is the inverse of Outcome. The reason of a failure is not kept.
func FromOutcome(o string) State {
	switch o {
	case "success":
		return Success{}
	case "fail":
		return Failed{}
	default:
		return Idle{}
	}
}
