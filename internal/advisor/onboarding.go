package advisor

import (
	"context"
	"fmt"
	"sync"

	"northstar/internal/api"
)

// OnboardingState tracks the gating track that runs before the advisor
// becomes available.
type OnboardingState int

const (
	// StateCollectingCredential waits for a usable API credential.
	StateCollectingCredential OnboardingState = iota
	// StateInterviewing runs the goal-setting interview.
	StateInterviewing
	// StateComplete unlocks the advisor.
	StateComplete
)

// Interviewer is the slice of the API client onboarding needs.
type Interviewer interface {
	StartOnboarding(ctx context.Context) (api.OnboardingReply, error)
	OnboardingChat(ctx context.Context, message string) (api.OnboardingReply, error)
}

// Onboarding drives the collecting-credential → interviewing → complete
// track. It gates the advisor state machine: no exchange runs until the
// track completes.
type Onboarding struct {
	client Interviewer

	mu    sync.Mutex
	state OnboardingState
	turn  int
}

func NewOnboarding(client Interviewer, haveCredential bool) *Onboarding {
	st := StateCollectingCredential
	if haveCredential {
		st = StateInterviewing
	}
	return &Onboarding{client: client, state: st}
}

func (o *Onboarding) State() OnboardingState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Onboarding) Complete() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state == StateComplete
}

// CredentialProvided moves past credential collection once a usable
// credential exists.
func (o *Onboarding) CredentialProvided() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateCollectingCredential {
		o.state = StateInterviewing
	}
}

// Skip marks onboarding complete without an interview, used when the
// user already has goals on the server.
func (o *Onboarding) Skip() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = StateComplete
}

// Begin starts the interview and returns the opening question. Turns
// are serialized; the interview holds no more than one at a time.
func (o *Onboarding) Begin(ctx context.Context) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateInterviewing {
		return "", fmt.Errorf("onboarding not ready to interview")
	}
	rep, err := o.client.StartOnboarding(ctx)
	if err != nil {
		return "", fmt.Errorf("start onboarding: %w", err)
	}
	o.turn = rep.Turn
	if rep.Done {
		o.state = StateComplete
	}
	return rep.Message, nil
}

// Reply sends one interview turn. When the server reports done, the
// track completes and the advisor unlocks.
func (o *Onboarding) Reply(ctx context.Context, text string) (api.OnboardingReply, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateInterviewing {
		return api.OnboardingReply{}, fmt.Errorf("onboarding not interviewing")
	}
	rep, err := o.client.OnboardingChat(ctx, text)
	if err != nil {
		return api.OnboardingReply{}, fmt.Errorf("onboarding chat: %w", err)
	}
	o.turn = rep.Turn
	if rep.Done {
		o.state = StateComplete
	}
	return rep, nil
}
