package advisor

import (
	"context"
	"testing"

	"northstar/internal/api"
)

type fakeInterviewer struct {
	start   api.OnboardingReply
	replies []api.OnboardingReply
	turn    int
}

func (f *fakeInterviewer) StartOnboarding(ctx context.Context) (api.OnboardingReply, error) {
	return f.start, nil
}

func (f *fakeInterviewer) OnboardingChat(ctx context.Context, message string) (api.OnboardingReply, error) {
	rep := f.replies[f.turn]
	f.turn++
	return rep, nil
}

func TestOnboarding_GatesUntilCredential(t *testing.T) {
	ob := NewOnboarding(&fakeInterviewer{}, false)
	if ob.State() != StateCollectingCredential {
		t.Fatalf("expected collecting-credential state")
	}
	if _, err := ob.Begin(context.Background()); err == nil {
		t.Fatalf("interview must not start without a credential")
	}
	ob.CredentialProvided()
	if ob.State() != StateInterviewing {
		t.Fatalf("credential should unlock the interview")
	}
}

func TestOnboarding_InterviewRunsToComplete(t *testing.T) {
	f := &fakeInterviewer{
		start: api.OnboardingReply{Message: "What do you want to work on?", Turn: 1},
		replies: []api.OnboardingReply{
			{Message: "Tell me more.", Turn: 2},
			{Message: "Created your goals!", Turn: 3, Done: true, GoalsCreated: 2},
		},
	}
	ob := NewOnboarding(f, true)

	opening, err := ob.Begin(context.Background())
	if err != nil || opening == "" {
		t.Fatalf("begin: %v", err)
	}
	if _, err := ob.Reply(context.Background(), "sleep better"); err != nil {
		t.Fatalf("reply 1: %v", err)
	}
	if ob.Complete() {
		t.Fatalf("interview completed too early")
	}
	rep, err := ob.Reply(context.Background(), "and run more")
	if err != nil {
		t.Fatalf("reply 2: %v", err)
	}
	if !rep.Done || rep.GoalsCreated != 2 || !ob.Complete() {
		t.Fatalf("interview should be complete: %+v state=%v", rep, ob.State())
	}
	// Further replies are rejected once complete.
	if _, err := ob.Reply(context.Background(), "extra"); err == nil {
		t.Fatalf("reply after completion must error")
	}
}

func TestOnboarding_SkipUnlocksAdvisor(t *testing.T) {
	ob := NewOnboarding(&fakeInterviewer{}, true)
	ob.Skip()
	if !ob.Complete() {
		t.Fatalf("skip should complete onboarding")
	}
}
