package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler pushes the morning briefing on a cron schedule.
type Scheduler struct {
	cron      *cron.Cron
	ctx       context.Context
	cancel    context.CancelFunc
	spec      string
	briefFunc func(ctx context.Context) error
}

func New(spec string) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		ctx:    ctx,
		cancel: cancel,
		spec:   spec,
	}
}

// SetBriefingFunc sets the function invoked on schedule.
func (s *Scheduler) SetBriefingFunc(f func(ctx context.Context) error) {
	s.briefFunc = f
}

func (s *Scheduler) Start() error {
	if s.briefFunc == nil || s.spec == "" {
		log.Println("⚠️ Briefing push disabled (no schedule or no target)")
		return nil
	}

	_, err := s.cron.AddFunc(s.spec, func() {
		log.Printf("🕘 Triggered scheduled briefing push (%s UTC)", s.spec)
		if err := s.briefFunc(s.ctx); err != nil {
			log.Printf("❌ Scheduled briefing push failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("📅 Scheduler started - briefing push at %q UTC", s.spec)
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	log.Println("📅 Scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
