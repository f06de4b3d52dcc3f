package bot

import (
	"log"
	"sync"
	"time"

	"sync-bot/syncer"
)

// Scheduler owns the background confirmation expiry work: a one-shot
// restore of timers lost across restarts, then a periodic sweep that
// catches anything a timer missed.
type Scheduler struct {
	punish        *syncer.PunishmentSync
	sweepInterval time.Duration
	done          chan struct{}
	wg            sync.WaitGroup
}

func NewScheduler(punish *syncer.PunishmentSync, sweepInterval time.Duration) *Scheduler {
	return &Scheduler{
		punish:        punish,
		sweepInterval: sweepInterval,
		done:          make(chan struct{}),
	}
}

// Start begins all scheduled tasks.
func (s *Scheduler) Start() {
	if err := s.punish.RestorePending(); err != nil {
		log.Printf("Failed to restore pending confirmations: %v", err)
	}

	s.wg.Add(1)
	go s.startExpirySweep()
}

// Stop terminates all scheduled tasks gracefully.
func (s *Scheduler) Stop() {
	log.Println("Stopping scheduler...")
	close(s.done)
	s.wg.Wait()
	log.Println("Scheduler stopped.")
}

func (s *Scheduler) startExpirySweep() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.punish.SweepOverdue()
		case <-s.done:
			return
		}
	}
}
