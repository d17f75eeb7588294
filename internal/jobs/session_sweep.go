package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/agriconnect/whatsapp-backend/internal/storage"
	"github.com/agriconnect/whatsapp-backend/pkg/logger"
)

// SessionSweepJob removes conversations that have been idle longer than idleFor.
type SessionSweepJob struct {
	sweeper  storage.SessionSweeper
	idleFor  time.Duration
	interval time.Duration
	logger   *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSessionSweepJob creates a sweep job. interval defaults to idleFor/4, at least a minute.
func NewSessionSweepJob(sweeper storage.SessionSweeper, idleFor, interval time.Duration, log *logger.Logger) *SessionSweepJob {
	if interval <= 0 {
		interval = idleFor / 4
		if interval < time.Minute {
			interval = time.Minute
		}
	}
	return &SessionSweepJob{
		sweeper:  sweeper,
		idleFor:  idleFor,
		interval: interval,
		logger:   logger.OrGlobal(log),
	}
}

// Start begins sweeping in the background
func (j *SessionSweepJob) Start() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.cancel != nil {
		j.logger.Info("session sweep already running")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	j.cancel = cancel
	j.done = make(chan struct{})

	j.logger.Info("starting session sweep",
		zap.Duration("idle_for", j.idleFor),
		zap.Duration("interval", j.interval),
	)
	go j.loop(ctx, j.done)
}

// Stop halts the job and waits for an in-flight sweep to finish
func (j *SessionSweepJob) Stop() {
	j.mu.Lock()
	cancel, done := j.cancel, j.done
	j.cancel, j.done = nil, nil
	j.mu.Unlock()

	if cancel == nil {
		return
	}
	j.logger.Info("stopping session sweep")
	cancel()
	<-done
}

func (j *SessionSweepJob) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := j.RunOnce(ctx); err != nil && ctx.Err() == nil {
				j.logger.Error("session sweep failed", zap.Error(err))
			}
		}
	}
}

// RunOnce performs a single sweep and returns how many sessions were removed.
func (j *SessionSweepJob) RunOnce(ctx context.Context) (int, error) {
	n, err := j.sweeper.Sweep(ctx, j.idleFor)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		j.logger.Info("idle sessions removed", zap.Int("count", n))
	}
	return n, nil
}
