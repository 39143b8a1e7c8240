// Package workers contains the long-lived background workers of the engine
// and the Supervisor that keeps them alive.
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"colosseum/contract"
	apperrors "colosseum/errors"
)

const defaultRestartInterval = 200 * time.Millisecond

// Supervisor runs each worker in a goroutine, recovers panics, restarts
// failed workers after a delay and waits for all of them on shutdown.
// A failure in one worker must not stop the supervisor itself.
type Supervisor struct {
	wg              *sync.WaitGroup
	log             *slog.Logger
	restartInterval time.Duration
	workers         []contract.Worker
}

func NewSupervisor(log *slog.Logger, restartInterval time.Duration) *Supervisor {
	if restartInterval <= 0 {
		restartInterval = defaultRestartInterval
	}
	return &Supervisor{wg: &sync.WaitGroup{}, log: log, restartInterval: restartInterval}
}

func (s *Supervisor) Add(worker ...contract.Worker) contract.ISupervisor {
	s.workers = append(s.workers, worker...)
	return s
}

// Run starts every registered worker and blocks until the context is
// canceled and all workers have returned.
func (s *Supervisor) Run(ctx context.Context) {
	for _, worker := range s.workers {
		s.start(ctx, worker)
	}
	s.wg.Wait()
}

func (s *Supervisor) start(ctx context.Context, worker contract.Worker) {
	s.wg.Add(1)
	workerName := contract.GetWorkerName(worker)

	go func() {
		defer s.wg.Done()

		for {
			if ctx.Err() != nil {
				s.log.Info(fmt.Sprintf("Stopping : %s", workerName))
				return
			}

			err := func() (err error) {
				defer func() {
					if r := recover(); r != nil {
						s.log.Error("worker panicked", slog.String("worker", workerName), slog.Any("panic", r))
						err = apperrors.ErrWorkerPanic
					}
				}()
				return worker.Run(ctx)
			}()

			if err == nil {
				// Terminated properly, never restart.
				s.log.Info(fmt.Sprintf("Worker finished : %s", workerName))
				return
			}
			if ctx.Err() != nil {
				return
			}

			s.log.Warn("restarting worker", slog.String("worker", workerName), slog.Any("err", err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.restartInterval):
			}
		}
	}()
}
