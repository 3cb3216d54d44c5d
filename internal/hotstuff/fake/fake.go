// Package fake provides a no-op hotstuff.Service test double so
// internal/node can be exercised without a real protocol implementation.
package fake

import (
	"context"
	"sync"

	"github.com/drep-project/robot/internal/hotstuff"
)

// Service records the InitialState it was started with and blocks until
// either ctx is cancelled or Stop is called.
type Service struct {
	mu       sync.Mutex
	started  bool
	initial  hotstuff.InitialState
	stop     chan struct{}
	stopOnce sync.Once
}

func New() *Service {
	return &Service{stop: make(chan struct{})}
}

func (s *Service) Start(ctx context.Context, initial hotstuff.InitialState) error {
	s.mu.Lock()
	s.started = true
	s.initial = initial
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stop:
		return nil
	}
}

func (s *Service) Stop() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

// Initial reports the state Start was invoked with, for test assertions.
func (s *Service) Initial() (hotstuff.InitialState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initial, s.started
}
