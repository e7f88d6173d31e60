package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docmerge/internal/core/domain"
	"github.com/custodia-labs/docmerge/internal/core/ports/driven"
	"github.com/custodia-labs/docmerge/internal/core/ports/driving"
	"github.com/custodia-labs/docmerge/internal/logger"
)

// Ensure Session implements the interface.
var _ driving.SessionService = (*Session)(nil)

// Session owns the mutable state of one authoring session: the vector index
// of source content and the destination documents being assembled. Services
// receive the session explicitly and fail with domain.ErrNoActiveSession once
// it has ended.
type Session struct {
	mu           sync.RWMutex
	id           string
	startedAt    time.Time
	index        driven.VectorIndex
	destinations driven.DestinationStore
	ended        bool
}

// NewSession starts a session over the given index and destination store.
func NewSession(index driven.VectorIndex, destinations driven.DestinationStore) *Session {
	s := &Session{
		id:           uuid.New().String(),
		startedAt:    time.Now(),
		index:        index,
		destinations: destinations,
	}
	logger.Debug("session %s started", s.id)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// StartedAt returns when the session began.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// Active returns true until End is called.
func (s *Session) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.ended
}

// Index returns the session's vector index.
func (s *Session) Index() (driven.VectorIndex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ended {
		return nil, domain.ErrNoActiveSession
	}
	if s.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	return s.index, nil
}

// Destinations returns the session's destination store.
func (s *Session) Destinations() (driven.DestinationStore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ended {
		return nil, domain.ErrNoActiveSession
	}
	if s.destinations == nil {
		return nil, fmt.Errorf("%w: no destination store", domain.ErrNoActiveSession)
	}
	return s.destinations, nil
}

// Reset empties the index and removes every destination document.
func (s *Session) Reset(ctx context.Context) error {
	index, err := s.Index()
	if err != nil {
		return err
	}
	dest, err := s.Destinations()
	if err != nil {
		return err
	}
	if err := index.Reset(ctx); err != nil {
		return fmt.Errorf("reset index: %w", err)
	}
	if err := dest.Reset(ctx); err != nil {
		return fmt.Errorf("reset destinations: %w", err)
	}
	logger.Info("session %s reset", s.id)
	return nil
}

// End clears the index and destinations, then closes the session.
// Ending twice is a no-op.
func (s *Session) End(ctx context.Context) error {
	if !s.Active() {
		return nil
	}
	if err := s.Reset(ctx); err != nil {
		return err
	}
	return s.Close()
}

// Close deactivates the session and releases the index without clearing it,
// so persistent backends keep their contents for the next session.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return nil
	}
	s.ended = true
	logger.Debug("session %s closed", s.id)
	if s.index != nil {
		if err := s.index.Close(); err != nil {
			return fmt.Errorf("close index: %w", err)
		}
	}
	return nil
}
