package usecase

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xavierca1/ligue-leads/internal/infra/metrics"
)

// ControllerFactory builds the controller of a new form session.
type ControllerFactory func() *FormController

type session struct {
	controller *FormController
	lastSeen   time.Time
}

// SessionStore keeps the open form sessions in memory, keyed by a random id
// handed to the browser.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	factory  ControllerFactory
	now      func() time.Time
}

func NewSessionStore(factory ControllerFactory) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*session),
		factory:  factory,
		now:      time.Now,
	}
}

func (s *SessionStore) Open() (string, *FormController) {
	id := uuid.New().String()
	c := s.factory()

	s.mu.Lock()
	s.sessions[id] = &session{controller: c, lastSeen: s.now()}
	n := len(s.sessions)
	s.mu.Unlock()

	metrics.SetActiveSessions(n)
	return id, c
}

// Get returns the session controller and refreshes its idle clock.
func (s *SessionStore) Get(id string) (*FormController, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, &DomainError{
			Code:    CodeSessionNotFound,
			Message: "sessão de formulário não encontrada",
		}
	}
	sess.lastSeen = s.now()
	return sess.controller, nil
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than idle. Pending auto-saves of
// evicted sessions are flushed first so no typed data is lost.
func (s *SessionStore) Sweep(idle time.Duration) int {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	var evicted []*FormController
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			evicted = append(evicted, sess.controller)
			delete(s.sessions, id)
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	for _, c := range evicted {
		c.FlushAutosave()
	}
	metrics.SetActiveSessions(n)
	return len(evicted)
}

// FlushAll runs every pending auto-save, used on shutdown.
func (s *SessionStore) FlushAll() {
	s.mu.Lock()
	controllers := make([]*FormController, 0, len(s.sessions))
	for _, sess := range s.sessions {
		controllers = append(controllers, sess.controller)
	}
	s.mu.Unlock()

	for _, c := range controllers {
		c.FlushAutosave()
	}
}
