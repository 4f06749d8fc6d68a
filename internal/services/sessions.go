package services

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"neuromind/internal/models"
)

// ErrSessionNotFound is returned for operations against an unknown or
// already-reset session.
var ErrSessionNotFound = errors.New("session not found")

// SessionService keeps every study session in memory for its lifetime.
// Nothing is persisted: a session exists from upload until it is replaced or
// explicitly reset. The lock only guards the map across sessions; a single
// session is never touched concurrently by its owner.
type SessionService struct {
	mu       sync.RWMutex
	sessions map[string]*models.StudySession
}

func NewSessionService() *SessionService {
	return &SessionService{
		sessions: make(map[string]*models.StudySession),
	}
}

// Create registers a new session for a freshly processed document.
func (m *SessionService) Create(name, fullText string, headings []string, pageCount int) *models.StudySession {
	now := time.Now().UTC()
	session := &models.StudySession{
		ID:        uuid.NewString(),
		Name:      name,
		FullText:  fullText,
		Headings:  append([]string(nil), headings...),
		PageCount: pageCount,
		CreatedAt: now,
		UpdatedAt: now,
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	return cloneSession(session)
}

// Get returns a snapshot of the session; mutating it does not affect the store.
func (m *SessionService) Get(id string) (*models.StudySession, bool) {
	m.mu.RLock()
	session, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return cloneSession(session), true
}

// Delete resets a session, discarding all of its state.
func (m *SessionService) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

// SetQuestions replaces the session's current quiz.
func (m *SessionService) SetQuestions(id string, questions []models.Question) {
	m.withSession(id, func(session *models.StudySession) {
		session.Questions = append([]models.Question(nil), questions...)
	})
}

// AppendChat appends turns to the session's conversation history.
func (m *SessionService) AppendChat(id string, turns ...models.ChatTurn) {
	m.withSession(id, func(session *models.StudySession) {
		session.Chat = append(session.Chat, turns...)
	})
}

func (m *SessionService) withSession(id string, fn func(session *models.StudySession)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return
	}
	fn(session)
	session.UpdatedAt = time.Now().UTC()
}

// cloneSession copies a session so callers cannot mutate stored state.
func cloneSession(session *models.StudySession) *models.StudySession {
	copySession := *session
	copySession.Headings = append([]string(nil), session.Headings...)
	copySession.Questions = append([]models.Question(nil), session.Questions...)
	copySession.Chat = append([]models.ChatTurn(nil), session.Chat...)
	return &copySession
}
