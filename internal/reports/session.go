package reports

import "sync"

// Flash is a one-shot message shown on the next page render.
type Flash struct {
	Level   string `json:"level"` // success, info, error
	Message string `json:"message"`
}

// Session is the per-user state kept between requests.
type Session struct {
	// CurrentReport is the report the last generate or finalize produced. The
	// view always re-reads the datastore; the page reads this only to name the
	// report in its post-action flash. Regenerate clears it.
	CurrentReport *Report
	// Regenerating routes the view to the generate path even while a draft exists.
	Regenerating bool
	// Generating is set while a Generate call for the user is running.
	Generating bool
	Flash      *Flash
}

// SessionStore holds Session values keyed by user id.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionStore constructs an empty SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Get returns a copy of the user's session.
func (s *SessionStore) Get(userID string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return Session{}
	}
	out := *sess
	if sess.CurrentReport != nil {
		rep := cloneReport(*sess.CurrentReport)
		out.CurrentReport = &rep
	}
	if sess.Flash != nil {
		f := *sess.Flash
		out.Flash = &f
	}
	return out
}

// SetCurrent caches rep and ends any regeneration in progress.
func (s *SessionStore) SetCurrent(userID string, rep Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sessionLocked(userID)
	rep = cloneReport(rep)
	sess.CurrentReport = &rep
	sess.Regenerating = false
}

// BeginRegenerate drops the cached report and routes the view to the
// generate path.
func (s *SessionStore) BeginRegenerate(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sessionLocked(userID)
	sess.CurrentReport = nil
	sess.Regenerating = true
}

// TryBeginGenerate marks a generation as running. It returns false when one
// is already running for the user.
func (s *SessionStore) TryBeginGenerate(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sessionLocked(userID)
	if sess.Generating {
		return false
	}
	sess.Generating = true
	return true
}

// EndGenerate clears the mark set by TryBeginGenerate.
func (s *SessionStore) EndGenerate(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[userID]; ok {
		sess.Generating = false
	}
}

// SetFlash stores a message for the next render.
func (s *SessionStore) SetFlash(userID, level, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionLocked(userID).Flash = &Flash{Level: level, Message: message}
}

// PopFlash returns and clears the pending message.
func (s *SessionStore) PopFlash(userID string) *Flash {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok || sess.Flash == nil {
		return nil
	}
	f := sess.Flash
	sess.Flash = nil
	return f
}

func (s *SessionStore) sessionLocked(userID string) *Session {
	sess, ok := s.sessions[userID]
	if !ok {
		sess = &Session{}
		s.sessions[userID] = sess
	}
	return sess
}
