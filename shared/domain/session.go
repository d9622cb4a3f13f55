package domain

import "time"

// Session is the per-client server-side state passed explicitly into every gate operation.
// Mutations only mark the session; persisting it is the session manager's job.
type Session struct {
	Id        SessionId
	CreatedAt time.Time

	// LastSubmitAt is the time of the last delivered inquiry, zero if none.
	LastSubmitAt time.Time
	Admin        AdminSession

	modified  bool
	destroyed bool
	renew     bool
}

type AdminSession struct {
	Authenticated bool
	LoginAt       time.Time
}

func NewSession(id SessionId, now time.Time) *Session {
	return &Session{Id: id, CreatedAt: now}
}

func (s *Session) RecordSubmit(now time.Time) {
	s.LastSubmitAt = now
	s.modified = true
}

// SignIn authenticates the session and asks for a fresh id on commit.
func (s *Session) SignIn(now time.Time) {
	s.Admin = AdminSession{Authenticated: true, LoginAt: now}
	s.modified = true
	s.renew = true
}

// Destroy drops every value; the manager deletes the stored copy and expires the cookie.
func (s *Session) Destroy() {
	s.LastSubmitAt = time.Time{}
	s.Admin = AdminSession{}
	s.destroyed = true
}

func (s *Session) Modified() bool       { return s.modified }
func (s *Session) Destroyed() bool      { return s.destroyed }
func (s *Session) RenewRequested() bool { return s.renew }

// MarkCommitted resets the change flags once the manager has persisted the session.
func (s *Session) MarkCommitted() {
	s.modified = false
	s.destroyed = false
	s.renew = false
}
