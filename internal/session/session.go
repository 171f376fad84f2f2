// Package session tracks the per-auditor workflow state between requests:
// who is logged in, which associate is being audited and how far the
// submission gating has progressed.
package session

import (
	"sync"

	"qualityaudit/internal/directory"
)

// State is one auditor's workflow state. Safe for concurrent use.
type State struct {
	mu sync.RWMutex

	loggedIn    bool
	auditorName string

	associate     *directory.Associate
	entityChecked *bool
	emailSent     bool
	formSubmitted bool
}

// New returns an empty, logged-out state.
func New() *State {
	return &State{}
}

// Login records the auditor identity and resets any in-flight audit.
func (s *State) Login(auditorName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loggedIn = true
	s.auditorName = auditorName
	s.resetAuditLocked()
}

// Logout clears everything.
func (s *State) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loggedIn = false
	s.auditorName = ""
	s.resetAuditLocked()
}

// LoggedIn reports whether an auditor is logged in.
func (s *State) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggedIn
}

// AuditorName returns the logged-in auditor's name.
func (s *State) AuditorName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.auditorName
}

// SetAssociate records the resolved associate for the audit in progress
// and invalidates the downstream gating steps.
func (s *State) SetAssociate(a directory.Associate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.associate = &a
	s.entityChecked = nil
	s.emailSent = false
	s.formSubmitted = false
}

// Associate returns the associate under audit, or false when none is set.
func (s *State) Associate() (directory.Associate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.associate == nil {
		return directory.Associate{}, false
	}
	return *s.associate, true
}

// SetEntityChecked records the outcome of the duplicate check. The check
// is tri-state: not yet run, passed, or failed.
func (s *State) SetEntityChecked(passed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entityChecked = &passed
}

// EntityChecked returns the duplicate check outcome. The second value is
// false when the check has not run for the current audit.
func (s *State) EntityChecked() (passed, ran bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.entityChecked == nil {
		return false, false
	}
	return *s.entityChecked, true
}

// MarkEmailSent records that the feedback email step is done.
func (s *State) MarkEmailSent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emailSent = true
}

// EmailSent reports whether the feedback email step is done.
func (s *State) EmailSent() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.emailSent
}

// MarkSubmitted records that the audit record was stored.
func (s *State) MarkSubmitted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.formSubmitted = true
}

// Submitted reports whether the audit record was stored.
func (s *State) Submitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.formSubmitted
}

// ResetAudit clears the in-flight audit but keeps the login. Called after
// a successful submission to start the next audit clean.
func (s *State) ResetAudit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetAuditLocked()
}

func (s *State) resetAuditLocked() {
	s.associate = nil
	s.entityChecked = nil
	s.emailSent = false
	s.formSubmitted = false
}
