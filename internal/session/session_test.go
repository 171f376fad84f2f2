package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"qualityaudit/internal/directory"
)

func TestLoginLogout(t *testing.T) {
	s := New()
	assert.False(t, s.LoggedIn())

	s.Login("QA One")
	assert.True(t, s.LoggedIn())
	assert.Equal(t, "QA One", s.AuditorName())

	s.Logout()
	assert.False(t, s.LoggedIn())
	assert.Empty(t, s.AuditorName())
}

func TestEntityCheckTriState(t *testing.T) {
	s := New()
	s.Login("QA One")

	_, ran := s.EntityChecked()
	assert.False(t, ran)

	s.SetEntityChecked(true)
	passed, ran := s.EntityChecked()
	assert.True(t, ran)
	assert.True(t, passed)

	s.SetEntityChecked(false)
	passed, ran = s.EntityChecked()
	assert.True(t, ran)
	assert.False(t, passed)
}

func TestSetAssociateInvalidatesGating(t *testing.T) {
	s := New()
	s.Login("QA One")
	s.SetEntityChecked(true)
	s.MarkEmailSent()

	s.SetAssociate(directory.Associate{Email: "alice@example.com"})

	_, ran := s.EntityChecked()
	assert.False(t, ran, "switching associate must rerun the entity check")
	assert.False(t, s.EmailSent())

	a, ok := s.Associate()
	assert.True(t, ok)
	assert.Equal(t, "alice@example.com", a.Email)
}

func TestResetAuditKeepsLogin(t *testing.T) {
	s := New()
	s.Login("QA One")
	s.SetAssociate(directory.Associate{Email: "alice@example.com"})
	s.SetEntityChecked(true)
	s.MarkEmailSent()
	s.MarkSubmitted()

	s.ResetAudit()

	assert.True(t, s.LoggedIn())
	_, ok := s.Associate()
	assert.False(t, ok)
	assert.False(t, s.EmailSent())
	assert.False(t, s.Submitted())
}
