package audit

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"qualityaudit/internal/directory"
	"qualityaudit/internal/scoring"
)

// FormInput carries the auditor's free-form and classification fields.
type FormInput struct {
	Queue         string
	CallDate      string
	CallingNumber string
	EntityID      string
	AuditType     string
	CallDuration  string
	HoldDuration  string
	CallLink      string
	Observations  string
	IssueVOC      string
	Resolution    string
}

// Validate checks the fields a submission cannot do without.
func (f *FormInput) Validate() error {
	var missing []string
	if strings.TrimSpace(f.EntityID) == "" {
		missing = append(missing, "entity id")
	}
	if strings.TrimSpace(f.AuditType) == "" {
		missing = append(missing, "audit type")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// BuildRecord assembles the immutable audit record from the resolved
// associate, the auditor identity, the form fields and the scoring result.
// It performs no I/O; the clock is injected so records are reproducible in
// tests.
func BuildRecord(assoc directory.Associate, auditorName string, form FormInput, result *scoring.Result, now time.Time) *Record {
	auditDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	displayScore := result.DisplayScore()

	record := &Record{
		Name: NewRecordName(now),

		Queue:         form.Queue,
		CallDate:      form.CallDate,
		CallingNumber: form.CallingNumber,
		EntityID:      strings.TrimSpace(form.EntityID),

		AuditDate: &auditDate,

		AssociateEmail:  assoc.Email,
		TeamLeaderEmail: assoc.TeamLeadEmail,
		AuditType:       form.AuditType,
		AssociateName:   assoc.Name,
		TeamLead:        assoc.TeamLead,
		LOB:             assoc.LOB,
		Department:      assoc.Department,
		AuditorName:     auditorName,

		CallDuration: form.CallDuration,
		HoldDuration: form.HoldDuration,
		CallLink:     form.CallLink,

		ZTPViolation: result.ZTPViolation,
		FatalError:   result.FatalError,
		TotalScore:   &displayScore,

		Observations: form.Observations,
		IssueVOC:     form.IssueVOC,
		Resolution:   form.Resolution,

		EmailSent:      true,
		EmailTimestamp: now.Format(TimestampLayout),
	}

	for _, pr := range result.Parameters {
		score := pr.Score
		record.Parameters = append(record.Parameters, ParameterEntry{
			Parameter: pr.Parameter,
			Reasons:   pr.Selected,
			Score:     &score,
		})
	}

	return record
}

// NewRecordName generates a storage key for a new record: a timestamp
// prefix for rough chronological listing plus a random suffix. Collisions
// are treated as negligible, not formally prevented.
func NewRecordName(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:6]
	return fmt.Sprintf("audit_%s_%s.json", now.Format("20060102_150405"), suffix)
}
