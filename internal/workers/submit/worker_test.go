package submit

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qualityaudit/internal/audit"
	"qualityaudit/internal/auditstore"
	"qualityaudit/internal/directory"
	"qualityaudit/internal/handler"
	obsmocks "qualityaudit/internal/observability/mocks"
	"qualityaudit/internal/scoring"
	"qualityaudit/internal/session"
	storagemocks "qualityaudit/internal/storage/mocks"
	storagetypes "qualityaudit/internal/storage/types"
)

const employeeCSV = `Work Email,Full Name,Reporting To,Department,LOB
alice@example.com,Alice Kumar,Dev Patel,Support,Voice
dev@example.com,Dev Patel,,Support,Voice
`

func testTable() *scoring.RuleTable {
	return &scoring.RuleTable{
		Parameters: []scoring.Parameter{
			{
				Name:     "Opening and Closing",
				MaxScore: 10,
				Rules: []scoring.Rule{
					{Reason: "Survey pitch", Deduction: 4},
				},
			},
			{
				Name:     "Correct and Complete Resolution",
				MaxScore: 10,
				Fatal:    true,
				Rules: []scoring.Rule{
					{Reason: "Incomplete resolution", Deduction: 10},
				},
			},
		},
	}
}

type fixture struct {
	worker   *Worker
	store    *auditstore.RecordStore
	mem      *storagemocks.MemoryStorage
	sessions *session.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mem := storagemocks.NewMemoryStorage()
	store := auditstore.NewRecordStore(mem, "quality-audits", "audit_", obsmocks.NopLogger{}, obsmocks.NopMetrics{})
	checker := auditstore.NewDuplicateChecker(store, obsmocks.NopLogger{})

	dir, err := directory.Load(strings.NewReader(employeeCSV))
	require.NoError(t, err)

	sessions := session.NewStore()
	worker := NewWorker(store, checker, scoring.NewEngine(testTable()), dir, sessions, obsmocks.NopLogger{}, obsmocks.NopMetrics{})
	worker.now = func() time.Time {
		return time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	}
	return &fixture{worker: worker, store: store, mem: mem, sessions: sessions}
}

// prime walks the auditor's session through the workflow steps that must
// precede a submission: associate selected, entity check passed, email sent.
func (f *fixture) prime(associateEmail string) {
	state := f.sessions.Session("QA One")
	state.Login("QA One")
	state.SetAssociate(directory.Associate{Email: associateEmail})
	state.SetEntityChecked(true)
	state.MarkEmailSent()
}

func validPayload() Payload {
	return Payload{
		AuditorName:    "QA One",
		AssociateEmail: "alice@example.com",
		Queue:          "Inbound",
		EntityID:       "TKT-1",
		AuditType:      "Regular Audit",
		Selections: scoring.Selection{
			"Opening and Closing": {"Survey pitch"},
		},
	}
}

func process(t *testing.T, w *Worker, payload Payload) handler.Response {
	t.Helper()
	req, err := handler.NewRequest("submit", payload)
	require.NoError(t, err)
	resp, err := w.Process(context.Background(), req)
	require.NoError(t, err)
	return resp
}

func TestProcess_StoresRecord(t *testing.T) {
	f := newFixture(t)
	f.prime("alice@example.com")

	resp := process(t, f.worker, validPayload())
	require.True(t, resp.Success, "unexpected error: %+v", resp.Error)

	var data ResultData
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, 16.0, data.TotalScore)
	assert.Equal(t, "16%", data.DisplayTag)
	assert.Contains(t, data.EmailSummary, "Alice Kumar")
	assert.Contains(t, data.GmailComposeURL, "alice%40example.com")

	records, err := f.store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "TKT-1", records[0].EntityID)
	assert.Equal(t, "Alice Kumar", records[0].AssociateName)
	assert.Equal(t, "Dev Patel", records[0].TeamLead)
	assert.True(t, records[0].EmailSent)
}

func TestProcess_FatalSelection(t *testing.T) {
	f := newFixture(t)
	f.prime("alice@example.com")

	payload := validPayload()
	payload.Selections = scoring.Selection{
		"Correct and Complete Resolution": {"Incomplete resolution"},
	}

	resp := process(t, f.worker, payload)
	require.True(t, resp.Success)

	var data ResultData
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.True(t, data.FatalError)
	assert.Equal(t, 0.0, data.TotalScore)
	assert.Equal(t, "Fatal", data.DisplayTag)
}

func TestProcess_ValidationFailures(t *testing.T) {
	f := newFixture(t)
	f.prime("alice@example.com")

	tests := []struct {
		name   string
		mutate func(*Payload)
	}{
		{"missing entity", func(p *Payload) { p.EntityID = "" }},
		{"missing audit type", func(p *Payload) { p.AuditType = "" }},
		{"missing auditor", func(p *Payload) { p.AuditorName = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validPayload()
			tt.mutate(&payload)

			resp := process(t, f.worker, payload)
			require.False(t, resp.Success)
			assert.Equal(t, handler.CodeValidationError, resp.Error.Code)
		})
	}
}

func TestProcess_WorkflowGating(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(*session.State)
	}{
		{
			"entity check not run",
			func(s *session.State) {
				s.MarkEmailSent()
			},
		},
		{
			"entity check failed",
			func(s *session.State) {
				s.SetEntityChecked(false)
				s.MarkEmailSent()
			},
		},
		{
			"email not sent",
			func(s *session.State) {
				s.SetEntityChecked(true)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			state := f.sessions.Session("QA One")
			state.Login("QA One")
			state.SetAssociate(directory.Associate{Email: "alice@example.com"})
			tt.prepare(state)

			resp := process(t, f.worker, validPayload())
			require.False(t, resp.Success)
			assert.Equal(t, handler.CodeValidationError, resp.Error.Code)

			records, err := f.store.Load(context.Background())
			require.NoError(t, err)
			assert.Empty(t, records, "a gated submission must not be stored")
		})
	}
}

func TestProcess_ResubmitRequiresReset(t *testing.T) {
	f := newFixture(t)
	f.prime("alice@example.com")

	require.True(t, process(t, f.worker, validPayload()).Success)
	assert.True(t, f.sessions.Session("QA One").Submitted())

	// Same session, no reset: the already-submitted audit is rejected
	// before any storage access.
	resp := process(t, f.worker, validPayload())
	require.False(t, resp.Success)
	assert.Equal(t, handler.CodeValidationError, resp.Error.Code)

	// After resetting and walking the workflow again the submission
	// reaches the authoritative duplicate check.
	f.sessions.Session("QA One").ResetAudit()
	f.prime("alice@example.com")
	resp = process(t, f.worker, validPayload())
	require.False(t, resp.Success)
	assert.Equal(t, handler.CodeDuplicateEntity, resp.Error.Code)
}

func TestProcess_UnknownAssociate(t *testing.T) {
	f := newFixture(t)
	f.prime("stranger@example.com")

	payload := validPayload()
	payload.AssociateEmail = "stranger@example.com"

	resp := process(t, f.worker, payload)
	require.False(t, resp.Success)
	assert.Equal(t, handler.CodeAssociateNotFound, resp.Error.Code)
}

func TestProcess_DuplicateRejected(t *testing.T) {
	f := newFixture(t)
	f.prime("alice@example.com")

	first := process(t, f.worker, validPayload())
	require.True(t, first.Success)

	f.prime("alice@example.com")
	second := process(t, f.worker, validPayload())
	require.False(t, second.Success)
	assert.Equal(t, handler.CodeDuplicateEntity, second.Error.Code)
	assert.False(t, second.Error.Retryable)

	records, err := f.store.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestProcess_SameEntityDifferentAssociate(t *testing.T) {
	f := newFixture(t)
	f.prime("alice@example.com")

	require.True(t, process(t, f.worker, validPayload()).Success)

	f.prime("dev@example.com")
	other := validPayload()
	other.AssociateEmail = "dev@example.com"
	resp := process(t, f.worker, other)
	assert.True(t, resp.Success, "same entity for another associate is not a duplicate")
}

func TestProcess_UnknownReason(t *testing.T) {
	f := newFixture(t)
	f.prime("alice@example.com")

	payload := validPayload()
	payload.Selections = scoring.Selection{
		"Opening and Closing": {"Invented reason"},
	}

	resp := process(t, f.worker, payload)
	require.False(t, resp.Success)
	assert.Equal(t, handler.CodeUnknownReason, resp.Error.Code)
}

func TestProcess_UnreachableStore(t *testing.T) {
	f := newFixture(t)
	f.prime("alice@example.com")
	f.mem.FailWith = storagetypes.ErrUnreachable

	resp := process(t, f.worker, validPayload())
	require.False(t, resp.Success)
	assert.Equal(t, handler.CodeStorageUnavailable, resp.Error.Code)
	assert.True(t, resp.Error.Retryable)
}

func TestProcess_RecordFieldsRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.prime("alice@example.com")

	payload := validPayload()
	payload.ZTPViolation = true

	resp := process(t, f.worker, payload)
	require.True(t, resp.Success)

	records, err := f.store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.True(t, r.ZTPViolation)
	require.NotNil(t, r.TotalScore)
	assert.Equal(t, 0.0, *r.TotalScore)
	require.NotNil(t, r.AuditDate)
	assert.Equal(t, "2026-07-01", r.AuditDate.Format(audit.DateLayout))
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.worker.Health(context.Background()))

	f.mem.FailWith = storagetypes.ErrUnreachable
	assert.Error(t, f.worker.Health(context.Background()))
}
