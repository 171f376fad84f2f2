// Package submit implements the audit submission worker: it gates,
// scores and persists one audit per request.
package submit

import (
	"context"
	"errors"
	"time"

	"qualityaudit/internal/audit"
	"qualityaudit/internal/auditstore"
	"qualityaudit/internal/directory"
	"qualityaudit/internal/handler"
	obs "qualityaudit/internal/observability/types"
	"qualityaudit/internal/scoring"
	"qualityaudit/internal/session"
	storagetypes "qualityaudit/internal/storage/types"
)

// Payload is the submission request body.
type Payload struct {
	AuditorName    string `json:"auditor_name"`
	AssociateEmail string `json:"associate_email"`

	Queue         string `json:"queue"`
	CallDate      string `json:"call_date"`
	CallingNumber string `json:"calling_number"`
	EntityID      string `json:"entity_id"`
	AuditType     string `json:"audit_type"`
	CallDuration  string `json:"call_duration"`
	HoldDuration  string `json:"hold_duration"`
	CallLink      string `json:"call_link"`

	// Selections maps parameter name to the chosen reasons. An absent
	// parameter counts as compliant.
	Selections scoring.Selection `json:"selections"`

	ZTPViolation bool `json:"ztp_violation"`

	Observations string `json:"observations"`
	IssueVOC     string `json:"issue_voc"`
	Resolution   string `json:"resolution"`
}

// ResultData is the submission response body.
type ResultData struct {
	RecordName   string  `json:"record_name"`
	TotalScore   float64 `json:"total_score"`
	DisplayTag   string  `json:"display_tag"`
	FatalError   bool    `json:"fatal_error"`
	ZTPViolation bool    `json:"ztp_violation"`

	EmailSummary    string `json:"email_summary"`
	GmailComposeURL string `json:"gmail_compose_url"`
}

// Worker persists scored audit records.
type Worker struct {
	store     *auditstore.RecordStore
	checker   *auditstore.DuplicateChecker
	engine    *scoring.Engine
	directory *directory.Directory
	sessions  *session.Store
	logger    obs.Logger
	metrics   obs.Metrics
	now       func() time.Time
}

// NewWorker creates the submission worker.
func NewWorker(
	store *auditstore.RecordStore,
	checker *auditstore.DuplicateChecker,
	engine *scoring.Engine,
	dir *directory.Directory,
	sessions *session.Store,
	logger obs.Logger,
	metrics obs.Metrics,
) *Worker {
	return &Worker{
		store:     store,
		checker:   checker,
		engine:    engine,
		directory: dir,
		sessions:  sessions,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
	}
}

// Name implements handler.Worker.
func (w *Worker) Name() string {
	return "submit"
}

// Process validates, gates, scores and stores one audit.
func (w *Worker) Process(ctx context.Context, request handler.Request) (handler.Response, error) {
	var payload Payload
	if err := request.Unmarshal(&payload); err != nil {
		w.logger.Error(ctx, "unparseable submission payload", err, obs.Fields{
			"request_id": request.ID,
		})
		return handler.NewErrorResponse(
			request.ID,
			handler.CodeInvalidRequest,
			"Failed to parse submission",
			err.Error(),
		), nil
	}

	form := audit.FormInput{
		Queue:         payload.Queue,
		CallDate:      payload.CallDate,
		CallingNumber: payload.CallingNumber,
		EntityID:      payload.EntityID,
		AuditType:     payload.AuditType,
		CallDuration:  payload.CallDuration,
		HoldDuration:  payload.HoldDuration,
		CallLink:      payload.CallLink,
		Observations:  payload.Observations,
		IssueVOC:      payload.IssueVOC,
		Resolution:    payload.Resolution,
	}
	if err := w.validate(&payload, &form); err != nil {
		return handler.NewErrorResponse(
			request.ID,
			handler.CodeValidationError,
			"Submission is incomplete",
			err.Error(),
		), nil
	}

	state := w.sessions.Session(payload.AuditorName)
	if err := checkWorkflow(state); err != nil {
		return handler.NewErrorResponse(
			request.ID,
			handler.CodeValidationError,
			"Submission is out of order",
			err.Error(),
		), nil
	}

	assoc, err := w.directory.Lookup(payload.AssociateEmail)
	if err != nil {
		return handler.NewErrorResponse(
			request.ID,
			handler.CodeAssociateNotFound,
			"Associate not found in the employee directory",
			payload.AssociateEmail,
		), nil
	}

	if err := w.checker.Check(ctx, payload.EntityID, assoc.Email); err != nil {
		if errors.Is(err, auditstore.ErrDuplicate) {
			return handler.NewErrorResponse(
				request.ID,
				handler.CodeDuplicateEntity,
				"This entity is already audited for this associate",
				payload.EntityID,
			), nil
		}
		return w.storageError(ctx, request.ID, "duplicate check failed", err), nil
	}

	result, err := w.engine.Evaluate(payload.Selections, payload.ZTPViolation)
	if err != nil {
		return handler.NewErrorResponse(
			request.ID,
			handler.CodeUnknownReason,
			"Selection does not match the scoring rules",
			err.Error(),
		), nil
	}

	record := audit.BuildRecord(assoc, payload.AuditorName, form, result, w.now())
	if err := w.store.Append(ctx, record); err != nil {
		return w.storageError(ctx, request.ID, "storing audit record failed", err), nil
	}
	state.MarkSubmitted()

	w.logger.Info(ctx, "audit submitted", obs.Fields{
		"record_name":     record.Name,
		"entity_id":       record.EntityID,
		"associate_email": record.AssociateEmail,
		"display_tag":     result.DisplayTag(),
	})

	return handler.NewSuccessResponse(request.ID, ResultData{
		RecordName:      record.Name,
		TotalScore:      result.DisplayScore(),
		DisplayTag:      result.DisplayTag(),
		FatalError:      result.FatalError,
		ZTPViolation:    result.ZTPViolation,
		EmailSummary:    audit.EmailSummary(record),
		GmailComposeURL: audit.GmailComposeURL(record),
	})
}

// validate applies the submission gates on top of the form's own checks.
func (w *Worker) validate(payload *Payload, form *audit.FormInput) error {
	if err := form.Validate(); err != nil {
		return err
	}
	if payload.AuditorName == "" {
		return errors.New("auditor name is required")
	}
	if payload.AssociateEmail == "" {
		return errors.New("associate email is required")
	}
	return nil
}

// checkWorkflow enforces the audit workflow recorded in the auditor's
// session: the entity check must have run and passed, the feedback email
// must be sent, and the audit must not already be submitted.
func checkWorkflow(state *session.State) error {
	if state.Submitted() {
		return errors.New("this audit is already submitted; reset the session to start a new one")
	}
	passed, ran := state.EntityChecked()
	if !ran {
		return errors.New("entity must be checked for duplicates before submitting")
	}
	if !passed {
		return errors.New("entity check failed; this entity is already audited")
	}
	if !state.EmailSent() {
		return errors.New("feedback email must be sent before submitting")
	}
	return nil
}

// Health checks that the record store is reachable.
func (w *Worker) Health(ctx context.Context) error {
	_, err := w.store.Load(ctx)
	return err
}

func (w *Worker) storageError(ctx context.Context, requestID, msg string, err error) handler.Response {
	if errors.Is(err, storagetypes.ErrUnreachable) {
		w.logger.Error(ctx, msg, err, obs.Fields{"request_id": requestID})
		return handler.NewErrorResponse(
			requestID,
			handler.CodeStorageUnavailable,
			"Record store is unreachable",
			err.Error(),
		)
	}
	w.logger.Error(ctx, msg, err, obs.Fields{"request_id": requestID})
	return handler.NewErrorResponse(requestID, handler.CodeInternalError, msg, err.Error())
}
