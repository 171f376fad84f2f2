// Package session implements the workflow worker driving the audit
// preparation steps: selecting the associate, running the entity check and
// confirming the feedback email. The submission worker reads the resulting
// state; a submission is only accepted once these steps have passed.
package session

import (
	"context"
	"errors"
	"strings"

	"qualityaudit/internal/auditstore"
	"qualityaudit/internal/directory"
	"qualityaudit/internal/handler"
	obs "qualityaudit/internal/observability/types"
	"qualityaudit/internal/session"
	storagetypes "qualityaudit/internal/storage/types"
)

// Actions accepted in the payload.
const (
	ActionLogin           = "login"
	ActionLogout          = "logout"
	ActionSelectAssociate = "select_associate"
	ActionCheckEntity     = "check_entity"
	ActionMarkEmailSent   = "mark_email_sent"
	ActionStatus          = "status"
	ActionReset           = "reset"
)

// Payload is the workflow request body.
type Payload struct {
	Action      string `json:"action"`
	AuditorName string `json:"auditor_name"`

	// AssociateEmail applies to select_associate.
	AssociateEmail string `json:"associate_email,omitempty"`

	// EntityID applies to check_entity.
	EntityID string `json:"entity_id,omitempty"`
}

// StatusData is the workflow response body: the session state after the
// action.
type StatusData struct {
	LoggedIn    bool   `json:"logged_in"`
	AuditorName string `json:"auditor_name,omitempty"`

	AssociateEmail string `json:"associate_email,omitempty"`
	AssociateName  string `json:"associate_name,omitempty"`
	TeamLead       string `json:"team_lead,omitempty"`

	EntityCheckRan    bool `json:"entity_check_ran"`
	EntityCheckPassed bool `json:"entity_check_passed"`
	EmailSent         bool `json:"email_sent"`
	Submitted         bool `json:"submitted"`
}

// Worker advances per-auditor session state.
type Worker struct {
	sessions  *session.Store
	directory *directory.Directory
	checker   *auditstore.DuplicateChecker
	logger    obs.Logger
	metrics   obs.Metrics
}

// NewWorker creates the workflow worker.
func NewWorker(
	sessions *session.Store,
	dir *directory.Directory,
	checker *auditstore.DuplicateChecker,
	logger obs.Logger,
	metrics obs.Metrics,
) *Worker {
	return &Worker{
		sessions:  sessions,
		directory: dir,
		checker:   checker,
		logger:    logger,
		metrics:   metrics,
	}
}

// Name implements handler.Worker.
func (w *Worker) Name() string {
	return "session"
}

// Process applies one workflow action to the auditor's session.
func (w *Worker) Process(ctx context.Context, request handler.Request) (handler.Response, error) {
	var payload Payload
	if err := request.Unmarshal(&payload); err != nil {
		return handler.NewErrorResponse(
			request.ID,
			handler.CodeInvalidRequest,
			"Failed to parse session action",
			err.Error(),
		), nil
	}

	if strings.TrimSpace(payload.AuditorName) == "" {
		return handler.NewErrorResponse(
			request.ID,
			handler.CodeValidationError,
			"Auditor name is required",
			"",
		), nil
	}
	state := w.sessions.Session(payload.AuditorName)

	switch payload.Action {
	case ActionLogin:
		state.Login(payload.AuditorName)

	case ActionLogout:
		state.Logout()

	case ActionSelectAssociate:
		assoc, err := w.directory.Lookup(payload.AssociateEmail)
		if err != nil {
			return handler.NewErrorResponse(
				request.ID,
				handler.CodeAssociateNotFound,
				"Associate not found in the employee directory",
				payload.AssociateEmail,
			), nil
		}
		state.SetAssociate(assoc)

	case ActionCheckEntity:
		assoc, ok := state.Associate()
		if !ok {
			return handler.NewErrorResponse(
				request.ID,
				handler.CodeValidationError,
				"Select an associate before checking the entity",
				"",
			), nil
		}
		if strings.TrimSpace(payload.EntityID) == "" {
			return handler.NewErrorResponse(
				request.ID,
				handler.CodeValidationError,
				"Entity ID is required",
				"",
			), nil
		}
		dup, err := w.checker.IsDuplicate(ctx, payload.EntityID, assoc.Email)
		if err != nil {
			return w.storageError(ctx, request.ID, err), nil
		}
		state.SetEntityChecked(!dup)
		w.logger.Info(ctx, "entity check recorded", obs.Fields{
			"entity_id":       payload.EntityID,
			"associate_email": assoc.Email,
			"passed":          !dup,
		})

	case ActionMarkEmailSent:
		passed, ran := state.EntityChecked()
		if !ran || !passed {
			return handler.NewErrorResponse(
				request.ID,
				handler.CodeValidationError,
				"Entity check must pass before sending the feedback email",
				"",
			), nil
		}
		state.MarkEmailSent()

	case ActionStatus:
		// Read-only.

	case ActionReset:
		state.ResetAudit()

	default:
		return handler.NewErrorResponse(
			request.ID,
			handler.CodeValidationError,
			"Unknown session action",
			payload.Action,
		), nil
	}

	return handler.NewSuccessResponse(request.ID, w.status(state))
}

// Health checks the duplicate checker's store.
func (w *Worker) Health(ctx context.Context) error {
	_, err := w.checker.IsDuplicate(ctx, "health-check", "")
	return err
}

func (w *Worker) status(state *session.State) StatusData {
	passed, ran := state.EntityChecked()
	data := StatusData{
		LoggedIn:          state.LoggedIn(),
		AuditorName:       state.AuditorName(),
		EntityCheckRan:    ran,
		EntityCheckPassed: passed,
		EmailSent:         state.EmailSent(),
		Submitted:         state.Submitted(),
	}
	if assoc, ok := state.Associate(); ok {
		data.AssociateEmail = assoc.Email
		data.AssociateName = assoc.Name
		data.TeamLead = assoc.TeamLead
	}
	return data
}

func (w *Worker) storageError(ctx context.Context, requestID string, err error) handler.Response {
	w.logger.Error(ctx, "entity check failed", err, obs.Fields{"request_id": requestID})
	if errors.Is(err, storagetypes.ErrUnreachable) {
		return handler.NewErrorResponse(
			requestID,
			handler.CodeStorageUnavailable,
			"Record store is unreachable",
			err.Error(),
		)
	}
	return handler.NewErrorResponse(requestID, handler.CodeInternalError, "Entity check failed", err.Error())
}
