// Package report implements the reporting worker: it loads the record
// collection and serves the dashboard views over it.
package report

import (
	"context"
	"fmt"
	"time"

	"qualityaudit/internal/audit"
	"qualityaudit/internal/auditstore"
	"qualityaudit/internal/handler"
	obs "qualityaudit/internal/observability/types"
	"qualityaudit/internal/report"
)

// Operation names accepted in the query payload.
const (
	OpSummary    = "summary"
	OpParameters = "parameters"
	OpPareto     = "pareto"
	OpTrend      = "trend"
	OpSnapshot   = "snapshot"
)

// Query is the reporting request body.
type Query struct {
	// Operation selects the view: summary, parameters, pareto, trend or
	// snapshot.
	Operation string `json:"operation"`

	// From and To bound the audit date, inclusive, as "2006-01-02".
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`

	AssociateEmail string `json:"associate_email,omitempty"`
	TeamLead       string `json:"team_lead,omitempty"`
	AuditType      string `json:"audit_type,omitempty"`
	AuditorName    string `json:"auditor_name,omitempty"`

	// Granularity applies to the trend view: day, isoweek or month.
	Granularity string `json:"granularity,omitempty"`

	// RecentAudits caps the snapshot's recent list; the configured
	// default applies when zero.
	RecentAudits int `json:"recent_audits,omitempty"`
}

// Worker serves reporting queries.
type Worker struct {
	store        *auditstore.RecordStore
	logger       obs.Logger
	metrics      obs.Metrics
	recentAudits int
	now          func() time.Time
}

// NewWorker creates the reporting worker. recentAudits is the default
// length of the snapshot's recent-audit list.
func NewWorker(store *auditstore.RecordStore, recentAudits int, logger obs.Logger, metrics obs.Metrics) *Worker {
	return &Worker{
		store:        store,
		logger:       logger,
		metrics:      metrics,
		recentAudits: recentAudits,
		now:          time.Now,
	}
}

// Name implements handler.Worker.
func (w *Worker) Name() string {
	return "report"
}

// Process loads the collection and runs the requested view.
func (w *Worker) Process(ctx context.Context, request handler.Request) (handler.Response, error) {
	var query Query
	if err := request.Unmarshal(&query); err != nil {
		return handler.NewErrorResponse(
			request.ID,
			handler.CodeInvalidRequest,
			"Failed to parse report query",
			err.Error(),
		), nil
	}

	filter, err := w.buildFilter(&query)
	if err != nil {
		return handler.NewErrorResponse(
			request.ID,
			handler.CodeValidationError,
			"Invalid report query",
			err.Error(),
		), nil
	}

	records, err := w.store.Load(ctx)
	if err != nil {
		w.logger.Error(ctx, "loading records for report failed", err, obs.Fields{
			"request_id": request.ID,
		})
		return handler.NewErrorResponse(
			request.ID,
			handler.CodeStorageUnavailable,
			"Record store is unreachable",
			err.Error(),
		), nil
	}

	agg := report.NewAggregator(records)

	var data interface{}
	switch query.Operation {
	case OpSummary:
		data = agg.Summary(filter)
	case OpParameters:
		data = agg.ParameterRows(filter)
	case OpPareto:
		data = agg.Pareto(filter)
	case OpTrend:
		granularity := report.Granularity(query.Granularity)
		if granularity == "" {
			granularity = report.GranularityDay
		}
		points, trendErr := agg.Trend(filter, granularity)
		if trendErr != nil {
			return handler.NewErrorResponse(
				request.ID,
				handler.CodeValidationError,
				"Invalid trend granularity",
				trendErr.Error(),
			), nil
		}
		data = points
	case OpSnapshot:
		if query.AssociateEmail == "" {
			return handler.NewErrorResponse(
				request.ID,
				handler.CodeValidationError,
				"Snapshot requires an associate email",
				"",
			), nil
		}
		recentN := query.RecentAudits
		if recentN <= 0 {
			recentN = w.recentAudits
		}
		data = agg.AssociateSnapshot(query.AssociateEmail, w.now(), recentN)
	default:
		return handler.NewErrorResponse(
			request.ID,
			handler.CodeValidationError,
			"Unknown report operation",
			query.Operation,
		), nil
	}

	w.logger.Debug(ctx, "report served", obs.Fields{
		"operation":    query.Operation,
		"record_count": len(records),
	})

	return handler.NewSuccessResponse(request.ID, data)
}

// Health checks that the record store is reachable.
func (w *Worker) Health(ctx context.Context) error {
	_, err := w.store.Load(ctx)
	return err
}

func (w *Worker) buildFilter(query *Query) (report.Filter, error) {
	filter := report.Filter{
		AssociateEmail: query.AssociateEmail,
		TeamLead:       query.TeamLead,
		AuditType:      query.AuditType,
		AuditorName:    query.AuditorName,
	}

	if query.From != "" {
		from, err := time.Parse(audit.DateLayout, query.From)
		if err != nil {
			return report.Filter{}, fmt.Errorf("invalid from date %q: %v", query.From, err)
		}
		filter.From = &from
	}
	if query.To != "" {
		to, err := time.Parse(audit.DateLayout, query.To)
		if err != nil {
			return report.Filter{}, fmt.Errorf("invalid to date %q: %v", query.To, err)
		}
		filter.To = &to
	}
	return filter, nil
}
