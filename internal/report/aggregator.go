// Package report computes dashboard views over the audit record
// collection: summary totals, per-parameter breakdowns, a Pareto of
// non-compliance reasons, score trends and per-associate snapshots.
//
// All views are pure functions of a record slice. Callers load records
// once through the record store and run any number of views over them.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"qualityaudit/internal/audit"
)

// Granularity selects the time bucket for trend views.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "isoweek"
	GranularityMonth Granularity = "month"
)

// ErrUnknownGranularity is returned for a granularity outside the
// supported set.
var ErrUnknownGranularity = fmt.Errorf("unknown trend granularity")

// Filter narrows a view to a subset of records. Zero-valued fields do not
// constrain; set fields combine conjunctively.
type Filter struct {
	// From and To bound the audit date, both inclusive, at day
	// resolution. Records without a parseable audit date never match a
	// date-bounded filter.
	From *time.Time
	To   *time.Time

	AssociateEmail string
	TeamLead       string
	AuditType      string
	AuditorName    string
}

// Match reports whether the record passes every set constraint.
func (f Filter) Match(r *audit.Record) bool {
	if f.From != nil || f.To != nil {
		if r.AuditDate == nil {
			return false
		}
		day := truncateToDay(*r.AuditDate)
		if f.From != nil && day.Before(truncateToDay(*f.From)) {
			return false
		}
		if f.To != nil && day.After(truncateToDay(*f.To)) {
			return false
		}
	}
	if f.AssociateEmail != "" && !strings.EqualFold(strings.TrimSpace(r.AssociateEmail), strings.TrimSpace(f.AssociateEmail)) {
		return false
	}
	if f.TeamLead != "" && !strings.EqualFold(r.TeamLead, f.TeamLead) {
		return false
	}
	if f.AuditType != "" && r.AuditType != f.AuditType {
		return false
	}
	if f.AuditorName != "" && !strings.EqualFold(r.AuditorName, f.AuditorName) {
		return false
	}
	return true
}

// Aggregator runs views over a fixed record slice.
type Aggregator struct {
	records []*audit.Record
}

// NewAggregator creates an aggregator over the given records.
func NewAggregator(records []*audit.Record) *Aggregator {
	return &Aggregator{records: records}
}

func (a *Aggregator) filtered(f Filter) []*audit.Record {
	var out []*audit.Record
	for _, r := range a.records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Summary holds collection-level totals.
type Summary struct {
	TotalAudits int
	// ScoredAudits counts records with a numeric total score. Records
	// whose stored score is missing or non-numeric are in TotalAudits
	// but not here, and do not pull the average.
	ScoredAudits int
	AverageScore float64
	ZTPCount     int
	FatalCount   int
}

// Summary computes totals over the filtered records.
func (a *Aggregator) Summary(f Filter) Summary {
	var s Summary
	var scoreSum float64
	for _, r := range a.filtered(f) {
		s.TotalAudits++
		if r.TotalScore != nil {
			s.ScoredAudits++
			scoreSum += *r.TotalScore
		}
		if r.ZTPViolation {
			s.ZTPCount++
		}
		if r.FatalError {
			s.FatalCount++
		}
	}
	if s.ScoredAudits > 0 {
		s.AverageScore = scoreSum / float64(s.ScoredAudits)
	}
	return s
}

// ParameterRow is one parameter's aggregate across the filtered records.
type ParameterRow struct {
	Parameter    string
	Audits       int
	ScoredAudits int
	AverageScore float64
	// NonCompliant counts audits where the parameter deviated from
	// Compliant.
	NonCompliant int
}

// ParameterRows aggregates per parameter, sorted by parameter name.
func (a *Aggregator) ParameterRows(f Filter) []ParameterRow {
	type acc struct {
		row ParameterRow
		sum float64
	}
	byName := map[string]*acc{}
	for _, r := range a.filtered(f) {
		for i := range r.Parameters {
			p := &r.Parameters[i]
			entry, ok := byName[p.Parameter]
			if !ok {
				entry = &acc{row: ParameterRow{Parameter: p.Parameter}}
				byName[p.Parameter] = entry
			}
			entry.row.Audits++
			if p.Score != nil {
				entry.row.ScoredAudits++
				entry.sum += *p.Score
			}
			if !p.Compliant() && len(p.NonCompliantReasons()) > 0 {
				entry.row.NonCompliant++
			}
		}
	}

	rows := make([]ParameterRow, 0, len(byName))
	for _, entry := range byName {
		if entry.row.ScoredAudits > 0 {
			entry.row.AverageScore = entry.sum / float64(entry.row.ScoredAudits)
		}
		rows = append(rows, entry.row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Parameter < rows[j].Parameter })
	return rows
}

// ParetoRow is one non-compliance reason with its share of the total.
type ParetoRow struct {
	Reason            string
	Count             int
	CumulativePercent float64
}

// Pareto counts non-compliance reasons across all parameters, most
// frequent first. Ties break alphabetically so the output is stable, and
// the cumulative percentage runs over the sorted order.
func (a *Aggregator) Pareto(f Filter) []ParetoRow {
	counts := map[string]int{}
	total := 0
	for _, r := range a.filtered(f) {
		for i := range r.Parameters {
			for _, reason := range r.Parameters[i].NonCompliantReasons() {
				counts[reason]++
				total++
			}
		}
	}
	if total == 0 {
		return nil
	}

	rows := make([]ParetoRow, 0, len(counts))
	for reason, count := range counts {
		rows = append(rows, ParetoRow{Reason: reason, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Reason < rows[j].Reason
	})

	running := 0
	for i := range rows {
		running += rows[i].Count
		rows[i].CumulativePercent = 100 * float64(running) / float64(total)
	}
	return rows
}

// TrendPoint is one time bucket of the score trend.
type TrendPoint struct {
	// Bucket is the period key: "2006-01-02" for days, "2006-W04" for
	// ISO weeks, "2006-01" for months.
	Bucket       string
	Audits       int
	ScoredAudits int
	AverageScore float64
	ZTPCount     int
}

// Trend groups the filtered records into time buckets, oldest first.
// Records without a parseable audit date are left out. Only buckets with
// at least one record appear; gaps are not zero-filled.
func (a *Aggregator) Trend(f Filter, g Granularity) ([]TrendPoint, error) {
	if g != GranularityDay && g != GranularityWeek && g != GranularityMonth {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGranularity, g)
	}

	type acc struct {
		point TrendPoint
		sum   float64
	}
	byBucket := map[string]*acc{}
	for _, r := range a.filtered(f) {
		if r.AuditDate == nil {
			continue
		}
		key := bucketKey(*r.AuditDate, g)
		entry, ok := byBucket[key]
		if !ok {
			entry = &acc{point: TrendPoint{Bucket: key}}
			byBucket[key] = entry
		}
		entry.point.Audits++
		if r.TotalScore != nil {
			entry.point.ScoredAudits++
			entry.sum += *r.TotalScore
		}
		if r.ZTPViolation {
			entry.point.ZTPCount++
		}
	}

	points := make([]TrendPoint, 0, len(byBucket))
	for _, entry := range byBucket {
		if entry.point.ScoredAudits > 0 {
			entry.point.AverageScore = entry.sum / float64(entry.point.ScoredAudits)
		}
		points = append(points, entry.point)
	}
	// All three key formats sort chronologically as strings.
	sort.Slice(points, func(i, j int) bool { return points[i].Bucket < points[j].Bucket })
	return points, nil
}

func bucketKey(t time.Time, g Granularity) string {
	switch g {
	case GranularityWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case GranularityMonth:
		return t.Format("2006-01")
	default:
		return t.Format(audit.DateLayout)
	}
}

// TypeStats is the per-audit-type slice of an associate snapshot.
type TypeStats struct {
	Audits       int
	ScoredAudits int
	AverageScore float64
}

// Snapshot is one associate's standing: the current calendar month, the
// lifetime view and their most recent audits.
type Snapshot struct {
	AssociateEmail string

	MonthAudits       int
	MonthScoredAudits int
	MonthAverageScore float64
	MonthZTPCount     int

	LifetimeAudits       int
	LifetimeScoredAudits int
	LifetimeAverageScore float64

	// ByType aggregates the current month per audit type.
	ByType map[string]TypeStats

	// Recent holds the associate's latest audits, newest first, capped
	// by the recentN argument.
	Recent []*audit.Record
}

// AssociateSnapshot builds the snapshot for one associate. The current
// month is taken from now in its own location.
func (a *Aggregator) AssociateSnapshot(email string, now time.Time, recentN int) Snapshot {
	snap := Snapshot{AssociateEmail: email, ByType: map[string]TypeStats{}}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	type typeAcc struct {
		stats TypeStats
		sum   float64
	}
	byType := map[string]*typeAcc{}

	var monthSum, lifetimeSum float64
	var recent []*audit.Record

	for _, r := range a.filtered(Filter{AssociateEmail: email}) {
		snap.LifetimeAudits++
		if r.TotalScore != nil {
			snap.LifetimeScoredAudits++
			lifetimeSum += *r.TotalScore
		}
		if r.AuditDate != nil {
			recent = append(recent, r)
		}

		if r.AuditDate == nil || r.AuditDate.Before(monthStart) || !sameMonth(*r.AuditDate, monthStart) {
			continue
		}

		snap.MonthAudits++
		if r.ZTPViolation {
			snap.MonthZTPCount++
		}
		entry, ok := byType[r.AuditType]
		if !ok {
			entry = &typeAcc{}
			byType[r.AuditType] = entry
		}
		entry.stats.Audits++
		if r.TotalScore != nil {
			snap.MonthScoredAudits++
			monthSum += *r.TotalScore
			entry.stats.ScoredAudits++
			entry.sum += *r.TotalScore
		}
	}

	if snap.MonthScoredAudits > 0 {
		snap.MonthAverageScore = monthSum / float64(snap.MonthScoredAudits)
	}
	if snap.LifetimeScoredAudits > 0 {
		snap.LifetimeAverageScore = lifetimeSum / float64(snap.LifetimeScoredAudits)
	}
	for auditType, entry := range byType {
		if entry.stats.ScoredAudits > 0 {
			entry.stats.AverageScore = entry.sum / float64(entry.stats.ScoredAudits)
		}
		snap.ByType[auditType] = entry.stats
	}

	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].AuditDate.After(*recent[j].AuditDate)
	})
	if recentN > 0 && len(recent) > recentN {
		recent = recent[:recentN]
	}
	snap.Recent = recent

	return snap
}

func sameMonth(t, ref time.Time) bool {
	return t.Year() == ref.Year() && t.Month() == ref.Month()
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
