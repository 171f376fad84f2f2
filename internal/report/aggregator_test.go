package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qualityaudit/internal/audit"
)

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func score(v float64) *float64 { return &v }

func record(name string, date *time.Time, total *float64, mutate func(*audit.Record)) *audit.Record {
	r := &audit.Record{
		Name:           name,
		EntityID:       "TKT-" + name,
		AuditDate:      date,
		TotalScore:     total,
		AssociateEmail: "alice@example.com",
		AssociateName:  "Alice Kumar",
		TeamLead:       "Dev Patel",
		AuditType:      "Regular Audit",
		AuditorName:    "QA One",
	}
	if mutate != nil {
		mutate(r)
	}
	return r
}

func TestSummary(t *testing.T) {
	agg := NewAggregator([]*audit.Record{
		record("a", day(2026, 3, 2), score(80), nil),
		record("b", day(2026, 3, 3), score(90), nil),
		// Stored score was "N/A": counted, but not averaged.
		record("c", day(2026, 3, 4), nil, nil),
		record("d", day(2026, 3, 5), score(0), func(r *audit.Record) {
			r.ZTPViolation = true
		}),
	})

	s := agg.Summary(Filter{})
	assert.Equal(t, 4, s.TotalAudits)
	assert.Equal(t, 3, s.ScoredAudits)
	assert.InDelta(t, (80.0+90.0+0.0)/3.0, s.AverageScore, 1e-9)
	assert.Equal(t, 1, s.ZTPCount)
}

func TestSummary_Empty(t *testing.T) {
	s := NewAggregator(nil).Summary(Filter{})
	assert.Equal(t, 0, s.TotalAudits)
	assert.Equal(t, 0.0, s.AverageScore)
}

func TestFilter_DateRangeInclusive(t *testing.T) {
	agg := NewAggregator([]*audit.Record{
		record("before", day(2026, 3, 1), score(50), nil),
		record("start", day(2026, 3, 2), score(60), nil),
		record("end", day(2026, 3, 10), score(70), nil),
		record("after", day(2026, 3, 11), score(80), nil),
		record("undated", nil, score(90), nil),
	})

	s := agg.Summary(Filter{From: day(2026, 3, 2), To: day(2026, 3, 10)})
	assert.Equal(t, 2, s.TotalAudits)
	assert.InDelta(t, 65.0, s.AverageScore, 1e-9)
}

func TestFilter_Conjunction(t *testing.T) {
	agg := NewAggregator([]*audit.Record{
		record("a", day(2026, 3, 2), score(80), nil),
		record("b", day(2026, 3, 2), score(60), func(r *audit.Record) {
			r.AssociateEmail = "bob@example.com"
		}),
		record("c", day(2026, 3, 2), score(40), func(r *audit.Record) {
			r.AuditType = "Certification1"
		}),
	})

	s := agg.Summary(Filter{AssociateEmail: "Alice@Example.com", AuditType: "Regular Audit"})
	assert.Equal(t, 1, s.TotalAudits)
	assert.InDelta(t, 80.0, s.AverageScore, 1e-9)
}

func TestParameterRows(t *testing.T) {
	withParams := func(entries ...audit.ParameterEntry) func(*audit.Record) {
		return func(r *audit.Record) { r.Parameters = entries }
	}

	agg := NewAggregator([]*audit.Record{
		record("a", day(2026, 3, 2), score(90), withParams(
			audit.ParameterEntry{Parameter: "Opening and Closing", Reasons: []string{"Compliant"}, Score: score(10)},
			audit.ParameterEntry{Parameter: "Properties", Reasons: []string{"Notes"}, Score: score(8)},
		)),
		record("b", day(2026, 3, 3), score(70), withParams(
			audit.ParameterEntry{Parameter: "Opening and Closing", Reasons: []string{"Survey pitch"}, Score: score(6)},
			audit.ParameterEntry{Parameter: "Properties", Reasons: []string{"Compliant"}, Score: score(15)},
		)),
	})

	rows := agg.ParameterRows(Filter{})
	require.Len(t, rows, 2)

	// Sorted by parameter name.
	assert.Equal(t, "Opening and Closing", rows[0].Parameter)
	assert.Equal(t, 2, rows[0].Audits)
	assert.InDelta(t, 8.0, rows[0].AverageScore, 1e-9)
	assert.Equal(t, 1, rows[0].NonCompliant)

	assert.Equal(t, "Properties", rows[1].Parameter)
	assert.Equal(t, 1, rows[1].NonCompliant)
}

func TestPareto(t *testing.T) {
	withReasons := func(reasons ...string) func(*audit.Record) {
		return func(r *audit.Record) {
			r.Parameters = []audit.ParameterEntry{
				{Parameter: "Properties", Reasons: reasons},
			}
		}
	}

	agg := NewAggregator([]*audit.Record{
		record("a", day(2026, 3, 2), score(80), withReasons("Notes", "FD Properties")),
		record("b", day(2026, 3, 3), score(80), withReasons("Notes")),
		record("c", day(2026, 3, 4), score(80), withReasons("Tags")),
		record("d", day(2026, 3, 5), score(100), withReasons("Compliant")),
	})

	rows := agg.Pareto(Filter{})
	require.Len(t, rows, 3)

	assert.Equal(t, "Notes", rows[0].Reason)
	assert.Equal(t, 2, rows[0].Count)
	assert.InDelta(t, 50.0, rows[0].CumulativePercent, 1e-9)

	// Equal counts order alphabetically.
	assert.Equal(t, "FD Properties", rows[1].Reason)
	assert.Equal(t, "Tags", rows[2].Reason)
	assert.InDelta(t, 100.0, rows[2].CumulativePercent, 1e-9)
}

func TestPareto_NoDeviations(t *testing.T) {
	agg := NewAggregator([]*audit.Record{
		record("a", day(2026, 3, 2), score(100), nil),
	})
	assert.Empty(t, agg.Pareto(Filter{}))
}

func TestTrend_ISOWeeks(t *testing.T) {
	// Three audits across two ISO weeks yield exactly two buckets.
	agg := NewAggregator([]*audit.Record{
		record("a", day(2026, 1, 19), score(80), nil), // Mon, week 4
		record("b", day(2026, 1, 23), score(90), nil), // Fri, week 4
		record("c", day(2026, 1, 26), score(70), nil), // Mon, week 5
	})

	points, err := agg.Trend(Filter{}, GranularityWeek)
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, "2026-W04", points[0].Bucket)
	assert.Equal(t, 2, points[0].Audits)
	assert.InDelta(t, 85.0, points[0].AverageScore, 1e-9)

	assert.Equal(t, "2026-W05", points[1].Bucket)
	assert.Equal(t, 1, points[1].Audits)
}

func TestTrend_DayAndMonth(t *testing.T) {
	agg := NewAggregator([]*audit.Record{
		record("a", day(2026, 1, 31), score(80), nil),
		record("b", day(2026, 2, 1), score(60), nil),
		record("c", day(2026, 2, 1), nil, func(r *audit.Record) {
			r.ZTPViolation = true
		}),
		record("undated", nil, score(50), nil),
	})

	days, err := agg.Trend(Filter{}, GranularityDay)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "2026-01-31", days[0].Bucket)
	assert.Equal(t, "2026-02-01", days[1].Bucket)
	assert.Equal(t, 2, days[1].Audits)
	assert.Equal(t, 1, days[1].ScoredAudits)
	assert.InDelta(t, 60.0, days[1].AverageScore, 1e-9)
	assert.Equal(t, 1, days[1].ZTPCount)

	months, err := agg.Trend(Filter{}, GranularityMonth)
	require.NoError(t, err)
	require.Len(t, months, 2)
	assert.Equal(t, "2026-01", months[0].Bucket)
	assert.Equal(t, "2026-02", months[1].Bucket)
}

func TestTrend_UnknownGranularity(t *testing.T) {
	_, err := NewAggregator(nil).Trend(Filter{}, Granularity("fortnight"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownGranularity)
}

func TestTrend_Idempotent(t *testing.T) {
	agg := NewAggregator([]*audit.Record{
		record("a", day(2026, 1, 19), score(80), nil),
		record("b", day(2026, 1, 26), score(70), nil),
	})

	first, err := agg.Trend(Filter{}, GranularityWeek)
	require.NoError(t, err)
	second, err := agg.Trend(Filter{}, GranularityWeek)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAssociateSnapshot(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)

	agg := NewAggregator([]*audit.Record{
		record("jan", day(2026, 1, 10), score(70), nil),
		record("mar1", day(2026, 3, 5), score(80), nil),
		record("mar2", day(2026, 3, 12), score(90), func(r *audit.Record) {
			r.AuditType = "Certification1"
		}),
		record("mar3", day(2026, 3, 15), nil, func(r *audit.Record) {
			r.ZTPViolation = true
		}),
		record("other", day(2026, 3, 8), score(10), func(r *audit.Record) {
			r.AssociateEmail = "bob@example.com"
		}),
	})

	snap := agg.AssociateSnapshot("alice@example.com", now, 2)

	assert.Equal(t, 3, snap.MonthAudits)
	assert.Equal(t, 2, snap.MonthScoredAudits)
	assert.InDelta(t, 85.0, snap.MonthAverageScore, 1e-9)
	assert.Equal(t, 1, snap.MonthZTPCount)

	assert.Equal(t, 4, snap.LifetimeAudits)
	assert.InDelta(t, (70.0+80.0+90.0)/3.0, snap.LifetimeAverageScore, 1e-9)

	require.Contains(t, snap.ByType, "Regular Audit")
	require.Contains(t, snap.ByType, "Certification1")
	assert.Equal(t, 2, snap.ByType["Regular Audit"].Audits)
	assert.InDelta(t, 80.0, snap.ByType["Regular Audit"].AverageScore, 1e-9)
	assert.InDelta(t, 90.0, snap.ByType["Certification1"].AverageScore, 1e-9)

	require.Len(t, snap.Recent, 2)
	assert.Equal(t, "mar3", snap.Recent[0].Name)
	assert.Equal(t, "mar2", snap.Recent[1].Name)
}

func TestAssociateSnapshot_NoHistory(t *testing.T) {
	snap := NewAggregator(nil).AssociateSnapshot("nobody@example.com", time.Now(), 5)
	assert.Equal(t, 0, snap.LifetimeAudits)
	assert.Empty(t, snap.Recent)
	assert.Empty(t, snap.ByType)
}
