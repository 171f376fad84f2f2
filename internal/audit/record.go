// Package audit defines the audit record, the persisted unit of work: one
// immutable JSON document per submitted audit.
//
// Documents are self-describing, with the field names used by the
// historical record collection ("Audit Date", "Total Score", "Parameters",
// ...). Two generations of documents coexist in storage: older ones name
// the per-parameter reasons "Selected Reasons", newer ones "Selected
// Reasons Scored", and several fields may be missing or malformed.
// Decoding is therefore deliberately lenient; encoding always writes the
// newer shape.
package audit

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Document field names. Kept as constants so the encoder, the decoder and
// the aggregation filters agree.
const (
	fieldQueue           = "Queue"
	fieldCallDate        = "Call Date"
	fieldCallingNumber   = "Calling Number"
	fieldEntityID        = "Entity ID"
	fieldAuditDate       = "Audit Date"
	fieldAssociateEmail  = "Associate Email ID"
	fieldTeamLeaderEmail = "Team Leader Email"
	fieldAuditType       = "Audit Type"
	fieldAssociateName   = "Associate Name"
	fieldTeamLead        = "Team Lead"
	fieldLOB             = "LOB"
	fieldDepartment      = "Department"
	fieldAuditorName     = "Auditor Name"
	fieldCallDuration    = "Call Duration"
	fieldHoldDuration    = "Hold Duration"
	fieldCallLink        = "Call Link"
	fieldZTPViolation    = "ZTP Violation"
	fieldFatalError      = "Fatal Error"
	fieldTotalScore      = "Total Score"
	fieldObservations    = "Overall Observations"
	fieldIssueVOC        = "Issue VOC"
	fieldResolution      = "Resolution"
	fieldParameters      = "Parameters"
	fieldEmailSent       = "Email Sent"
	fieldEmailTimestamp  = "Email Timestamp"

	fieldParameter      = "Parameter"
	fieldReasons        = "Selected Reasons"
	fieldReasonsScored  = "Selected Reasons Scored"
	fieldParameterScore = "Score"
)

// DateLayout is how audit and call dates are written in documents.
const DateLayout = "2006-01-02"

// TimestampLayout is how the email timestamp is written.
const TimestampLayout = "2006-01-02 15:04:05"

// ParameterEntry is one parameter's outcome inside a record.
type ParameterEntry struct {
	Parameter string
	Reasons   []string
	// Score is nil when the stored value was missing or non-numeric.
	Score *float64
}

// Compliant reports whether the entry's selection is exactly {"Compliant"}.
func (p *ParameterEntry) Compliant() bool {
	return len(p.Reasons) == 1 && strings.EqualFold(strings.TrimSpace(p.Reasons[0]), "Compliant")
}

// NonCompliantReasons returns the entry's reasons excluding Compliant,
// trimmed. Used by the Pareto aggregation.
func (p *ParameterEntry) NonCompliantReasons() []string {
	var out []string
	for _, r := range p.Reasons {
		r = strings.TrimSpace(r)
		if r == "" || strings.EqualFold(r, "Compliant") {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Record is one audit submission. Created once at submission time and
// immutable thereafter; there is no update or delete path.
type Record struct {
	// Name is the storage key of the document; not part of the document
	// body.
	Name string

	Queue         string
	CallDate      string
	CallingNumber string
	EntityID      string

	// AuditDate is nil when the stored date was missing or unparseable;
	// such records are excluded from date-filtered views.
	AuditDate *time.Time

	AssociateEmail  string
	TeamLeaderEmail string
	AuditType       string
	AssociateName   string
	TeamLead        string
	LOB             string
	Department      string
	AuditorName     string

	CallDuration string
	HoldDuration string
	CallLink     string

	ZTPViolation bool
	FatalError   bool
	// TotalScore is nil when the stored value was missing or non-numeric.
	// Such records count toward totals but not toward means.
	TotalScore *float64

	Observations string
	IssueVOC     string
	Resolution   string

	Parameters []ParameterEntry

	EmailSent      bool
	EmailTimestamp string
}

// Encode serializes the record as a self-describing JSON document in the
// current (scored-reasons) shape.
func (r *Record) Encode() ([]byte, error) {
	doc := map[string]interface{}{
		fieldQueue:           r.Queue,
		fieldCallDate:        r.CallDate,
		fieldCallingNumber:   r.CallingNumber,
		fieldEntityID:        r.EntityID,
		fieldAssociateEmail:  r.AssociateEmail,
		fieldTeamLeaderEmail: r.TeamLeaderEmail,
		fieldAuditType:       r.AuditType,
		fieldAssociateName:   r.AssociateName,
		fieldTeamLead:        r.TeamLead,
		fieldLOB:             r.LOB,
		fieldDepartment:      r.Department,
		fieldAuditorName:     r.AuditorName,
		fieldCallDuration:    r.CallDuration,
		fieldHoldDuration:    r.HoldDuration,
		fieldCallLink:        r.CallLink,
		fieldZTPViolation:    yesNo(r.ZTPViolation),
		fieldFatalError:      yesNo(r.FatalError),
		fieldObservations:    r.Observations,
		fieldIssueVOC:        r.IssueVOC,
		fieldResolution:      r.Resolution,
		fieldEmailSent:       yesNo(r.EmailSent),
		fieldEmailTimestamp:  r.EmailTimestamp,
	}

	if r.AuditDate != nil {
		doc[fieldAuditDate] = r.AuditDate.Format(DateLayout)
	}
	if r.TotalScore != nil {
		doc[fieldTotalScore] = *r.TotalScore
	}

	params := make([]map[string]interface{}, 0, len(r.Parameters))
	for _, p := range r.Parameters {
		entry := map[string]interface{}{
			fieldParameter:     p.Parameter,
			fieldReasonsScored: strings.Join(p.Reasons, ", "),
		}
		if p.Score != nil {
			entry[fieldParameterScore] = *p.Score
		}
		params = append(params, entry)
	}
	doc[fieldParameters] = params

	return json.MarshalIndent(doc, "", "  ")
}

// Decode parses a stored document into a Record. The document must be valid
// JSON with an object at the top level; everything below that degrades
// gracefully. Decode never fails on missing or oddly-typed fields.
func Decode(name string, data []byte) (*Record, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, name, err)
	}

	r := &Record{
		Name:            name,
		Queue:           asString(doc[fieldQueue]),
		CallDate:        asString(doc[fieldCallDate]),
		CallingNumber:   asString(doc[fieldCallingNumber]),
		EntityID:        asString(doc[fieldEntityID]),
		AssociateEmail:  asString(doc[fieldAssociateEmail]),
		TeamLeaderEmail: asString(doc[fieldTeamLeaderEmail]),
		AuditType:       asString(doc[fieldAuditType]),
		AssociateName:   asString(doc[fieldAssociateName]),
		TeamLead:        asString(doc[fieldTeamLead]),
		LOB:             asString(doc[fieldLOB]),
		Department:      asString(doc[fieldDepartment]),
		AuditorName:     asString(doc[fieldAuditorName]),
		CallDuration:    asString(doc[fieldCallDuration]),
		HoldDuration:    asString(doc[fieldHoldDuration]),
		CallLink:        asString(doc[fieldCallLink]),
		ZTPViolation:    isYes(doc[fieldZTPViolation]),
		FatalError:      isYes(doc[fieldFatalError]),
		Observations:    asString(doc[fieldObservations]),
		IssueVOC:        asString(doc[fieldIssueVOC]),
		Resolution:      asString(doc[fieldResolution]),
		EmailSent:       isYes(doc[fieldEmailSent]),
		EmailTimestamp:  asString(doc[fieldEmailTimestamp]),
		AuditDate:       asDate(doc[fieldAuditDate]),
		TotalScore:      asNumber(doc[fieldTotalScore]),
		Parameters:      decodeParameters(doc[fieldParameters]),
	}

	return r, nil
}

// decodeParameters tolerates every shape the historical collection
// contains: a proper list of objects, a JSON-encoded string of such a list
// (some older documents were double-encoded), or garbage, which yields zero
// entries.
func decodeParameters(v interface{}) []ParameterEntry {
	list, ok := v.([]interface{})
	if !ok {
		// Some older documents carry the list as a string.
		if s, isStr := v.(string); isStr {
			var parsed []interface{}
			if err := json.Unmarshal([]byte(strings.ReplaceAll(s, "'", `"`)), &parsed); err == nil {
				list = parsed
			}
		}
	}
	if list == nil {
		return nil
	}

	var entries []ParameterEntry
	for _, item := range list {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		name := asString(obj[fieldParameter])
		if name == "" {
			continue
		}

		// Newer documents use the scored-reasons field; fall back to
		// the original one.
		reasonsValue, ok := obj[fieldReasonsScored]
		if !ok {
			reasonsValue = obj[fieldReasons]
		}

		entries = append(entries, ParameterEntry{
			Parameter: name,
			Reasons:   asReasons(reasonsValue),
			Score:     asNumber(obj[fieldParameterScore]),
		})
	}
	return entries
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func isYes(v interface{}) bool {
	switch t := v.(type) {
	case string:
		return strings.EqualFold(strings.TrimSpace(t), "yes")
	case bool:
		return t
	default:
		return false
	}
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

// asNumber accepts JSON numbers and numeric strings; anything else
// (including "N/A") is treated as missing.
func asNumber(v interface{}) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return &f
		}
	}
	return nil
}

// asDate parses the date layouts present in the collection.
func asDate(v interface{}) *time.Time {
	s := strings.TrimSpace(asString(v))
	if s == "" {
		return nil
	}
	for _, layout := range []string{DateLayout, TimestampLayout, time.RFC3339} {
		if ts, err := time.Parse(layout, s); err == nil {
			return &ts
		}
	}
	return nil
}

// asReasons accepts a comma-joined string or a list of strings.
func asReasons(v interface{}) []string {
	switch t := v.(type) {
	case string:
		var reasons []string
		for _, part := range strings.Split(t, ",") {
			if part = strings.TrimSpace(part); part != "" {
				reasons = append(reasons, part)
			}
		}
		return reasons
	case []interface{}:
		var reasons []string
		for _, item := range t {
			if s := strings.TrimSpace(asString(item)); s != "" {
				reasons = append(reasons, s)
			}
		}
		return reasons
	default:
		return nil
	}
}
