package audit

import (
	"fmt"
	"net/url"
	"strings"
)

// EmailSummary renders the plain-text feedback body sent to the associate
// and their team lead after an audit.
func EmailSummary(r *Record) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Audit Summary - %s\n\n", r.AuditType)
	b.WriteString("Agent & Call Details:\n")
	fmt.Fprintf(&b, "Queue: %s\n", r.Queue)
	fmt.Fprintf(&b, "Call Date: %s\n", r.CallDate)
	fmt.Fprintf(&b, "Calling Number: %s\n", r.CallingNumber)
	if r.AuditDate != nil {
		fmt.Fprintf(&b, "Audit Date: %s\n", r.AuditDate.Format(DateLayout))
	}
	fmt.Fprintf(&b, "Associate Name: %s\n", r.AssociateName)
	fmt.Fprintf(&b, "Associate Email: %s\n", r.AssociateEmail)
	fmt.Fprintf(&b, "Team Lead: %s\n", r.TeamLead)
	fmt.Fprintf(&b, "Auditor Name: %s\n", r.AuditorName)
	fmt.Fprintf(&b, "Call Duration: %s\n", r.CallDuration)
	fmt.Fprintf(&b, "Call Link: %s\n", r.CallLink)
	fmt.Fprintf(&b, "Entity ID: %s\n", r.EntityID)
	fmt.Fprintf(&b, "ZTP Violation: %s\n", yesNo(r.ZTPViolation))

	score := "N/A"
	if r.TotalScore != nil {
		score = fmt.Sprintf("%g%%", *r.TotalScore)
	}
	fmt.Fprintf(&b, "\nOverall Score: %s\n\nParameters:", score)

	for _, p := range r.Parameters {
		entryScore := "-"
		if p.Score != nil {
			entryScore = fmt.Sprintf("%g%%", *p.Score)
		}
		fmt.Fprintf(&b, "\n- %s: %s (%s)", p.Parameter, strings.Join(p.Reasons, ", "), entryScore)
	}

	fmt.Fprintf(&b, "\n\nOverall Observations:\n%s", orNone(r.Observations))
	fmt.Fprintf(&b, "\n\nIssue (VOC):\n%s", orNone(r.IssueVOC))
	fmt.Fprintf(&b, "\n\nResolution:\n%s", orNone(r.Resolution))

	return b.String()
}

// GmailComposeURL builds a prefilled Gmail compose link addressed to the
// associate with their team lead in copy.
func GmailComposeURL(r *Record) string {
	subject := fmt.Sprintf("Audit Feedback - %s", r.AuditType)
	return fmt.Sprintf(
		"https://mail.google.com/mail/?view=cm&fs=1&tf=1&to=%s&cc=%s&su=%s&body=%s",
		url.QueryEscape(r.AssociateEmail),
		url.QueryEscape(r.TeamLeaderEmail),
		url.QueryEscape(subject),
		url.QueryEscape(EmailSummary(r)),
	)
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None"
	}
	return s
}
