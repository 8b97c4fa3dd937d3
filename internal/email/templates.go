package email

import (
	"bytes"
	"fmt"
	"text/template"

	"HireSight-backend/internal/model"
)

// TemplateType selects one of the outbound notification templates.
type TemplateType string

var (
	// TemplateShortlisted notifies a candidate they made the shortlist
	TemplateShortlisted = TemplateType("shortlisted")
	// TemplateRejected notifies a candidate their application was rejected
	TemplateRejected = TemplateType("rejected")
	// TemplateInterview notifies a candidate an interview was scheduled
	TemplateInterview = TemplateType("interview")
	// TemplateHired notifies a candidate they were hired
	TemplateHired = TemplateType("hired")
	// TemplateOfferLetter delivers an offer letter to a candidate
	TemplateOfferLetter = TemplateType("offer_letter")
	// TemplateOfferAccepted notifies the recruiter a candidate accepted
	TemplateOfferAccepted = TemplateType("offer_accepted")
	// TemplateOfferDeclined notifies the recruiter a candidate declined
	TemplateOfferDeclined = TemplateType("offer_declined")
)

// Message is one notification to render and send.
type Message struct {
	Template      TemplateType
	To            string
	CandidateName string
	JobTitle      string
	CompanyName   string
	Interview     *model.InterviewDetails
	Offer         *model.OfferDetails
	// ReplyTo overrides the reply address when the recruiter configured one
	ReplyTo string
}

type renderedMail struct {
	Subject string
	Body    string
}

var subjectTemplates = map[TemplateType]string{
	TemplateShortlisted:   "You have been shortlisted for {{.JobTitle}} at {{.CompanyName}}",
	TemplateRejected:      "Update on your application for {{.JobTitle}} at {{.CompanyName}}",
	TemplateInterview:     "Interview scheduled for {{.JobTitle}} at {{.CompanyName}}",
	TemplateHired:         "Congratulations! Offer for {{.JobTitle}} at {{.CompanyName}}",
	TemplateOfferLetter:   "Your offer letter for {{.JobTitle}} at {{.CompanyName}}",
	TemplateOfferAccepted: "{{.CandidateName}} accepted your offer for {{.JobTitle}}",
	TemplateOfferDeclined: "{{.CandidateName}} declined your offer for {{.JobTitle}}",
}

var bodyTemplates = map[TemplateType]string{
	TemplateShortlisted: `Dear {{.CandidateName}},

Good news! Your application for the {{.JobTitle}} position at {{.CompanyName}} has been shortlisted.
Our team was impressed with your profile and will reach out with next steps soon.

Best regards,
{{.CompanyName}} Recruiting Team`,

	TemplateRejected: `Dear {{.CandidateName}},

Thank you for your interest in the {{.JobTitle}} position at {{.CompanyName}}.
After careful consideration we have decided not to move forward with your application.
We encourage you to apply for future openings that match your profile.

Best regards,
{{.CompanyName}} Recruiting Team`,

	TemplateInterview: `Dear {{.CandidateName}},

We would like to invite you to an interview for the {{.JobTitle}} position at {{.CompanyName}}.
{{if .Interview}}
Date: {{.Interview.Date}}
Time: {{.Interview.Time}}
Format: {{.Interview.Mode}}
{{- if .Interview.MeetingLink}}
Meeting link: {{.Interview.MeetingLink}}
{{- end}}
{{- if .Interview.PhoneNumber}}
We will call you at: {{.Interview.PhoneNumber}}
{{- end}}
{{- if .Interview.Location}}
Location: {{.Interview.Location}}
{{- end}}
{{- if .Interview.Notes}}

Notes: {{.Interview.Notes}}
{{- end}}
{{end}}
Best regards,
{{.CompanyName}} Recruiting Team`,

	TemplateHired: `Dear {{.CandidateName}},

Congratulations! We are delighted to inform you that you have been selected for the
{{.JobTitle}} position at {{.CompanyName}}. A formal offer letter will follow shortly.

Best regards,
{{.CompanyName}} Recruiting Team`,

	TemplateOfferLetter: `Dear {{.CandidateName}},
{{if .Offer}}
{{.Offer.LetterBody}}
{{else}}
Please find attached your offer for the {{.JobTitle}} position at {{.CompanyName}}.
{{end}}
Best regards,
{{.CompanyName}} Recruiting Team`,

	TemplateOfferAccepted: `{{.CandidateName}} has accepted the offer for the {{.JobTitle}} position.
{{if .Offer}}Start date: {{.Offer.StartDate}}{{end}}`,

	TemplateOfferDeclined: `{{.CandidateName}} has declined the offer for the {{.JobTitle}} position.`,
}

// render produces the subject and body for a message. Unknown template
// types are an error so a typo cannot silently send an empty mail.
func render(msg Message) (renderedMail, error) {
	subjectSrc, ok := subjectTemplates[msg.Template]
	if !ok {
		return renderedMail{}, fmt.Errorf("unknown email template %q", msg.Template)
	}
	bodySrc := bodyTemplates[msg.Template]

	subject, err := execTemplate(string(msg.Template)+"_subject", subjectSrc, msg)
	if err != nil {
		return renderedMail{}, err
	}
	body, err := execTemplate(string(msg.Template)+"_body", bodySrc, msg)
	if err != nil {
		return renderedMail{}, err
	}

	return renderedMail{Subject: subject, Body: body}, nil
}

func execTemplate(name, src string, data Message) (string, error) {
	t, err := template.New(name).Parse(src)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return buf.String(), nil
}
