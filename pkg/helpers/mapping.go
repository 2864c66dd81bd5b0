package helpers

import (
	"fmt"
	"strings"

	"github.com/oksasatya/edu-verify/pkg/mailer"
	mailtpl "github.com/oksasatya/edu-verify/pkg/mailer/templates"
)

// SubjectFor is the fallback subject when a job carries neither a subject nor a template.
func SubjectFor(data map[string]any) string {
	typeStr := fmt.Sprintf("%v", data["Type"])
	switch strings.ToLower(typeStr) {
	case mailtpl.VerificationCode:
		return "Your verification code"
	default:
		return "Notification"
	}
}

func EnsureRecipientAndEmail(job *mailer.EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["Email"] = job.To
	}
	if v, ok := job.Data["RecipientEmail"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["RecipientEmail"] = job.To
	}
}

// RenderJob fills Subject, Text and HTML of a templated job in place.
// Jobs without a template keep their bodies and only get a fallback subject.
func RenderJob(job *mailer.EmailJob) error {
	if job.Template == "" {
		if job.Subject == "" {
			job.Subject = SubjectFor(job.Data)
		}
		return nil
	}
	EnsureRecipientAndEmail(job)
	if _, ok := job.Data["Type"]; !ok {
		job.Data["Type"] = job.Template
	}
	subj, text, html, err := mailtpl.Render(strings.ToLower(job.Template), job.Data)
	if err != nil {
		return err
	}
	if job.Subject == "" {
		job.Subject = subj
	}
	job.Text = text
	job.HTML = html
	return nil
}
