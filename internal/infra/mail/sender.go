package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/ligue-leads/internal/infra/metrics"
	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

//go:embed templates/download.html
var templatesFS embed.FS

var downloadTmpl = template.Must(template.ParseFS(templatesFS, "templates/download.html"))

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Host:         host,
		Port:         port,
		User:         user,
		Password:     password,
		From:         from,
		Subject:      "Seu material sobre a Reforma Tributária chegou, %s! 📚",
		CampaignName: "Reforma Tributária",
	}
}

func (s *EmailSender) Name() string { return "mail" }

// Notify sends the download link to a lead that just completed the form.
func (s *EmailSender) Notify(_ context.Context, payload queue.LeadCompletedPayload) error {
	if err := s.SendDownloadLink(payload.Email, payload.Name, s.DownloadURL); err != nil {
		metrics.RecordIntegrationError("smtp")
		return err
	}
	return nil
}

func (s *EmailSender) SendDownloadLink(to, name, downloadURL string) error {
	if downloadURL == "" {
		return fmt.Errorf("link de download não configurado")
	}

	m, err := s.buildMessage(to, name, downloadURL)
	if err != nil {
		return err
	}

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}
	return nil
}

func (s *EmailSender) buildMessage(to, name, downloadURL string) (*gomail.Message, error) {
	body, err := s.renderDownloadEmail(name, downloadURL)
	if err != nil {
		return nil, err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", s.subjectFor(name))
	m.SetBody("text/html", body)
	return m, nil
}

func (s *EmailSender) renderDownloadEmail(name, downloadURL string) (string, error) {
	data := DownloadEmailData{
		Name:         firstName(name),
		DownloadURL:  downloadURL,
		CampaignName: s.CampaignName,
	}

	var body bytes.Buffer
	if err := downloadTmpl.Execute(&body, data); err != nil {
		return "", fmt.Errorf("erro ao processar template: %w", err)
	}
	return body.String(), nil
}

func (s *EmailSender) subjectFor(name string) string {
	if strings.Contains(s.Subject, "%s") {
		return fmt.Sprintf(s.Subject, firstName(name))
	}
	return s.Subject
}

func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return name
	}
	return fields[0]
}
