package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// EmailService defines the interface for outbound mail
type EmailService interface {
	SendWelcomeEmail(toEmail, toName string) error
	SendApplicationStatusEmail(toEmail, toName string, update StatusUpdate) error
	SendNewMessageEmail(toEmail, toName, senderName, subject string) error
}

// StatusUpdate describes an application status change for the candidate
type StatusUpdate struct {
	ApplicationID int64
	JobTitle      string
	CompanyName   string
	Status        string
	Note          string
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
	BaseURL   string // public URL used in links
}

// EmailServiceImpl implements EmailService
type EmailServiceImpl struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewEmailService creates a new EmailService
func NewEmailService(config SMTPConfig, logger zerolog.Logger) EmailService {
	return &EmailServiceImpl{
		config: config,
		logger: logger,
	}
}

var (
	welcomeTmpl = template.Must(template.New("welcome").Parse(`<html><body>
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2 style="color: #333;">Welcome to HireLoop!</h2>
<p>Hello {{.Name}},</p>
<p>Your account is ready. Sign in at <a href="{{.BaseURL}}">{{.BaseURL}}</a> to get started.</p>
<p>Best regards,<br>The HireLoop Team</p>
</div></body></html>`))

	statusTmpl = template.Must(template.New("status").Parse(`<html><body>
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2 style="color: #333;">Application update</h2>
<p>Hello {{.Name}},</p>
<p>Your application for <strong>{{.JobTitle}}</strong>{{if .CompanyName}} at {{.CompanyName}}{{end}} is now <strong>{{.Status}}</strong>.</p>
{{if .Note}}<p>{{.Note}}</p>{{end}}
<p><a href="{{.BaseURL}}/applications/{{.ApplicationID}}">View application</a></p>
<p>Best regards,<br>The HireLoop Team</p>
</div></body></html>`))

	messageTmpl = template.Must(template.New("message").Parse(`<html><body>
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<p>Hello {{.Name}},</p>
<p>{{.Sender}} sent you a new message{{if .Subject}} in "{{.Subject}}"{{end}}.</p>
<p><a href="{{.BaseURL}}/messages">Open your inbox</a></p>
</div></body></html>`))
)

// SendWelcomeEmail greets a newly registered user
func (s *EmailServiceImpl) SendWelcomeEmail(toEmail, toName string) error {
	body, err := render(welcomeTmpl, map[string]interface{}{"Name": toName, "BaseURL": s.config.BaseURL})
	if err != nil {
		return err
	}
	return s.deliver(toEmail, "Welcome to HireLoop", body)
}

// SendApplicationStatusEmail tells a candidate their application moved
func (s *EmailServiceImpl) SendApplicationStatusEmail(toEmail, toName string, update StatusUpdate) error {
	body, err := render(statusTmpl, map[string]interface{}{
		"Name":          toName,
		"JobTitle":      update.JobTitle,
		"CompanyName":   update.CompanyName,
		"Status":        HumanStatus(update.Status),
		"Note":          update.Note,
		"ApplicationID": update.ApplicationID,
		"BaseURL":       s.config.BaseURL,
	})
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Your application for %s: %s", update.JobTitle, HumanStatus(update.Status))
	return s.deliver(toEmail, subject, body)
}

// SendNewMessageEmail notifies a participant of a new conversation message
func (s *EmailServiceImpl) SendNewMessageEmail(toEmail, toName, senderName, subject string) error {
	body, err := render(messageTmpl, map[string]interface{}{
		"Name":    toName,
		"Sender":  senderName,
		"Subject": subject,
		"BaseURL": s.config.BaseURL,
	})
	if err != nil {
		return err
	}
	return s.deliver(toEmail, "New message on HireLoop", body)
}

// HumanStatus turns INTERVIEW_SCHEDULED into "Interview scheduled"
func HumanStatus(status string) string {
	s := strings.ToLower(strings.ReplaceAll(status, "_", " "))
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func render(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", t.Name(), err)
	}
	return buf.String(), nil
}

func (s *EmailServiceImpl) configured() bool {
	return s.config.Host != "" && s.config.Username != "" && s.config.Password != ""
}

// deliver logs instead of sending when SMTP is not configured
func (s *EmailServiceImpl) deliver(toEmail, subject, body string) error {
	if !s.configured() {
		s.logger.Info().
			Str("toEmail", toEmail).
			Str("subject", subject).
			Msg("SMTP not configured - email logged instead of sent")
		return nil
	}
	return s.sendHTMLEmail(toEmail, subject, body)
}

func buildMessage(fromName, fromEmail, toEmail, subject, htmlBody string) []byte {
	headers := map[string]string{
		"From":         fmt.Sprintf("%s <%s>", fromName, fromEmail),
		"To":           toEmail,
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=UTF-8",
	}
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\r\n", k, headers[k])
	}
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}

func (s *EmailServiceImpl) sendHTMLEmail(toEmail, subject, htmlBody string) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	message := buildMessage(s.config.FromName, s.config.FromEmail, toEmail, subject, htmlBody)
	serverAddress := s.config.Host + ":" + strconv.Itoa(s.config.Port)

	if !s.config.UseTLS {
		if err := smtp.SendMail(serverAddress, auth, s.config.FromEmail, []string{toEmail}, message); err != nil {
			s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to send email")
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	}

	conn, err := tls.Dial("tcp", serverAddress, &tls.Config{ServerName: s.config.Host})
	if err != nil {
		s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to connect to SMTP server")
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	if err = client.Auth(auth); err != nil {
		s.logger.Error().Err(err).Msg("SMTP authentication failed")
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(toEmail); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write(message); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return nil
}
