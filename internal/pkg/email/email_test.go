package email

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanStatus(t *testing.T) {
	assert.Equal(t, "Interview scheduled", HumanStatus("INTERVIEW_SCHEDULED"))
	assert.Equal(t, "Hired", HumanStatus("HIRED"))
	assert.Equal(t, "", HumanStatus(""))
}

func TestStatusTemplateEscapesInput(t *testing.T) {
	body, err := render(statusTmpl, map[string]interface{}{
		"Name":          "Ada",
		"JobTitle":      "<script>alert(1)</script>",
		"Status":        "Shortlisted",
		"ApplicationID": int64(12),
		"BaseURL":       "https://hireloop.test",
	})
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "/applications/12")
	assert.Contains(t, body, "Shortlisted")
}

func TestBuildMessageHeaders(t *testing.T) {
	msg := string(buildMessage("HireLoop", "no-reply@hireloop.test", "ada@example.com", "Hi", "<p>x</p>"))
	assert.True(t, strings.HasPrefix(msg, "Content-Type: text/html"))
	assert.Contains(t, msg, "From: HireLoop <no-reply@hireloop.test>\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\n<p>x</p>"))
}

func TestUnconfiguredServiceLogsInsteadOfSending(t *testing.T) {
	svc := NewEmailService(SMTPConfig{}, zerolog.Nop())
	assert.NoError(t, svc.SendApplicationStatusEmail("ada@example.com", "Ada", StatusUpdate{JobTitle: "Go dev", Status: "HIRED"}))
	assert.NoError(t, svc.SendWelcomeEmail("ada@example.com", "Ada"))
	assert.NoError(t, svc.SendNewMessageEmail("ada@example.com", "Ada", "Bob", "Offer"))
}
