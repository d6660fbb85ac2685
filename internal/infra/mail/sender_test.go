package mail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

func TestRenderDownloadEmail(t *testing.T) {
	s := NewEmailSender("smtp.example.com", 587, "user", "pass", "nao-responda@ligue.com.br")

	body, err := s.renderDownloadEmail("Ana Silva", "https://cdn.example.com/guia.pdf?a=1&b=2")
	require.NoError(t, err)

	assert.Contains(t, body, "Ana")
	assert.NotContains(t, body, "Ana Silva")
	assert.Contains(t, body, "Reforma Tributária")
	// html/template escapa o & no atributo href
	assert.Contains(t, body, "https://cdn.example.com/guia.pdf?a=1&amp;b=2")
}

func TestRenderDownloadEmailEscapesName(t *testing.T) {
	s := NewEmailSender("", 0, "", "", "")

	body, err := s.renderDownloadEmail("<script>", "https://x")
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
}

func TestSubjectFor(t *testing.T) {
	s := NewEmailSender("", 0, "", "", "")
	assert.Equal(t, "Seu material sobre a Reforma Tributária chegou, Ana! 📚", s.subjectFor("Ana Silva"))

	s.Subject = "Seu guia chegou"
	assert.Equal(t, "Seu guia chegou", s.subjectFor("Ana Silva"))
}

func TestBuildMessageHeaders(t *testing.T) {
	s := NewEmailSender("", 0, "", "", "from@ligue.com.br")

	m, err := s.buildMessage("ana@example.com", "Ana", "https://x")
	require.NoError(t, err)
	assert.Equal(t, []string{"from@ligue.com.br"}, m.GetHeader("From"))
	assert.Equal(t, []string{"ana@example.com"}, m.GetHeader("To"))
}

func TestNotifyWithoutDownloadURL(t *testing.T) {
	s := NewEmailSender("", 0, "", "", "")
	err := s.Notify(context.Background(), queue.LeadCompletedPayload{Email: "ana@example.com", Name: "Ana"})
	assert.Error(t, err)
	assert.Equal(t, "mail", s.Name())
}
