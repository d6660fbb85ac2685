package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv zera as variáveis lidas por Parse; vazio vale como ausente.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "LEAD_BACKEND", "DATABASE_URL", "DB_DRIVER", "AUTO_MIGRATE",
		"SHEETS_WEBHOOK_URL", "RABBITMQ_URL", "MAIL_HOST", "MAIL_PORT", "DOWNLOAD_URL",
		"AUTOSAVE_DELAY_MS", "SAVE_TIMEOUT_MS", "SESSION_IDLE_TTL_MIN", "DRAFT_ABANDON_AFTER_MIN",
		"SWEEP_INTERVAL_SEC", "RATE_LIMIT_PER_MIN", "ALLOWED_ORIGINS", "TRUST_PROXY", "CAMPAIGN_FILE",
	} {
		t.Setenv(key, "")
	}
}

func TestParseDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("LEAD_BACKEND", "memory")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.Equal(t, "pgx", cfg.DBDriver)
	assert.Equal(t, 2*time.Second, cfg.AutosaveDelay)
	assert.Equal(t, 10*time.Second, cfg.SaveTimeout)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTTL)
	assert.Equal(t, 24*time.Hour, cfg.DraftAbandonAfter)
	assert.Equal(t, 10, cfg.RateLimitPerMin)
	assert.False(t, cfg.TrustProxy)
	assert.Equal(t, "Reforma Tributária", cfg.Campaign.Name)
}

func TestParseOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LEAD_BACKEND", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/leads")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("AUTO_MIGRATE", "true")
	t.Setenv("AUTOSAVE_DELAY_MS", "500")
	t.Setenv("ALLOWED_ORIGINS", "https://a.com, https://b.com,")
	t.Setenv("DOWNLOAD_URL", "https://cdn.example.com/guia.pdf")
	t.Setenv("MAIL_PORT", "not-a-number")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, BackendPostgres, cfg.Backend)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, 500*time.Millisecond, cfg.AutosaveDelay)
	assert.Equal(t, []string{"https://a.com", "https://b.com"}, cfg.AllowedOrigins)
	assert.Equal(t, "https://cdn.example.com/guia.pdf", cfg.Campaign.DownloadURL)
	assert.Equal(t, 587, cfg.MailPort)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"postgres ok", Config{Backend: BackendPostgres, DatabaseURL: "x", DBDriver: "pgx", AutosaveDelay: time.Second, SweepInterval: time.Minute}, false},
		{"postgres sem url", Config{Backend: BackendPostgres, DBDriver: "pgx", AutosaveDelay: time.Second, SweepInterval: time.Minute}, true},
		{"driver inválido", Config{Backend: BackendPostgres, DatabaseURL: "x", DBDriver: "mysql", AutosaveDelay: time.Second, SweepInterval: time.Minute}, true},
		{"sheets sem webhook", Config{Backend: BackendSheets, AutosaveDelay: time.Second, SweepInterval: time.Minute}, true},
		{"sheets ok", Config{Backend: BackendSheets, SheetsWebhookURL: "https://script.google.com/x", AutosaveDelay: time.Second, SweepInterval: time.Minute}, false},
		{"backend desconhecido", Config{Backend: "redis", AutosaveDelay: time.Second, SweepInterval: time.Minute}, true},
		{"sweep zero", Config{Backend: BackendMemory, AutosaveDelay: time.Second}, true},
		{"sweep negativo", Config{Backend: BackendMemory, AutosaveDelay: time.Second, SweepInterval: -time.Second}, true},
		{"delay zero", Config{Backend: BackendMemory}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCampaignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "campaign.yaml")
	content := `
name: Reforma Tributária 2026
download_url: https://cdn.example.com/reforma-2026.pdf
email_subject: Seu guia chegou
role_labels:
  accounting: Contabilidade
  tax-law: Direito Tributário
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	clearEnv(t)
	t.Setenv("LEAD_BACKEND", "memory")
	t.Setenv("DOWNLOAD_URL", "https://cdn.example.com/old.pdf")
	t.Setenv("CAMPAIGN_FILE", path)

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "Reforma Tributária 2026", cfg.Campaign.Name)
	assert.Equal(t, "https://cdn.example.com/reforma-2026.pdf", cfg.Campaign.DownloadURL)
	assert.Equal(t, "Seu guia chegou", cfg.Campaign.EmailSubject)
	assert.Equal(t, "Contabilidade", cfg.Campaign.RoleLabels["accounting"])
}

func TestCampaignFileMissing(t *testing.T) {
	clearEnv(t)
	t.Setenv("LEAD_BACKEND", "memory")
	t.Setenv("CAMPAIGN_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Parse()
	assert.Error(t, err)
}

func TestParseRejectsNonPositiveSweepInterval(t *testing.T) {
	for _, v := range []string{"0", "-5"} {
		t.Run(v, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("LEAD_BACKEND", "memory")
			t.Setenv("SWEEP_INTERVAL_SEC", v)

			_, err := Parse()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "SWEEP_INTERVAL_SEC")
		})
	}
}
