package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendPostgres = "postgres"
	BackendSheets   = "sheets"
	BackendMemory   = "memory"
)

type Config struct {
	Port     string
	LogLevel string

	Backend     string
	DatabaseURL string
	DBDriver    string
	AutoMigrate bool

	SheetsWebhookURL string

	RabbitMQURL string

	MailHost string
	MailPort int
	MailUser string
	MailPass string
	MailFrom string

	KommoToken    string
	KommoBaseURL  string
	KommoStatusID int

	WhatsAppToken    string
	WhatsAppPhoneID  string
	WhatsAppTemplate string

	AutosaveDelay     time.Duration
	SaveTimeout       time.Duration
	SessionIdleTTL    time.Duration
	DraftAbandonAfter time.Duration
	SweepInterval     time.Duration

	RateLimitPerMin int
	AllowedOrigins  []string
	TrustProxy      bool

	CampaignFile string
	Campaign     Campaign
}

// Campaign is the per-landing-page content loaded from CAMPAIGN_FILE.
type Campaign struct {
	Name         string            `yaml:"name"`
	DownloadURL  string            `yaml:"download_url"`
	EmailSubject string            `yaml:"email_subject"`
	RoleLabels   map[string]string `yaml:"role_labels"`
}

// Parse reads the environment. Call godotenv.Load() before it to pick up a
// local .env file.
func Parse() (Config, error) {
	cfg := Config{
		Port:     getString("PORT", "8080"),
		LogLevel: getString("LOG_LEVEL", "INFO"),

		Backend:     strings.ToLower(getString("LEAD_BACKEND", BackendPostgres)),
		DatabaseURL: getString("DATABASE_URL", ""),
		DBDriver:    getString("DB_DRIVER", "pgx"),
		AutoMigrate: getBool("AUTO_MIGRATE", false),

		SheetsWebhookURL: getString("SHEETS_WEBHOOK_URL", ""),

		RabbitMQURL: getString("RABBITMQ_URL", ""),

		MailHost: getString("MAIL_HOST", ""),
		MailPort: getInt("MAIL_PORT", 587),
		MailUser: getString("MAIL_USER", ""),
		MailPass: getString("MAIL_PASS", ""),
		MailFrom: getString("MAIL_FROM", "nao-responda@ligue.com.br"),

		KommoToken:    getString("KOMMO_API_TOKEN", ""),
		KommoBaseURL:  getString("KOMMO_BASE_URL", "https://liguemedicina.kommo.com/api/v4"),
		KommoStatusID: getInt("KOMMO_STATUS_ID", 0),

		WhatsAppToken:    getString("WHATSAPP_ACCESS_TOKEN", ""),
		WhatsAppPhoneID:  getString("WHATSAPP_PHONE_ID", ""),
		WhatsAppTemplate: getString("WHATSAPP_TEMPLATE", "material_download"),

		AutosaveDelay:     getDuration("AUTOSAVE_DELAY_MS", 2000, time.Millisecond),
		SaveTimeout:       getDuration("SAVE_TIMEOUT_MS", 10_000, time.Millisecond),
		SessionIdleTTL:    getDuration("SESSION_IDLE_TTL_MIN", 30, time.Minute),
		DraftAbandonAfter: getDuration("DRAFT_ABANDON_AFTER_MIN", 24*60, time.Minute),
		SweepInterval:     getDuration("SWEEP_INTERVAL_SEC", 60, time.Second),

		RateLimitPerMin: getInt("RATE_LIMIT_PER_MIN", 10),
		AllowedOrigins:  parseList(getString("ALLOWED_ORIGINS", "http://localhost:5173")),
		TrustProxy:      getBool("TRUST_PROXY", false),

		CampaignFile: getString("CAMPAIGN_FILE", ""),
		Campaign: Campaign{
			Name:        "Reforma Tributária",
			DownloadURL: getString("DOWNLOAD_URL", ""),
		},
	}

	if cfg.CampaignFile != "" {
		c, err := LoadCampaign(cfg.CampaignFile)
		if err != nil {
			return cfg, err
		}
		cfg.Campaign = mergeCampaign(cfg.Campaign, c)
	}

	return cfg, cfg.Validate()
}

// Validate checks that the chosen backend has what it needs.
func (c Config) Validate() error {
	var problems []string

	switch c.Backend {
	case BackendPostgres:
		if c.DatabaseURL == "" {
			problems = append(problems, "DATABASE_URL is required for the postgres backend")
		}
		if c.DBDriver != "pgx" && c.DBDriver != "postgres" {
			problems = append(problems, "DB_DRIVER must be pgx or postgres")
		}
	case BackendSheets:
		if c.SheetsWebhookURL == "" {
			problems = append(problems, "SHEETS_WEBHOOK_URL is required for the sheets backend")
		}
	case BackendMemory:
	default:
		problems = append(problems, fmt.Sprintf("LEAD_BACKEND %q is not one of postgres, sheets, memory", c.Backend))
	}

	if c.AutosaveDelay <= 0 {
		problems = append(problems, "AUTOSAVE_DELAY_MS must be positive")
	}
	if c.SweepInterval <= 0 {
		problems = append(problems, "SWEEP_INTERVAL_SEC must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func LoadCampaign(path string) (Campaign, error) {
	var c Campaign
	b, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read campaign file: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("parse campaign file: %w", err)
	}
	return c, nil
}

// mergeCampaign overlays the non-empty fields of file on base.
func mergeCampaign(base, file Campaign) Campaign {
	if file.Name != "" {
		base.Name = file.Name
	}
	if file.DownloadURL != "" {
		base.DownloadURL = file.DownloadURL
	}
	if file.EmailSubject != "" {
		base.EmailSubject = file.EmailSubject
	}
	if len(file.RoleLabels) > 0 {
		base.RoleLabels = file.RoleLabels
	}
	return base
}

func parseList(csv string) []string {
	var out []string
	for _, item := range strings.Split(csv, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDuration(key string, def int, unit time.Duration) time.Duration {
	return time.Duration(getInt(key, def)) * unit
}
