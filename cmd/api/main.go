package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/xavierca1/ligue-leads/internal/config"
	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/database"
	"github.com/xavierca1/ligue-leads/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-leads/internal/infra/integration/kommo"
	"github.com/xavierca1/ligue-leads/internal/infra/integration/sheets"
	"github.com/xavierca1/ligue-leads/internal/infra/integration/whatsapp"
	"github.com/xavierca1/ligue-leads/internal/infra/mail"
	"github.com/xavierca1/ligue-leads/internal/infra/queue"
	"github.com/xavierca1/ligue-leads/internal/infra/worker"
	"github.com/xavierca1/ligue-leads/internal/logging"
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Parse()
	logging.Setup(cfg.LogLevel)
	if err != nil {
		logging.Fatal("❌ configuração inválida", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Repositório
	repo, abandoner, db, err := buildRepository(ctx, cfg)
	if err != nil {
		logging.Fatal("❌ erro ao iniciar repositório", "backend", cfg.Backend, "error", err)
	}
	if db != nil {
		defer db.Close()
	}
	slog.Info("📦 repositório de leads", "backend", cfg.Backend)

	// 2. Fila e notificações
	var publisher usecase.LeadEventPublisher
	var rabbit *queue.RabbitMQ
	if cfg.RabbitMQURL != "" {
		rabbit, err = queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			logging.Fatal("❌ erro ao conectar no RabbitMQ", "error", err)
		}
		defer rabbit.Close()
		publisher = queue.NewProducer(rabbit.Ch)

		if err := startNotificationWorker(ctx, cfg, rabbit); err != nil {
			logging.Fatal("❌ erro ao iniciar worker", "error", err)
		}
	} else {
		slog.Warn("⚠️ RABBITMQ_URL vazio: notificações desativadas")
	}

	// 3. Sessões de formulário
	opts := usecase.ControllerOptions{
		AutosaveDelay: cfg.AutosaveDelay,
		SaveTimeout:   cfg.SaveTimeout,
	}
	sessions := usecase.NewSessionStore(func() *usecase.FormController {
		return usecase.NewFormController(usecase.NewDraftPersister(repo, publisher), opts)
	})

	expiration := worker.NewDraftExpirationWorker(abandoner, sessions,
		cfg.SessionIdleTTL, cfg.DraftAbandonAfter, cfg.SweepInterval)
	go expiration.Start(ctx)

	// 4. Handlers
	limiter := handlers.NewRateLimiter(cfg.RateLimitPerMin)
	go limiter.Cleanup(ctx, 10*time.Minute)

	captureUC := usecase.NewCaptureLeadUseCase(repo, publisher, cfg.Campaign.DownloadURL)

	health := handlers.NewHealthHandler(nil, nil, cfg.Backend)
	health.Sessions = sessions
	if db != nil {
		health.DB = db
	}
	if rabbit != nil {
		health.RabbitMQ = rabbit.Conn
	}

	router := NewRouter(routes{
		Forms:          handlers.NewFormHandler(sessions, cfg.Campaign.DownloadURL),
		Leads:          handlers.NewLeadHandler(captureUC, limiter),
		Validation:     handlers.NewValidationHandler(),
		Health:         health,
		Limiter:        limiter,
		AllowedOrigins: cfg.AllowedOrigins,
		TrustProxy:     cfg.TrustProxy,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("🔥 Server de leads rodando", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("❌ erro no servidor HTTP", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("🛑 encerrando...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("❌ erro ao encerrar servidor", "error", err)
	}

	// rascunhos com auto-save pendente são gravados antes de sair
	sessions.FlushAll()
}

// buildRepository picks the record store named by LEAD_BACKEND. The
// abandoner is nil for the sheets backend, which only sees completed rows.
func buildRepository(ctx context.Context, cfg config.Config) (entity.LeadRepository, entity.DraftAbandoner, *sql.DB, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		db, err := database.NewDBConnection(cfg.DBDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if cfg.AutoMigrate {
			if err := database.EnsureSchema(ctx, db); err != nil {
				db.Close()
				return nil, nil, nil, err
			}
			slog.Info("✅ schema verificado")
		}
		repo := database.NewLeadRepository(db)
		return repo, repo, db, nil

	case config.BackendSheets:
		return sheets.NewWebhookRepository(cfg.SheetsWebhookURL, nil), nil, nil, nil

	case config.BackendMemory:
		repo := database.NewMemoryLeadRepository()
		return repo, repo, nil, nil
	}
	return nil, nil, nil, fmt.Errorf("backend desconhecido: %s", cfg.Backend)
}

func startNotificationWorker(ctx context.Context, cfg config.Config, rabbit *queue.RabbitMQ) error {
	var notifiers []queue.LeadNotifier

	if cfg.MailHost != "" {
		sender := mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom)
		sender.DownloadURL = cfg.Campaign.DownloadURL
		sender.CampaignName = cfg.Campaign.Name
		if cfg.Campaign.EmailSubject != "" {
			sender.Subject = cfg.Campaign.EmailSubject
		}
		notifiers = append(notifiers, sender)
	}

	if cfg.KommoToken != "" {
		crm := kommo.NewClient(cfg.KommoToken, cfg.KommoBaseURL, cfg.KommoStatusID)
		crm.RoleLabels = cfg.Campaign.RoleLabels
		notifiers = append(notifiers, crm)
	}

	if cfg.WhatsAppToken != "" {
		notifiers = append(notifiers, whatsapp.NewClient(
			cfg.WhatsAppToken, cfg.WhatsAppPhoneID, "", cfg.WhatsAppTemplate, cfg.Campaign.DownloadURL))
	}

	if len(notifiers) == 0 {
		slog.Warn("⚠️ nenhum notificador configurado; worker não iniciado")
		return nil
	}

	ch, err := rabbit.ConsumerChannel(10)
	if err != nil {
		return err
	}

	w := queue.NewWorker(ch, notifiers...)
	go func() {
		defer ch.Close()
		if err := w.Start(ctx, queue.QueueName); err != nil {
			slog.Error("❌ worker de notificações parou", "error", err)
		}
	}()
	return nil
}
