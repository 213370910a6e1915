package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/leadstream/internal/infra/database"
	"github.com/xavierca1/leadstream/internal/infra/http/handlers"
	"github.com/xavierca1/leadstream/internal/infra/http/middleware"
	"github.com/xavierca1/leadstream/internal/infra/integration/gmail"
	"github.com/xavierca1/leadstream/internal/infra/integration/llm"
	"github.com/xavierca1/leadstream/internal/infra/integration/slack"
	"github.com/xavierca1/leadstream/internal/infra/integration/zoho"
	"github.com/xavierca1/leadstream/internal/infra/mail"
	"github.com/xavierca1/leadstream/internal/infra/notifier"
	"github.com/xavierca1/leadstream/internal/infra/queue"
	"github.com/xavierca1/leadstream/internal/usecase"
)

func main() {
	godotenv.Load()

	db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("❌ Falha ao conectar no banco: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("❌ Falha na migração: %v", err)
	}

	rabbitMQ, err := queue.NewRabbitMQ(
		envOr("RABBITMQ_USER", "user"),
		envOr("RABBITMQ_PASS", "password"),
		envOr("RABBITMQ_HOST", "localhost"),
		envOr("RABBITMQ_PORT", "5672"),
	)
	if err != nil {
		log.Fatalf("❌ Falha ao conectar no RabbitMQ: %v", err)
	}
	defer rabbitMQ.Conn.Close()
	defer rabbitMQ.Ch.Close()

	// 1. Repositórios
	sessionRepo := database.NewSessionRepository(db)
	teamRepo := database.NewTeamRepository(db)
	credRepo := database.NewCredentialRepository(db)
	eventRepo := database.NewEventRepository(db)
	projectRepo := database.NewProjectRepository(db)
	leadRepo := database.NewLeadRepository(db)

	// 2. Hub de notificações e serviços de aplicação
	hub := notifier.NewHub()
	registry := usecase.NewRegistry(sessionRepo, teamRepo)
	tokens := usecase.NewTokenStore(credRepo)
	eventLogger := usecase.NewEventLogger(eventRepo, hub)

	timeoutMinutes, _ := strconv.Atoi(envOr("EVENT_TIMEOUT_MINUTES", "5"))
	monitor := usecase.NewTimeoutMonitor(eventLogger, time.Duration(timeoutMinutes)*time.Minute)
	monitor.Start()
	defer monitor.Stop()

	// 3. Gateways e Adapters
	slackClient := slack.NewClient()
	zohoClient := zoho.NewClient()
	gmailClient := gmail.NewClient()
	llmClient := llm.NewClient()

	mailPort, _ := strconv.Atoi(envOr("MAIL_PORT", "587"))
	smtpSender := mail.NewEmailSender(
		os.Getenv("MAIL_HOST"), mailPort, os.Getenv("MAIL_USER"), os.Getenv("MAIL_PASS"),
	)

	chatNotifier := slack.NewNotifier(tokens, slackClient)
	crm := zoho.NewCRM(tokens, zohoClient)
	emailNotifier := gmail.NewNotifier(tokens, gmailClient, smtpSender)

	producer := queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)

	// 4. UseCase do pipeline + Worker (consome a fila)
	pipeline := usecase.NewProcessLeadUseCase(
		eventLogger, llmClient, projectRepo, leadRepo, crm, emailNotifier, chatNotifier,
	)
	worker := queue.NewWorker(rabbitMQ.Ch, pipeline)
	go worker.Start(queue.QueueName)

	// 5. Handlers
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Conn, hub, slackClient, zohoClient, gmailClient)
	teamHandler := handlers.NewTeamHandler(registry, tokens, eventLogger)
	eventHandler := handlers.NewEventHandler(eventLogger, monitor)
	wsHandler := handlers.NewWSHandler(hub, eventLogger, registry)
	slackHandler := handlers.NewSlackHandler(slackClient, tokens, registry, producer)
	zohoHandler := handlers.NewZohoHandler(zohoClient, crm, tokens, registry)
	gmailHandler := handlers.NewGmailHandler(gmailClient, tokens, registry)

	// 6. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Session-ID"},
	}))

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/session/init", teamHandler.HandleInitSession)
	r.Get("/teams", teamHandler.HandleList)
	r.Get("/teams/{teamID}", teamHandler.HandleGet)
	r.Post("/teams/{teamID}/ensure", teamHandler.HandleEnsure)
	r.Get("/teams/{teamID}/integrations", teamHandler.HandleIntegrations)

	r.Get("/logs", eventHandler.HandleList)
	r.Post("/logs/test-event", eventHandler.HandleTestEvent)
	r.Post("/logs/test-processing-event", eventHandler.HandleTestProcessingEvent)
	r.Post("/logs/check-timeouts", eventHandler.HandleCheckTimeouts)
	r.Get("/logs/timeout-config", eventHandler.HandleTimeoutConfig)
	r.Get("/ws/logs", wsHandler.Handle)

	r.Post("/slack/events", slackHandler.HandleEvents)
	r.Get("/slack/oauth/authorize", slackHandler.HandleAuthorize)
	r.Get("/slack/oauth/callback", slackHandler.HandleOAuthCallback)
	r.Get("/slack/status", slackHandler.HandleStatus)

	r.Get("/zoho/oauth/authorize", zohoHandler.HandleAuthorize)
	r.Get("/zoho/oauth/callback", zohoHandler.HandleOAuthCallback)
	r.Get("/zoho/status", zohoHandler.HandleStatus)
	r.Post("/zoho/leads/{teamID}", zohoHandler.HandleInsertLead)

	r.Get("/gmail/oauth/authorize", gmailHandler.HandleAuthorize)
	r.Get("/gmail/oauth/callback", gmailHandler.HandleOAuthCallback)
	r.Get("/gmail/status", gmailHandler.HandleStatus)

	port := ":" + envOr("PORT", "8080")
	server := &http.Server{Addr: port, Handler: r}

	go func() {
		log.Printf("🔥 LeadStream rodando na porta %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Servidor caiu: %v", err)
		}
	}()

	// Shutdown gracioso: para de aceitar request, derruba os assinantes
	// do WebSocket e só então solta os defers (worker, monitor, conexões)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🔄 Encerrando servidor...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("⚠️ Shutdown forçado: %v", err)
	}
	hub.Close()
	log.Println("✅ Servidor encerrado")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
