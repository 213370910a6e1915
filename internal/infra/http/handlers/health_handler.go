package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/leadstream/internal/infra/integration/gmail"
	"github.com/xavierca1/leadstream/internal/infra/integration/slack"
	"github.com/xavierca1/leadstream/internal/infra/integration/zoho"
	"github.com/xavierca1/leadstream/internal/infra/notifier"
)

type HealthHandler struct {
	DB        *sql.DB
	RabbitMQ  *amqp091.Connection
	Hub       *notifier.Hub
	Slack     *slack.Client
	Zoho      *zoho.Client
	Gmail     *gmail.Client
	StartTime time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Subscribers  int               `json:"ws_subscribers"`
	Dependencies map[string]string `json:"dependencies"`
}

func NewHealthHandler(
	db *sql.DB,
	rabbitMQ *amqp091.Connection,
	hub *notifier.Hub,
	slackClient *slack.Client,
	zohoClient *zoho.Client,
	gmailClient *gmail.Client,
) *HealthHandler {
	return &HealthHandler{
		DB:        db,
		RabbitMQ:  rabbitMQ,
		Hub:       hub,
		Slack:     slackClient,
		Zoho:      zohoClient,
		Gmail:     gmailClient,
		StartTime: time.Now(),
	}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	deps := make(map[string]string)

	// Check Database
	if h.DB != nil {
		if err := h.DB.Ping(); err != nil {
			deps["database"] = fmt.Sprintf("unhealthy: %v", err)
		} else {
			deps["database"] = "healthy"
		}
	} else {
		deps["database"] = "not configured"
	}

	// Check RabbitMQ
	if h.RabbitMQ != nil {
		if h.RabbitMQ.IsClosed() {
			deps["rabbitmq"] = "unhealthy: connection closed"
		} else {
			deps["rabbitmq"] = "healthy"
		}
	} else {
		deps["rabbitmq"] = "not configured"
	}

	// Integrações só têm client credentials no ambiente; o token em si é
	// por time e não entra no health
	deps["slack"] = configuredLabel(h.Slack != nil && h.Slack.Configured())
	deps["zoho"] = configuredLabel(h.Zoho != nil && h.Zoho.Configured())
	deps["gmail"] = configuredLabel(h.Gmail != nil && h.Gmail.Configured())

	// Determine overall status
	status := "healthy"
	for _, v := range deps {
		if v != "healthy" && v != "configured" && v != "not configured" {
			status = "degraded"
			break
		}
	}

	uptime := time.Since(h.StartTime).Round(time.Second).String()

	subscribers := 0
	if h.Hub != nil {
		subscribers = h.Hub.Count()
	}

	response := HealthResponse{
		Status:       status,
		Version:      "1.0.0",
		Uptime:       uptime,
		Subscribers:  subscribers,
		Dependencies: deps,
	}

	if status == "degraded" {
		writeJSON(w, http.StatusServiceUnavailable, response)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func configuredLabel(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}
