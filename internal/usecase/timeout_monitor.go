package usecase

import (
	"context"
	"fmt"
	"log"
	"time"
)

// TimeoutMonitor varre eventos travados em "processing" e marca como
// erro. Roda num goroutine de fundo, checando a cada minuto.
type TimeoutMonitor struct {
	Logger  *EventLogger
	Timeout time.Duration

	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewTimeoutMonitor(logger *EventLogger, timeout time.Duration) *TimeoutMonitor {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &TimeoutMonitor{
		Logger:   logger,
		Timeout:  timeout,
		interval: time.Minute,
	}
}

func (m *TimeoutMonitor) Start() {
	if m.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := m.Sweep(ctx); err != nil {
					log.Printf("⚠️ [TIMEOUT] Erro na varredura: %v", err)
				}
			}
		}
	}()

	log.Printf("⏱️ Monitor de timeout iniciado (timeout: %s)", m.Timeout)
}

func (m *TimeoutMonitor) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
	m.cancel = nil
	log.Println("⏱️ Monitor de timeout parado")
}

// Sweep marca como erro todo evento "processing" mais velho que o
// timeout. Cada atualização passa pelo EventLogger, então os
// assinantes do dashboard recebem a mudança.
func (m *TimeoutMonitor) Sweep(ctx context.Context) error {
	cutoff := time.Now().Add(-m.Timeout)
	stuck, err := m.Logger.Repo.FindStuckProcessing(ctx, cutoff)
	if err != nil {
		return err
	}

	for _, event := range stuck {
		msg := fmt.Sprintf("Event timed out after %d minutes", int(m.Timeout.Minutes()))
		if _, err := m.Logger.Update(ctx, event.ID, ErrorPatch(msg)); err != nil {
			log.Printf("⚠️ [TIMEOUT] Falha ao expirar evento #%d: %v", event.ID, err)
			continue
		}
		log.Printf("⏱️ Evento #%d (%s) expirado por timeout", event.ID, event.EventType)
	}
	return nil
}

type TimeoutConfig struct {
	TimeoutMinutes int  `json:"timeout_minutes"`
	MonitorRunning bool `json:"monitor_running"`
}

func (m *TimeoutMonitor) Config() TimeoutConfig {
	return TimeoutConfig{
		TimeoutMinutes: int(m.Timeout.Minutes()),
		MonitorRunning: m.cancel != nil,
	}
}
