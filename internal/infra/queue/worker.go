package queue

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/leadstream/internal/infra/http/middleware"
	"github.com/xavierca1/leadstream/internal/usecase"
)

// PipelineExecutor é o contrato do worker com o pipeline de leads.
type PipelineExecutor interface {
	Execute(ctx context.Context, msg usecase.InboundMessage) error
}

type Worker struct {
	Channel  *amqp.Channel
	Pipeline PipelineExecutor
}

func NewWorker(ch *amqp.Channel, pipeline PipelineExecutor) *Worker {
	return &Worker{Channel: ch, Pipeline: pipeline}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName, // fila
		"",        // consumer
		false,     // auto-ack (manual é mais seguro)
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		log.Fatalf("❌ Falha ao registrar consumidor RabbitMQ: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var msg usecase.InboundMessage
			if err := json.Unmarshal(d.Body, &msg); err != nil {
				log.Printf("❌ [WORKER] JSON Inválido: %s", err)
				// Mensagem podre. Rejeita sem requeue para não travar a fila.
				d.Nack(false, false)
				continue
			}

			log.Printf("📥 [WORKER] Mensagem do time %s", msg.TeamID)

			if err := w.Pipeline.Execute(context.Background(), msg); err != nil {
				log.Printf("❌ [WORKER] Pipeline falhou: %s", err)
				middleware.RecordLeadProcessed("error")
				// O evento já foi marcado como erro pelo pipeline;
				// manda pra DLQ em vez de reprocessar.
				d.Nack(false, false)
			} else {
				middleware.RecordLeadProcessed("success")
				d.Ack(false)
			}
		}
	}()

	log.Printf(" [*] Worker rodando e aguardando na fila '%s'", queueName)
	<-forever
}
