package usecase

// InboundMessage é o que o webhook do Slack entrega para o pipeline
// via fila: a mensagem crua e onde responder.
type InboundMessage struct {
	TeamID   string `json:"team_id"`
	Text     string `json:"text"`
	Channel  string `json:"channel"`
	ThreadTS string `json:"thread_ts"`
}
