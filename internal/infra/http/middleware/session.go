package middleware

import "net/http"

// SessionHeader é onde o frontend manda o session id em toda request
// com estado. Não é credencial de segurança, só escopo de visibilidade.
const SessionHeader = "X-Session-ID"

// SessionID extrai o session id da request (header, com fallback em
// query string para o handshake do WebSocket, que não manda headers
// customizados a partir do browser).
func SessionID(r *http.Request) string {
	if sid := r.Header.Get(SessionHeader); sid != "" {
		return sid
	}
	return r.URL.Query().Get("session_id")
}
