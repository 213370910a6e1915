package slack

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const slackAPIBase = "https://slack.com/api"

// Janela aceita entre o timestamp do Slack e o relógio local (proteção
// contra replay, mesmo esquema v0 da doc oficial).
const signatureMaxAge = 5 * time.Minute

type Client struct {
	clientID      string
	clientSecret  string
	signingSecret string
	redirectURI   string
	baseURL       string
}

func NewClient() *Client {
	return &Client{
		clientID:      os.Getenv("SLACK_CLIENT_ID"),
		clientSecret:  os.Getenv("SLACK_CLIENT_SECRET"),
		signingSecret: os.Getenv("SLACK_SIGNING_SECRET"),
		redirectURI:   os.Getenv("SLACK_REDIRECT_URI"),
		baseURL:       slackAPIBase,
	}
}

func (c *Client) Configured() bool {
	return c.clientID != ""
}

func (c *Client) AuthorizeURL(state string) string {
	scopes := "app_mentions:read,channels:history,chat:write,im:history,im:read,im:write"
	return fmt.Sprintf(
		"https://slack.com/oauth/v2/authorize?client_id=%s&scope=%s&redirect_uri=%s&state=%s",
		url.QueryEscape(c.clientID),
		url.QueryEscape(scopes),
		url.QueryEscape(c.redirectURI),
		url.QueryEscape(state),
	)
}

// VerifySignature valida o esquema v0 do Slack: HMAC-SHA256 de
// "v0:{timestamp}:{body}" com o signing secret.
func (c *Client) VerifySignature(body []byte, timestamp, signature string) bool {
	if c.signingSecret == "" || timestamp == "" || signature == "" {
		return false
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	age := time.Since(time.Unix(ts, 0))
	if age > signatureMaxAge || age < -signatureMaxAge {
		return false
	}

	base := fmt.Sprintf("v0:%s:%s", timestamp, string(body))
	mac := hmac.New(sha256.New, []byte(c.signingSecret))
	mac.Write([]byte(base))
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

type OAuthResponse struct {
	OK          bool   `json:"ok"`
	Error       string `json:"error,omitempty"`
	AccessToken string `json:"access_token"`
	BotUserID   string `json:"bot_user_id"`
	Team        struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"team"`
}

// ExchangeCode troca o code do callback pelo bot token (oauth.v2.access).
func (c *Client) ExchangeCode(ctx context.Context, code string) (*OAuthResponse, error) {
	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("code", code)
	form.Set("redirect_uri", c.redirectURI)

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/oauth.v2.access", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	var result OAuthResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	if !result.OK {
		return nil, fmt.Errorf("slack oauth falhou: %s", result.Error)
	}
	if result.AccessToken == "" || result.Team.ID == "" {
		return nil, fmt.Errorf("resposta OAuth inválida do Slack")
	}

	log.Printf("✅ Slack: instalado pelo time %s (%s)", result.Team.Name, result.Team.ID)
	return &result, nil
}

// PostMessage responde na thread de origem (chat.postMessage).
func (c *Client) PostMessage(ctx context.Context, token, channel, threadTS, text string) error {
	payload, _ := json.Marshal(map[string]string{
		"channel":   channel,
		"thread_ts": threadTS,
		"text":      text,
	})

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat.postMessage", strings.NewReader(string(payload)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	var result struct {
		OK    bool   `json:"ok"`
		Error string `json:"error,omitempty"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return err
	}
	if !result.OK {
		return fmt.Errorf("chat.postMessage falhou: %s", result.Error)
	}
	return nil
}
