package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

const (
	tokenURL    = "https://oauth2.googleapis.com/token"
	userinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	sendURL     = "https://gmail.googleapis.com/gmail/v1/users/me/messages/send"
)

type Client struct {
	clientID     string
	clientSecret string
	redirectURI  string
	tokenURL     string
	userinfoURL  string
	sendURL      string
}

func NewClient() *Client {
	return &Client{
		clientID:     os.Getenv("GMAIL_CLIENT_ID"),
		clientSecret: os.Getenv("GMAIL_CLIENT_SECRET"),
		redirectURI:  os.Getenv("GMAIL_REDIRECT_URI"),
		tokenURL:     tokenURL,
		userinfoURL:  userinfoURL,
		sendURL:      sendURL,
	}
}

func (c *Client) Configured() bool {
	return c.clientID != ""
}

func (c *Client) AuthorizeURL(state string) string {
	scopes := "https://www.googleapis.com/auth/gmail.send https://www.googleapis.com/auth/userinfo.email"
	// prompt=consent força a tela de consentimento para garantir refresh token
	return fmt.Sprintf(
		"https://accounts.google.com/o/oauth2/auth?client_id=%s&redirect_uri=%s&response_type=code&scope=%s&access_type=offline&include_granted_scopes=true&prompt=consent&state=%s",
		url.QueryEscape(c.clientID),
		url.QueryEscape(c.redirectURI),
		url.QueryEscape(scopes),
		url.QueryEscape(state),
	)
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	Error        string `json:"error,omitempty"`
}

func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("redirect_uri", c.redirectURI)
	form.Set("grant_type", "authorization_code")

	return c.postToken(ctx, form)
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("grant_type", "refresh_token")

	return c.postToken(ctx, form)
}

func (c *Client) postToken(ctx context.Context, form url.Values) (*TokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.tokenURL, strings.NewReader(form.Encode()))
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

	var result TokenResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	if result.Error != "" || result.AccessToken == "" {
		return nil, fmt.Errorf("gmail token falhou: %s - %s", result.Error, string(body))
	}
	return &result, nil
}

// UserEmail descobre o endereço conectado (userinfo), guardado como
// dado de exibição no dashboard.
func (c *Client) UserEmail(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.userinfoURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	var result struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	return result.Email, nil
}

// SendEmail monta a mensagem MIME e envia via API do Gmail
// (messages/send com raw em base64url).
func (c *Client) SendEmail(ctx context.Context, accessToken, to, subject, htmlBody string) error {
	var raw strings.Builder
	raw.WriteString("To: " + to + "\r\n")
	raw.WriteString("Subject: " + subject + "\r\n")
	raw.WriteString("MIME-Version: 1.0\r\n")
	raw.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	raw.WriteString("\r\n")
	raw.WriteString(htmlBody)

	payload, _ := json.Marshal(map[string]string{
		"raw": base64.URLEncoding.EncodeToString([]byte(raw.String())),
	})

	req, err := http.NewRequestWithContext(ctx, "POST", c.sendURL, strings.NewReader(string(payload)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("gmail send falhou: %d - %s", resp.StatusCode, string(body))
	}
	return nil
}
