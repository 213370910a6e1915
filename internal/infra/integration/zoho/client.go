package zoho

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/xavierca1/leadstream/internal/entity"
)

const (
	tokenURL = "https://accounts.zoho.com/oauth/v2/token"
	apiBase  = "https://www.zohoapis.com/crm/v2"
)

type Client struct {
	clientID     string
	clientSecret string
	redirectURI  string
	accountsURL  string
	apiBase      string
}

func NewClient() *Client {
	return &Client{
		clientID:     os.Getenv("ZOHO_CLIENT_ID"),
		clientSecret: os.Getenv("ZOHO_CLIENT_SECRET"),
		redirectURI:  os.Getenv("ZOHO_REDIRECT_URI"),
		accountsURL:  tokenURL,
		apiBase:      apiBase,
	}
}

func (c *Client) Configured() bool {
	return c.clientID != ""
}

func (c *Client) AuthorizeURL(state string) string {
	return fmt.Sprintf(
		"https://accounts.zoho.com/oauth/v2/auth?scope=%s&client_id=%s&response_type=code&access_type=offline&redirect_uri=%s&state=%s",
		url.QueryEscape("ZohoCRM.modules.ALL"),
		url.QueryEscape(c.clientID),
		url.QueryEscape(c.redirectURI),
		url.QueryEscape(state),
	)
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	APIDomain    string `json:"api_domain"`
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

// Refresh renova o access token com o refresh_token guardado. O Zoho
// não devolve refresh_token novo aqui, o antigo continua valendo.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("grant_type", "refresh_token")

	return c.postToken(ctx, form)
}

func (c *Client) postToken(ctx context.Context, form url.Values) (*TokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.accountsURL, strings.NewReader(form.Encode()))
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
		return nil, fmt.Errorf("zoho token falhou: %s - %s", result.Error, string(body))
	}
	if result.APIDomain == "" {
		result.APIDomain = "https://www.zohoapis.com"
	}
	return &result, nil
}

// InsertLead cria o lead no módulo Leads do CRM, com os projetos
// compatíveis na descrição (mesmo shape que o time de vendas já usa).
func (c *Client) InsertLead(ctx context.Context, cred *entity.Credential, lead *entity.Lead) (string, error) {
	base := cred.APIDomain
	if base == "" {
		base = c.apiBase
	} else if !strings.Contains(base, "/crm/") {
		base = base + "/crm/v2"
	}

	lastName := lead.LastName
	if lastName == "" {
		lastName = "Unknown"
	}

	payload, _ := json.Marshal(map[string]any{
		"data": []map[string]any{
			{
				"First_Name":  lead.FirstName,
				"Last_Name":   lastName,
				"Phone":       lead.Phone,
				"City":        lead.Location,
				"Lead_Source": "Slack Bot",
				"Description": fmt.Sprintf(
					"Looking for a %d bedroom %s with budget %d.\nMatched Projects: %s",
					lead.Bedrooms,
					lead.PropertyType,
					lead.Budget,
					strings.Join(lead.MatchedProjects, ", "),
				),
			},
		},
	})

	req, err := http.NewRequestWithContext(ctx, "POST", base+"/Leads", strings.NewReader(string(payload)))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Zoho-oauthtoken "+cred.AccessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("zoho insert falhou: %d - %s", resp.StatusCode, string(body))
	}

	var result struct {
		Data []struct {
			Code    string `json:"code"`
			Details struct {
				ID string `json:"id"`
			} `json:"details"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if len(result.Data) == 0 || result.Data[0].Code != "SUCCESS" {
		return "", fmt.Errorf("zoho recusou o lead: %s", string(body))
	}

	leadID := result.Data[0].Details.ID
	log.Printf("✅ Zoho: Lead criado #%s para %s", leadID, lead.FullName())
	return leadID, nil
}
