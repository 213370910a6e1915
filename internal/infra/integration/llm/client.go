package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/xavierca1/leadstream/internal/entity"
)

// Client fala com qualquer provedor compatível com a API de chat
// completions da OpenAI.
type Client struct {
	apiKey  string
	baseURL string
	model   string
}

func NewClient() *Client {
	baseURL := os.Getenv("LLM_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := os.Getenv("LLM_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Client{
		apiKey:  os.Getenv("LLM_API_KEY"),
		baseURL: baseURL,
		model:   model,
	}
}

func (c *Client) Configured() bool {
	return c.apiKey != ""
}

const extractionPrompt = `Extract JSON with exactly these keys: first_name, last_name, phone, location, property_type, bedrooms, budget. Return only JSON.

For budget: Convert any format (5.5M, 2.3 million, 500K, etc.) to the raw number.
Examples: '5.5M' -> '5500000', '2.3 million' -> '2300000', '500K' -> '500000'

Message: %q`

// ExtractLead pede ao LLM o JSON do lead e normaliza os campos que o
// modelo costuma devolver "criativos" (budget em 5.5M, quartos por
// extenso, cerca de código em volta do JSON).
func (c *Client) ExtractLead(ctx context.Context, message string) (*entity.Lead, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("LLM não configurado (LLM_API_KEY vazio)")
	}

	content, err := c.complete(ctx, fmt.Sprintf(extractionPrompt, message))
	if err != nil {
		return nil, err
	}

	raw, err := extractJSON(content)
	if err != nil {
		return nil, err
	}

	var fields struct {
		FirstName    string `json:"first_name"`
		LastName     string `json:"last_name"`
		Phone        string `json:"phone"`
		Location     string `json:"location"`
		PropertyType string `json:"property_type"`
		Bedrooms     any    `json:"bedrooms"`
		Budget       any    `json:"budget"`
	}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("JSON inválido do LLM: %w", err)
	}

	lead := &entity.Lead{
		FirstName:    strings.TrimSpace(fields.FirstName),
		LastName:     strings.TrimSpace(fields.LastName),
		Phone:        strings.TrimSpace(fields.Phone),
		Location:     strings.TrimSpace(fields.Location),
		PropertyType: strings.ToLower(strings.TrimSpace(fields.PropertyType)),
		Bedrooms:     ParseBedrooms(toString(fields.Bedrooms)),
		Budget:       ParseBudget(toString(fields.Budget)),
	}

	log.Printf("🤖 Lead extraído: %s (%s, %d quartos, budget %d)",
		lead.FullName(), lead.Location, lead.Bedrooms, lead.Budget)
	return lead, nil
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	payload, _ := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": 0,
	})

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", strings.NewReader(string(payload)))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("LLM retornou %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("LLM não retornou escolhas")
	}
	return result.Choices[0].Message.Content, nil
}

// extractJSON recorta o objeto JSON da resposta, ignorando cercas de
// código e texto em volta.
func extractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("nenhum JSON na resposta do LLM")
	}
	return text[start : end+1], nil
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return fmt.Sprintf("%.0f", t)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
