package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tippleai/models"
)

// Generator produces the final chat answer via the Ollama generation API.
// This service only owns prompt assembly and transport; the structured
// context it serializes comes from the engine.
type Generator struct {
	BaseURL string
	Model   string
	Client  *http.Client
}

func NewGenerator(baseURL, model string) *Generator {
	return &Generator{
		BaseURL: baseURL,
		Model:   model,
		Client: &http.Client{
			Timeout: 120 * time.Second, // longer timeout for generation
		},
	}
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Model     string `json:"model"`
	CreatedAt string `json:"created_at"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`
}

// GenerateResponse answers the user's message using the retrieved context.
func (g *Generator) GenerateResponse(message string, rctx *models.RetrievedContext) (string, error) {
	prompt := g.buildPrompt(message, rctx)

	reqBody := ollamaGenerateRequest{
		Model:  g.Model,
		Prompt: prompt,
		Stream: false,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/generate", g.BaseURL)
	resp, err := g.Client.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to call Ollama API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama API error (status %d): %s", resp.StatusCode, string(body))
	}

	var genResp ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if genResp.Response == "" {
		return "", fmt.Errorf("received empty response from Ollama")
	}

	return strings.TrimSpace(genResp.Response), nil
}

// buildPrompt serializes the retrieved context into the bartender prompt.
func (g *Generator) buildPrompt(message string, rctx *models.RetrievedContext) string {
	var sb strings.Builder

	sb.WriteString("You are a knowledgeable and friendly bartender assistant specialized in cocktails.\n")
	sb.WriteString("Use ONLY the context below to answer the user's question.\n")
	sb.WriteString("Be conversational, concise and accurate. When recommending, briefly say why.\n\n")

	sb.WriteString(fmt.Sprintf("Query intent: %s\n\n", rctx.Intent.Type))

	if rctx.NeedsPreferences {
		sb.WriteString("The user asked for a recommendation but has no saved preferences yet.\n")
		sb.WriteString("Ask them which ingredients or cocktails they enjoy before recommending.\n\n")
	}

	if len(rctx.Records) > 0 {
		sb.WriteString("Context:\n---\n")
		for i, result := range rctx.Records {
			record := result.Record
			sb.WriteString(fmt.Sprintf("[%d] %s\n", i+1, record.Name))
			sb.WriteString(fmt.Sprintf("    Ingredients: %s\n", strings.Join(record.Ingredients, ", ")))
			if record.Preparation != "" {
				sb.WriteString(fmt.Sprintf("    Preparation: %s\n", record.Preparation))
			}
			if record.Garnish != "" {
				sb.WriteString(fmt.Sprintf("    Garnish: %s\n", record.Garnish))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("---\n\n")
	}

	if len(rctx.Preferences.Ingredients) > 0 {
		sb.WriteString(fmt.Sprintf("The user's favorite ingredients: %s\n", strings.Join(rctx.Preferences.Ingredients, ", ")))
	}
	if len(rctx.Preferences.Cocktails) > 0 {
		sb.WriteString(fmt.Sprintf("The user's favorite cocktails: %s\n", strings.Join(rctx.Preferences.Cocktails, ", ")))
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("Question: %s\n\n", message))
	sb.WriteString("Answer:")

	return sb.String()
}

// test the connection to Ollama
func (g *Generator) TestConnection() error {
	url := fmt.Sprintf("%s/api/tags", g.BaseURL)
	resp, err := g.Client.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to Ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama API returned status %d", resp.StatusCode)
	}

	return nil
}
