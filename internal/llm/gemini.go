package llm

import (
	"context"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/pkg/errors"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/rafabd1/ceres/internal/config"
)

const provider = "Google Generative AI"

// Gemini is a Generator backed by the Gemini API.
type Gemini struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
	keyConfigured bool
}

// NewGemini creates the client. A missing key without ADC is a configuration error.
func NewGemini(ctx context.Context, cfg *config.Config) (*Gemini, error) {
	apiKey, err := cfg.APIKey()
	if err != nil {
		return nil, err
	}
	modelName := cfg.LLM.ModelName
	if modelName == "" {
		return nil, errors.New("LLM model name (llm.model_name) is not specified in the configuration file")
	}
	log.Printf("[DEBUG] [LLM] Using model from config: %s", modelName)

	var client *genai.Client
	if apiKey != "" {
		log.Println("[DEBUG] [LLM] Initializing Gemini client with API Key.")
		client, err = genai.NewClient(ctx, option.WithAPIKey(apiKey))
	} else {
		log.Println("[INFO] [LLM] API Key not found in config. Attempting to use default credentials (ADC).")
		client, err = genai.NewClient(ctx)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create genai client")
	}

	return &Gemini{
		client:        client,
		model:         client.GenerativeModel(modelName),
		modelName:     modelName,
		keyConfigured: apiKey != "",
	}, nil
}

// Generate sends prompt as a single text part and returns the trimmed reply.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}
	return g.GenerateParts(ctx, genai.Text(prompt))
}

// GenerateParts sends arbitrary parts, e.g. an audio blob with an instruction.
func (g *Gemini) GenerateParts(ctx context.Context, parts ...genai.Part) (string, error) {
	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		logAPIError(err)
		return "", &BackendError{Op: "generate", Err: err}
	}
	text := strings.TrimSpace(responseText(resp))
	if text == "" {
		if resp != nil && resp.PromptFeedback != nil {
			log.Printf("[WARN] [LLM] Empty response, prompt feedback: BlockReason=%v", resp.PromptFeedback.BlockReason)
		}
		return "", ErrEmptyResponse
	}
	return text, nil
}

// TestConnection asks for a fixed acknowledgement and reports whether it came back.
func (g *Gemini) TestConnection(ctx context.Context) bool {
	resp, err := g.Generate(ctx, connectionPrompt)
	if err != nil {
		log.Printf("[WARN] [LLM] Connection test failed: %v", err)
		return false
	}
	return strings.Contains(strings.ToLower(resp), "successful")
}

// ModelInfo reports the configured model and a live connection check.
func (g *Gemini) ModelInfo(ctx context.Context) ModelInfo {
	return ModelInfo{
		ModelName:        g.modelName,
		Provider:         provider,
		APIKeyConfigured: g.keyConfigured,
		Connected:        g.TestConnection(ctx),
	}
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		} else {
			log.Printf("[DEBUG] [LLM] Skipping non-text part %T in response", part)
		}
	}
	return b.String()
}

func logAPIError(err error) {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		log.Printf("[ERROR] [LLM] API Error Details: Code=%d, Message=%s, Body=%s", apiErr.Code, apiErr.Message, string(apiErr.Body))
		return
	}
	log.Printf("[ERROR] [LLM] Call failed: %v", err)
}
