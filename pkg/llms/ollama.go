package llms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/XiaoConstantine/swexp-go/pkg/core"
	"github.com/XiaoConstantine/swexp-go/pkg/errors"
	"github.com/XiaoConstantine/swexp-go/pkg/utils"
)

// OllamaLLM implements the core.LLM interface for Ollama-hosted models. It is
// the reference provider for the fixed embedding model backing the screener,
// and doubles as a local completion provider.
type OllamaLLM struct {
	*core.BaseLLM
}

// DefaultOllamaURL is the endpoint used when no base URL is configured.
const DefaultOllamaURL = "http://localhost:11434"

// NewOllamaLLM creates a new OllamaLLM instance.
func NewOllamaLLM(endpoint, model string) (*OllamaLLM, error) {
	if model == "" {
		return nil, errors.New(errors.InvalidInput, "model name is required")
	}
	if endpoint == "" {
		endpoint = DefaultOllamaURL
	}

	capabilities := []core.Capability{
		core.CapabilityCompletion,
		core.CapabilityChat,
		core.CapabilityJSON,
	}
	if supportsOllamaEmbedding(model) {
		capabilities = append(capabilities, core.CapabilityEmbedding)
	}

	endpointCfg := &core.EndpointConfig{
		BaseURL: endpoint,
		Path:    "api/generate",
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		TimeoutSec: 10 * 60,
	}

	return &OllamaLLM{
		BaseLLM: core.NewBaseLLM("ollama", core.ModelID(model), capabilities, endpointCfg),
	}, nil
}

// supportsOllamaEmbedding checks if the model supports embedding.
func supportsOllamaEmbedding(modelName string) bool {
	embeddingModels := []string{
		"nomic-embed-text",
		"mxbai-embed-large",
		"snowflake-arctic-embed",
		"all-minilm",
	}

	lower := strings.ToLower(modelName)
	for _, embeddingModel := range embeddingModels {
		if strings.Contains(lower, embeddingModel) {
			return true
		}
	}

	return strings.Contains(lower, "embed")
}

type ollamaRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Stream      bool    `json:"stream"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

type ollamaResponse struct {
	Model     string `json:"model"`
	CreatedAt string `json:"created_at"`
	Response  string `json:"response"`
}

type ollamaEmbeddingRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Options map[string]interface{} `json:"options"`
}

type ollamaEmbeddingResponse struct {
	Embedding []float32 `json:"embedding"`
	Size      int       `json:"size"`
	Usage     struct {
		Tokens int `json:"tokens"`
	} `json:"usage"`
}

// Generate implements the core.LLM interface.
func (o *OllamaLLM) Generate(ctx context.Context, prompt string, options ...core.GenerateOption) (*core.LLMResponse, error) {
	opts := core.NewGenerateOptions()
	for _, opt := range options {
		opt(opts)
	}

	reqBody := ollamaRequest{
		Model:       o.ModelID(),
		Prompt:      prompt,
		Stream:      false,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return &core.LLMResponse{}, errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to marshal request body"),
			errors.Fields{
				"model": o.ModelID(),
			})
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.GetEndpointConfig().BaseURL+"/api/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return &core.LLMResponse{}, errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to create request"),
			errors.Fields{
				"model": o.ModelID(),
			})
	}

	for key, value := range o.GetEndpointConfig().Headers {
		req.Header.Set(key, value)
	}

	resp, err := o.GetHTTPClient().Do(req)
	if err != nil {
		return &core.LLMResponse{}, errors.WithFields(
			errors.Wrap(err, errors.LLMGenerationFailed, "failed to send request"),
			errors.Fields{
				"model": o.ModelID(),
			})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &core.LLMResponse{}, errors.WithFields(
			errors.Wrap(err, errors.LLMGenerationFailed, "failed to read response body"),
			errors.Fields{
				"model": o.ModelID(),
			})
	}

	if resp.StatusCode != http.StatusOK {
		return &core.LLMResponse{}, errors.WithFields(
			errors.New(errors.LLMGenerationFailed, fmt.Sprintf("API request failed with status code %d", resp.StatusCode)),
			errors.Fields{
				"model":         o.ModelID(),
				"status_code":   resp.StatusCode,
				"response_body": string(body),
			})
	}

	var ollamaResp ollamaResponse
	err = json.Unmarshal(body, &ollamaResp)
	if err != nil {
		return &core.LLMResponse{}, errors.WithFields(
			errors.Wrap(err, errors.InvalidResponse, "failed to unmarshal response"),
			errors.Fields{
				"resp":  utils.TruncateString(string(body), 50),
				"model": o.ModelID(),
			})
	}

	// Ollama's non-streaming API does not report token usage.
	return &core.LLMResponse{Content: ollamaResp.Response}, nil
}

// GenerateWithJSON implements the core.LLM interface.
func (o *OllamaLLM) GenerateWithJSON(ctx context.Context, prompt string, options ...core.GenerateOption) (map[string]interface{}, error) {
	response, err := o.Generate(ctx, prompt, options...)
	if err != nil {
		return nil, err
	}

	return utils.ParseJSONResponse(utils.StripMarkdownFences(response.Content))
}

// CreateEmbedding generates an embedding for a single input.
func (o *OllamaLLM) CreateEmbedding(ctx context.Context, input string, options ...core.EmbeddingOption) (*core.EmbeddingResult, error) {
	opts := core.NewEmbeddingOptions()
	for _, opt := range options {
		opt(opts)
	}

	model := o.ModelID()
	if opts.Model != "" {
		model = opts.Model
	}

	reqBody := ollamaEmbeddingRequest{
		Model:   model,
		Prompt:  input,
		Options: opts.Params,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "failed to marshal embedding request")
	}

	req, err := http.NewRequestWithContext(
		ctx,
		"POST",
		fmt.Sprintf("%s/api/embeddings", o.GetEndpointConfig().BaseURL),
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "failed to create request")
	}

	for key, value := range o.GetEndpointConfig().Headers {
		req.Header.Set(key, value)
	}

	resp, err := o.GetHTTPClient().Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.EmbeddingFailed, "failed to send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.EmbeddingFailed, "failed to read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.WithFields(
			errors.New(errors.EmbeddingFailed, fmt.Sprintf("API request failed with status code %d", resp.StatusCode)),
			errors.Fields{
				"model":         model,
				"response_body": utils.TruncateString(string(body), 200),
			})
	}

	var ollamaResp ollamaEmbeddingResponse
	if err := json.Unmarshal(body, &ollamaResp); err != nil {
		return nil, errors.Wrap(err, errors.InvalidResponse, "failed to unmarshal response")
	}

	return &core.EmbeddingResult{
		Vector:     ollamaResp.Embedding,
		TokenCount: ollamaResp.Usage.Tokens,
		Metadata: map[string]interface{}{
			"model":          model,
			"embedding_size": ollamaResp.Size,
		},
	}, nil
}

// CreateEmbeddings generates embeddings for multiple inputs. Ollama's
// embedding endpoint is single-input, so the batch is issued sequentially;
// the first failure is reported with its input index and processing stops.
func (o *OllamaLLM) CreateEmbeddings(ctx context.Context, inputs []string, options ...core.EmbeddingOption) (*core.BatchEmbeddingResult, error) {
	results := make([]core.EmbeddingResult, 0, len(inputs))

	for i, input := range inputs {
		result, err := o.CreateEmbedding(ctx, input, options...)
		if err != nil {
			return &core.BatchEmbeddingResult{
				Embeddings: results,
				Error:      err,
				ErrorIndex: i,
			}, err
		}
		results = append(results, *result)
	}

	return &core.BatchEmbeddingResult{
		Embeddings: results,
		ErrorIndex: -1,
	}, nil
}
