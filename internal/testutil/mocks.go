package testutil

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/XiaoConstantine/swexp-go/pkg/core"
	"github.com/XiaoConstantine/swexp-go/pkg/errors"
)

// MockLLM is a mock implementation of core.LLM.
type MockLLM struct {
	mock.Mock
}

func (m *MockLLM) Generate(ctx context.Context, prompt string, opts ...core.GenerateOption) (*core.LLMResponse, error) {
	args := m.Called(ctx, prompt, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	if response, ok := args.Get(0).(*core.LLMResponse); ok {
		return response, args.Error(1)
	}
	// Fall back to string conversion for simple cases
	return &core.LLMResponse{Content: args.String(0)}, args.Error(1)
}

func (m *MockLLM) GenerateWithJSON(ctx context.Context, prompt string, opts ...core.GenerateOption) (map[string]interface{}, error) {
	args := m.Called(ctx, prompt, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]interface{}), args.Error(1)
}

func (m *MockLLM) CreateEmbedding(ctx context.Context, input string, options ...core.EmbeddingOption) (*core.EmbeddingResult, error) {
	args := m.Called(ctx, input, options)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	if result, ok := args.Get(0).(*core.EmbeddingResult); ok {
		return result, args.Error(1)
	}
	return &core.EmbeddingResult{
		Vector:     []float32{0.1, 0.2, 0.3},
		TokenCount: len(input),
		Metadata: map[string]interface{}{
			"fallback": true,
		},
	}, args.Error(1)
}

func (m *MockLLM) CreateEmbeddings(ctx context.Context, inputs []string, options ...core.EmbeddingOption) (*core.BatchEmbeddingResult, error) {
	args := m.Called(ctx, inputs, options)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	if result, ok := args.Get(0).(*core.BatchEmbeddingResult); ok {
		return result, args.Error(1)
	}
	embeddings := make([]core.EmbeddingResult, len(inputs))
	for i := range inputs {
		embeddings[i] = core.EmbeddingResult{
			Vector:     []float32{0.1, 0.2, 0.3},
			TokenCount: len(inputs[i]),
		}
	}
	return &core.BatchEmbeddingResult{Embeddings: embeddings, ErrorIndex: -1}, args.Error(1)
}

func (m *MockLLM) ProviderName() string {
	return "mock"
}

func (m *MockLLM) ModelID() string {
	return "mock-model"
}

func (m *MockLLM) Capabilities() []core.Capability {
	return []core.Capability{
		core.CapabilityCompletion,
		core.CapabilityJSON,
		core.CapabilityEmbedding,
	}
}

// FakeLLM is a deterministic, scripted core.LLM for exercising retry and
// degradation paths without testify expectations. Responses are consumed in
// order; when the script runs out the last response repeats. A nil script
// makes every call fail, which is the shape the graceful-degradation tests
// need.
type FakeLLM struct {
	mu        sync.Mutex
	responses []string
	next      int

	// FailFirst makes the first N Generate calls return an error before the
	// script starts, for retry-path tests.
	FailFirst int

	// Embeddings maps input text to a fixed vector. Inputs absent from the
	// map get a deterministic vector derived from the text length.
	Embeddings map[string][]float32

	generateCalls  int
	embeddingCalls int
}

// NewFakeLLM creates a FakeLLM that replays the given responses in order.
func NewFakeLLM(responses ...string) *FakeLLM {
	return &FakeLLM{responses: responses}
}

func (f *FakeLLM) Generate(ctx context.Context, prompt string, opts ...core.GenerateOption) (*core.LLMResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generateCalls++

	if f.FailFirst > 0 {
		f.FailFirst--
		return nil, errors.New(errors.LLMGenerationFailed, "scripted failure")
	}
	if len(f.responses) == 0 {
		return nil, errors.New(errors.LLMGenerationFailed, "scripted failure")
	}

	idx := f.next
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	} else {
		f.next++
	}
	return &core.LLMResponse{Content: f.responses[idx]}, nil
}

func (f *FakeLLM) GenerateWithJSON(ctx context.Context, prompt string, opts ...core.GenerateOption) (map[string]interface{}, error) {
	return nil, errors.New(errors.UnsupportedOperation, "fake LLM has no JSON mode")
}

func (f *FakeLLM) CreateEmbedding(ctx context.Context, input string, options ...core.EmbeddingOption) (*core.EmbeddingResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embeddingCalls++

	if vec, ok := f.Embeddings[input]; ok {
		return &core.EmbeddingResult{Vector: vec}, nil
	}
	return &core.EmbeddingResult{Vector: []float32{float32(len(input)), 1, 0}}, nil
}

func (f *FakeLLM) CreateEmbeddings(ctx context.Context, inputs []string, options ...core.EmbeddingOption) (*core.BatchEmbeddingResult, error) {
	results := make([]core.EmbeddingResult, 0, len(inputs))
	for _, input := range inputs {
		r, err := f.CreateEmbedding(ctx, input, options...)
		if err != nil {
			return nil, err
		}
		results = append(results, *r)
	}
	return &core.BatchEmbeddingResult{Embeddings: results, ErrorIndex: -1}, nil
}

func (f *FakeLLM) ProviderName() string { return "fake" }
func (f *FakeLLM) ModelID() string      { return "fake-model" }

func (f *FakeLLM) Capabilities() []core.Capability {
	return []core.Capability{
		core.CapabilityCompletion,
		core.CapabilityEmbedding,
	}
}

// GenerateCalls reports how many times Generate ran.
func (f *FakeLLM) GenerateCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generateCalls
}

// EmbeddingCalls reports how many times CreateEmbedding ran.
func (f *FakeLLM) EmbeddingCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.embeddingCalls
}
