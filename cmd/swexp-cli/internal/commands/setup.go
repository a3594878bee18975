package commands

import (
	"path/filepath"
	"strings"

	"github.com/XiaoConstantine/swexp-go/pkg/config"
	"github.com/XiaoConstantine/swexp-go/pkg/core"
	"github.com/XiaoConstantine/swexp-go/pkg/datasets"
	"github.com/XiaoConstantine/swexp-go/pkg/errors"
	"github.com/XiaoConstantine/swexp-go/pkg/llms"
	"github.com/XiaoConstantine/swexp-go/pkg/logging"
)

// loadConfig resolves and loads the pipeline configuration, then points the
// global logger at the configured severity.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	logging.SetLogger(logging.NewLogger(logging.Config{
		Severity: logging.ParseSeverity(cfg.Logging.Level),
		Outputs: []logging.Output{
			logging.NewConsoleOutput(true, logging.WithColor(cfg.Logging.Color)),
		},
	}))
	return cfg, nil
}

// buildLLMs wires the process-wide models through the core configuration so
// the registered factory serves both slots. A custom embedding endpoint
// bypasses the factory, which only knows the default Ollama address.
func buildLLMs(cfg *config.Config) (completion, embedder core.LLM, err error) {
	llms.EnsureFactory()

	if err := core.ConfigureDefaultLLM(cfg.LLM.APIKey, core.ModelID(cfg.LLM.ModelID)); err != nil {
		return nil, nil, err
	}

	if cfg.Embedding.BaseURL == "" || cfg.Embedding.BaseURL == llms.DefaultOllamaURL {
		if err := core.ConfigureEmbeddingLLM("", core.ModelID("ollama:"+cfg.Embedding.ModelID)); err != nil {
			return nil, nil, err
		}
	} else {
		ollama, err := llms.NewOllamaLLM(cfg.Embedding.BaseURL, cfg.Embedding.ModelID)
		if err != nil {
			return nil, nil, err
		}
		core.SetEmbeddingLLM(ollama)
	}

	core.SetConcurrencyOptions(cfg.Mining.Workers)
	return core.GetDefaultLLM(), core.GetEmbeddingLLM(), nil
}

// loadProblems picks the benchmark loader by file extension.
func loadProblems(path string) ([]datasets.Problem, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return datasets.LoadProblemsParquet(path)
	case ".jsonl":
		return datasets.LoadProblemsJSONL(path)
	default:
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "problems file must be .parquet or .jsonl"),
			errors.Fields{"path": path})
	}
}
