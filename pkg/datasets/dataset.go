package datasets

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

const (
	// SWEBenchLiteURL is the public parquet export of the SWE-bench Lite
	// test split, the reference benchmark for the pipeline.
	SWEBenchLiteURL = "https://huggingface.co/datasets/princeton-nlp/SWE-bench_Lite/resolve/main/data/test-00000-of-00001.parquet"
)

// EnsureDataset returns the local path of a named benchmark dataset,
// downloading it into ~/.swexp-go/datasets on first use.
func EnsureDataset(datasetName string) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	datasetDir := filepath.Join(homeDir, ".swexp-go", "datasets")
	if err := os.MkdirAll(datasetDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create dataset directory: %w", err)
	}

	datasetPath := filepath.Join(datasetDir, datasetName+".parquet")

	if _, err := os.Stat(datasetPath); os.IsNotExist(err) {
		fmt.Printf("Dataset %s not found locally. Downloading from Hugging Face...\n", datasetName)
		if err := downloadDataset(datasetName, datasetPath); err != nil {
			return "", fmt.Errorf("failed to download dataset: %w", err)
		}
	}

	return datasetPath, nil
}

func downloadDataset(datasetName, datasetPath string) error {
	var url string
	switch datasetName {
	case "swe-bench-lite":
		url = SWEBenchLiteURL
	default:
		return fmt.Errorf("unknown dataset: %s", datasetName)
	}

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to download dataset: %w", err)
	}
	defer resp.Body.Close()

	out, err := os.Create(datasetPath)
	if err != nil {
		return fmt.Errorf("failed to create dataset file: %w", err)
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	if err != nil {
		return fmt.Errorf("failed to save dataset: %w", err)
	}
	return nil
}
