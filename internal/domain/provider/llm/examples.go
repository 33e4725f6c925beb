package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/cehokocof/telebio/internal/ports"
)

// ErrInvalidExamples indicates the examples file is not a JSON array of
// strings.
var ErrInvalidExamples = errors.New("examples file must contain a JSON array of strings")

// maxExamples caps the few-shot set so the prompt context stays small.
const maxExamples = 20

// loadExamples reads the few-shot examples file. A missing file yields an
// empty set with a warning; the provider works without examples, just
// with weaker style anchoring.
func loadExamples(path string, log ports.Logger) ([]string, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn(context.Background(), "examples file not found, proceeding without examples",
				ports.F("path", path))
			return nil, nil
		}
		return nil, fmt.Errorf("reading examples file %s: %w", path, err)
	}

	var examples []string
	if err := json.Unmarshal(data, &examples); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidExamples, path, err)
	}

	if len(examples) > maxExamples {
		log.Warn(context.Background(), "too many examples, keeping the first ones",
			ports.F("found", len(examples)), ports.F("kept", maxExamples))
		examples = examples[:maxExamples]
	}

	log.Info(context.Background(), "few-shot examples loaded",
		ports.F("count", len(examples)), ports.F("path", path))

	return examples, nil
}
