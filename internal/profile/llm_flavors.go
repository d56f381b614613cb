package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tapmatch/tapmatch/internal/llm"
)

// LLMExtractor distills tasting notes into flavor tags with an LLM.
// It implements FlavorExtractor; callers treat failures as non-fatal and
// fall back to the deterministic tokenizer.
type LLMExtractor struct {
	client llm.Client
}

// NewLLMExtractor creates an extractor backed by the given client.
func NewLLMExtractor(client llm.Client) *LLMExtractor {
	return &LLMExtractor{client: client}
}

const flavorPrompt = `You are given tasting notes from beer check-ins, one per line.
Extract the distinct flavor descriptors mentioned (e.g. "citrus", "pine", "roasted malt", "stone fruit").
Exclude process ingredients such as clarifying agents, and exclude anything that is not a taste or aroma.
Return a JSON array of lowercase flavor strings and nothing else.

Notes:
%s`

// ExtractFlavors asks the model for flavor tags across all notes.
func (e *LLMExtractor) ExtractFlavors(ctx context.Context, notes []string) ([]string, error) {
	if len(notes) == 0 {
		return nil, nil
	}

	prompt := fmt.Sprintf(flavorPrompt, strings.Join(notes, "\n"))
	raw, err := e.client.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("flavor extraction request failed: %w", err)
	}

	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("flavor extraction returned malformed JSON: %w", err)
	}

	return tags, nil
}
