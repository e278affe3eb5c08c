// Package image defines the provider contract consumed by the queue
// processor: one call, one image.
package image

import (
	"context"
	"fmt"
	"strings"

	"scenesmith/internal/domain"
)

// Request describes a single image of a job, carrying the fully composed
// prompt payload.
type Request struct {
	Composed   domain.ComposedRequest
	JobID      string
	ImageIndex int
	Seed       int64
}

// Asset is one generated image.
type Asset struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// Generator is the contract implemented by all image providers.
type Generator interface {
	Generate(ctx context.Context, req Request) (Asset, error)
}

// BuildInstruction flattens a composed request into one provider instruction:
// the general prompt first, then each character block, then the combined
// negative text.
func BuildInstruction(composed domain.ComposedRequest) (prompt string, negative string) {
	var parts []string
	if general := strings.TrimSpace(composed.GeneralPrompt); general != "" {
		parts = append(parts, general)
	}
	for _, ch := range composed.Characters {
		block := strings.TrimSpace(ch.Prompt)
		if block == "" {
			continue
		}
		if name := strings.TrimSpace(ch.Name); name != "" {
			block = fmt.Sprintf("%s: %s", name, block)
		}
		parts = append(parts, block)
	}

	var negatives []string
	if neg := strings.TrimSpace(composed.NegativePrompt); neg != "" {
		negatives = append(negatives, neg)
	}
	for _, ch := range composed.Characters {
		if neg := strings.TrimSpace(ch.Negative); neg != "" {
			negatives = append(negatives, neg)
		}
	}

	return strings.Join(parts, ". "), strings.Join(negatives, ", ")
}
