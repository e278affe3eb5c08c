package image

import (
	"context"
	"fmt"

	"scenesmith/internal/providers/genai"
)

// GeminiGenerator adapts the genai client to the Generator contract.
type GeminiGenerator struct {
	client *genai.Client
}

func NewGeminiGenerator(client *genai.Client) *GeminiGenerator {
	return &GeminiGenerator{client: client}
}

func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (Asset, error) {
	prompt, negative := BuildInstruction(req.Composed)
	asset, err := g.client.GenerateImage(ctx, genai.ImageRequest{
		Prompt:         prompt,
		NegativePrompt: negative,
		RequestID:      fmt.Sprintf("%s-%d", req.JobID, req.ImageIndex),
		Seed:           req.Seed,
	})
	if err != nil {
		return Asset{}, err
	}
	return Asset{
		Data:   asset.Data,
		MIME:   asset.MIME,
		Width:  asset.Width,
		Height: asset.Height,
	}, nil
}

var _ Generator = (*GeminiGenerator)(nil)
