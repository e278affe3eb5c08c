// Package prompt composes finalized generation requests from layered text
// sources: project templates, character templates, scene placeholder values,
// and per-character scene overrides.
package prompt

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"scenesmith/internal/domain"
	"scenesmith/internal/placeholder"
)

var titleCaser = cases.Title(language.Und)

// Compose builds the request payload for one image of a job. Precedence,
// highest last: project templates, character templates, scene values,
// character overrides. A character override map falls back to the scene map
// for keys it does not define; keys absent everywhere resolve to empty.
func Compose(gctx *domain.GenerationContext) domain.ComposedRequest {
	sceneValues := map[string]string{}
	if gctx.Scene != nil && gctx.Scene.Values != nil {
		sceneValues = gctx.Scene.Values
	}

	req := domain.ComposedRequest{
		GeneralPrompt:  placeholder.Resolve(gctx.Project.GeneralTemplate, sceneValues),
		NegativePrompt: placeholder.Resolve(gctx.Project.NegativeTemplate, sceneValues),
	}

	for _, ch := range gctx.Characters {
		if !ch.Enabled {
			continue
		}
		values := mergeValues(sceneValues, gctx.CharacterValues[ch.ID])
		req.Characters = append(req.Characters, domain.ComposedCharacter{
			Name:     displayName(ch.Name),
			Prompt:   placeholder.Resolve(ch.PromptTemplate, values),
			Negative: placeholder.Resolve(ch.NegativeTemplate, values),
		})
	}
	return req
}

// mergeValues layers character overrides on top of the scene map without
// mutating either input.
func mergeValues(scene, overrides map[string]string) map[string]string {
	if len(overrides) == 0 {
		return scene
	}
	merged := make(map[string]string, len(scene)+len(overrides))
	for k, v := range scene {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

// displayName title-cases bare lowercase slugs ("dark_mage" -> "Dark Mage")
// while leaving explicitly cased names alone.
func displayName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return trimmed
	}
	if strings.ToLower(trimmed) != trimmed {
		return trimmed
	}
	spaced := strings.ReplaceAll(strings.ReplaceAll(trimmed, "_", " "), "-", " ")
	return titleCaser.String(spaced)
}
