package prompt

import (
	"testing"

	"scenesmith/internal/domain"
)

func sceneOf(values map[string]string) *domain.Scene {
	return &domain.Scene{ID: "scene-1", ProjectID: "proj-1", Name: "pose-a", Values: values}
}

func TestComposeSceneValuesResolveProjectTemplates(t *testing.T) {
	gctx := &domain.GenerationContext{
		Project: domain.Project{
			GeneralTemplate:  "a {{x}} scene",
			NegativeTemplate: "avoid {{bad}}",
		},
		Scene: sceneOf(map[string]string{"x": "sunset", "bad": "blur"}),
	}
	req := Compose(gctx)
	if req.GeneralPrompt != "a sunset scene" {
		t.Fatalf("GeneralPrompt = %q", req.GeneralPrompt)
	}
	if req.NegativePrompt != "avoid blur" {
		t.Fatalf("NegativePrompt = %q", req.NegativePrompt)
	}
}

func TestComposeCharacterOverrideWinsOverScene(t *testing.T) {
	gctx := &domain.GenerationContext{
		Project: domain.Project{GeneralTemplate: "a {{x}}"},
		Scene:   sceneOf(map[string]string{"x": "1"}),
		Characters: []domain.Character{
			{ID: "char-1", Name: "Hero", PromptTemplate: "hero wearing {{x}}", Enabled: true},
		},
		CharacterValues: map[string]map[string]string{
			"char-1": {"x": "2"},
		},
	}
	req := Compose(gctx)
	if req.GeneralPrompt != "a 1" {
		t.Fatalf("project-level prompt = %q, want scene value", req.GeneralPrompt)
	}
	if len(req.Characters) != 1 {
		t.Fatalf("characters = %d, want 1", len(req.Characters))
	}
	if req.Characters[0].Prompt != "hero wearing 2" {
		t.Fatalf("character prompt = %q, want override value", req.Characters[0].Prompt)
	}
}

func TestComposeCharacterFallsBackToSceneValues(t *testing.T) {
	gctx := &domain.GenerationContext{
		Project: domain.Project{},
		Scene:   sceneOf(map[string]string{"outfit": "cloak", "mood": "grim"}),
		Characters: []domain.Character{
			{ID: "char-1", Name: "Mage", PromptTemplate: "{{mood}} mage in a {{outfit}}", Enabled: true},
		},
		CharacterValues: map[string]map[string]string{
			"char-1": {"outfit": "robe"},
		},
	}
	req := Compose(gctx)
	if req.Characters[0].Prompt != "grim mage in a robe" {
		t.Fatalf("character prompt = %q", req.Characters[0].Prompt)
	}
}

func TestComposeDisabledCharactersExcluded(t *testing.T) {
	gctx := &domain.GenerationContext{
		Project: domain.Project{},
		Characters: []domain.Character{
			{ID: "a", Name: "Kept", PromptTemplate: "kept", Enabled: true},
			{ID: "b", Name: "Skipped", PromptTemplate: "skipped", Enabled: false},
		},
	}
	req := Compose(gctx)
	if len(req.Characters) != 1 || req.Characters[0].Name != "Kept" {
		t.Fatalf("characters = %+v, disabled entry must be absent", req.Characters)
	}
}

func TestComposeMissingValuesResolveEmpty(t *testing.T) {
	gctx := &domain.GenerationContext{
		Project: domain.Project{GeneralTemplate: "ask for {{nothing}}"},
	}
	req := Compose(gctx)
	if req.GeneralPrompt != "ask for " {
		t.Fatalf("GeneralPrompt = %q, missing keys must resolve empty", req.GeneralPrompt)
	}
}

func TestComposeNoSceneUsesBareTemplates(t *testing.T) {
	gctx := &domain.GenerationContext{
		Project: domain.Project{GeneralTemplate: "project-wide {{x}}"},
		Characters: []domain.Character{
			{ID: "c", Name: "Solo", PromptTemplate: "solo {{x}}", Enabled: true},
		},
	}
	req := Compose(gctx)
	if req.GeneralPrompt != "project-wide " {
		t.Fatalf("GeneralPrompt = %q", req.GeneralPrompt)
	}
	if req.Characters[0].Prompt != "solo " {
		t.Fatalf("character prompt = %q", req.Characters[0].Prompt)
	}
}

func TestComposeDeterministic(t *testing.T) {
	gctx := &domain.GenerationContext{
		Project: domain.Project{GeneralTemplate: "{{a}} {{b}}"},
		Scene:   sceneOf(map[string]string{"a": "x", "b": "y"}),
	}
	first := Compose(gctx)
	second := Compose(gctx)
	if first.GeneralPrompt != second.GeneralPrompt {
		t.Fatalf("Compose not deterministic: %q vs %q", first.GeneralPrompt, second.GeneralPrompt)
	}
}

func TestDisplayNameSlugTitleCased(t *testing.T) {
	gctx := &domain.GenerationContext{
		Characters: []domain.Character{
			{ID: "a", Name: "dark_mage", PromptTemplate: "p", Enabled: true},
			{ID: "b", Name: "McCoy", PromptTemplate: "p", Enabled: true},
		},
	}
	req := Compose(gctx)
	if req.Characters[0].Name != "Dark Mage" {
		t.Fatalf("slug name = %q, want %q", req.Characters[0].Name, "Dark Mage")
	}
	if req.Characters[1].Name != "McCoy" {
		t.Fatalf("cased name = %q, must be preserved", req.Characters[1].Name)
	}
}
