package domain

// Project carries the project-level prompt templates. Templates may contain
// {{key}} placeholders resolved against scene value maps at composition time.
type Project struct {
	ID               string
	Name             string
	GeneralTemplate  string
	NegativeTemplate string
}

// Character is a reusable prompt fragment assigned to a project. Disabled
// characters are skipped entirely during composition.
type Character struct {
	ID               string
	ProjectID        string
	Name             string
	PromptTemplate   string
	NegativeTemplate string
	Enabled          bool
	Position         int
}

// Scene is a named preset holding a placeholder value map and the number of
// images to generate for it.
type Scene struct {
	ID         string
	ProjectID  string
	Name       string
	ImageCount int
	Values     map[string]string
}

// GenerationContext bundles every read-only input the composer needs for one
// job. CharacterValues holds per-character placeholder overrides scoped to
// the job's scene, keyed by character id. A nil Scene means the job is
// project-wide and only project/character templates apply.
type GenerationContext struct {
	Project         Project
	Scene           *Scene
	Characters      []Character
	CharacterValues map[string]map[string]string
}

// ComposedCharacter is one character entry of a finalized request.
type ComposedCharacter struct {
	Name     string `json:"name"`
	Prompt   string `json:"prompt"`
	Negative string `json:"negative"`
}

// ComposedRequest is the finalized payload sent to the generation provider
// for a single image.
type ComposedRequest struct {
	GeneralPrompt  string              `json:"general_prompt"`
	NegativePrompt string              `json:"negative_prompt"`
	Characters     []ComposedCharacter `json:"characters"`
}
