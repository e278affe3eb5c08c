package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"scenesmith/internal/domain"
	"scenesmith/internal/infra"
	"scenesmith/internal/sqlinline"
)

// PromptSourceRepositoryPG loads the read-only composition inputs for a job:
// project templates, characters, and the scene value maps. Nothing here is
// ever mutated by the queue.
type PromptSourceRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewPromptSourceRepository(sql infra.SQLExecutor) *PromptSourceRepositoryPG {
	return &PromptSourceRepositoryPG{sql: sql}
}

func (r *PromptSourceRepositoryPG) GenerationContext(ctx context.Context, projectID string, sceneID *string) (*domain.GenerationContext, error) {
	gctx := &domain.GenerationContext{}

	row := r.sql.QueryRow(ctx, sqlinline.QSelectProject, projectID)
	if err := row.Scan(
		&gctx.Project.ID,
		&gctx.Project.Name,
		&gctx.Project.GeneralTemplate,
		&gctx.Project.NegativeTemplate,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("load project: %w", err)
	}

	characters, err := r.loadCharacters(ctx, projectID)
	if err != nil {
		return nil, err
	}
	gctx.Characters = characters

	if sceneID != nil {
		scene, err := r.loadScene(ctx, *sceneID)
		if err != nil {
			return nil, err
		}
		gctx.Scene = scene

		overrides, err := r.loadCharacterValues(ctx, *sceneID)
		if err != nil {
			return nil, err
		}
		gctx.CharacterValues = overrides
	}

	return gctx, nil
}

func (r *PromptSourceRepositoryPG) ListScenes(ctx context.Context, projectID string, sceneIDs []string) ([]domain.Scene, error) {
	if sceneIDs == nil {
		sceneIDs = []string{}
	}
	rows, err := r.sql.Query(ctx, sqlinline.QSelectProjectScenes, projectID, sceneIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scenes []domain.Scene
	for rows.Next() {
		var scene domain.Scene
		var rawValues []byte
		if err := rows.Scan(&scene.ID, &scene.ProjectID, &scene.Name, &scene.ImageCount, &rawValues); err != nil {
			return nil, err
		}
		if scene.Values, err = decodeValues(rawValues); err != nil {
			return nil, fmt.Errorf("scene %s values: %w", scene.ID, err)
		}
		scenes = append(scenes, scene)
	}
	return scenes, rows.Err()
}

func (r *PromptSourceRepositoryPG) loadCharacters(ctx context.Context, projectID string) ([]domain.Character, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QSelectProjectCharacters, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var characters []domain.Character
	for rows.Next() {
		var ch domain.Character
		if err := rows.Scan(&ch.ID, &ch.ProjectID, &ch.Name, &ch.PromptTemplate, &ch.NegativeTemplate, &ch.Enabled, &ch.Position); err != nil {
			return nil, err
		}
		characters = append(characters, ch)
	}
	return characters, rows.Err()
}

func (r *PromptSourceRepositoryPG) loadScene(ctx context.Context, sceneID string) (*domain.Scene, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectScene, sceneID)
	var scene domain.Scene
	var rawValues []byte
	if err := row.Scan(&scene.ID, &scene.ProjectID, &scene.Name, &scene.ImageCount, &rawValues); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("load scene: %w", err)
	}
	values, err := decodeValues(rawValues)
	if err != nil {
		return nil, fmt.Errorf("scene %s values: %w", sceneID, err)
	}
	scene.Values = values
	return &scene, nil
}

func (r *PromptSourceRepositoryPG) loadCharacterValues(ctx context.Context, sceneID string) (map[string]map[string]string, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QSelectSceneCharacterValues, sceneID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := map[string]map[string]string{}
	for rows.Next() {
		var characterID string
		var rawValues []byte
		if err := rows.Scan(&characterID, &rawValues); err != nil {
			return nil, err
		}
		values, err := decodeValues(rawValues)
		if err != nil {
			return nil, fmt.Errorf("character %s values: %w", characterID, err)
		}
		result[characterID] = values
	}
	return result, rows.Err()
}

// decodeValues parses a jsonb value map. Explicit absence (null column)
// yields an empty map, distinct from an explicit empty-string entry.
func decodeValues(raw []byte) (map[string]string, error) {
	if len(raw) == 0 {
		return map[string]string{}, nil
	}
	values := map[string]string{}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, err
	}
	return values, nil
}

var _ domain.PromptSourceRepository = (*PromptSourceRepositoryPG)(nil)
