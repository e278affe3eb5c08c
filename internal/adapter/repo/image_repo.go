package repo

import (
	"context"

	"scenesmith/internal/domain"
	"scenesmith/internal/infra"
	"scenesmith/internal/sqlinline"
)

// ImageRepositoryPG persists generated image records.
type ImageRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewImageRepository(sql infra.SQLExecutor) *ImageRepositoryPG {
	return &ImageRepositoryPG{sql: sql}
}

func (r *ImageRepositoryPG) Save(ctx context.Context, img *domain.GeneratedImage) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertGeneratedImage,
		img.ID,
		img.JobID,
		img.FilePath,
		img.ThumbnailPath,
		img.MIME,
		img.Width,
		img.Height,
		img.ImageIndex,
	)
	return err
}

func (r *ImageRepositoryPG) ListByJob(ctx context.Context, jobID string) ([]domain.GeneratedImage, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QSelectJobImages, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []domain.GeneratedImage
	for rows.Next() {
		var img domain.GeneratedImage
		if err := rows.Scan(
			&img.ID,
			&img.JobID,
			&img.FilePath,
			&img.ThumbnailPath,
			&img.MIME,
			&img.Width,
			&img.Height,
			&img.ImageIndex,
			&img.CreatedAt,
		); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

var _ domain.ImageRepository = (*ImageRepositoryPG)(nil)
