package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skillsprint/video-library-go/internal/models"
)

// CourseModuleRepository defines operations on curated course module
// content (default video URL and module-link videos).
type CourseModuleRepository interface {
	// GetContent retrieves the curated content for one module. A module
	// with no configured content yields an empty content record, never
	// ErrNotFound, because every module is playable without curation.
	GetContent(ctx context.Context, courseID, moduleID string) (*models.CourseModuleContent, error)

	// UpsertContent creates or replaces the curated content for one module.
	UpsertContent(ctx context.Context, content *models.CourseModuleContent) error
}

type courseModuleRepository struct {
	pool *pgxpool.Pool
}

// NewCourseModuleRepository creates a CourseModuleRepository backed by Postgres.
func NewCourseModuleRepository(pool *pgxpool.Pool) CourseModuleRepository {
	return &courseModuleRepository{pool: pool}
}

func (r *courseModuleRepository) GetContent(ctx context.Context, courseID, moduleID string) (*models.CourseModuleContent, error) {
	query := `
		SELECT default_video_url, link_videos, updated_at
		FROM course_modules
		WHERE course_id = $1 AND module_id = $2
	`

	content := &models.CourseModuleContent{
		CourseID: courseID,
		ModuleID: moduleID,
	}

	var linkVideos []byte
	err := r.pool.QueryRow(ctx, query, courseID, moduleID).Scan(
		&content.DefaultVideoURL,
		&linkVideos,
		&content.UpdatedAt,
	)
	if err != nil {
		wrapped := WrapError(err, "get course module content")
		if IsNotFound(wrapped) {
			return content, nil
		}
		return nil, wrapped
	}

	if len(linkVideos) > 0 && string(linkVideos) != "null" {
		if err := json.Unmarshal(linkVideos, &content.LinkVideos); err != nil {
			return nil, fmt.Errorf("decode link_videos for %s/%s: %w", courseID, moduleID, err)
		}
	}

	return content, nil
}

func (r *courseModuleRepository) UpsertContent(ctx context.Context, content *models.CourseModuleContent) error {
	linkJSON, err := json.Marshal(content.LinkVideos)
	if err != nil {
		return fmt.Errorf("encode link_videos: %w", err)
	}

	query := `
		INSERT INTO course_modules (course_id, module_id, default_video_url, link_videos, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (course_id, module_id) DO UPDATE
		SET default_video_url = EXCLUDED.default_video_url,
		    link_videos = EXCLUDED.link_videos,
		    updated_at = EXCLUDED.updated_at
		RETURNING updated_at
	`

	now := time.Now()
	if err := r.pool.QueryRow(ctx, query,
		content.CourseID,
		content.ModuleID,
		content.DefaultVideoURL,
		linkJSON,
		now,
	).Scan(&content.UpdatedAt); err != nil {
		return WrapError(err, "upsert course module content")
	}

	return nil
}
