package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skillsprint/video-library-go/internal/models"
)

// UserVideoDocument is one user's complete video state across all modules,
// as stored in the user_video_maps row. A user without a row yet gets an
// all-empty document; module state is created implicitly on first touch.
type UserVideoDocument struct {
	UserKey       string
	ModuleVideos  map[string][]models.VideoEntry
	AIVideos      map[string][]models.VideoEntry
	AISearchUsage map[string]int
}

// StateFor extracts the state for one module key. Missing entries yield the
// empty state.
func (d *UserVideoDocument) StateFor(moduleKey string) models.ModuleVideoState {
	return models.ModuleVideoState{
		UserVideos:    d.ModuleVideos[moduleKey],
		AIVideos:      d.AIVideos[moduleKey],
		AISearchCount: d.AISearchUsage[moduleKey],
	}
}

// Maps exposes the document as the raw shape the persistence adapter
// merges into.
func (d *UserVideoDocument) Maps() models.UserVideoMaps {
	return models.UserVideoMaps{
		ModuleVideos:  d.ModuleVideos,
		AIVideos:      d.AIVideos,
		AISearchUsage: d.AISearchUsage,
	}
}

// UserVideoRepository defines operations on the per-user video documents.
type UserVideoRepository interface {
	// Load retrieves the user's full video document. A user with no stored
	// document yields an empty one, never ErrNotFound.
	Load(ctx context.Context, userKey string) (*UserVideoDocument, error)

	// WriteBack replaces the user's stored maps with the merged maps
	// produced by the persistence adapter.
	WriteBack(ctx context.Context, userKey string, moduleVideos, aiVideos, aiSearchUsage map[string]interface{}) error
}

type userVideoRepository struct {
	pool *pgxpool.Pool
}

// NewUserVideoRepository creates a UserVideoRepository backed by Postgres.
func NewUserVideoRepository(pool *pgxpool.Pool) UserVideoRepository {
	return &userVideoRepository{pool: pool}
}

func (r *userVideoRepository) Load(ctx context.Context, userKey string) (*UserVideoDocument, error) {
	query := `
		SELECT module_videos, ai_videos, ai_search_usage
		FROM user_video_maps
		WHERE user_key = $1
	`

	doc := &UserVideoDocument{
		UserKey:       userKey,
		ModuleVideos:  map[string][]models.VideoEntry{},
		AIVideos:      map[string][]models.VideoEntry{},
		AISearchUsage: map[string]int{},
	}

	var moduleVideos, aiVideos, aiSearchUsage []byte
	err := r.pool.QueryRow(ctx, query, userKey).Scan(&moduleVideos, &aiVideos, &aiSearchUsage)
	if err != nil {
		wrapped := WrapError(err, "load user video maps")
		if IsNotFound(wrapped) {
			return doc, nil
		}
		return nil, wrapped
	}

	if err := unmarshalColumn(moduleVideos, &doc.ModuleVideos); err != nil {
		return nil, fmt.Errorf("decode module_videos for %q: %w", userKey, err)
	}
	if err := unmarshalColumn(aiVideos, &doc.AIVideos); err != nil {
		return nil, fmt.Errorf("decode ai_videos for %q: %w", userKey, err)
	}
	if err := unmarshalColumn(aiSearchUsage, &doc.AISearchUsage); err != nil {
		return nil, fmt.Errorf("decode ai_search_usage for %q: %w", userKey, err)
	}

	return doc, nil
}

func (r *userVideoRepository) WriteBack(ctx context.Context, userKey string, moduleVideos, aiVideos, aiSearchUsage map[string]interface{}) error {
	moduleJSON, err := json.Marshal(moduleVideos)
	if err != nil {
		return fmt.Errorf("encode module_videos: %w", err)
	}
	aiJSON, err := json.Marshal(aiVideos)
	if err != nil {
		return fmt.Errorf("encode ai_videos: %w", err)
	}
	usageJSON, err := json.Marshal(aiSearchUsage)
	if err != nil {
		return fmt.Errorf("encode ai_search_usage: %w", err)
	}

	query := `
		INSERT INTO user_video_maps (user_key, module_videos, ai_videos, ai_search_usage, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_key) DO UPDATE
		SET module_videos = EXCLUDED.module_videos,
		    ai_videos = EXCLUDED.ai_videos,
		    ai_search_usage = EXCLUDED.ai_search_usage,
		    updated_at = EXCLUDED.updated_at
	`

	if _, err := r.pool.Exec(ctx, query, userKey, moduleJSON, aiJSON, usageJSON, time.Now()); err != nil {
		return WrapError(err, "write back user video maps")
	}

	return nil
}

// unmarshalColumn decodes a nullable jsonb column into dst, leaving dst
// untouched for NULL or empty values.
func unmarshalColumn(raw []byte, dst interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
