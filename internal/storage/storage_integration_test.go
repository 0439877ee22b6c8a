//go:build integration
// +build integration

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/skillsprint/video-library-go/internal/models"
	"github.com/skillsprint/video-library-go/pkg/logger"
)

func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if err := logger.Init("error", ""); err != nil {
		t.Fatalf("Failed to initialize test logger: %v", err)
	}

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS user_video_maps (
			user_key VARCHAR(128) PRIMARY KEY,
			module_videos JSONB NOT NULL DEFAULT '{}'::jsonb,
			ai_videos JSONB NOT NULL DEFAULT '{}'::jsonb,
			ai_search_usage JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		t.Fatalf("Failed to create user_video_maps table: %v", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS course_modules (
			course_id VARCHAR(128) NOT NULL,
			module_id VARCHAR(128) NOT NULL,
			default_video_url TEXT NOT NULL DEFAULT '',
			link_videos JSONB NOT NULL DEFAULT '[]'::jsonb,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (course_id, module_id)
		)
	`)
	if err != nil {
		t.Fatalf("Failed to create course_modules table: %v", err)
	}

	cleanup := func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

func TestUserVideoRepository_LoadMissingUser(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserVideoRepository(pool)

	doc, err := repo.Load(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// A user with no row gets an empty document, never an error.
	if doc.UserKey != "nobody" {
		t.Errorf("UserKey = %s, want nobody", doc.UserKey)
	}
	if len(doc.ModuleVideos) != 0 || len(doc.AIVideos) != 0 || len(doc.AISearchUsage) != 0 {
		t.Error("expected empty maps for missing user")
	}
}

func TestUserVideoRepository_WriteBackAndLoad(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserVideoRepository(pool)
	ctx := context.Background()

	entry := models.NewVideoEntry(models.OriginUser, "https://www.youtube.com/embed/dQw4w9WgXcQ", "Intro", false)

	moduleVideos := map[string]interface{}{"c1-m1": []models.VideoEntry{entry}}
	aiVideos := map[string]interface{}{}
	aiSearchUsage := map[string]interface{}{"c1-m1": 1}

	if err := repo.WriteBack(ctx, "u1", moduleVideos, aiVideos, aiSearchUsage); err != nil {
		t.Fatalf("WriteBack() error = %v", err)
	}

	doc, err := repo.Load(ctx, "u1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	state := doc.StateFor("c1-m1")
	if len(state.UserVideos) != 1 {
		t.Fatalf("len(UserVideos) = %d, want 1", len(state.UserVideos))
	}
	if state.UserVideos[0].EmbedURL != entry.EmbedURL {
		t.Errorf("EmbedURL = %s, want %s", state.UserVideos[0].EmbedURL, entry.EmbedURL)
	}
	if state.UserVideos[0].ID != entry.ID {
		t.Errorf("ID = %s, want %s", state.UserVideos[0].ID, entry.ID)
	}
	if state.AISearchCount != 1 {
		t.Errorf("AISearchCount = %d, want 1", state.AISearchCount)
	}
}

func TestUserVideoRepository_WriteBackUpserts(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserVideoRepository(pool)
	ctx := context.Background()

	first := map[string]interface{}{"c1-m1": []models.VideoEntry{
		models.NewVideoEntry(models.OriginUser, "https://www.youtube.com/embed/aaaaaaaaaaa", "a", false),
	}}
	if err := repo.WriteBack(ctx, "u1", first, map[string]interface{}{}, map[string]interface{}{}); err != nil {
		t.Fatalf("first WriteBack() error = %v", err)
	}

	// Second write for the same user replaces the stored maps.
	second := map[string]interface{}{"c1-m2": []models.VideoEntry{
		models.NewVideoEntry(models.OriginUser, "https://www.youtube.com/embed/bbbbbbbbbbb", "b", false),
	}}
	if err := repo.WriteBack(ctx, "u1", second, map[string]interface{}{}, map[string]interface{}{}); err != nil {
		t.Fatalf("second WriteBack() error = %v", err)
	}

	doc, err := repo.Load(ctx, "u1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(doc.ModuleVideos["c1-m1"]) != 0 {
		t.Error("expected c1-m1 to be gone after replacement write")
	}
	if len(doc.ModuleVideos["c1-m2"]) != 1 {
		t.Errorf("len(c1-m2) = %d, want 1", len(doc.ModuleVideos["c1-m2"]))
	}
}

func TestCourseModuleRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewCourseModuleRepository(pool)
	ctx := context.Background()

	// Missing module yields empty content.
	content, err := repo.GetContent(ctx, "c1", "m1")
	if err != nil {
		t.Fatalf("GetContent() error = %v", err)
	}
	if content.DefaultVideoURL != "" || len(content.LinkVideos) != 0 {
		t.Error("expected empty content for unconfigured module")
	}

	link := models.NewVideoEntry(models.OriginModuleLink, "https://www.youtube.com/embed/bbbbbbbbbbb", "Curated", false)
	upserted := &models.CourseModuleContent{
		CourseID:        "c1",
		ModuleID:        "m1",
		DefaultVideoURL: "https://www.youtube.com/embed/aaaaaaaaaaa",
		LinkVideos:      []models.VideoEntry{link},
	}

	if err := repo.UpsertContent(ctx, upserted); err != nil {
		t.Fatalf("UpsertContent() error = %v", err)
	}
	if upserted.UpdatedAt.IsZero() {
		t.Error("UpsertContent() did not populate UpdatedAt")
	}

	got, err := repo.GetContent(ctx, "c1", "m1")
	if err != nil {
		t.Fatalf("GetContent() after upsert error = %v", err)
	}
	if got.DefaultVideoURL != upserted.DefaultVideoURL {
		t.Errorf("DefaultVideoURL = %s, want %s", got.DefaultVideoURL, upserted.DefaultVideoURL)
	}
	if len(got.LinkVideos) != 1 || got.LinkVideos[0].EmbedURL != link.EmbedURL {
		t.Errorf("LinkVideos = %+v, want one entry for %s", got.LinkVideos, link.EmbedURL)
	}

	// Upsert replaces the previous content.
	if err := repo.UpsertContent(ctx, &models.CourseModuleContent{CourseID: "c1", ModuleID: "m1"}); err != nil {
		t.Fatalf("clearing UpsertContent() error = %v", err)
	}

	cleared, err := repo.GetContent(ctx, "c1", "m1")
	if err != nil {
		t.Fatalf("GetContent() after clear error = %v", err)
	}
	if cleared.DefaultVideoURL != "" || len(cleared.LinkVideos) != 0 {
		t.Error("expected cleared content after replacement upsert")
	}
}
