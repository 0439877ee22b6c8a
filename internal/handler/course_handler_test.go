package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/skillsprint/video-library-go/internal/models"
)

func newCourseTestRouter(courseRepo *mockCourseModuleRepo) *gin.Engine {
	courseHandler := NewCourseHandler(courseRepo)

	router := gin.New()
	modules := router.Group("/api/v1/courses/:courseID/modules/:moduleID")
	modules.GET("/content", courseHandler.GetContent)
	modules.PUT("/content", courseHandler.UpsertContent)
	return router
}

func TestGetContent(t *testing.T) {
	courseRepo := new(mockCourseModuleRepo)
	courseRepo.On("GetContent", mock.Anything, "c1", "m1").Return(&models.CourseModuleContent{
		CourseID: "c1",
		ModuleID: "m1",
	}, nil)

	router := newCourseTestRouter(courseRepo)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/courses/c1/modules/m1/content", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	// Unconfigured modules yield an empty document with array fields.
	assert.Contains(t, rec.Body.String(), `"linkVideos":[]`)
}

func TestUpsertContent(t *testing.T) {
	courseRepo := new(mockCourseModuleRepo)

	var saved *models.CourseModuleContent
	courseRepo.On("UpsertContent", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(*models.CourseModuleContent)
		}).
		Return(nil)

	router := newCourseTestRouter(courseRepo)

	rec := doJSON(t, router, http.MethodPut, "/api/v1/courses/c1/modules/m1/content", models.UpsertModuleContentRequest{
		DefaultVideoURL: "https://youtu.be/aaaaaaaaaaa",
		LinkVideos: []models.LinkVideoItem{
			{URL: "https://www.youtube.com/watch?v=bbbbbbbbbbb", Title: "Curated", Creator: "Prof. Ada"},
			{URL: "https://www.youtube.com/playlist?list=PLabc123", Title: "Series", IsPlaylist: true},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, saved)

	// Every URL is stored in canonical embed form.
	assert.Equal(t, "https://www.youtube.com/embed/aaaaaaaaaaa", saved.DefaultVideoURL)
	require.Len(t, saved.LinkVideos, 2)
	assert.Equal(t, "https://www.youtube.com/embed/bbbbbbbbbbb", saved.LinkVideos[0].EmbedURL)
	assert.Equal(t, models.OriginModuleLink, saved.LinkVideos[0].Origin)
	assert.Equal(t, "Prof. Ada", saved.LinkVideos[0].Creator)
	assert.NotEmpty(t, saved.LinkVideos[0].ID)
	assert.Equal(t, "https://www.youtube.com/embed/videoseries?list=PLabc123", saved.LinkVideos[1].EmbedURL)
	assert.True(t, saved.LinkVideos[1].IsPlaylist)
}

func TestUpsertContent_InvalidURLs(t *testing.T) {
	tests := []struct {
		name string
		body models.UpsertModuleContentRequest
	}{
		{
			name: "bad default URL",
			body: models.UpsertModuleContentRequest{DefaultVideoURL: "https://vimeo.com/42"},
		},
		{
			name: "bad link URL",
			body: models.UpsertModuleContentRequest{
				LinkVideos: []models.LinkVideoItem{{URL: "garbage", Title: "t"}},
			},
		},
		{
			name: "link without title rejected by binding",
			body: models.UpsertModuleContentRequest{
				LinkVideos: []models.LinkVideoItem{{URL: "https://youtu.be/aaaaaaaaaaa"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			courseRepo := new(mockCourseModuleRepo)
			router := newCourseTestRouter(courseRepo)

			rec := doJSON(t, router, http.MethodPut, "/api/v1/courses/c1/modules/m1/content", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var errResp models.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
			assert.Equal(t, http.StatusBadRequest, errResp.Status)

			courseRepo.AssertNotCalled(t, "UpsertContent", mock.Anything, mock.Anything)
		})
	}
}

func TestUpsertContent_ClearsContent(t *testing.T) {
	courseRepo := new(mockCourseModuleRepo)

	var saved *models.CourseModuleContent
	courseRepo.On("UpsertContent", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(*models.CourseModuleContent)
		}).
		Return(nil)

	router := newCourseTestRouter(courseRepo)

	rec := doJSON(t, router, http.MethodPut, "/api/v1/courses/c1/modules/m1/content", models.UpsertModuleContentRequest{})

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, saved)
	assert.Empty(t, saved.DefaultVideoURL)
	assert.Empty(t, saved.LinkVideos)
}
