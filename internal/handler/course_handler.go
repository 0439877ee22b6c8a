package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/skillsprint/video-library-go/internal/models"
	"github.com/skillsprint/video-library-go/internal/storage"
	"github.com/skillsprint/video-library-go/internal/youtube"
	"github.com/skillsprint/video-library-go/pkg/logger"
)

// CourseHandler handles the curated module content admin endpoints.
type CourseHandler struct {
	courseRepo storage.CourseModuleRepository
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(courseRepo storage.CourseModuleRepository) *CourseHandler {
	return &CourseHandler{courseRepo: courseRepo}
}

// GetContent returns the curated content for one module. Modules with no
// configured content yield an empty document, not a 404.
func (h *CourseHandler) GetContent(c *gin.Context) {
	courseID := c.Param("courseID")
	moduleID := c.Param("moduleID")

	content, err := h.courseRepo.GetContent(c.Request.Context(), courseID, moduleID)
	if err != nil {
		logger.Log.Error("failed to load course module content",
			zap.Error(err),
			zap.String("courseId", courseID),
			zap.String("moduleId", moduleID),
		)
		sendError(c, http.StatusInternalServerError, "Internal Server Error", "failed to load module content")
		return
	}

	if content.LinkVideos == nil {
		content.LinkVideos = []models.VideoEntry{}
	}

	c.JSON(http.StatusOK, content)
}

// UpsertContent replaces the curated content for one module. Every URL is
// normalized to its canonical embed form before storage so the assembled
// video list can deduplicate against it directly.
func (h *CourseHandler) UpsertContent(c *gin.Context) {
	courseID := c.Param("courseID")
	moduleID := c.Param("moduleID")

	var req models.UpsertModuleContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Bad Request", "invalid request payload: "+err.Error())
		return
	}

	defaultURL := ""
	if req.DefaultVideoURL != "" {
		normalized, err := youtube.Normalize(req.DefaultVideoURL, false)
		if err != nil {
			sendError(c, http.StatusBadRequest, "Bad Request", "defaultVideoUrl is not a recognized YouTube URL")
			return
		}
		defaultURL = normalized.EmbedURL
	}

	links := make([]models.VideoEntry, 0, len(req.LinkVideos))
	for _, item := range req.LinkVideos {
		normalized, err := youtube.Normalize(item.URL, item.IsPlaylist)
		if err != nil {
			sendError(c, http.StatusBadRequest, "Bad Request", "linkVideos contains an unrecognized YouTube URL: "+item.URL)
			return
		}
		entry := models.NewVideoEntry(models.OriginModuleLink, normalized.EmbedURL, item.Title, normalized.IsPlaylist())
		entry.Creator = item.Creator
		links = append(links, entry)
	}

	content := &models.CourseModuleContent{
		CourseID:        courseID,
		ModuleID:        moduleID,
		DefaultVideoURL: defaultURL,
		LinkVideos:      links,
	}

	if err := h.courseRepo.UpsertContent(c.Request.Context(), content); err != nil {
		logger.Log.Error("failed to upsert course module content",
			zap.Error(err),
			zap.String("courseId", courseID),
			zap.String("moduleId", moduleID),
		)
		sendError(c, http.StatusInternalServerError, "Internal Server Error", "failed to save module content")
		return
	}

	logger.Log.Info("course module content updated",
		zap.String("courseId", courseID),
		zap.String("moduleId", moduleID),
		zap.Int("linkVideos", len(links)),
		zap.Bool("hasDefault", defaultURL != ""),
	)

	c.JSON(http.StatusOK, content)
}
