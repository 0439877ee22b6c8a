// Package handler contains the gin HTTP handlers for the video library API.
package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/skillsprint/video-library-go/internal/events"
	"github.com/skillsprint/video-library-go/internal/library"
	"github.com/skillsprint/video-library-go/internal/metrics"
	"github.com/skillsprint/video-library-go/internal/models"
	"github.com/skillsprint/video-library-go/internal/storage"
	"github.com/skillsprint/video-library-go/pkg/logger"
)

// headerUserKey carries the user identity resolved by the upstream
// session layer.
const headerUserKey = "X-User-ID"

// VideoHandler handles the per-module video endpoints.
type VideoHandler struct {
	service    *library.Service
	userRepo   storage.UserVideoRepository
	courseRepo storage.CourseModuleRepository
	publisher  *events.Publisher
}

// NewVideoHandler creates a new VideoHandler.
func NewVideoHandler(
	service *library.Service,
	userRepo storage.UserVideoRepository,
	courseRepo storage.CourseModuleRepository,
	publisher *events.Publisher,
) *VideoHandler {
	return &VideoHandler{
		service:    service,
		userRepo:   userRepo,
		courseRepo: courseRepo,
		publisher:  publisher,
	}
}

// GetModuleVideos returns the current {customVideos, aiVideos,
// aiSearchCount} triple for one module.
func (h *VideoHandler) GetModuleVideos(c *gin.Context) {
	userKey, moduleKey, ok := h.requestScope(c)
	if !ok {
		return
	}

	doc, err := h.userRepo.Load(c.Request.Context(), userKey)
	if err != nil {
		logger.Log.Error("failed to load user video maps",
			zap.Error(err),
			zap.String("userKey", userKey),
		)
		sendError(c, http.StatusInternalServerError, "Internal Server Error", "failed to load video state")
		return
	}

	c.JSON(http.StatusOK, tripleResponse(doc.StateFor(moduleKey)))
}

// GetAllModuleVideos returns the fully assembled playable list: module
// default video, curated links, user videos and AI suggestions,
// deduplicated by canonical URL.
func (h *VideoHandler) GetAllModuleVideos(c *gin.Context) {
	userKey, moduleKey, ok := h.requestScope(c)
	if !ok {
		return
	}
	courseID := c.Param("courseID")
	moduleID := c.Param("moduleID")

	doc, err := h.userRepo.Load(c.Request.Context(), userKey)
	if err != nil {
		logger.Log.Error("failed to load user video maps",
			zap.Error(err),
			zap.String("userKey", userKey),
		)
		sendError(c, http.StatusInternalServerError, "Internal Server Error", "failed to load video state")
		return
	}

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

	videos := h.service.AllVideos(content.DefaultVideoURL, content.LinkVideos, doc.StateFor(moduleKey))
	if videos == nil {
		videos = []models.VideoEntry{}
	}

	c.JSON(http.StatusOK, models.AllVideosResponse{Videos: videos})
}

// AddVideo validates and appends one user video to a module.
func (h *VideoHandler) AddVideo(c *gin.Context) {
	userKey, moduleKey, ok := h.requestScope(c)
	if !ok {
		return
	}

	var req models.AddVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Bad Request", "invalid request payload: "+err.Error())
		return
	}

	doc, err := h.userRepo.Load(c.Request.Context(), userKey)
	if err != nil {
		logger.Log.Error("failed to load user video maps",
			zap.Error(err),
			zap.String("userKey", userKey),
		)
		sendError(c, http.StatusInternalServerError, "Internal Server Error", "failed to load video state")
		return
	}

	state := doc.StateFor(moduleKey)

	entry, err := h.service.AddUserVideo(c.Request.Context(), state, library.AddVideoParams{
		URL:          req.URL,
		Title:        req.Title,
		Creator:      req.Creator,
		LanguageCode: req.Language,
		LanguageName: req.LanguageName,
		Notes:        req.Notes,
		HintPlaylist: req.IsPlaylist,
	})
	if err != nil {
		h.handleLibraryError(c, err)
		return
	}

	next := state.Clone()
	next.UserVideos = append(next.UserVideos, entry)

	if !h.persist(c.Request.Context(), userKey, moduleKey, next, doc) {
		sendError(c, http.StatusInternalServerError, "Internal Server Error", "failed to save video changes")
		return
	}

	metrics.VideosAdded.WithLabelValues(string(models.OriginUser)).Inc()
	h.publishEvent(c.Request.Context(), events.EventVideoAdded, userKey, moduleKey, func(e *events.LibraryEvent) {
		e.VideoID = entry.ID
		e.EmbedURL = entry.EmbedURL
		e.Origin = entry.Origin
	})

	logger.Log.Info("user video added",
		zap.String("userKey", userKey),
		zap.String("moduleKey", moduleKey),
		zap.String("embedUrl", entry.EmbedURL),
		zap.Bool("isPlaylist", entry.IsPlaylist),
	)

	c.JSON(http.StatusCreated, tripleResponse(next))
}

// ProcessAISearch admits one AI search result batch into a module. The
// search counter is consumed whenever the quota gate passes, even when
// filtering leaves nothing to add — a search that found nothing was still
// a search.
func (h *VideoHandler) ProcessAISearch(c *gin.Context) {
	userKey, moduleKey, ok := h.requestScope(c)
	if !ok {
		return
	}

	var req models.AISearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Bad Request", "invalid request payload: "+err.Error())
		return
	}

	doc, err := h.userRepo.Load(c.Request.Context(), userKey)
	if err != nil {
		logger.Log.Error("failed to load user video maps",
			zap.Error(err),
			zap.String("userKey", userKey),
		)
		sendError(c, http.StatusInternalServerError, "Internal Server Error", "failed to load video state")
		return
	}

	state := doc.StateFor(moduleKey)

	accepted, err := h.service.ProcessAICandidates(c.Request.Context(), state, req.Candidates)
	if err != nil {
		if library.IsNoValidVideos(err) {
			// The quota gate passed, so the search is still consumed.
			next := state.Clone()
			next.AISearchCount++
			if !h.persist(c.Request.Context(), userKey, moduleKey, next, doc) {
				sendError(c, http.StatusInternalServerError, "Internal Server Error", "failed to save video changes")
				return
			}
			metrics.AICandidatesSkipped.Add(float64(len(req.Candidates)))
		}
		h.handleLibraryError(c, err)
		return
	}

	next := state.Clone()
	next.AIVideos = append(next.AIVideos, accepted...)
	next.AISearchCount++

	if !h.persist(c.Request.Context(), userKey, moduleKey, next, doc) {
		sendError(c, http.StatusInternalServerError, "Internal Server Error", "failed to save video changes")
		return
	}

	metrics.VideosAdded.WithLabelValues(string(models.OriginAI)).Add(float64(len(accepted)))
	metrics.AICandidatesSkipped.Add(float64(len(req.Candidates) - len(accepted)))
	h.publishEvent(c.Request.Context(), events.EventAIAccepted, userKey, moduleKey, func(e *events.LibraryEvent) {
		e.Origin = models.OriginAI
		e.VideoCount = len(accepted)
	})

	logger.Log.Info("AI candidates accepted",
		zap.String("userKey", userKey),
		zap.String("moduleKey", moduleKey),
		zap.Int("accepted", len(accepted)),
		zap.Int("submitted", len(req.Candidates)),
	)

	c.JSON(http.StatusOK, tripleResponse(next))
}

// RemoveVideo removes one video, addressed by ?id= or ?url=.
func (h *VideoHandler) RemoveVideo(c *gin.Context) {
	userKey, moduleKey, ok := h.requestScope(c)
	if !ok {
		return
	}

	target := c.Query("id")
	if target == "" {
		target = c.Query("url")
	}
	if target == "" {
		sendError(c, http.StatusBadRequest, "Bad Request", "either id or url query parameter is required")
		return
	}

	doc, err := h.userRepo.Load(c.Request.Context(), userKey)
	if err != nil {
		logger.Log.Error("failed to load user video maps",
			zap.Error(err),
			zap.String("userKey", userKey),
		)
		sendError(c, http.StatusInternalServerError, "Internal Server Error", "failed to load video state")
		return
	}

	state := doc.StateFor(moduleKey)

	next, err := h.service.RemoveVideo(state, target)
	if err != nil {
		h.handleLibraryError(c, err)
		return
	}

	if !h.persist(c.Request.Context(), userKey, moduleKey, next, doc) {
		sendError(c, http.StatusInternalServerError, "Internal Server Error", "failed to save video changes")
		return
	}

	metrics.VideosRemoved.Inc()
	h.publishEvent(c.Request.Context(), events.EventVideoRemoved, userKey, moduleKey, func(e *events.LibraryEvent) {
		e.VideoID = target
	})

	c.JSON(http.StatusOK, tripleResponse(next))
}

// requestScope extracts the user key and module key for the request,
// replying 400 when the user identity header is missing.
func (h *VideoHandler) requestScope(c *gin.Context) (userKey, moduleKey string, ok bool) {
	userKey = c.GetHeader(headerUserKey)
	if userKey == "" {
		sendError(c, http.StatusBadRequest, "Bad Request", headerUserKey+" header is required")
		return "", "", false
	}

	moduleKey = models.ModuleKey(c.Param("courseID"), c.Param("moduleID"))
	return userKey, moduleKey, true
}

// persist merges the new module state into the user's maps and writes it
// back, reporting failure as a boolean.
func (h *VideoHandler) persist(ctx context.Context, userKey, moduleKey string, state models.ModuleVideoState, doc *storage.UserVideoDocument) bool {
	ok := library.Persist(ctx, moduleKey, state, doc.Maps(), func(ctx context.Context, moduleVideos, aiVideos, aiSearchUsage map[string]interface{}) error {
		return h.userRepo.WriteBack(ctx, userKey, moduleVideos, aiVideos, aiSearchUsage)
	})
	if !ok {
		metrics.PersistenceFailures.Inc()
	}
	return ok
}

// publishEvent fires one library event; publish failures are logged, never
// surfaced to the caller.
func (h *VideoHandler) publishEvent(ctx context.Context, eventType events.EventType, userKey, moduleKey string, fill func(*events.LibraryEvent)) {
	if h.publisher == nil {
		return
	}

	event := events.NewLibraryEvent(eventType, userKey, moduleKey)
	if fill != nil {
		fill(event)
	}

	if err := h.publisher.Publish(ctx, event); err != nil {
		logger.Log.Error("failed to publish library event",
			zap.Error(err),
			zap.String("type", string(eventType)),
			zap.String("moduleKey", moduleKey),
		)
	}
}

// handleLibraryError maps reconciliation errors onto HTTP statuses. Quota
// and duplicate rejections are expected traffic and not logged as warnings.
func (h *VideoHandler) handleLibraryError(c *gin.Context, err error) {
	switch {
	case library.IsInvalidURL(err):
		sendError(c, http.StatusBadRequest, "Bad Request", err.Error())
	case library.IsDuplicateVideo(err):
		metrics.DuplicateRejections.Inc()
		sendError(c, http.StatusConflict, "Conflict", err.Error())
	case library.IsQuotaExceeded(err):
		metrics.QuotaRejections.WithLabelValues(quotaKind(c)).Inc()
		sendError(c, http.StatusTooManyRequests, "Quota Exceeded", err.Error())
	case library.IsNotEmbeddable(err):
		sendError(c, http.StatusUnprocessableEntity, "Unprocessable Entity", err.Error())
	case library.IsNoValidVideos(err):
		sendError(c, http.StatusBadRequest, "Bad Request", err.Error())
	case library.IsNotFound(err):
		sendError(c, http.StatusNotFound, "Not Found", err.Error())
	default:
		logger.Log.Error("unexpected reconciliation error",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		sendError(c, http.StatusInternalServerError, "Internal Server Error", "unexpected error")
	}
}

func quotaKind(c *gin.Context) string {
	if strings.HasSuffix(c.FullPath(), "/ai") {
		return "ai_searches"
	}
	return "user_videos"
}

// tripleResponse builds the response triple, normalizing nil slices to
// empty arrays for JSON consumers.
func tripleResponse(state models.ModuleVideoState) models.ModuleVideosResponse {
	resp := models.ModuleVideosResponse{
		CustomVideos:  state.UserVideos,
		AIVideos:      state.AIVideos,
		AISearchCount: state.AISearchCount,
	}
	if resp.CustomVideos == nil {
		resp.CustomVideos = []models.VideoEntry{}
	}
	if resp.AIVideos == nil {
		resp.AIVideos = []models.VideoEntry{}
	}
	return resp
}

// sendError writes the standard error envelope.
func sendError(c *gin.Context, status int, errorText, message string) {
	c.JSON(status, models.ErrorResponse{
		Status:    status,
		Error:     errorText,
		Message:   message,
		Timestamp: time.Now(),
		Path:      c.Request.URL.Path,
	})
}
