// Package models contains the data models and DTOs for the video library service.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Origin records the provenance of a video entry. It never changes after
// the entry is created.
type Origin string

// Origin constants define where a video entry came from.
const (
	OriginModuleDefault Origin = "module-default"
	OriginModuleLink    Origin = "module-link"
	OriginUser          Origin = "user"
	OriginAI            Origin = "ai"
)

// VideoEntry represents one playable video or playlist reference inside a
// course module.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type VideoEntry struct {
	ID           string `json:"id"`
	EmbedURL     string `json:"embedUrl"`
	Title        string `json:"title"`
	Creator      string `json:"creator,omitempty"`
	LanguageCode string `json:"languageCode,omitempty"`
	LanguageName string `json:"languageName,omitempty"`
	IsPlaylist   bool   `json:"isPlaylist"`
	Origin       Origin `json:"origin"`
	Notes        string `json:"notes,omitempty"`
}

// EntryID derives the stable identifier for a video entry. The same
// canonical embed URL and origin always produce the same id, which is what
// makes re-addition of an existing video detectable.
func EntryID(origin Origin, embedURL string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(string(origin)+"|"+embedURL)).String()
}

// NewVideoEntry creates a VideoEntry with its derived id.
func NewVideoEntry(origin Origin, embedURL, title string, isPlaylist bool) VideoEntry {
	return VideoEntry{
		ID:         EntryID(origin, embedURL),
		EmbedURL:   embedURL,
		Title:      title,
		IsPlaylist: isPlaylist,
		Origin:     origin,
	}
}

// ModuleVideoState is the per-(course,module) collection the reconciliation
// service operates on. The zero value is the implicit state of a module
// that has never been touched.
type ModuleVideoState struct {
	UserVideos    []VideoEntry `json:"userVideos"`
	AIVideos      []VideoEntry `json:"aiVideos"`
	AISearchCount int          `json:"aiSearchCount"`
}

// Clone returns a deep copy of the state. The reconciliation service never
// mutates its input; callers fold results into copies.
func (s ModuleVideoState) Clone() ModuleVideoState {
	out := ModuleVideoState{AISearchCount: s.AISearchCount}
	if s.UserVideos != nil {
		out.UserVideos = make([]VideoEntry, len(s.UserVideos))
		copy(out.UserVideos, s.UserVideos)
	}
	if s.AIVideos != nil {
		out.AIVideos = make([]VideoEntry, len(s.AIVideos))
		copy(out.AIVideos, s.AIVideos)
	}
	return out
}

// ModuleKey builds the composite key scoping one module's video collection.
func ModuleKey(courseID, moduleID string) string {
	return courseID + "-" + moduleID
}

// UserVideoMaps holds the raw per-user maps as loaded from the document
// store. Each value is either a decoded JSON object (map[string]interface{})
// or an already-typed map, depending on the storage path that produced it;
// the persistence adapter normalizes both shapes before merging.
type UserVideoMaps struct {
	ModuleVideos  interface{} `json:"userModuleVideos"`
	AIVideos      interface{} `json:"userAIVideos"`
	AISearchUsage interface{} `json:"userAISearchUsage"`
}

// CourseModuleContent is the curated content configured for a module by
// course authors: an optional default video plus pre-selected link videos.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type CourseModuleContent struct {
	CourseID        string       `json:"courseId"`
	ModuleID        string       `json:"moduleId"`
	DefaultVideoURL string       `json:"defaultVideoUrl,omitempty"`
	LinkVideos      []VideoEntry `json:"linkVideos"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// AddVideoRequest is the request body for adding one user video to a module.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type AddVideoRequest struct {
	URL          string `json:"url" binding:"required,max=2048"`
	Title        string `json:"title" binding:"required,max=200"`
	Language     string `json:"language" binding:"required,max=16"`
	LanguageName string `json:"languageName" binding:"max=64"`
	Creator      string `json:"creator" binding:"max=200"`
	IsPlaylist   bool   `json:"isPlaylist"`
	Notes        string `json:"notes" binding:"max=2000"`
}

// AICandidateDTO is one AI-suggested video as produced by the generation
// layer. AI output is loosely shaped, so everything except the URL is
// optional and bounded; structurally invalid candidates are dropped by the
// reconciliation service rather than rejected wholesale.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type AICandidateDTO struct {
	URL          string `json:"url" binding:"required,max=2048"`
	Title        string `json:"title" binding:"max=200"`
	Creator      string `json:"creator" binding:"max=200"`
	LanguageCode string `json:"languageCode" binding:"max=16"`
	LanguageName string `json:"languageName" binding:"max=64"`
	IsPlaylist   bool   `json:"isPlaylist"`
	Notes        string `json:"notes" binding:"max=2000"`
}

// AISearchRequest is the request body for submitting one AI search result
// batch to a module.
type AISearchRequest struct {
	Candidates []AICandidateDTO `json:"candidates" binding:"required,min=1,max=25,dive"`
}

// UpsertModuleContentRequest is the admin request body for configuring a
// module's curated content.
type UpsertModuleContentRequest struct {
	DefaultVideoURL string          `json:"defaultVideoUrl" binding:"max=2048"`
	LinkVideos      []LinkVideoItem `json:"linkVideos" binding:"max=50,dive"`
}

// LinkVideoItem is one curated module-link video in an admin upsert.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type LinkVideoItem struct {
	URL        string `json:"url" binding:"required,max=2048"`
	Title      string `json:"title" binding:"required,max=200"`
	Creator    string `json:"creator" binding:"max=200"`
	IsPlaylist bool   `json:"isPlaylist"`
}

// ModuleVideosResponse is the triple returned by every video endpoint.
type ModuleVideosResponse struct {
	CustomVideos  []VideoEntry `json:"customVideos"`
	AIVideos      []VideoEntry `json:"aiVideos"`
	AISearchCount int          `json:"aiSearchCount"`
}

// AllVideosResponse is the fully assembled playable list for a module:
// default video, curated links, user videos and AI videos, deduplicated.
type AllVideosResponse struct {
	Videos []VideoEntry `json:"videos"`
}

// ErrorResponse represents an error response.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}
