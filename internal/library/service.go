// Package library implements video-state reconciliation for course modules:
// quota enforcement, canonical-URL deduplication, availability checks and
// merge-safe persistence of per-module video state.
package library

import (
	"context"
	"fmt"

	"github.com/skillsprint/video-library-go/internal/models"
	"github.com/skillsprint/video-library-go/internal/youtube"
	"github.com/skillsprint/video-library-go/pkg/logger"
	"go.uber.org/zap"
)

// Defaults for the per-module limits.
const (
	DefaultMaxUserVideos = 5
	DefaultMaxAISearches = 2
)

// Service is the video reconciliation core. All operations are pure with
// respect to the passed-in ModuleVideoState: they return new values and
// never mutate their input. The only suspension point is the injected
// prober's network call.
type Service struct {
	prober        youtube.Prober
	maxUserVideos int
	maxAISearches int
}

// New creates a reconciliation service. Non-positive limits fall back to
// the defaults.
func New(prober youtube.Prober, maxUserVideos, maxAISearches int) *Service {
	if prober == nil {
		prober = youtube.StaticProber{Available: true}
	}
	if maxUserVideos <= 0 {
		maxUserVideos = DefaultMaxUserVideos
	}
	if maxAISearches <= 0 {
		maxAISearches = DefaultMaxAISearches
	}

	return &Service{
		prober:        prober,
		maxUserVideos: maxUserVideos,
		maxAISearches: maxAISearches,
	}
}

// MaxUserVideos returns the configured per-module user video cap.
func (s *Service) MaxUserVideos() int { return s.maxUserVideos }

// MaxAISearches returns the configured per-module AI search cap.
func (s *Service) MaxAISearches() int { return s.maxAISearches }

// AddVideoParams carries the caller-supplied fields for one user video.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type AddVideoParams struct {
	URL          string
	Title        string
	Creator      string
	LanguageCode string
	LanguageName string
	Notes        string
	HintPlaylist bool
}

// AddUserVideo validates one user-submitted video against the module state
// and returns the entry to append. The input state is not modified; the
// caller folds the entry into a new userVideos list.
//
// Probe policy: an unavailable probe result is fatal for a single video but
// only logged for a playlist — playlist embeddability checks are unreliable
// enough that rejecting on them would break legitimate additions.
func (s *Service) AddUserVideo(ctx context.Context, state models.ModuleVideoState, p AddVideoParams) (models.VideoEntry, error) {
	if len(state.UserVideos) >= s.maxUserVideos {
		return models.VideoEntry{}, fmt.Errorf("%w: a module holds at most %d of your videos", ErrQuotaExceeded, s.maxUserVideos)
	}

	normalized, err := youtube.Normalize(p.URL, p.HintPlaylist)
	if err != nil {
		return models.VideoEntry{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	// A URL already held as an AI suggestion counts as a duplicate too:
	// the merged module list must never carry the same embed URL twice.
	for _, list := range [2][]models.VideoEntry{state.UserVideos, state.AIVideos} {
		for _, v := range list {
			if v.EmbedURL == normalized.EmbedURL {
				return models.VideoEntry{}, fmt.Errorf("%w: %s", ErrDuplicateVideo, normalized.EmbedURL)
			}
		}
	}

	if !s.prober.Probe(ctx, normalized.EmbedURL) {
		if !normalized.IsPlaylist() {
			return models.VideoEntry{}, fmt.Errorf("%w: %s", ErrNotEmbeddable, normalized.EmbedURL)
		}
		logger.Log.Warn("playlist failed embed probe, accepting anyway",
			zap.String("embedUrl", normalized.EmbedURL),
		)
	}

	entry := models.NewVideoEntry(models.OriginUser, normalized.EmbedURL, p.Title, normalized.IsPlaylist())
	entry.Creator = p.Creator
	entry.LanguageCode = p.LanguageCode
	entry.LanguageName = p.LanguageName
	entry.Notes = p.Notes
	if entry.Notes == "" {
		entry.Notes = defaultNotes(models.OriginUser)
	}

	return entry, nil
}

// ProcessAICandidates filters one AI search result batch against the module
// state and returns the admissible entries. Duplicates and structurally
// invalid candidates are skipped silently; a failed embed probe is logged
// but never rejects an AI candidate, because the prober false-negatives on
// educational content often enough to make strict admission useless here.
//
// The AI search counter itself is incremented by the caller; this operation
// only gates on it.
func (s *Service) ProcessAICandidates(ctx context.Context, state models.ModuleVideoState, candidates []models.AICandidateDTO) ([]models.VideoEntry, error) {
	if state.AISearchCount >= s.maxAISearches {
		return nil, fmt.Errorf("%w: at most %d AI searches per module", ErrQuotaExceeded, s.maxAISearches)
	}

	seen := make(map[string]bool, len(state.UserVideos)+len(state.AIVideos))
	for _, v := range state.UserVideos {
		seen[v.EmbedURL] = true
	}
	for _, v := range state.AIVideos {
		seen[v.EmbedURL] = true
	}

	var accepted []models.VideoEntry
	for _, c := range candidates {
		normalized, err := youtube.Normalize(c.URL, c.IsPlaylist)
		if err != nil {
			logger.Log.Debug("skipping structurally invalid AI candidate",
				zap.String("url", c.URL),
				zap.Error(err),
			)
			continue
		}

		if seen[normalized.EmbedURL] {
			logger.Log.Debug("skipping duplicate AI candidate",
				zap.String("embedUrl", normalized.EmbedURL),
			)
			continue
		}

		if !s.prober.Probe(ctx, normalized.EmbedURL) {
			logger.Log.Info("AI candidate failed embed probe, accepting anyway",
				zap.String("embedUrl", normalized.EmbedURL),
			)
		}

		entry := models.NewVideoEntry(models.OriginAI, normalized.EmbedURL, c.Title, normalized.IsPlaylist())
		entry.Creator = c.Creator
		entry.LanguageCode = c.LanguageCode
		entry.LanguageName = c.LanguageName
		entry.Notes = c.Notes
		if entry.Notes == "" {
			entry.Notes = defaultNotes(models.OriginAI)
		}

		accepted = append(accepted, entry)
		seen[normalized.EmbedURL] = true
	}

	if len(accepted) == 0 {
		return nil, fmt.Errorf("%w: all candidates were duplicates or invalid", ErrNoValidVideos)
	}

	return accepted, nil
}

// RemoveVideo removes one entry, addressed by id or by URL, and returns the
// new state. User videos are searched before AI videos; the untouched list
// passes through unchanged.
func (s *Service) RemoveVideo(state models.ModuleVideoState, target string) (models.ModuleVideoState, error) {
	targetID := target
	if normalized, err := youtube.Normalize(target, false); err == nil {
		if id, ok := findByEmbedURL(state, normalized.EmbedURL); ok {
			targetID = id
		}
	}

	next := state.Clone()

	if filtered, removed := removeByID(next.UserVideos, targetID); removed {
		next.UserVideos = filtered
		return next, nil
	}
	if filtered, removed := removeByID(next.AIVideos, targetID); removed {
		next.AIVideos = filtered
		return next, nil
	}

	return state, fmt.Errorf("%w: %s", ErrNotFound, target)
}

// AllVideos assembles the complete playable list for a module: the
// configured default video, the curated module-link videos, the user's own
// videos and the AI suggestions, in that order, deduplicated by canonical
// URL with the first occurrence winning.
func (s *Service) AllVideos(defaultVideoURL string, linkVideos []models.VideoEntry, state models.ModuleVideoState) []models.VideoEntry {
	assembled := make([]models.VideoEntry, 0, 1+len(linkVideos)+len(state.UserVideos)+len(state.AIVideos))

	if defaultVideoURL != "" {
		if normalized, err := youtube.Normalize(defaultVideoURL, false); err == nil {
			entry := models.NewVideoEntry(models.OriginModuleDefault, normalized.EmbedURL, "Module video", normalized.IsPlaylist())
			entry.Notes = defaultNotes(models.OriginModuleDefault)
			assembled = append(assembled, entry)
		} else {
			logger.Log.Warn("configured module default video URL did not normalize",
				zap.String("url", defaultVideoURL),
				zap.Error(err),
			)
		}
	}

	for _, link := range linkVideos {
		if link.Origin == "" {
			link.Origin = models.OriginModuleLink
		}
		if link.ID == "" {
			link.ID = models.EntryID(link.Origin, link.EmbedURL)
		}
		if link.Notes == "" {
			link.Notes = defaultNotes(models.OriginModuleLink)
		}
		assembled = append(assembled, link)
	}

	assembled = append(assembled, state.UserVideos...)
	assembled = append(assembled, state.AIVideos...)

	seen := make(map[string]bool, len(assembled))
	result := assembled[:0:0]
	for _, v := range assembled {
		if seen[v.EmbedURL] {
			continue
		}
		seen[v.EmbedURL] = true
		result = append(result, v)
	}

	return result
}

func findByEmbedURL(state models.ModuleVideoState, embedURL string) (string, bool) {
	for _, v := range state.UserVideos {
		if v.EmbedURL == embedURL {
			return v.ID, true
		}
	}
	for _, v := range state.AIVideos {
		if v.EmbedURL == embedURL {
			return v.ID, true
		}
	}
	return "", false
}

func removeByID(entries []models.VideoEntry, id string) ([]models.VideoEntry, bool) {
	for i, v := range entries {
		if v.ID == id {
			filtered := make([]models.VideoEntry, 0, len(entries)-1)
			filtered = append(filtered, entries[:i]...)
			filtered = append(filtered, entries[i+1:]...)
			return filtered, true
		}
	}
	return entries, false
}

func defaultNotes(origin models.Origin) string {
	switch origin {
	case models.OriginModuleDefault:
		return "Featured module video"
	case models.OriginModuleLink:
		return "Curated course video"
	case models.OriginUser:
		return "Added by you"
	case models.OriginAI:
		return "Suggested by AI search"
	default:
		return ""
	}
}
