package library

import "errors"

// Error taxonomy for video reconciliation. All failures are reported as
// values; none of these is fatal to the process.
var (
	// ErrInvalidURL is returned when a URL does not match a recognized
	// video or playlist shape.
	ErrInvalidURL = errors.New("invalid video URL")

	// ErrDuplicateVideo is returned when the canonical URL is already
	// present in the target list.
	ErrDuplicateVideo = errors.New("video already added to this module")

	// ErrQuotaExceeded is returned when a per-module cap (user videos or
	// AI searches) has been reached.
	ErrQuotaExceeded = errors.New("module quota exceeded")

	// ErrNotEmbeddable is returned when the probe says a single video
	// cannot be embedded. Playlists and AI candidates are never rejected
	// on probe failure.
	ErrNotEmbeddable = errors.New("video cannot be embedded")

	// ErrNoValidVideos is returned when an AI batch produced zero
	// admissible candidates after filtering.
	ErrNoValidVideos = errors.New("no valid videos among AI candidates")

	// ErrNotFound is returned when a removal target is absent from both
	// lists.
	ErrNotFound = errors.New("video not found in this module")
)

// IsInvalidURL returns true if the error is an ErrInvalidURL error.
func IsInvalidURL(err error) bool {
	return errors.Is(err, ErrInvalidURL)
}

// IsDuplicateVideo returns true if the error is an ErrDuplicateVideo error.
func IsDuplicateVideo(err error) bool {
	return errors.Is(err, ErrDuplicateVideo)
}

// IsQuotaExceeded returns true if the error is an ErrQuotaExceeded error.
func IsQuotaExceeded(err error) bool {
	return errors.Is(err, ErrQuotaExceeded)
}

// IsNotEmbeddable returns true if the error is an ErrNotEmbeddable error.
func IsNotEmbeddable(err error) bool {
	return errors.Is(err, ErrNotEmbeddable)
}

// IsNoValidVideos returns true if the error is an ErrNoValidVideos error.
func IsNoValidVideos(err error) bool {
	return errors.Is(err, ErrNoValidVideos)
}

// IsNotFound returns true if the error is an ErrNotFound error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
