package artwork

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/damianolombardo/sensor.jellyfin-upcoming-media/internal/domain"
)

const (
	// Subdirectory of <baseDir>/www that holds persisted artwork
	communityDir = "community/jellyfin_upcoming_media"

	// URL prefix under which <baseDir>/www is served
	localURLPrefix = "/local/"

	tvdbProvider = "Tvdb"
)

// FallbackURLBuilder builds remote artwork CDN URLs
type FallbackURLBuilder interface {
	FallbackImageURL(externalID, imageKind, mediaKind string) string
}

// CDNMediaKind maps a card library kind to the CDN path segment.
// Unknown kinds use the movies tree.
func CDNMediaKind(libraryKind string) string {
	switch libraryKind {
	case "show":
		return "series"
	case "episode":
		return "episodes"
	default:
		return "movies"
	}
}

// Resolver turns downloaded artwork into a local URL, or a CDN URL when
// the server had nothing for the requested image.
type Resolver struct {
	baseDir  string
	fallback FallbackURLBuilder
	logger   *slog.Logger
}

// NewResolver creates a resolver persisting files below baseDir/www
func NewResolver(baseDir string, fallback FallbackURLBuilder, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		baseDir:  baseDir,
		fallback: fallback,
		logger:   logger.With("component", "artwork"),
	}
}

// Dir returns the directory artwork files are written to
func (r *Resolver) Dir() string {
	return filepath.Join(r.baseDir, "www", filepath.FromSlash(communityDir))
}

// FileName returns the artwork file name for a slot
func FileName(upcomingKind, libraryKind string, seq int) string {
	return fmt.Sprintf("%s_%s_%d.jpg", upcomingKind, libraryKind, seq)
}

// Resolve returns the URL for one artwork slot of a record. Non-empty bytes
// under "<jellyfinImageKey>_bytes" are written to disk and a /local/ URL is
// returned; a failed write returns "". Otherwise the CDN URL for the record's
// Tvdb id is returned.
func (r *Resolver) Resolve(record domain.MediaRecord, jellyfinImageKey, upcomingKind, libraryKind, cdnImageKind string, seq int) string {
	data := record.ImageBytes(jellyfinImageKey + "_bytes")
	if len(data) > 0 {
		return r.store(data, FileName(upcomingKind, libraryKind, seq))
	}
	return r.fallback.FallbackImageURL(record.ProviderID(tvdbProvider), cdnImageKind, CDNMediaKind(libraryKind))
}

// store writes data to the artwork directory, overwriting any previous file
func (r *Resolver) store(data []byte, fileName string) string {
	dir := r.Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		r.logger.Error("failed to create artwork directory", "dir", dir, "error", err)
		return ""
	}

	path := filepath.Join(dir, fileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		r.logger.Error("failed to save image", "path", path, "error", err)
		return ""
	}

	r.logger.Debug("image saved", "path", path, "bytes", len(data))
	return localURLPrefix + communityDir + "/" + fileName
}
