package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/dhowden/tag"

	"github.com/Chauhan-saab2006/music--app/internal/domain"
	"github.com/Chauhan-saab2006/music--app/internal/ports"
)

// UnknownArtist is used for scanned files without an artist tag.
const UnknownArtist = "Unknown Artist"

// SupportedExtensions lists the file types a directory scan picks up.
// They match what the local media backend can decode.
var SupportedExtensions = []string{".mp3", ".wav", ".flac", ".ogg"}

// DemoSource serves the built-in sample catalog.
type DemoSource struct{}

func (DemoSource) Tracks(context.Context) ([]domain.Track, error) {
	return domain.DemoCatalog(), nil
}

func (DemoSource) Describe() string { return "demo catalog" }

// FileSource reads a catalog from a JSON or TOML file. The format is chosen
// by extension; anything other than .toml is parsed as JSON.
type FileSource struct {
	Path string
}

type tomlCatalog struct {
	Tracks []domain.Track `toml:"tracks"`
}

func (s FileSource) Tracks(ctx context.Context) ([]domain.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", s.Path, err)
	}

	var tracks []domain.Track
	if strings.EqualFold(filepath.Ext(s.Path), ".toml") {
		var doc tomlCatalog
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidCatalog, s.Path, err)
		}
		tracks = doc.Tracks
	} else if err := json.Unmarshal(data, &tracks); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidCatalog, s.Path, err)
	}

	if tracks == nil {
		tracks = []domain.Track{}
	}
	return tracks, nil
}

func (s FileSource) Describe() string { return "file " + s.Path }

// DirectorySource scans a music folder recursively and builds a catalog from
// the audio tags of the files it finds. Ids are assigned 1..N in path order.
type DirectorySource struct {
	Root   string
	Logger *slog.Logger
}

func (s DirectorySource) Tracks(ctx context.Context) ([]domain.Track, error) {
	files, err := s.collectAudioFiles(ctx)
	if err != nil {
		return nil, err
	}

	tracks := make([]domain.Track, 0, len(files))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		title, artist := readTags(path)
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		if artist == "" {
			artist = UnknownArtist
		}
		tracks = append(tracks, domain.Track{
			ID:       len(tracks) + 1,
			Title:    title,
			Artist:   artist,
			MediaURL: path,
		})
	}

	if s.Logger != nil {
		s.Logger.Debug("directory scanned", slog.String("root", s.Root), slog.Int("tracks", len(tracks)))
	}
	return tracks, nil
}

func (s DirectorySource) Describe() string { return "directory " + s.Root }

func (s DirectorySource) collectAudioFiles(ctx context.Context) ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		if IsSupportedFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}

// IsSupportedFile reports whether path has an extension the scan accepts.
func IsSupportedFile(path string) bool {
	return slices.Contains(SupportedExtensions, strings.ToLower(filepath.Ext(path)))
}

// readTags returns the trimmed title and artist of an audio file, or empty
// strings when the file carries no readable tags.
func readTags(path string) (title, artist string) {
	file, err := os.Open(path)
	if err != nil {
		return "", ""
	}
	defer file.Close()

	metadata, err := tag.ReadFrom(file)
	if err != nil {
		return "", ""
	}
	return strings.TrimSpace(metadata.Title()), strings.TrimSpace(metadata.Artist())
}

// NewCatalogSource picks a source for location: the demo catalog when it is
// empty, a directory scan for folders, a catalog file otherwise.
func NewCatalogSource(location string, logger *slog.Logger) ports.CatalogSource {
	if location == "" {
		return DemoSource{}
	}
	if info, err := os.Stat(location); err == nil && info.IsDir() {
		return DirectorySource{Root: location, Logger: logger}
	}
	return FileSource{Path: location}
}

// CatalogService loads and validates the catalog from its source and keeps
// the last good result. All operations are thread-safe via sync.RWMutex.
type CatalogService struct {
	logger *slog.Logger
	source ports.CatalogSource

	mu     sync.RWMutex
	tracks []domain.Track
}

// NewCatalogService creates a catalog service. A nil source serves the demo catalog.
func NewCatalogService(logger *slog.Logger, source ports.CatalogSource) *CatalogService {
	if source == nil {
		source = DemoSource{}
	}
	return &CatalogService{
		logger: logger.With("component", "catalog"),
		source: source,
	}
}

// Source returns the configured catalog source.
func (s *CatalogService) Source() ports.CatalogSource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// SetSource switches to another source. The loaded tracks stay until the next Load.
func (s *CatalogService) SetSource(source ports.CatalogSource) {
	if source == nil {
		source = DemoSource{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = source
}

// Load reads the catalog from the source. Invalid catalogs are rejected and the
// previously loaded tracks are kept.
func (s *CatalogService) Load(ctx context.Context) ([]domain.Track, error) {
	source := s.Source()
	tracks, err := source.Tracks(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, domain.NewServiceError("CatalogService", "Load", "failed to read "+source.Describe(), err)
	}
	if err := domain.ValidateCatalog(tracks); err != nil {
		return nil, domain.NewServiceError("CatalogService", "Load", "invalid "+source.Describe(),
			errors.Join(domain.ErrInvalidCatalog, err))
	}

	s.mu.Lock()
	s.tracks = slices.Clone(tracks)
	s.mu.Unlock()

	s.logger.Info("catalog loaded", slog.String("source", source.Describe()), slog.Int("tracks", len(tracks)))
	return tracks, nil
}

// Tracks returns the last successfully loaded catalog.
func (s *CatalogService) Tracks() []domain.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tracks)
}

// TrackByID looks up a track of the last loaded catalog.
func (s *CatalogService) TrackByID(id int) (domain.Track, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tracks {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Track{}, false
}
