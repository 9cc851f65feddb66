package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chauhan-saab2006/music--app/internal/domain"
	"github.com/Chauhan-saab2006/music--app/internal/logger"
	"github.com/Chauhan-saab2006/music--app/internal/testutil"
)

type recordingTarget struct {
	mu       sync.Mutex
	catalogs [][]domain.Track
}

func (r *recordingTarget) ReplaceCatalog(tracks []domain.Track) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.catalogs = append(r.catalogs, tracks)
}

func (r *recordingTarget) last() ([]domain.Track, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.catalogs) == 0 {
		return nil, 0
	}
	return r.catalogs[len(r.catalogs)-1], len(r.catalogs)
}

const watchDelay = 20 * time.Millisecond

func TestWatchPath(t *testing.T) {
	path, ok := WatchPath(FileSource{Path: "/tmp/c.json"})
	assert.True(t, ok)
	assert.Equal(t, "/tmp/c.json", path)

	path, ok = WatchPath(DirectorySource{Root: "/music"})
	assert.True(t, ok)
	assert.Equal(t, "/music", path)

	_, ok = WatchPath(DemoSource{})
	assert.False(t, ok)
}

func TestCatalogWatcher_DemoSourceCannotBeWatched(t *testing.T) {
	catalog := NewCatalogService(logger.NewTestLogger(), DemoSource{})
	_, err := NewCatalogWatcher(logger.NewTestLogger(), catalog, &recordingTarget{}, watchDelay)
	var serviceErr *domain.ServiceError
	assert.ErrorAs(t, err, &serviceErr)
}

func TestCatalogWatcher_ReloadsChangedFile(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	path := filepath.Join(t.TempDir(), "catalog.json")
	writeFile(t, path, []byte(`[{"id":1,"title":"One","mediaUrl":"a.mp3"}]`))

	catalog := NewCatalogService(logger.NewTestLogger(), FileSource{Path: path})
	_, err := catalog.Load(context.Background())
	require.NoError(t, err)

	target := &recordingTarget{}
	w, err := NewCatalogWatcher(logger.NewTestLogger(), catalog, target, watchDelay)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Close()

	writeFile(t, path, []byte(`[{"id":1,"title":"One","mediaUrl":"a.mp3"},{"id":2,"title":"Two","mediaUrl":"b.mp3"}]`))

	require.Eventually(t, func() bool {
		tracks, _ := target.last()
		return len(tracks) == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCatalogWatcher_IgnoresOtherFilesAndInvalidCatalogs(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	writeFile(t, path, []byte(`[{"id":1,"title":"One","mediaUrl":"a.mp3"}]`))

	catalog := NewCatalogService(logger.NewTestLogger(), FileSource{Path: path})
	target := &recordingTarget{}
	w, err := NewCatalogWatcher(logger.NewTestLogger(), catalog, target, watchDelay)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Close()

	writeFile(t, filepath.Join(dir, "unrelated.json"), []byte(`[]`))
	writeFile(t, path, []byte(`[{"id":1,"title":"One","mediaUrl":"a.mp3"},{"id":1,"title":"Dup","mediaUrl":"b.mp3"}]`))

	time.Sleep(10 * watchDelay)
	_, count := target.last()
	assert.Equal(t, 0, count)
}

func TestCatalogWatcher_RescansDirectory(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "one.mp3"), []byte("x"))

	catalog := NewCatalogService(logger.NewTestLogger(), DirectorySource{Root: root})
	target := &recordingTarget{}
	w, err := NewCatalogWatcher(logger.NewTestLogger(), catalog, target, watchDelay)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Close()

	writeFile(t, filepath.Join(root, "two.ogg"), []byte("y"))

	require.Eventually(t, func() bool {
		tracks, _ := target.last()
		return len(tracks) == 2
	}, 2*time.Second, 10*time.Millisecond)

	tracks, _ := target.last()
	assert.Equal(t, "one", tracks[0].Title)
	assert.Equal(t, "two", tracks[1].Title)
}

func TestCatalogWatcher_CloseIsIdempotent(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	path := filepath.Join(t.TempDir(), "catalog.toml")
	writeFile(t, path, nil)
	catalog := NewCatalogService(logger.NewTestLogger(), FileSource{Path: path})
	w, err := NewCatalogWatcher(logger.NewTestLogger(), catalog, &recordingTarget{}, 0)
	require.NoError(t, err)

	w.Close()
	require.NoError(t, w.Start(context.Background()))
	w.Close()
	w.Close()
}
