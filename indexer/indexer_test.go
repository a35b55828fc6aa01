package indexer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"btget/bencode"
	"btget/config"
	"btget/model"
	"btget/storage"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStorage struct {
	mu       sync.Mutex
	records  map[string]*model.Torrent
	failures int
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{records: make(map[string]*model.Torrent)}
}

func (m *memoryStorage) Store(t *model.Torrent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures > 0 {
		m.failures--
		return errors.New("storage unavailable")
	}
	m.records[t.InfoHash] = t
	return nil
}

func (m *memoryStorage) Get(infoHash string) (*model.Torrent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.records[infoHash]
	if !ok {
		return nil, errors.Trace(storage.ErrNotFound)
	}
	return t, nil
}

func (m *memoryStorage) List(nameLike string, limit int) ([]*model.Torrent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ret := make([]*model.Torrent, 0)
	for _, t := range m.records {
		if strings.Contains(t.Name, nameLike) {
			ret = append(ret, t)
		}
	}
	return ret, nil
}

func writeTorrent(t *testing.T, path, name string) {
	raw, err := bencode.Marshal(map[string]any{
		"announce": "http://tracker.example/announce",
		"info": map[string]any{
			"length":       100,
			"name":         name,
			"piece length": 16384,
			"pieces":       strings.Repeat("x", 20),
		},
	})
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, raw, 0o644))
}

func testConfig(t *testing.T) *config.Config {
	c, err := config.Load("")
	require.NoError(t, err)
	c.Workers = 3
	return c
}

func TestIndexer_Run(t *testing.T) {
	dir := t.TempDir()
	writeTorrent(t, filepath.Join(dir, "a.torrent"), "a")
	writeTorrent(t, filepath.Join(dir, "sub", "b.TORRENT"), "b")
	writeTorrent(t, filepath.Join(dir, "sub", "copy-of-a.torrent"), "a")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.torrent"), []byte("d8:announce"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	explicit := filepath.Join(t.TempDir(), "c.bin")
	writeTorrent(t, explicit, "c")

	s := newMemoryStorage()
	ix, err := NewIndexer(testConfig(t), s)
	require.NoError(t, err)

	stats, err := ix.Run(context.Background(), dir, explicit)
	require.NoError(t, err)
	assert.Equal(t, Stats{Files: 5, Indexed: 3, Duplicates: 1, Failed: 1}, stats)

	list, err := s.List("", 0)
	require.NoError(t, err)
	assert.Len(t, list, 3)
	for _, r := range list {
		assert.True(t, r.Valid())
		assert.True(t, filepath.IsAbs(r.Path))
	}
}

func TestIndexer_BloomFilterAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	writeTorrent(t, filepath.Join(dir, "a.torrent"), "a")
	c := testConfig(t)
	c.BloomFilterPath = filepath.Join(t.TempDir(), "seen.bloom")
	s := newMemoryStorage()

	ix, err := NewIndexer(c, s)
	require.NoError(t, err)
	stats, err := ix.Run(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Indexed)
	assert.FileExists(t, c.BloomFilterPath)

	ix, err = NewIndexer(c, s)
	require.NoError(t, err)
	stats, err = ix.Run(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Indexed)
	assert.Equal(t, int64(1), stats.Duplicates)

	ix, err = NewIndexer(c, newMemoryStorage())
	require.NoError(t, err)
	stats, err = ix.Run(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Indexed, "bloom hit without a stored record is indexed again")
}

func TestIndexer_RetriesAfterStoreFailure(t *testing.T) {
	dir := t.TempDir()
	writeTorrent(t, filepath.Join(dir, "a1.torrent"), "a")
	writeTorrent(t, filepath.Join(dir, "a2.torrent"), "a")
	c := testConfig(t)
	c.Workers = 1
	s := newMemoryStorage()
	s.failures = 1

	ix, err := NewIndexer(c, s)
	require.NoError(t, err)
	stats, err := ix.Run(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, Stats{Files: 2, Indexed: 1, Duplicates: 0, Failed: 1}, stats)

	list, err := s.List("", 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestIndexer_SkipsInvalidRecord(t *testing.T) {
	dir := t.TempDir()
	writeTorrent(t, filepath.Join(dir, "unnamed.torrent"), "")
	s := newMemoryStorage()

	ix, err := NewIndexer(testConfig(t), s)
	require.NoError(t, err)
	stats, err := ix.Run(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, Stats{Files: 1, Indexed: 0, Duplicates: 0, Failed: 1}, stats)

	list, err := s.List("", 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestIndexer_MissingPath(t *testing.T) {
	ix, err := NewIndexer(testConfig(t), newMemoryStorage())
	require.NoError(t, err)
	_, err = ix.Run(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
