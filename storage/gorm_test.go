package storage

import (
	"path/filepath"
	"testing"

	"btget/dao"
	"btget/model"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *GormTorrentStorage {
	db, err := dao.InitDB(dao.DriverSQLite, filepath.Join(t.TempDir(), "btget.db"))
	require.NoError(t, err)
	return NewGormTorrentStorage(db)
}

func record(hashChar string, name string) *model.Torrent {
	hash := ""
	for i := 0; i < 40; i++ {
		hash += hashChar
	}
	return &model.Torrent{
		InfoHash:    hash,
		Name:        name,
		Announce:    "http://tracker.example/announce",
		Length:      10,
		PieceLength: 16384,
		PieceCount:  1,
	}
}

func TestGormTorrentStorage_StoreAndGet(t *testing.T) {
	s := newTestStorage(t)
	r := record("a", "ubuntu.iso")
	require.NoError(t, s.Store(r))

	got, err := s.Get(r.InfoHash)
	require.NoError(t, err)
	assert.Equal(t, "ubuntu.iso", got.Name)
	assert.Equal(t, int64(16384), got.PieceLength)

	r2 := record("a", "ubuntu-renamed.iso")
	require.NoError(t, s.Store(r2))
	got, err = s.Get(r.InfoHash)
	require.NoError(t, err)
	assert.Equal(t, "ubuntu-renamed.iso", got.Name)

	all, err := s.List("", 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGormTorrentStorage_NotFound(t *testing.T) {
	s := newTestStorage(t)
	_, err := s.Get("0000000000000000000000000000000000000000")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.IsNotFound(err))
}

func TestGormTorrentStorage_List(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.Store(record("a", "debian-12.iso")))
	require.NoError(t, s.Store(record("b", "debian-11.iso")))
	require.NoError(t, s.Store(record("c", "fedora.iso")))

	list, err := s.List("debian", 0)
	require.NoError(t, err)
	names := make([]string, 0, len(list))
	for _, r := range list {
		names = append(names, r.Name)
	}
	assert.ElementsMatch(t, []string{"debian-12.iso", "debian-11.iso"}, names)

	list, err = s.List("", 2)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestInitDB_UnknownDriver(t *testing.T) {
	_, err := dao.InitDB("postgres", "")
	assert.True(t, errors.IsNotSupported(err))
}
