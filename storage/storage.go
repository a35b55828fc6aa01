package storage

import (
	"btget/model"

	"github.com/juju/errors"
)

var ErrNotFound = errors.NotFoundf("torrent")

type TorrentStorage interface {
	// Store inserts t or replaces the record with the same info hash.
	Store(t *model.Torrent) error
	Get(infoHash string) (*model.Torrent, error)
	// List returns up to limit records whose name contains nameLike, newest
	// first. An empty nameLike matches everything.
	List(nameLike string, limit int) ([]*model.Torrent, error)
}
