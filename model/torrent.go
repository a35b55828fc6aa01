package model

import (
	"time"

	"btget/bittorrent"
)

type Torrent struct {
	InfoHash     string     `gorm:"primaryKey;size:40" json:"info_hash"`
	Name         string     `gorm:"index" json:"name"`
	Announce     string     `json:"announce"`
	Length       int64      `json:"length"`
	PieceLength  int64      `json:"piece_length"`
	PieceCount   int        `json:"piece_count"`
	Private      bool       `json:"private"`
	Comment      string     `json:"comment,omitempty"`
	CreatedBy    string     `json:"created_by,omitempty"`
	CreationDate *time.Time `json:"creation_date,omitempty"`
	Path         string     `json:"path"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func NewTorrentFromMetadata(t *bittorrent.Torrent, path string) *Torrent {
	ret := &Torrent{
		InfoHash:    t.InfoHash.String(),
		Name:        t.Info.Name,
		Announce:    t.Announce,
		Length:      t.TotalLength(),
		PieceLength: t.Info.PieceLength,
		PieceCount:  t.PieceCount(),
		Private:     t.Info.Private,
		Comment:     t.Extra.Comment,
		CreatedBy:   t.Extra.CreatedBy,
		Path:        path,
	}
	if t.Extra.CreationDate > 0 {
		created := time.Unix(t.Extra.CreationDate, 0).UTC()
		ret.CreationDate = &created
	}
	return ret
}

func (t *Torrent) Valid() bool {
	if len(t.InfoHash) != 40 {
		return false
	}
	if len(t.Name) == 0 {
		return false
	}
	return true
}
