package storage

import (
	"btget/model"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ TorrentStorage = (*GormTorrentStorage)(nil)

type GormTorrentStorage struct {
	db *gorm.DB
}

func NewGormTorrentStorage(db *gorm.DB) *GormTorrentStorage {
	return &GormTorrentStorage{db: db}
}

func (s *GormTorrentStorage) Store(t *model.Torrent) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "info_hash"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "announce", "length", "piece_length", "piece_count", "private", "comment", "created_by", "creation_date", "path", "updated_at"}),
	}).Create(t).Error
	if err != nil {
		logrus.Errorf("Failed to save torrent %s %s %v", t.InfoHash, t.Name, err)
		return errors.Annotatef(err, "store torrent %s", t.InfoHash)
	}
	logrus.Debugf("Saved torrent %s %s", t.InfoHash, t.Name)
	return nil
}

func (s *GormTorrentStorage) Get(infoHash string) (*model.Torrent, error) {
	t := &model.Torrent{}
	err := s.db.Where("info_hash = ?", infoHash).First(t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Trace(ErrNotFound)
	}
	if err != nil {
		return nil, errors.Annotatef(err, "get torrent %s", infoHash)
	}
	return t, nil
}

func (s *GormTorrentStorage) List(nameLike string, limit int) ([]*model.Torrent, error) {
	records := make([]*model.Torrent, 0)
	q := s.db.Order("updated_at desc").Order("info_hash")
	if nameLike != "" {
		q = q.Where("name LIKE ?", "%"+nameLike+"%")
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&records).Error; err != nil {
		return nil, errors.Annotate(err, "list torrents")
	}
	return records, nil
}
