package indexer

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"btget/bittorrent"
	"btget/common/executor"
	"btget/common/util"
	"btget/config"
	"btget/model"
	"btget/storage"

	"github.com/juju/errors"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/metric"
)

const (
	metricNamespace = "btget"
	metricSubsystem = "indexer"
	torrentExt      = ".torrent"
)

var metricIndexerEvent = metric.NewCounterVec(&metric.CounterVecOpts{
	Namespace: metricNamespace,
	Subsystem: metricSubsystem,
	Name:      "event",
	Labels:    []string{"type"},
})

type Stats struct {
	Files      int64
	Indexed    int64
	Duplicates int64
	Failed     int64
}

// Indexer parses torrent files in parallel and stores their metadata once
// per info hash.
type Indexer struct {
	conf    *config.Config
	storage storage.TorrentStorage
	seen    *util.BloomFilter

	mu    sync.Mutex
	batch map[bittorrent.InfoHash]struct{}
	stats Stats
}

func NewIndexer(conf *config.Config, s storage.TorrentStorage) (*Indexer, error) {
	ix := &Indexer{
		conf:    conf,
		storage: s,
	}
	if conf.BloomFilterPath == "" {
		ix.seen = util.NewBloomFilter(conf.BloomFilterBits)
		return ix, nil
	}
	bloomFile, err := os.Open(conf.BloomFilterPath)
	if os.IsNotExist(err) {
		ix.seen = util.NewBloomFilter(conf.BloomFilterBits)
		return ix, nil
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer bloomFile.Close()
	ix.seen, err = util.LoadBloomFilter(bloomFile)
	if err != nil {
		return nil, errors.Annotatef(err, "load bloom filter %s", conf.BloomFilterPath)
	}
	logx.Debugf("Loaded bloom filter %s with %d entries", conf.BloomFilterPath, ix.seen.Count())
	return ix, nil
}

// Run indexes every path. Files given explicitly are always parsed, files
// found inside directories only when they have the .torrent extension.
func (ix *Indexer) Run(ctx context.Context, paths ...string) (Stats, error) {
	ix.mu.Lock()
	ix.batch = make(map[bittorrent.InfoHash]struct{})
	ix.stats = Stats{}
	ix.mu.Unlock()

	exec := executor.NewExecutor(ctx, ix.conf.Workers, ix.conf.QueueSize, ix.indexFile)
	exec.Start()

	var walkErr error
	for _, root := range paths {
		walkErr = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if path != root && !strings.EqualFold(filepath.Ext(path), torrentExt) {
				return nil
			}
			if !exec.Commit(path) {
				return ctx.Err()
			}
			atomic.AddInt64(&ix.stats.Files, 1)
			return nil
		})
		if walkErr != nil {
			walkErr = errors.Annotatef(walkErr, "walk %s", root)
			break
		}
	}
	exec.Close()
	exec.Wait()

	if err := ix.saveBloomFilter(); err != nil && walkErr == nil {
		walkErr = err
	}
	return ix.Stats(), walkErr
}

func (ix *Indexer) Stats() Stats {
	return Stats{
		Files:      atomic.LoadInt64(&ix.stats.Files),
		Indexed:    atomic.LoadInt64(&ix.stats.Indexed),
		Duplicates: atomic.LoadInt64(&ix.stats.Duplicates),
		Failed:     atomic.LoadInt64(&ix.stats.Failed),
	}
}

func (ix *Indexer) indexFile(path string) {
	t, err := bittorrent.Load(path, ix.conf.DecodeOptions()...)
	if err != nil {
		logx.Errorf("Failed to parse %s. %v", path, err)
		ix.count(&ix.stats.Failed, "parse_fail")
		return
	}
	if ix.duplicate(t.InfoHash) {
		logx.Debugf("Skip duplicate torrent %s %s", t.InfoHash, path)
		ix.count(&ix.stats.Duplicates, "duplicate")
		return
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	record := model.NewTorrentFromMetadata(t, path)
	if !record.Valid() {
		logx.Errorf("Skip invalid torrent %s %s", t.InfoHash, path)
		ix.release(t.InfoHash)
		ix.count(&ix.stats.Failed, "invalid")
		return
	}
	err = ix.storage.Store(record)
	if err != nil {
		logx.Errorf("Failed to store torrent %s %s. %+v", t.InfoHash, path, err)
		ix.release(t.InfoHash)
		ix.count(&ix.stats.Failed, "store_fail")
		return
	}
	ix.seen.Add(t.InfoHash[:])
	ix.count(&ix.stats.Indexed, "indexed")
	logx.Infof("Indexed %s %s", t.InfoHash, t.Info.Name)
}

// duplicate reports whether the info hash was seen earlier in this run, or
// was stored by a previous run. The bloom filter may give false positives so
// a hit is confirmed against the storage.
func (ix *Indexer) duplicate(ih bittorrent.InfoHash) bool {
	ix.mu.Lock()
	_, inBatch := ix.batch[ih]
	ix.batch[ih] = struct{}{}
	ix.mu.Unlock()
	if inBatch {
		return true
	}
	if !ix.seen.Exists(ih[:]) {
		return false
	}
	_, err := ix.storage.Get(ih.String())
	return err == nil
}

// release forgets an info hash claimed by duplicate, so a later copy in the
// same run is tried again.
func (ix *Indexer) release(ih bittorrent.InfoHash) {
	ix.mu.Lock()
	delete(ix.batch, ih)
	ix.mu.Unlock()
}

func (ix *Indexer) count(counter *int64, event string) {
	atomic.AddInt64(counter, 1)
	metricIndexerEvent.Inc(event)
}

func (ix *Indexer) saveBloomFilter() error {
	if ix.conf.BloomFilterPath == "" {
		return nil
	}
	tmpFilePath := ix.conf.BloomFilterPath + ".tmp"
	bloomFile, err := os.Create(tmpFilePath)
	if err != nil {
		return errors.Trace(err)
	}
	err = ix.seen.Save(bloomFile)
	if closeErr := bloomFile.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return errors.Annotatef(err, "write bloom filter %s", tmpFilePath)
	}
	return errors.Trace(os.Rename(tmpFilePath, ix.conf.BloomFilterPath))
}
