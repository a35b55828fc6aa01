package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"

	"btget/bencode"
	"btget/bittorrent"
	"btget/config"
	"btget/dao"
	"btget/display"
	"btget/indexer"
	"btget/model"
	"btget/storage"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
)

var stdout io.Writer = os.Stdout

func run(c *config.Config, cmd string, args []string) error {
	format, err := display.ParseFormat(c.Format)
	if err != nil {
		return errors.Trace(err)
	}
	switch cmd {
	case "show":
		return show(c, format, args)
	case "dump":
		return dump(c, args)
	case "index":
		return index(c, args)
	case "list":
		return list(c, format, args)
	case "get":
		return get(c, format, args)
	}
	return errors.Errorf("unknown command %q", cmd)
}

func show(c *config.Config, format display.Format, files []string) error {
	if len(files) == 0 {
		return errors.New("show needs at least one file")
	}
	for _, file := range files {
		t, err := bittorrent.Load(file, c.DecodeOptions()...)
		if err != nil {
			return errors.Trace(err)
		}
		err = display.Render(stdout, t, format)
		if err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

func dump(c *config.Config, files []string) error {
	if len(files) != 1 {
		return errors.New("dump needs exactly one file")
	}
	data, err := os.ReadFile(files[0])
	if err != nil {
		return errors.Annotatef(err, "read %s", files[0])
	}
	v, err := bencode.Decode(data, c.DecodeOptions()...)
	if err != nil {
		return errors.Annotatef(err, "decode %s", files[0])
	}
	return display.DumpValue(stdout, v)
}

func openStorage(c *config.Config) (storage.TorrentStorage, error) {
	db, err := dao.InitDB(c.Database.Driver, c.Database.DSN)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return storage.NewGormTorrentStorage(db), nil
}

func index(c *config.Config, paths []string) error {
	if len(paths) == 0 {
		return errors.New("index needs at least one path")
	}
	s, err := openStorage(c)
	if err != nil {
		return errors.Trace(err)
	}
	ix, err := indexer.NewIndexer(c, s)
	if err != nil {
		return errors.Trace(err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logrus.Infof("Indexing %d paths...", len(paths))
	stats, err := ix.Run(ctx, paths...)
	logrus.Infof("Indexed %d of %d files, %d duplicates, %d failed.", stats.Indexed, stats.Files, stats.Duplicates, stats.Failed)
	return errors.Trace(err)
}

func list(c *config.Config, format display.Format, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	name := fs.String("name", "", "only torrents whose name contains this text")
	limit := fs.Int("limit", 50, "maximum number of torrents, 0 for all")
	if err := fs.Parse(args); err != nil {
		return errors.Trace(err)
	}
	s, err := openStorage(c)
	if err != nil {
		return errors.Trace(err)
	}
	records, err := s.List(*name, *limit)
	if err != nil {
		return errors.Trace(err)
	}
	return display.RenderRecords(stdout, records, format)
}

func get(c *config.Config, format display.Format, args []string) error {
	if len(args) != 1 {
		return errors.New("get needs exactly one info hash")
	}
	ih, err := bittorrent.ParseInfoHash(args[0])
	if err != nil {
		return errors.Trace(err)
	}
	s, err := openStorage(c)
	if err != nil {
		return errors.Trace(err)
	}
	r, err := s.Get(ih.String())
	if err != nil {
		return errors.Annotatef(err, "info hash %s", ih)
	}
	return display.RenderRecords(stdout, []*model.Torrent{r}, format)
}
