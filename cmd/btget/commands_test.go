package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"btget/bencode"
	"btget/bittorrent"
	"btget/config"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setUp(t *testing.T) (*config.Config, *bytes.Buffer, string) {
	c, err := config.Load("")
	require.NoError(t, err)
	dir := t.TempDir()
	c.Database.DSN = filepath.Join(dir, "btget.db")

	raw, err := bencode.Marshal(map[string]any{
		"announce": "http://tracker.example/announce",
		"info": map[string]any{
			"length":       4096,
			"name":         "movie.mkv",
			"piece length": 2048,
			"pieces":       strings.Repeat("p", 40),
		},
	})
	require.NoError(t, err)
	file := filepath.Join(dir, "movie.torrent")
	require.NoError(t, os.WriteFile(file, raw, 0o644))

	buf := &bytes.Buffer{}
	stdout = buf
	t.Cleanup(func() { stdout = os.Stdout })
	return c, buf, file
}

func TestRun_Show(t *testing.T) {
	c, buf, file := setUp(t)
	require.NoError(t, run(c, "show", []string{file}))
	assert.Contains(t, buf.String(), "Tracker URL: http://tracker.example/announce\n")
	assert.Contains(t, buf.String(), "Name: movie.mkv\n")
	assert.Contains(t, buf.String(), "Pieces: 2\n")

	t1, err := bittorrent.Load(file)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Info Hash: "+t1.InfoHash.String()+"\n")
}

func TestRun_ShowErrors(t *testing.T) {
	c, _, file := setUp(t)
	assert.Error(t, run(c, "show", nil))

	bad := filepath.Join(filepath.Dir(file), "bad.torrent")
	require.NoError(t, os.WriteFile(bad, []byte("d8:announce4:httpe"), 0o644))
	err := run(c, "show", []string{bad})
	assert.True(t, errors.Is(err, bittorrent.ErrInvalidMetadata))

	c.Format = "xml"
	assert.Error(t, run(c, "show", []string{file}))
}

func TestRun_Dump(t *testing.T) {
	c, buf, file := setUp(t)
	require.NoError(t, run(c, "dump", []string{file}))
	assert.Contains(t, buf.String(), `"name": "movie.mkv"`)
	assert.Contains(t, buf.String(), `"piece length": 2048`)
}

func TestRun_IndexListGet(t *testing.T) {
	c, buf, file := setUp(t)
	require.NoError(t, run(c, "index", []string{filepath.Dir(file)}))

	buf.Reset()
	require.NoError(t, run(c, "list", []string{"-name", "movie"}))
	assert.Contains(t, buf.String(), "movie.mkv")

	t1, err := bittorrent.Load(file)
	require.NoError(t, err)
	buf.Reset()
	require.NoError(t, run(c, "get", []string{t1.InfoHash.String()}))
	assert.Contains(t, buf.String(), t1.InfoHash.String())

	err = run(c, "get", []string{strings.Repeat("0", 40)})
	assert.True(t, errors.IsNotFound(err))
	assert.Error(t, run(c, "get", []string{"nothex"}))
}

func TestRun_UnknownCommand(t *testing.T) {
	c, _, _ := setUp(t)
	assert.Error(t, run(c, "seed", nil))
}
