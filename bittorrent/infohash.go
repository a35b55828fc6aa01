package bittorrent

import (
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/juju/errors"
)

// InfoHash is the SHA-1 digest of the canonical encoding of a torrent's info
// dictionary.
type InfoHash [20]byte

func (ih InfoHash) String() string {
	return hex.EncodeToString(ih[:])
}

func ParseInfoHash(s string) (InfoHash, error) {
	var ih InfoHash
	if len(s) != hex.EncodedLen(len(ih)) {
		return ih, errors.Errorf("info hash must be %d hex characters, got %d", hex.EncodedLen(len(ih)), len(s))
	}
	_, err := hex.Decode(ih[:], []byte(strings.ToLower(s)))
	if err != nil {
		return ih, errors.Annotatef(err, "info hash %q", s)
	}
	return ih, nil
}

// Magnet returns a magnet URI naming the torrent and its trackers.
func (t *Torrent) Magnet() string {
	b := strings.Builder{}
	b.WriteString("magnet:?xt=urn:btih:")
	b.WriteString(t.InfoHash.String())
	if t.Info.Name != "" {
		b.WriteString("&dn=")
		b.WriteString(url.QueryEscape(t.Info.Name))
	}
	for _, tr := range t.Trackers() {
		b.WriteString("&tr=")
		b.WriteString(url.QueryEscape(tr))
	}
	return b.String()
}
