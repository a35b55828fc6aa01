package bittorrent

import (
	"crypto/sha1"
	"os"
	"reflect"
	"strings"
	"unicode/utf8"

	"btget/bencode"

	"github.com/juju/errors"
	"github.com/mitchellh/mapstructure"
)

const PieceHashSize = sha1.Size

var ErrInvalidMetadata = errors.New("invalid torrent metadata")

type PieceHash [PieceHashSize]byte

type Info struct {
	Length      int64       `mapstructure:"-"`
	Name        string      `mapstructure:"-"`
	PieceLength int64       `mapstructure:"-"`
	Pieces      []PieceHash `mapstructure:"-"`
	Private     bool        `mapstructure:"private"`
	Source      string      `mapstructure:"source"`
}

type Torrent struct {
	Announce string
	Info     Info
	InfoHash InfoHash
	Extra    Extra
}

// Extra holds the optional top level fields. They are filled on a best effort
// basis and never make a projection fail.
type Extra struct {
	AnnounceList [][]string `mapstructure:"announce-list"`
	Comment      string     `mapstructure:"comment"`
	CreatedBy    string     `mapstructure:"created by"`
	CreationDate int64      `mapstructure:"creation date"`
	Encoding     string     `mapstructure:"encoding"`
}

// Project maps a decoded metainfo tree onto a Torrent. Every missing or
// mistyped required field yields ErrInvalidMetadata.
func Project(v bencode.Value) (*Torrent, error) {
	dict, ok := v.(*bencode.Dictionary)
	if !ok {
		return nil, ErrInvalidMetadata
	}
	announce, ok := textField(dict, "announce")
	if !ok {
		return nil, ErrInvalidMetadata
	}
	infoValue, ok := dict.Get("info")
	if !ok {
		return nil, ErrInvalidMetadata
	}
	info, err := projectInfo(infoValue)
	if err != nil {
		return nil, err
	}
	t := &Torrent{
		Announce: announce,
		Info:     *info,
		InfoHash: sha1.Sum(bencode.Encode(infoValue)),
	}
	_ = decodeOptional(dict, &t.Extra)
	_ = decodeOptional(infoValue, &t.Info)
	return t, nil
}

func projectInfo(v bencode.Value) (*Info, error) {
	dict, ok := v.(*bencode.Dictionary)
	if !ok {
		return nil, ErrInvalidMetadata
	}
	length, ok := dict.Get("length")
	if !ok || length.Kind() != bencode.KindInteger {
		return nil, ErrInvalidMetadata
	}
	name, ok := textField(dict, "name")
	if !ok {
		return nil, ErrInvalidMetadata
	}
	pieceLength, ok := dict.Get("piece length")
	if !ok || pieceLength.Kind() != bencode.KindInteger {
		return nil, ErrInvalidMetadata
	}
	pieces, ok := bencode.GetBytes(dict, "pieces")
	if !ok || len(pieces)%PieceHashSize != 0 {
		return nil, ErrInvalidMetadata
	}
	return &Info{
		Length:      int64(length.(bencode.Integer)),
		Name:        name,
		PieceLength: int64(pieceLength.(bencode.Integer)),
		Pieces:      splitPieces(pieces),
	}, nil
}

func textField(dict *bencode.Dictionary, key string) (string, bool) {
	b, ok := bencode.GetBytes(dict, key)
	if !ok || !utf8.Valid(b) {
		return "", false
	}
	return string(b), true
}

func splitPieces(pieces []byte) []PieceHash {
	ret := make([]PieceHash, len(pieces)/PieceHashSize)
	for i := range ret {
		copy(ret[i][:], pieces[i*PieceHashSize:])
	}
	return ret
}

// decodeOptional fills the optional fields of result from v. Required fields
// are tagged "-" and left untouched.
func decodeOptional(v bencode.Value, result any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           result,
		DecodeHook: func(src reflect.Kind, target reflect.Kind, from interface{}) (interface{}, error) {
			b, isText := from.([]byte)
			switch target {
			case reflect.String:
				if src == reflect.String {
					return from, nil
				}
				if !isText {
					return nil, errors.Errorf("expected text, got %T", from)
				}
				return strings.ToValidUTF8(string(b), ""), nil
			case reflect.Slice:
				// A flat announce-list holds URLs where tiers are expected.
				// Each one becomes a tier of its own.
				if isText {
					return []string{strings.ToValidUTF8(string(b), "")}, nil
				}
			}
			return from, nil
		},
	})
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(decoder.Decode(bencode.ToNative(v)))
}

// Parse decodes raw metainfo bytes and projects them.
func Parse(data []byte, opts ...bencode.Option) (*Torrent, error) {
	v, err := bencode.Decode(data, opts...)
	if err != nil {
		return nil, errors.Trace(err)
	}
	t, err := Project(v)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return t, nil
}

func Load(path string, opts ...bencode.Option) (*Torrent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Annotatef(err, "read %s", path)
	}
	t, err := Parse(data, opts...)
	if err != nil {
		return nil, errors.Annotatef(err, "parse %s", path)
	}
	return t, nil
}

func (t *Torrent) PieceCount() int {
	return len(t.Info.Pieces)
}

func (t *Torrent) TotalLength() int64 {
	return t.Info.Length
}

// Trackers returns the announce URL followed by the announce-list entries,
// without duplicates.
func (t *Torrent) Trackers() []string {
	seen := make(map[string]bool)
	ret := make([]string, 0, 1)
	add := func(tr string) {
		if tr == "" || seen[tr] {
			return
		}
		seen[tr] = true
		ret = append(ret, tr)
	}
	add(t.Announce)
	for _, tier := range t.Extra.AnnounceList {
		for _, tr := range tier {
			add(tr)
		}
	}
	return ret
}
