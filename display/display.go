package display

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"btget/bencode"
	"btget/bittorrent"
	"btget/model"

	"github.com/elliotchance/orderedmap"
	"github.com/juju/errors"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", errors.NotValidf("output format %q", s)
}

// Summary is what gets shown for a parsed torrent.
type Summary struct {
	Announce     string     `json:"announce" yaml:"announce"`
	Name         string     `json:"name" yaml:"name"`
	Length       int64      `json:"length" yaml:"length"`
	PieceLength  int64      `json:"piece_length" yaml:"piece_length"`
	PieceCount   int        `json:"piece_count" yaml:"piece_count"`
	InfoHash     string     `json:"info_hash" yaml:"info_hash"`
	Magnet       string     `json:"magnet" yaml:"magnet"`
	Private      bool       `json:"private,omitempty" yaml:"private,omitempty"`
	Comment      string     `json:"comment,omitempty" yaml:"comment,omitempty"`
	CreatedBy    string     `json:"created_by,omitempty" yaml:"created_by,omitempty"`
	CreationDate *time.Time `json:"creation_date,omitempty" yaml:"creation_date,omitempty"`
}

func NewSummary(t *bittorrent.Torrent) *Summary {
	s := &Summary{
		Announce:    t.Announce,
		Name:        t.Info.Name,
		Length:      t.TotalLength(),
		PieceLength: t.Info.PieceLength,
		PieceCount:  t.PieceCount(),
		InfoHash:    t.InfoHash.String(),
		Magnet:      t.Magnet(),
		Private:     t.Info.Private,
		Comment:     t.Extra.Comment,
		CreatedBy:   t.Extra.CreatedBy,
	}
	if t.Extra.CreationDate > 0 {
		created := time.Unix(t.Extra.CreationDate, 0).UTC()
		s.CreationDate = &created
	}
	return s
}

func (s *Summary) fields() *orderedmap.OrderedMap {
	m := orderedmap.NewOrderedMap()
	m.Set("Tracker URL", s.Announce)
	m.Set("Name", s.Name)
	m.Set("Length", fmt.Sprintf("%d bytes", s.Length))
	m.Set("Piece Length", fmt.Sprintf("%d bytes", s.PieceLength))
	m.Set("Pieces", s.PieceCount)
	m.Set("Info Hash", s.InfoHash)
	m.Set("Magnet", s.Magnet)
	if s.Private {
		m.Set("Private", "yes")
	}
	if s.Comment != "" {
		m.Set("Comment", s.Comment)
	}
	if s.CreatedBy != "" {
		m.Set("Created By", s.CreatedBy)
	}
	if s.CreationDate != nil {
		m.Set("Creation Date", s.CreationDate.Format(time.RFC3339))
	}
	return m
}

func Render(w io.Writer, t *bittorrent.Torrent, format Format) error {
	s := NewSummary(t)
	switch format {
	case FormatText:
		fields := s.fields()
		for el := fields.Front(); el != nil; el = el.Next() {
			if _, err := fmt.Fprintf(w, "%s: %v\n", el.Key, el.Value); err != nil {
				return errors.Trace(err)
			}
		}
		return nil
	case FormatJSON:
		return writeJSON(w, s)
	case FormatYAML:
		return writeYAML(w, s)
	}
	return errors.NotValidf("output format %q", format)
}

// RenderRecords writes stored torrent records, one row per record in text
// format.
func RenderRecords(w io.Writer, records []*model.Torrent, format Format) error {
	switch format {
	case FormatText:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "INFO HASH\tNAME\tLENGTH\tPIECES\tPATH")
		for _, r := range records {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", r.InfoHash, r.Name, r.Length, r.PieceCount, r.Path)
		}
		return errors.Trace(tw.Flush())
	case FormatJSON:
		return writeJSON(w, records)
	case FormatYAML:
		return writeYAML(w, records)
	}
	return errors.NotValidf("output format %q", format)
}

// DumpValue writes v as indented JSON. Byte strings that are not valid UTF-8
// are written as "hex:" followed by their lowercase hex form.
func DumpValue(w io.Writer, v bencode.Value) error {
	return writeJSON(w, dumpable(v))
}

func dumpable(v bencode.Value) any {
	switch x := v.(type) {
	case bencode.Integer:
		return int64(x)
	case bencode.ByteString:
		if utf8.Valid(x) {
			return string(x)
		}
		return "hex:" + hex.EncodeToString(x)
	case bencode.List:
		ret := make([]any, 0, len(x))
		for _, item := range x {
			ret = append(ret, dumpable(item))
		}
		return ret
	case *bencode.Dictionary:
		ret := make(map[string]any, x.Len())
		x.Each(func(key string, item bencode.Value) bool {
			ret[key] = dumpable(item)
			return true
		})
		return ret
	}
	return nil
}

func writeJSON(w io.Writer, obj any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return errors.Trace(enc.Encode(obj))
}

func writeYAML(w io.Writer, obj any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(obj); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(enc.Close())
}
