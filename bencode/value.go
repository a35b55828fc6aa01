package bencode

import (
	"bytes"
	"fmt"

	"github.com/google/btree"
)

type Kind int

const (
	KindInteger Kind = iota
	KindByteString
	KindList
	KindDictionary
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindByteString:
		return "byte string"
	case KindList:
		return "list"
	case KindDictionary:
		return "dictionary"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a node of a decoded bencode tree. The only implementations are
// Integer, ByteString, List and *Dictionary.
type Value interface {
	Kind() Kind
	Encode() []byte
	encodeTo(buf *bytes.Buffer)
}

type Integer int64

// ByteString slices returned by the decoder alias the input buffer, which must
// not be modified while the value is in use.
type ByteString []byte

type List []Value

func (Integer) Kind() Kind    { return KindInteger }
func (ByteString) Kind() Kind { return KindByteString }
func (List) Kind() Kind       { return KindList }

func (s ByteString) String() string {
	return string(s)
}

type dictEntry struct {
	key   string
	value Value
}

func lessEntry(a, b dictEntry) bool {
	return a.key < b.key
}

const dictDegree = 8

// Dictionary maps string keys to values and always iterates in ascending key
// order, which is what canonical encoding requires. The zero value is an
// empty dictionary.
type Dictionary struct {
	tree *btree.BTreeG[dictEntry]
}

func (*Dictionary) Kind() Kind { return KindDictionary }

func NewDictionary() *Dictionary {
	return &Dictionary{tree: btree.NewG[dictEntry](dictDegree, lessEntry)}
}

// Set inserts or replaces the value for key and reports whether the key was
// already present.
func (d *Dictionary) Set(key string, v Value) bool {
	if d.tree == nil {
		d.tree = btree.NewG[dictEntry](dictDegree, lessEntry)
	}
	_, replaced := d.tree.ReplaceOrInsert(dictEntry{key: key, value: v})
	return replaced
}

func (d *Dictionary) Get(key string) (Value, bool) {
	if d == nil || d.tree == nil {
		return nil, false
	}
	e, ok := d.tree.Get(dictEntry{key: key})
	if !ok {
		return nil, false
	}
	return e.value, true
}

func (d *Dictionary) Has(key string) bool {
	_, ok := d.Get(key)
	return ok
}

func (d *Dictionary) Len() int {
	if d == nil || d.tree == nil {
		return 0
	}
	return d.tree.Len()
}

func (d *Dictionary) Keys() []string {
	keys := make([]string, 0, d.Len())
	d.Each(func(key string, _ Value) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Each calls fn for every entry in ascending key order until fn returns false.
func (d *Dictionary) Each(fn func(key string, v Value) bool) {
	if d == nil || d.tree == nil {
		return
	}
	d.tree.Ascend(func(e dictEntry) bool {
		return fn(e.key, e.value)
	})
}

// Equal reports whether a and b are structurally identical trees.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case Integer:
		y, ok := b.(Integer)
		return ok && x == y
	case ByteString:
		y, ok := b.(ByteString)
		return ok && bytes.Equal(x, y)
	case List:
		y, ok := b.(List)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case *Dictionary:
		y, ok := b.(*Dictionary)
		if !ok || x.Len() != y.Len() {
			return false
		}
		equal := true
		x.Each(func(key string, v Value) bool {
			w, found := y.Get(key)
			equal = found && Equal(v, w)
			return equal
		})
		return equal
	}
	return false
}
