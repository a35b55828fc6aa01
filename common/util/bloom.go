package util

import (
	"encoding/binary"
	"io"
	"sync"

	"github.com/juju/errors"
	"github.com/spaolacci/murmur3"
)

const (
	bitsPerByte  = 8
	bloomHashes  = 7
	bloomHdrSize = 8 + 8 + 1
)

// BloomFilter remembers info hashes that were already seen. It may report
// false positives but never false negatives.
type BloomFilter struct {
	lock sync.RWMutex

	m    uint64
	n    uint64
	k    uint8
	keys []byte
}

// http://pages.cs.wisc.edu/~cao/papers/summary-cache/node8.html
func NewBloomFilter(bits uint64) *BloomFilter {
	if bits < bitsPerByte {
		bits = bitsPerByte
	}
	return &BloomFilter{
		m:    bits,
		k:    bloomHashes,
		keys: make([]byte, (bits+bitsPerByte-1)/bitsPerByte),
	}
}

func LoadBloomFilter(reader io.Reader) (*BloomFilter, error) {
	header := make([]byte, bloomHdrSize)
	_, err := io.ReadFull(reader, header)
	if err != nil {
		return nil, errors.Annotate(err, "read bloom filter header")
	}
	keys, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Annotate(err, "read bloom filter keys")
	}
	filter := &BloomFilter{
		m:    binary.BigEndian.Uint64(header[0:8]),
		n:    binary.BigEndian.Uint64(header[8:16]),
		k:    header[16],
		keys: keys,
	}
	if filter.k == 0 || uint64(len(keys))*bitsPerByte < filter.m {
		return nil, errors.NotValidf("bloom filter of %d bits with %d key bytes", filter.m, len(keys))
	}
	return filter, nil
}

func (f *BloomFilter) Add(data []byte) {
	f.lock.Lock()
	defer f.lock.Unlock()

	for _, loc := range f.getLocations(data) {
		f.keys[loc/bitsPerByte] |= 1 << (loc % bitsPerByte)
	}
	f.n++
}

func (f *BloomFilter) Exists(data []byte) bool {
	f.lock.RLock()
	defer f.lock.RUnlock()

	for _, loc := range f.getLocations(data) {
		if f.keys[loc/bitsPerByte]&(1<<(loc%bitsPerByte)) == 0 {
			return false
		}
	}
	return true
}

// Count returns the number of Add calls.
func (f *BloomFilter) Count() uint64 {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return f.n
}

func (f *BloomFilter) Save(writer io.Writer) error {
	f.lock.RLock()
	defer f.lock.RUnlock()

	header := make([]byte, 0, bloomHdrSize)
	header = binary.BigEndian.AppendUint64(header, f.m)
	header = binary.BigEndian.AppendUint64(header, f.n)
	header = append(header, f.k)
	_, err := writer.Write(header)
	if err != nil {
		return errors.Trace(err)
	}
	_, err = writer.Write(f.keys)
	return errors.Trace(err)
}

func (f *BloomFilter) getLocations(data []byte) []uint64 {
	locations := make([]uint64, f.k)
	buf := make([]byte, len(data)+1)
	copy(buf, data)
	for i := range locations {
		buf[len(data)] = byte(i)
		locations[i] = murmur3.Sum64(buf) % f.m
	}
	return locations
}
