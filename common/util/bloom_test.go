package util

import (
	"bytes"
	"crypto/sha1"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBloomFilter(t *testing.T) {
	f := NewBloomFilter(1 << 16)
	for i := 0; i < 100; i++ {
		h := sha1.Sum([]byte(strconv.Itoa(i)))
		f.Add(h[:])
	}
	for i := 0; i < 100; i++ {
		h := sha1.Sum([]byte(strconv.Itoa(i)))
		assert.True(t, f.Exists(h[:]))
	}
	misses := 0
	for i := 100; i < 200; i++ {
		h := sha1.Sum([]byte(strconv.Itoa(i)))
		if !f.Exists(h[:]) {
			misses++
		}
	}
	assert.Greater(t, misses, 95)
	assert.Equal(t, uint64(100), f.Count())
}

func TestBloomFilter_SaveLoad(t *testing.T) {
	f := NewBloomFilter(4096)
	f.Add([]byte("foo"))
	f.Add([]byte("bar"))

	buf := &bytes.Buffer{}
	require.NoError(t, f.Save(buf))
	assert.Equal(t, bloomHdrSize+4096/8, buf.Len())

	loaded, err := LoadBloomFilter(buf)
	require.NoError(t, err)
	assert.True(t, loaded.Exists([]byte("foo")))
	assert.True(t, loaded.Exists([]byte("bar")))
	assert.Equal(t, uint64(2), loaded.Count())
}

func TestLoadBloomFilter_Truncated(t *testing.T) {
	_, err := LoadBloomFilter(bytes.NewReader([]byte{0, 1}))
	assert.Error(t, err)

	f := NewBloomFilter(4096)
	buf := &bytes.Buffer{}
	require.NoError(t, f.Save(buf))
	_, err = LoadBloomFilter(bytes.NewReader(buf.Bytes()[:bloomHdrSize+10]))
	assert.Error(t, err)
}
