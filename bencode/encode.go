package bencode

import (
	"bytes"
	"io"
	"strconv"
)

// Encode returns the canonical encoding of v.
func Encode(v Value) []byte {
	buf := bytes.Buffer{}
	v.encodeTo(&buf)
	return buf.Bytes()
}

func EncodeTo(w io.Writer, v Value) error {
	_, err := w.Write(Encode(v))
	return err
}

// Marshal encodes a native Go value, see FromNative for the accepted types.
func Marshal(obj any) ([]byte, error) {
	v, err := FromNative(obj)
	if err != nil {
		return nil, err
	}
	return Encode(v), nil
}

func (i Integer) Encode() []byte    { return Encode(i) }
func (s ByteString) Encode() []byte { return Encode(s) }
func (l List) Encode() []byte       { return Encode(l) }
func (d *Dictionary) Encode() []byte {
	return Encode(d)
}

func (i Integer) encodeTo(buf *bytes.Buffer) {
	buf.WriteByte('i')
	buf.WriteString(strconv.FormatInt(int64(i), 10))
	buf.WriteByte('e')
}

func (s ByteString) encodeTo(buf *bytes.Buffer) {
	encodeString(buf, s)
}

func (l List) encodeTo(buf *bytes.Buffer) {
	buf.WriteByte('l')
	for _, item := range l {
		item.encodeTo(buf)
	}
	buf.WriteByte('e')
}

func (d *Dictionary) encodeTo(buf *bytes.Buffer) {
	buf.WriteByte('d')
	d.Each(func(key string, v Value) bool {
		encodeString(buf, []byte(key))
		v.encodeTo(buf)
		return true
	})
	buf.WriteByte('e')
}

func encodeString(buf *bytes.Buffer, data []byte) {
	buf.WriteString(strconv.Itoa(len(data)))
	buf.WriteByte(':')
	buf.Write(data)
}
