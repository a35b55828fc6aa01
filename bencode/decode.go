package bencode

import (
	"strconv"
	"unicode/utf8"
)

// DefaultMaxDepth bounds the nesting of lists and dictionaries.
const DefaultMaxDepth = 512

type Option func(d *Decoder)

// WithMaxDepth sets the maximum container nesting. A value <= 0 disables the
// limit.
func WithMaxDepth(depth int) Option {
	return func(d *Decoder) {
		d.maxDepth = depth
	}
}

// WithStrict rejects input that is well formed but not canonical: leading
// zeros, negative zero and dictionary keys that are unsorted or repeated.
func WithStrict(strict bool) Option {
	return func(d *Decoder) {
		d.strict = strict
	}
}

// WithTrailingData controls whether Decode accepts bytes after the first
// complete value. They are ignored by default.
func WithTrailingData(allow bool) Option {
	return func(d *Decoder) {
		d.allowTrailing = allow
	}
}

type Decoder struct {
	buf           []byte
	pos           int
	depth         int
	maxDepth      int
	strict        bool
	allowTrailing bool
}

func NewDecoder(buf []byte, opts ...Option) *Decoder {
	d := &Decoder{
		buf:           buf,
		maxDepth:      DefaultMaxDepth,
		allowTrailing: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode parses exactly one value starting at offset 0 of buf.
func Decode(buf []byte, opts ...Option) (Value, error) {
	d := NewDecoder(buf, opts...)
	v, err := d.Decode()
	if err != nil {
		return nil, err
	}
	if !d.allowTrailing && d.More() {
		return nil, d.unexpected(0)
	}
	return v, nil
}

// Decode parses the next value of the stream.
func (d *Decoder) Decode() (Value, error) {
	return d.decodeAny(d.pos)
}

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int {
	return d.pos
}

func (d *Decoder) More() bool {
	return d.pos < len(d.buf)
}

func (d *Decoder) decodeAny(base int) (Value, error) {
	if d.pos >= len(d.buf) {
		return nil, d.eof(base)
	}
	c := d.buf[d.pos]
	switch {
	case c == 'i':
		return d.decodeInt()
	case isDigit(c):
		return d.decodeBytes()
	case c == 'l':
		return d.decodeList()
	case c == 'd':
		return d.decodeDict()
	default:
		return nil, d.unexpected(base)
	}
}

func (d *Decoder) decodeInt() (Value, error) {
	d.pos++
	start := d.pos
	for {
		if d.pos >= len(d.buf) {
			return nil, d.eof(start)
		}
		c := d.buf[d.pos]
		if c == 'e' {
			break
		}
		if !isDigit(c) && !(c == '-' && d.pos == start) {
			return nil, d.unexpected(start)
		}
		d.pos++
	}
	digits := d.buf[start:d.pos]
	n, err := strconv.ParseInt(string(digits), 10, 64)
	if err != nil {
		return nil, d.errorAt(ParseInt, start, start, err)
	}
	if d.strict && !canonicalInt(digits) {
		return nil, d.errorAt(NonCanonical, start, start, nil)
	}
	d.pos++
	return Integer(n), nil
}

func (d *Decoder) decodeBytes() (ByteString, error) {
	start := d.pos
	for {
		if d.pos >= len(d.buf) {
			return nil, d.eof(start)
		}
		c := d.buf[d.pos]
		if c == ':' {
			break
		}
		if !isDigit(c) {
			return nil, d.unexpected(start)
		}
		d.pos++
	}
	digits := d.buf[start:d.pos]
	l, err := strconv.Atoi(string(digits))
	if err != nil {
		return nil, d.errorAt(ParseInt, start, start, err)
	}
	if d.strict && len(digits) > 1 && digits[0] == '0' {
		return nil, d.errorAt(NonCanonical, start, start, nil)
	}
	d.pos++
	if len(d.buf)-d.pos < l {
		e := d.errorAt(InvalidByteStringLength, start, start, nil)
		e.Length = l
		return nil, e
	}
	end := d.pos + l
	s := d.buf[d.pos:end:end]
	d.pos = end
	return ByteString(s), nil
}

func (d *Decoder) decodeList() (Value, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer d.leave()
	d.pos++
	start := d.pos
	list := List{}
	for {
		if d.pos >= len(d.buf) {
			return nil, d.eof(start)
		}
		if d.buf[d.pos] == 'e' {
			d.pos++
			return list, nil
		}
		item, err := d.decodeAny(start)
		if err != nil {
			return nil, err
		}
		list = append(list, item)
	}
}

func (d *Decoder) decodeDict() (Value, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer d.leave()
	d.pos++
	start := d.pos
	dict := NewDictionary()
	prev := ""
	for {
		if d.pos >= len(d.buf) {
			return nil, d.eof(start)
		}
		c := d.buf[d.pos]
		if c == 'e' {
			d.pos++
			return dict, nil
		}
		if !isDigit(c) {
			return nil, d.unexpected(start)
		}
		keyPos := d.pos
		raw, err := d.decodeBytes()
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(raw) {
			return nil, d.errorAt(InvalidUTF8, keyPos, start, ErrInvalidUTF8)
		}
		key := string(raw)
		if d.strict && dict.Len() > 0 && key <= prev {
			return nil, d.errorAt(NonCanonical, keyPos, start, nil)
		}
		value, err := d.decodeAny(start)
		if err != nil {
			return nil, err
		}
		dict.Set(key, value)
		prev = key
	}
}

func (d *Decoder) enter() error {
	d.depth++
	if d.maxDepth > 0 && d.depth > d.maxDepth {
		d.depth--
		return d.errorAt(NestingTooDeep, d.pos, d.pos, nil)
	}
	return nil
}

func (d *Decoder) leave() {
	d.depth--
}

func (d *Decoder) unexpected(base int) *DecodeError {
	e := d.errorAt(UnexpectedByte, d.pos, base, nil)
	e.Byte = d.buf[d.pos]
	return e
}

func (d *Decoder) eof(base int) *DecodeError {
	return d.errorAt(UnexpectedEndOfFile, len(d.buf), base, nil)
}

func (d *Decoder) errorAt(kind ErrorKind, pos, base int, err error) *DecodeError {
	return &DecodeError{
		Kind:   kind,
		Offset: pos - base,
		Pos:    pos,
		Err:    err,
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func canonicalInt(digits []byte) bool {
	if digits[0] == '-' {
		return digits[1] != '0'
	}
	return len(digits) == 1 || digits[0] != '0'
}
