package bencode

import (
	"strings"
)

// GetByPath walks dotted dictionary keys, e.g. "info.name". It returns nil
// when any segment is missing or crosses a non-dictionary value.
func GetByPath(v Value, path string) Value {
	parts := strings.Split(path, ".")
	m := v
	for _, part := range parts {
		dict, ok := m.(*Dictionary)
		if !ok {
			return nil
		}
		m, ok = dict.Get(part)
		if !ok {
			return nil
		}
	}
	return m
}

func GetString(v Value, path string) (string, bool) {
	b, ok := GetBytes(v, path)
	if !ok {
		return "", false
	}
	return string(b), true
}

func GetBytes(v Value, path string) ([]byte, bool) {
	switch r := GetByPath(v, path).(type) {
	case ByteString:
		return r, true
	default:
		return nil, false
	}
}

func GetInt(v Value, path string) (int64, bool) {
	switch r := GetByPath(v, path).(type) {
	case Integer:
		return int64(r), true
	default:
		return 0, false
	}
}

func GetList(v Value, path string) (List, bool) {
	switch r := GetByPath(v, path).(type) {
	case List:
		return r, true
	default:
		return nil, false
	}
}

func GetDict(v Value, path string) (*Dictionary, bool) {
	switch r := GetByPath(v, path).(type) {
	case *Dictionary:
		return r, true
	default:
		return nil, false
	}
}

func CheckPath(v Value, path string) bool {
	return GetByPath(v, path) != nil
}
