package bencode

import (
	"fmt"
	"math"
)

// ToNative converts v into plain Go values: int64, []byte, []any and
// map[string]any.
func ToNative(v Value) any {
	switch x := v.(type) {
	case Integer:
		return int64(x)
	case ByteString:
		return []byte(x)
	case List:
		ret := make([]any, 0, len(x))
		for _, item := range x {
			ret = append(ret, ToNative(item))
		}
		return ret
	case *Dictionary:
		ret := make(map[string]any, x.Len())
		x.Each(func(key string, item Value) bool {
			ret[key] = ToNative(item)
			return true
		})
		return ret
	}
	return nil
}

// FromNative builds a Value from integers, strings, byte slices, slices and
// string keyed maps. Values are accepted as is.
func FromNative(obj any) (Value, error) {
	switch x := obj.(type) {
	case Value:
		return x, nil
	case int:
		return Integer(x), nil
	case int8:
		return Integer(x), nil
	case int16:
		return Integer(x), nil
	case int32:
		return Integer(x), nil
	case int64:
		return Integer(x), nil
	case uint8:
		return Integer(x), nil
	case uint16:
		return Integer(x), nil
	case uint32:
		return Integer(x), nil
	case uint:
		return fromUint(uint64(x))
	case uint64:
		return fromUint(x)
	case bool:
		if x {
			return Integer(1), nil
		}
		return Integer(0), nil
	case string:
		return ByteString(x), nil
	case []byte:
		return ByteString(x), nil
	case []string:
		ret := make(List, 0, len(x))
		for _, s := range x {
			ret = append(ret, ByteString(s))
		}
		return ret, nil
	case []any:
		ret := make(List, 0, len(x))
		for _, item := range x {
			v, err := FromNative(item)
			if err != nil {
				return nil, err
			}
			ret = append(ret, v)
		}
		return ret, nil
	case map[string]string:
		ret := NewDictionary()
		for k, s := range x {
			ret.Set(k, ByteString(s))
		}
		return ret, nil
	case map[string]any:
		ret := NewDictionary()
		for k, item := range x {
			v, err := FromNative(item)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			ret.Set(k, v)
		}
		return ret, nil
	}
	return nil, fmt.Errorf("unsupported type: %T", obj)
}

func fromUint(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return nil, fmt.Errorf("integer overflows int64: %d", u)
	}
	return Integer(u), nil
}
