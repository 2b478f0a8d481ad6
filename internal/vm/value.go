package vm

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueType identifies the type of value stored in the Value struct
type ValueType uint8

const (
	ValNil ValueType = iota
	ValTrue
	ValFalse
	ValNumber
	ValString
	ValName
	ValRefName
	ValArray
	ValHashmap
	ValNative
	ValRef
	ValCodeAddr
	ValError
	ValEOF
)

var valueTypeNames = map[ValueType]string{
	ValNil:      "nil",
	ValTrue:     "true",
	ValFalse:    "false",
	ValNumber:   "number",
	ValString:   "string",
	ValName:     "name",
	ValRefName:  "ref-name",
	ValArray:    "array",
	ValHashmap:  "hashmap",
	ValNative:   "native",
	ValRef:      "ref",
	ValCodeAddr: "code-address",
	ValError:    "error",
	ValEOF:      "eof",
}

func (t ValueType) String() string {
	if n, ok := valueTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// Object is a heap container shared by reference between values. Each
// object carries a process-unique id used for identity hashing.
type Object interface {
	objectId() uint64
}

// Value is a stack-allocated tagged union.
// nil, true, false and eof carry no payload beyond Type. Small payloads
// (numbers, native indices, code addresses) live in Data; string payloads share Go's immutable string storage; containers
// are shared by reference through Obj.
type Value struct {
	Type ValueType
	Data uint64 // float64 bits, native index, or code address
	Str  string // string, name, ref-name, and error payloads
	Obj  Object // arrays, hashmaps, ref cells
}

// Constructors

func NilVal() Value {
	return Value{Type: ValNil}
}

func BoolVal(b bool) Value {
	if b {
		return Value{Type: ValTrue}
	}
	return Value{Type: ValFalse}
}

func NumberVal(n float64) Value {
	return Value{Type: ValNumber, Data: math.Float64bits(n)}
}

func StringVal(s string) Value {
	return Value{Type: ValString, Str: s}
}

func NameVal(s string) Value {
	return Value{Type: ValName, Str: s}
}

func RefNameVal(s string) Value {
	return Value{Type: ValRefName, Str: s}
}

func ArrayVal(a *Array) Value {
	return Value{Type: ValArray, Obj: a}
}

func HashmapVal(h *Hashmap) Value {
	return Value{Type: ValHashmap, Obj: h}
}

func NativeVal(idx int) Value {
	return Value{Type: ValNative, Data: uint64(idx)}
}

func RefVal(r *Ref) Value {
	return Value{Type: ValRef, Obj: r}
}

func CodeAddrVal(addr uint32) Value {
	return Value{Type: ValCodeAddr, Data: uint64(addr)}
}

func ErrorVal(msg string) Value {
	return Value{Type: ValError, Str: msg}
}

// Errorf builds an error value from a format string.
func Errorf(format string, args ...interface{}) Value {
	return Value{Type: ValError, Str: fmt.Sprintf(format, args...)}
}

func EOFVal() Value {
	return Value{Type: ValEOF}
}

// Accessors

func (v Value) AsNumber() float64 {
	return math.Float64frombits(v.Data)
}

func (v Value) AsInt() int64 {
	return int64(math.Float64frombits(v.Data))
}

func (v Value) AsNative() int {
	return int(v.Data)
}

func (v Value) AsCodeAddr() uint32 {
	return uint32(v.Data)
}

func (v Value) Array() *Array {
	a, _ := v.Obj.(*Array)
	return a
}

func (v Value) Hashmap() *Hashmap {
	h, _ := v.Obj.(*Hashmap)
	return h
}

func (v Value) Ref() *Ref {
	r, _ := v.Obj.(*Ref)
	return r
}

// Type checking helpers

func (v Value) IsNil() bool     { return v.Type == ValNil }
func (v Value) IsBool() bool    { return v.Type == ValTrue || v.Type == ValFalse }
func (v Value) IsNumber() bool  { return v.Type == ValNumber }
func (v Value) IsString() bool  { return v.Type == ValString }
func (v Value) IsName() bool    { return v.Type == ValName }
func (v Value) IsArray() bool   { return v.Type == ValArray }
func (v Value) IsHashmap() bool { return v.Type == ValHashmap }
func (v Value) IsError() bool   { return v.Type == ValError }

// Truthy reports the boolean interpretation of the value. Only nil and
// false are falsy; everything else, including the number zero, is truthy.
func (v Value) Truthy() bool {
	return v.Type != ValNil && v.Type != ValFalse
}

// Equals checks structural equality: identical tag and identical
// primitive value, byte-identical strings, or element-wise recursive
// equality for containers. NaN is not equal to itself.
func (v Value) Equals(other Value) bool {
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case ValNil, ValTrue, ValFalse, ValEOF:
		return true
	case ValNumber:
		return v.AsNumber() == other.AsNumber()
	case ValString, ValName, ValRefName, ValError:
		return v.Str == other.Str
	case ValNative, ValCodeAddr:
		return v.Data == other.Data
	case ValArray:
		a, b := v.Array(), other.Array()
		if len(a.Items) != len(b.Items) {
			return false
		}
		for i := range a.Items {
			if !a.Items[i].Equals(b.Items[i]) {
				return false
			}
		}
		return true
	case ValHashmap:
		return v.Hashmap().equals(other.Hashmap())
	case ValRef:
		return v.Ref().Value.Equals(other.Ref().Value)
	default:
		return false
	}
}

const hashSeed = 0x12345678

// hashBytes is a MurmurOAAT-style mix over the payload bytes.
func hashBytes(b []byte) uint32 {
	h := uint32(hashSeed)
	for _, c := range b {
		h ^= uint32(c)
		h *= 0x5bd1e995
		h ^= h >> 15
	}
	return h
}

func hashString(s string) uint32 {
	h := uint32(hashSeed)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 0x5bd1e995
		h ^= h >> 15
	}
	return h
}

func hashUint64(x uint64) uint32 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], x)
	return hashBytes(buf[:])
}

// Hash returns the hash code. Containers hash by object identity; error,
// eof, and code-address values return an arbitrary constant.
func (v Value) Hash() uint32 {
	switch v.Type {
	case ValFalse:
		return 0
	case ValTrue:
		return 1
	case ValNil:
		return math.MaxUint32
	case ValNumber, ValNative:
		return hashUint64(v.Data)
	case ValString, ValName, ValRefName:
		return hashString(v.Str)
	case ValArray, ValHashmap, ValRef:
		return hashUint64(v.Obj.objectId())
	default:
		return 0
	}
}

// Compare orders two values: -1, 0 or 1. Numbers compare numerically,
// strings and names bytewise; arrays element-wise. Mixed or unordered
// tags fall back to tag order so sorting stays deterministic.
func (v Value) Compare(other Value) int {
	if v.Type == ValNumber && other.Type == ValNumber {
		a, b := v.AsNumber(), other.AsNumber()
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	}
	if (v.Type == ValString || v.Type == ValName) &&
		(other.Type == ValString || other.Type == ValName) {
		return strings.Compare(v.Str, other.Str)
	}
	if v.Type == ValArray && other.Type == ValArray {
		a, b := v.Array().Items, other.Array().Items
		for i := 0; i < len(a) && i < len(b); i++ {
			if c := a[i].Compare(b[i]); c != 0 {
				return c
			}
		}
		switch {
		case len(a) < len(b):
			return -1
		case len(a) > len(b):
			return 1
		default:
			return 0
		}
	}
	if v.Type != other.Type {
		if v.Type < other.Type {
			return -1
		}
		return 1
	}
	if v.Equals(other) {
		return 0
	}
	if v.Data < other.Data {
		return -1
	}
	return 1
}

// Copy returns a deep copy: arrays, hashmaps and ref cells are cloned
// recursively, immutable payloads are shared.
func (v Value) Copy() Value {
	switch v.Type {
	case ValArray:
		src := v.Array()
		dst := NewArrayCap(len(src.Items))
		for _, item := range src.Items {
			dst.Items = append(dst.Items, item.Copy())
		}
		return ArrayVal(dst)
	case ValHashmap:
		return HashmapVal(v.Hashmap().copyDeep())
	case ValRef:
		return RefVal(NewRef(v.Ref().Value.Copy()))
	default:
		return v
	}
}

// Dump returns the printable representation used by PRINT and the dump
// native.
func (v Value) Dump() string {
	switch v.Type {
	case ValNil:
		return "nil"
	case ValTrue:
		return "true"
	case ValFalse:
		return "false"
	case ValNumber:
		return strconv.FormatFloat(v.AsNumber(), 'f', 6, 64)
	case ValString:
		return `"` + v.Str + `"`
	case ValName:
		return v.Str
	case ValRefName:
		return "@" + v.Str
	case ValArray:
		var sb strings.Builder
		sb.WriteByte('[')
		for i, item := range v.Array().Items {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(item.Dump())
		}
		sb.WriteByte(']')
		return sb.String()
	case ValHashmap:
		var sb strings.Builder
		sb.WriteByte('{')
		first := true
		v.Hashmap().Each(func(k, val Value) {
			if !first {
				sb.WriteString(", ")
			}
			first = false
			sb.WriteString(k.Dump())
			sb.WriteByte(' ')
			sb.WriteString(val.Dump())
		})
		sb.WriteByte('}')
		return sb.String()
	case ValNative:
		return fmt.Sprintf("#<native %d>", v.AsNative())
	case ValRef:
		return fmt.Sprintf("#<ref %s>", v.Ref().Value.Dump())
	case ValCodeAddr:
		return fmt.Sprintf("#<code 0x%06x>", v.AsCodeAddr())
	case ValError:
		return fmt.Sprintf("#<ERROR: %s>", v.Str)
	case ValEOF:
		return "#<EOF>"
	default:
		return "<?>"
	}
}
