// Package value implements the recursive tagged value used to pass
// argument lists into module instances and to receive resolved variable
// values back out of them.
package value

// Kind identifies which alternative of the Value union is populated.
type Kind int

const (
	// KindString marks a Value holding a raw byte string.
	KindString Kind = iota
	// KindList marks a Value holding an ordered sequence of Values.
	KindList
)

// Value is a tagged union: either a String or an ordered List of Values.
// The zero Value is the empty string.
type Value struct {
	kind Kind
	str  []byte
	list []Value
}

// String constructs a Value from a byte slice. The bytes are copied so the
// caller's slice may be reused or mutated afterward.
func String(s []byte) Value {
	cp := make([]byte, len(s))
	copy(cp, s)
	return Value{kind: KindString, str: cp}
}

// StringFrom constructs a Value from a Go string.
func StringFrom(s string) Value {
	return String([]byte(s))
}

// List constructs an empty list Value.
func List() Value {
	return Value{kind: KindList}
}

// Append adds v to the end of the receiver's list, which must be of kind
// List, and returns the updated Value. Growth is amortized O(1).
func (v Value) Append(elem Value) Value {
	if v.kind != KindList {
		panic("value: Append on non-list Value")
	}
	v.list = append(v.list, elem)
	return v
}

// IsString reports whether v holds a string.
func (v Value) IsString() bool { return v.kind == KindString }

// IsList reports whether v holds a list.
func (v Value) IsList() bool { return v.kind == KindList }

// Bytes returns the raw bytes of a string Value. Panics if v is a list.
func (v Value) Bytes() []byte {
	if v.kind != KindString {
		panic("value: Bytes on non-string Value")
	}
	return v.str
}

// Str returns a string Value's contents as a Go string.
func (v Value) Str() string {
	return string(v.Bytes())
}

// Elems returns a list Value's elements. Panics if v is a string.
func (v Value) Elems() []Value {
	if v.kind != KindList {
		panic("value: Elems on non-list Value")
	}
	return v.list
}

// Len returns the number of elements in a list Value, or the byte length of
// a string Value.
func (v Value) Len() int {
	if v.kind == KindList {
		return len(v.list)
	}
	return len(v.str)
}

// Copy returns a deep copy of v.
func (v Value) Copy() Value {
	switch v.kind {
	case KindString:
		return String(v.str)
	case KindList:
		out := List()
		out.list = make([]Value, len(v.list))
		for i, e := range v.list {
			out.list[i] = e.Copy()
		}
		return out
	default:
		return Value{}
	}
}

// GoString renders v for diagnostic logging.
func (v Value) GoString() string {
	switch v.kind {
	case KindString:
		return string(v.str)
	case KindList:
		s := "["
		for i, e := range v.list {
			if i > 0 {
				s += ", "
			}
			s += e.GoString()
		}
		return s + "]"
	default:
		return ""
	}
}
