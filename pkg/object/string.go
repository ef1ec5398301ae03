package object

// String is Phalcom's immutable byte-string heap object. The hash is
// computed once at construction, matching the original Rust
// StringObject::calculate_hash exactly: a djb2-style recurrence with seed
// 5381 and wrapping multiplication by 33.
type String struct {
	bytes []byte
	hash  uint32
}

// NewString allocates a new String object from s, precomputing its hash.
func NewString(s string) *String {
	return &String{bytes: []byte(s), hash: djb2(s)}
}

func djb2(s string) uint32 {
	h := uint32(5381)
	for i := 0; i < len(s); i++ {
		h = h*33 + uint32(s[i])
	}
	return h
}

// Value returns the String's contents as a Go string.
func (s *String) Value() string { return string(s.bytes) }

// Bytes returns the String's raw UTF-8 bytes. Callers must not mutate the
// returned slice; Strings are immutable.
func (s *String) Bytes() []byte { return s.bytes }

// Hash returns the precomputed 32-bit djb2 hash.
func (s *String) Hash() uint32 { return s.hash }

// Len returns the byte length of the string.
func (s *String) Len() int { return len(s.bytes) }
