// Package symbol interns identifier-like strings into compact, process-wide
// integer identities.
//
// Every selector, class name, global name, and field name that flows through
// the runtime is interned once and thereafter compared and hashed as a plain
// uint32. This is the same tradeoff the teacher's VM makes for everything
// else it stores in flat slices rather than pointer graphs: touch memory
// once, index it forever.
//
// Strings are appended to a growable arena rather than allocated one at a
// time. A Symbol's backing bytes are never copied again after interning,
// and the string returned by Lookup stays valid for the interner's
// entire lifetime — Intern never invalidates a previously returned string,
// even across arena growth, because a full arena is retired rather than
// reallocated in place.
package symbol

import "unsafe"

// Symbol is an opaque, process-wide identity for an interned string.
//
// Zero value is not a sentinel for "no symbol" — the interner assigns
// Symbol(0) to whatever string happens to be interned first. Callers that
// need an "absent" marker should use a separate bool, as the rest of this
// codebase does (e.g. Module.Get).
type Symbol uint32

const minArenaCap = 4096

// arena is an append-only byte buffer. Once full it is retired in favor of
// a fresh, larger arena; existing slices into a retired arena remain valid
// because nothing is ever reallocated or moved.
type arena struct {
	buf []byte
}

// Interner deduplicates strings into Symbols with O(1) amortized interning
// and O(1) lookup in both directions.
type Interner struct {
	arenas  []*arena
	strings []string
	index   map[string]Symbol
}

// NewInterner returns an empty interner ready for use.
func NewInterner() *Interner {
	return &Interner{
		arenas:  []*arena{{buf: make([]byte, 0, minArenaCap)}},
		strings: make([]string, 0, 256),
		index:   make(map[string]Symbol, 256),
	}
}

// Intern returns the Symbol for s, allocating one on first sight. Intern is
// idempotent: interning the same byte sequence twice returns the same
// Symbol both times.
func (in *Interner) Intern(s string) Symbol {
	if sym, ok := in.index[s]; ok {
		return sym
	}

	cur := in.arenas[len(in.arenas)-1]
	if cap(cur.buf)-len(cur.buf) < len(s) {
		newCap := cap(cur.buf) * 2
		if want := len(s) * 2; newCap < want {
			newCap = want
		}
		if newCap < minArenaCap {
			newCap = minArenaCap
		}
		cur = &arena{buf: make([]byte, 0, newCap)}
		in.arenas = append(in.arenas, cur)
	}

	start := len(cur.buf)
	cur.buf = append(cur.buf, s...)
	interned := unsafe.String(unsafe.SliceData(cur.buf[start:start+len(s):start+len(s)]), len(s))

	sym := Symbol(len(in.strings))
	in.strings = append(in.strings, interned)
	in.index[interned] = sym
	return sym
}

// Lookup returns the string previously interned as sym, or "" if sym was
// never issued by this interner.
func (in *Interner) Lookup(sym Symbol) string {
	if int(sym) < 0 || int(sym) >= len(in.strings) {
		return ""
	}
	return in.strings[sym]
}

// Len reports how many distinct strings have been interned so far.
func (in *Interner) Len() int {
	return len(in.strings)
}
