package filestate

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/stowaway/pkg/pathkey"
)

// Deleted marks a path that is recorded as logically removed.
// It can never collide with a real fingerprint, which is lowercase hex.
const Deleted = "DELETED"

// Map is an insertion-ordered mapping from path key to fingerprint
type Map struct {
	keys   []pathkey.Key
	hashes map[pathkey.Key]string
}

// NewMap creates an empty map
func NewMap() *Map {
	return &Map{hashes: make(map[pathkey.Key]string)}
}

// Put records a fingerprint. Re-putting an existing key keeps its position.
func (m *Map) Put(k pathkey.Key, fingerprint string) {
	if _, ok := m.hashes[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.hashes[k] = fingerprint
}

// Get returns the fingerprint for k
func (m *Map) Get(k pathkey.Key) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.hashes[k]
	return v, ok
}

// Has reports whether k is present
func (m *Map) Has(k pathkey.Key) bool {
	_, ok := m.Get(k)
	return ok
}

// Remove drops k from the map
func (m *Map) Remove(k pathkey.Key) {
	if _, ok := m.hashes[k]; !ok {
		return
	}
	delete(m.hashes, k)
	for i, existing := range m.keys {
		if existing == k {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order
func (m *Map) Keys() []pathkey.Key {
	if m == nil {
		return nil
	}
	out := make([]pathkey.Key, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of entries
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// PutAll copies every entry of other into m, in other's order
func (m *Map) PutAll(other *Map) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		m.Put(k, other.hashes[k])
	}
}

// Clone returns an independent copy
func (m *Map) Clone() *Map {
	clone := NewMap()
	clone.PutAll(m)
	return clone
}

// Equal compares contents, ignoring order
func (m *Map) Equal(other *Map) bool {
	if m.Len() != other.Len() {
		return false
	}
	for _, k := range m.Keys() {
		v, ok := other.Get(k)
		if !ok || v != m.hashes[k] {
			return false
		}
	}
	return true
}

// WriteTo serializes the map as "<fingerprint>  <path>" lines
func (m *Map) WriteTo(w io.Writer) (int64, error) {
	var written int64
	for _, k := range m.keys {
		n, err := fmt.Fprintf(w, "%s  %s\n", m.hashes[k], k)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// ReadMap parses the format produced by WriteTo
func ReadMap(r io.Reader) (*Map, error) {
	m := NewMap()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		fingerprint, p, ok := strings.Cut(line, "  ")
		if !ok || fingerprint == "" || p == "" {
			return nil, fmt.Errorf("malformed file state line %d: %q", lineNo, line)
		}
		m.Put(pathkey.Key(p), fingerprint)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return m, nil
}
