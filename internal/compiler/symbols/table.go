// Package symbols assigns internal driver-layer names to every quantity an
// invoke unit touches, plus the loop-bound, dof-map, and per-space symbols
// the synthesizer must introduce. User-visible names are preserved verbatim;
// when a required internal symbol collides with one, the internal symbol is
// renamed with a numeric suffix. Renaming is deterministic: the same unit
// always yields the same names.
package symbols

import (
	"fmt"
	"sort"

	"github.com/psykal-lang/psykal/internal/compiler/errors"
)

// SymbolTable is the per-unit mapping from logical quantity name to internal
// driver symbol. It is created fresh per invoke unit, mutated only by the
// resolver, and discarded once synthesis for the unit completes.
type SymbolTable struct {
	unit string
	// byLogical maps a logical (user or imported) name to its internal symbol
	byLogical map[string]string
	// byInternal maps a reserved-symbol key to its possibly renamed form
	byInternal map[string]string
	// taken records every internal symbol already issued, with its owner
	taken map[string]string
	// order preserves logical registration order for deterministic output
	order  []string
	sealed bool
}

// NewSymbolTable creates an empty table for one invoke unit
func NewSymbolTable(unit string) *SymbolTable {
	return &SymbolTable{
		unit:       unit,
		byLogical:  make(map[string]string),
		byInternal: make(map[string]string),
		taken:      make(map[string]string),
	}
}

// Unit returns the invoke unit this table belongs to
func (t *SymbolTable) Unit() string {
	return t.unit
}

// RegisterUser registers a user-level quantity name. The user's name is
// always preserved verbatim as the internal symbol. Registering the same
// name twice is idempotent; two distinct user names can never be issued the
// same internal symbol, and that invariant is re-checked by Verify.
func (t *SymbolTable) RegisterUser(name string) *errors.GeneratorError {
	if t.sealed {
		return errors.NewSymbolTableClosed(t.unit, name)
	}
	if _, done := t.byLogical[name]; done {
		return nil
	}
	if owner, used := t.taken[name]; used {
		// A previously generated internal symbol cannot have claimed a user
		// name: internals are registered after every user quantity.
		return errors.NewSymbolUserCollision(t.unit, owner, name)
	}
	t.byLogical[name] = name
	t.taken[name] = name
	t.order = append(t.order, name)
	return nil
}

// RegisterInternal registers a synthesizer-required symbol under a stable
// key. If the preferred name collides with a user name (or an earlier
// internal), the smallest free numeric suffix is appended.
func (t *SymbolTable) RegisterInternal(key, preferred string) (string, *errors.GeneratorError) {
	if t.sealed {
		return "", errors.NewSymbolTableClosed(t.unit, preferred)
	}
	if existing, done := t.byInternal[key]; done {
		return existing, nil
	}
	name := preferred
	for suffix := 1; ; suffix++ {
		if _, used := t.taken[name]; !used {
			break
		}
		if suffix > len(t.taken)+1 {
			return "", errors.NewSymbolRenameExhausted(t.unit, preferred)
		}
		name = fmt.Sprintf("%s_%d", preferred, suffix)
	}
	t.byInternal[key] = name
	t.taken[name] = ""
	return name, nil
}

// Symbol returns the internal symbol for a logical name
func (t *SymbolTable) Symbol(logical string) (string, bool) {
	s, ok := t.byLogical[logical]
	return s, ok
}

// Internal returns the issued name for a reserved-symbol key
func (t *SymbolTable) Internal(key string) (string, bool) {
	s, ok := t.byInternal[key]
	return s, ok
}

// Seal closes the table against further registration and verifies the
// injectivity invariant: no two distinct logical names share an internal
// symbol.
func (t *SymbolTable) Seal() *errors.GeneratorError {
	t.sealed = true
	seen := make(map[string]string, len(t.byLogical))
	for _, logical := range t.order {
		internal := t.byLogical[logical]
		if prior, dup := seen[internal]; dup {
			return errors.NewSymbolUserCollision(t.unit, prior, logical)
		}
		seen[internal] = logical
	}
	return nil
}

// Quantities returns every registered logical name in registration order
func (t *SymbolTable) Quantities() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// InternalKeys returns every reserved-symbol key in sorted order
func (t *SymbolTable) InternalKeys() []string {
	keys := make([]string, 0, len(t.byInternal))
	for k := range t.byInternal {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
