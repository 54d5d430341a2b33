package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/arcs-core/arcs/pkg/vv"
)

// Reference is the value a reference-mode store's container CRDT holds: a
// pointer from an entity id into the backing store, tagged with the
// version vector the backing write had when this Reference was produced.
//
// Reference is stored as an element inside crdt.Collection[Reference] or
// crdt.Singleton[Reference], both of which require a `comparable` type
// parameter — but vv.VersionVector holds a map and so is not comparable.
// Version is therefore kept as its canonical string encoding here; VV and
// FromVV convert to and from the real vv.VersionVector for callers that
// need to reason about causality rather than just equality.
type Reference struct {
	ID         ReferenceId
	StorageKey StorageKey
	Version    string
}

// NewReference builds a Reference, encoding clock canonically.
func NewReference(id ReferenceId, key StorageKey, clock vv.VersionVector) Reference {
	return Reference{ID: id, StorageKey: key, Version: encodeVV(clock)}
}

// VV decodes Version back into a vv.VersionVector.
func (r Reference) VV() vv.VersionVector {
	return decodeVV(r.Version)
}

// Equal reports whether two References name the same id, key, and version.
func (r Reference) Equal(other Reference) bool {
	return r == other
}

func encodeVV(v vv.VersionVector) string {
	actors := v.Actors()
	sort.Strings(actors)
	parts := make([]string, len(actors))
	for i, a := range actors {
		parts[i] = fmt.Sprintf("%s=%d", a, v.Get(a))
	}
	return strings.Join(parts, ";")
}

func decodeVV(s string) vv.VersionVector {
	if s == "" {
		return vv.New()
	}
	m := map[string]uint64{}
	for _, part := range strings.Split(s, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		n, err := strconv.ParseUint(kv[1], 10, 64)
		if err != nil {
			continue
		}
		m[kv[0]] = n
	}
	return vv.FromMap(m)
}
