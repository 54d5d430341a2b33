package store

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/arcs-core/arcs/pkg/vv"
)

// encodeVersion renders a VersionVector as a sorted "actor=count;..."
// string for storage in a text column.
func encodeVersion(v vv.VersionVector) string {
	actors := v.Actors()
	sort.Strings(actors)
	parts := make([]string, len(actors))
	for i, a := range actors {
		parts[i] = fmt.Sprintf("%s=%d", a, v.Get(a))
	}
	return strings.Join(parts, ";")
}

// decodeVersion parses the encoding produced by encodeVersion.
func decodeVersion(s string) vv.VersionVector {
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
