package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/evidence-toolkit/evitool/internal/schema"
)

// shortSHA truncates a content hash to its first 8 characters for
// display, the length spec §4.6 asks generators to use.
func shortSHA(h schema.SHA256Hex) string {
	s := string(h)
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

func writeHeader(w io.Writer, title string) {
	fmt.Fprintf(w, "# %s\n\n", title)
}

func writeSection(w io.Writer, title string) {
	fmt.Fprintf(w, "## %s\n\n", title)
}

func bulletList(w io.Writer, items []string) {
	for _, item := range items {
		fmt.Fprintf(w, "- %s\n", item)
	}
	fmt.Fprintln(w)
}

// lookupOr is a safe dictionary lookup with a default, generic over any
// comparable key/value pair, for rendering distribution-style maps.
func lookupOr[K comparable, V any](m map[K]V, key K, def V) V {
	if v, ok := m[key]; ok {
		return v
	}
	return def
}

func sortedMapKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
