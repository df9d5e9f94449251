package serialize

import (
	"sort"

	"github.com/born-ml/netir/internal/opset"
)

// experimentalOpset tags types no opset claims.
const experimentalOpset = "experimental"

// opsetName returns the name of the oldest built-in opset defining the
// operation type. Caller-supplied opsets are consulted next, in sorted
// name order, and types unknown to every opset are tagged experimental.
// The priority order is a hard format-compatibility contract.
func opsetName(typeName string, custom map[string]*opset.OpSet) string {
	for _, s := range opset.Builtin() {
		if s.Contains(typeName) {
			return s.Name()
		}
	}

	names := make([]string, 0, len(custom))
	for name := range custom {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if custom[name].Contains(typeName) {
			return name
		}
	}

	return experimentalOpset
}
