package serialize

import "strconv"

// nameAllocator hands out document-unique layer names. Friendly names
// are not required to be unique in the graph; collisions get the
// smallest non-negative integer suffix not yet taken, tried in
// increasing order starting at 0.
type nameAllocator struct {
	used map[string]struct{}
}

func newNameAllocator() *nameAllocator {
	return &nameAllocator{used: make(map[string]struct{})}
}

func (a *nameAllocator) unique(base string) string {
	if _, taken := a.used[base]; !taken {
		a.used[base] = struct{}{}
		return base
	}
	for suffix := 0; ; suffix++ {
		candidate := base + strconv.Itoa(suffix)
		if _, taken := a.used[candidate]; !taken {
			a.used[candidate] = struct{}{}
			return candidate
		}
	}
}
