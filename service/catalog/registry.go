// Package catalog holds the check taxonomy and the executor dispatch table.
package catalog

import (
	"fmt"
	"slices"
)

var known = []CheckType{
	MissingTags,
	NoMFAOnRoot,
	NoPasswordPolicy,
	PublicBuckets,
	NoPremiumSupport,
	NoBudget,
	UnusedEIP,
	UnattachedEBSVolumes,
	UsingDefaultVPC,
	EC2InPublicSubnet,
	ResourcesInOtherRegion,
	RDSPublicAccess,
	RDSInPublicSubnet,
	HasIAMUsers,
}

// All returns every catalog identifier.
func All() []CheckType {
	return slices.Clone(known)
}

// IsKnown reports whether name is a catalog identifier.
func IsKnown(name string) bool {
	return slices.Contains(known, CheckType(name))
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[CheckType]Entry)}
}

// Register adds an executor. Registering a type twice is a programming error and panics.
func (r *Registry) Register(t CheckType, regional bool, e Executor) {
	if e == nil {
		panic(fmt.Sprintf("catalog: nil executor for %s", t))
	}
	if _, exists := r.entries[t]; exists {
		panic(fmt.Sprintf("catalog: duplicate executor for %s", t))
	}
	r.entries[t] = Entry{Type: t, Regional: regional, Executor: e}
}

// Lookup returns the entry for a check definition name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	e, ok := r.entries[CheckType(name)]
	return e, ok
}

// Types returns the registered identifiers in name order.
func (r *Registry) Types() []CheckType {
	out := make([]CheckType, 0, len(r.entries))
	for t := range r.entries {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}
