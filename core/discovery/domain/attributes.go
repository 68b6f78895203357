package domain

// AttributeMode declares how a schema-defined attribute's values are
// compared during evaluation.
type AttributeMode int

const (
	// AttributeModeBitflag: u16 flags, match = AND is non-zero.
	AttributeModeBitflag AttributeMode = iota
	// AttributeModeOneLevel: integer id, match = equality on top-level id.
	AttributeModeOneLevel
	// AttributeModeTwoLevel: top-level id plus optional sub-level id.
	AttributeModeTwoLevel
	// AttributeModeNumberList: sorted list, subsequence match.
	AttributeModeNumberList
)

// AttributeDefinition is one schema-declared attribute: its identity, its
// comparison mode, and (for bitflag/one-level/two-level modes) the set of
// value ids it is allowed to carry.
type AttributeDefinition struct {
	ID          int32
	Key         string
	OrderNumber uint16
	Mode        AttributeMode
	ValueIDs    []int32 // declared legal values; empty means unconstrained (e.g. number-list)
}

// AttributeSchema is the immutable, startup-validated set of attribute
// definitions consulted read-only by the query evaluator. It is built once
// by core/discovery/config and never mutated afterward.
type AttributeSchema struct {
	byID map[int32]AttributeDefinition
}

// NewAttributeSchema indexes already-validated definitions by id. Callers
// are expected to have run the config-layer validation (contiguous ids,
// unique keys/order numbers, well-formed value ids) before constructing
// this; NewAttributeSchema itself performs no validation.
func NewAttributeSchema(defs []AttributeDefinition) *AttributeSchema {
	byID := make(map[int32]AttributeDefinition, len(defs))
	for _, d := range defs {
		byID[d.ID] = d
	}
	return &AttributeSchema{byID: byID}
}

// Lookup returns the definition for id, or false if the schema has no such
// attribute.
func (s *AttributeSchema) Lookup(id int32) (AttributeDefinition, bool) {
	if s == nil {
		return AttributeDefinition{}, false
	}
	d, ok := s.byID[id]
	return d, ok
}

// AttributeFilter is one per-attribute predicate in a viewer's filter
// specification (spec §4.4).
type AttributeFilter struct {
	AttributeID           int32
	Bitflags              uint16
	TopLevel              int32
	SubLevel              *int32
	Numbers               []int32 // sorted ascending, at most 8 entries
	AcceptMissingAttribute bool
}

// MaxNumberListFilterValues is the validation-time cap on number-list
// filter size (spec §4.4).
const MaxNumberListFilterValues = 8
