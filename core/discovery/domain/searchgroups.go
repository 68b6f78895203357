package domain

// SearchGroupFlags is the 9-bit mask of directed preference bits of the
// form "I am X looking for Y", X, Y in {man, woman, non-binary}. Bit values
// are fixed by the wire contract this core consumes and must not be
// renumbered.
type SearchGroupFlags uint16

const (
	SearchGroupManForWoman           SearchGroupFlags = 0x1
	SearchGroupManForMan             SearchGroupFlags = 0x2
	SearchGroupManForNonBinary       SearchGroupFlags = 0x4
	SearchGroupWomanForMan           SearchGroupFlags = 0x8
	SearchGroupWomanForWoman         SearchGroupFlags = 0x10
	SearchGroupWomanForNonBinary     SearchGroupFlags = 0x20
	SearchGroupNonBinaryForMan       SearchGroupFlags = 0x40
	SearchGroupNonBinaryForWoman     SearchGroupFlags = 0x80
	SearchGroupNonBinaryForNonBinary SearchGroupFlags = 0x100
)

// MutualFilterMask converts a viewer's own search-group flags into the mask
// describing "profiles that both want me and that I want", by swapping the
// X/Y roles of each set bit. This is a closed-form bit permutation, not a
// database lookup (spec §9 Design notes).
//
// The three same-to-same mappings (man-for-man, woman-for-woman,
// non-binary-for-non-binary) swap to themselves. This looks redundant but
// is exactly what makes the mask symmetric for same-gender preferences;
// it must not be "optimized away" (spec §9 Open questions).
func (f SearchGroupFlags) MutualFilterMask() SearchGroupFlags {
	var filter SearchGroupFlags

	if f&SearchGroupManForWoman != 0 {
		filter |= SearchGroupWomanForMan
	}
	if f&SearchGroupManForMan != 0 {
		filter |= SearchGroupManForMan
	}
	if f&SearchGroupManForNonBinary != 0 {
		filter |= SearchGroupNonBinaryForMan
	}
	if f&SearchGroupWomanForMan != 0 {
		filter |= SearchGroupManForWoman
	}
	if f&SearchGroupWomanForWoman != 0 {
		filter |= SearchGroupWomanForWoman
	}
	if f&SearchGroupWomanForNonBinary != 0 {
		filter |= SearchGroupNonBinaryForWoman
	}
	if f&SearchGroupNonBinaryForMan != 0 {
		filter |= SearchGroupManForNonBinary
	}
	if f&SearchGroupNonBinaryForWoman != 0 {
		filter |= SearchGroupWomanForNonBinary
	}
	if f&SearchGroupNonBinaryForNonBinary != 0 {
		filter |= SearchGroupNonBinaryForNonBinary
	}

	return filter
}

// Matches reports whether candidate's own search-group flags intersect
// this mutual filter mask.
func (f SearchGroupFlags) Matches(candidate SearchGroupFlags) bool {
	return f&candidate != 0
}
