package domain

import "sort"

// ViewerFilter is the full predicate derived from one viewer's preferences,
// used by Evaluator to accept or reject candidate profile summaries.
type ViewerFilter struct {
	Age                ProfileAge
	SearchAgeRange     AgeRange
	MutualGroupsMask   SearchGroupFlags
	AttributeFilters   []AttributeFilter // evaluated in attribute-id order
}

// NewViewerFilter derives a ViewerFilter from a viewer's own profile age,
// their search age range, and their own search-group flags (converted to
// the mutual mask via MutualFilterMask).
func NewViewerFilter(age ProfileAge, searchAgeRange AgeRange, ownGroups SearchGroupFlags, attrFilters []AttributeFilter) ViewerFilter {
	sorted := append([]AttributeFilter(nil), attrFilters...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].AttributeID < sorted[j].AttributeID })
	return ViewerFilter{
		Age:              age,
		SearchAgeRange:   searchAgeRange,
		MutualGroupsMask: ownGroups.MutualFilterMask(),
		AttributeFilters: sorted,
	}
}

// Evaluator applies a ViewerFilter against candidate ProfileSummary values.
// It is pure: it holds only a read-only schema reference and mutates
// nothing.
type Evaluator struct {
	schema *AttributeSchema
}

// NewEvaluator builds an Evaluator consulting schema for attribute
// validation.
func NewEvaluator(schema *AttributeSchema) *Evaluator {
	return &Evaluator{schema: schema}
}

// Matches runs the short-circuiting AND chain described in spec §4.4:
// mutual age range, then mutual search groups, then each attribute filter
// in attribute-id order.
func (e *Evaluator) Matches(filter ViewerFilter, candidate ProfileSummary) bool {
	if !candidate.SearchAgeRange.Contains(filter.Age) {
		return false
	}
	if !filter.SearchAgeRange.Contains(candidate.Age) {
		return false
	}
	if !filter.MutualGroupsMask.Matches(candidate.SearchGroups) {
		return false
	}
	return e.attributeFiltersMatch(filter, candidate)
}

func (e *Evaluator) attributeFiltersMatch(filter ViewerFilter, candidate ProfileSummary) bool {
	for _, af := range filter.AttributeFilters {
		def, ok := e.schema.Lookup(af.AttributeID)
		if !ok {
			// Unknown attribute id fails the whole candidate immediately.
			return false
		}

		value, found := findAttributeValue(candidate.Attributes, af.AttributeID)
		if !found {
			if !af.AcceptMissingAttribute {
				return false
			}
			continue
		}

		if !matchAttributeValue(af, def, value) {
			return false
		}
	}
	return true
}

func findAttributeValue(values []AttributeValue, id int32) (AttributeValue, bool) {
	// values is sorted by AttributeID; linear scan is fine at the small
	// per-profile attribute counts this schema supports.
	for _, v := range values {
		if v.AttributeID == id {
			return v, true
		}
	}
	return AttributeValue{}, false
}

func matchAttributeValue(filter AttributeFilter, def AttributeDefinition, value AttributeValue) bool {
	switch def.Mode {
	case AttributeModeBitflag:
		return filter.Bitflags&value.Bitflags != 0
	case AttributeModeNumberList:
		return numberListIsSubsequence(filter.Numbers, value.Numbers)
	case AttributeModeOneLevel:
		return filter.TopLevel == value.TopLevel
	case AttributeModeTwoLevel:
		if filter.TopLevel != value.TopLevel {
			return false
		}
		if filter.SubLevel == nil {
			return true
		}
		return value.SubLevel != nil && *filter.SubLevel == *value.SubLevel
	default:
		return false
	}
}

// numberListIsSubsequence reports whether every value in filterNumbers is
// present in candidateNumbers. Both slices must already be sorted
// ascending; the check is then a single linear merge (spec §9 Design
// notes), not a set lookup.
func numberListIsSubsequence(filterNumbers, candidateNumbers []int32) bool {
	i := 0
	for _, want := range filterNumbers {
		for {
			if i >= len(candidateNumbers) {
				return false
			}
			if candidateNumbers[i] < want {
				i++
				continue
			}
			if candidateNumbers[i] == want {
				break
			}
			return false
		}
	}
	return true
}
