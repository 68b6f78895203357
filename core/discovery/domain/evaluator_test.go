package domain

import "testing"

func TestMutualAgeAndSearchGroupsRoundTrip(t *testing.T) {
	// Viewer age 30, search_groups = {man_for_woman}; candidate woman
	// age 28 with search_groups = {woman_for_man}, no attributes
	// (spec §8 scenario 5).
	schema := NewAttributeSchema(nil)
	evaluator := NewEvaluator(schema)

	filter := NewViewerFilter(
		ProfileAge(30),
		AgeRange{Min: 18, Max: 99},
		SearchGroupManForWoman,
		nil,
	)

	candidate := ProfileSummary{
		Age:            ProfileAge(28),
		SearchAgeRange: AgeRange{Min: 18, Max: 99},
		SearchGroups:   SearchGroupWomanForMan,
	}

	if !evaluator.Matches(filter, candidate) {
		t.Fatalf("expected mutual man_for_woman/woman_for_man match to pass")
	}
}

func TestSameGenderSelfMappingMatches(t *testing.T) {
	schema := NewAttributeSchema(nil)
	evaluator := NewEvaluator(schema)

	filter := NewViewerFilter(ProfileAge(30), AgeRange{Min: 18, Max: 99}, SearchGroupManForMan, nil)
	candidate := ProfileSummary{
		Age:            ProfileAge(30),
		SearchAgeRange: AgeRange{Min: 18, Max: 99},
		SearchGroups:   SearchGroupManForMan,
	}
	if !evaluator.Matches(filter, candidate) {
		t.Fatalf("expected man_for_man self-mapping to match")
	}
}

func TestMutualSearchGroupsRejectsOneWay(t *testing.T) {
	schema := NewAttributeSchema(nil)
	evaluator := NewEvaluator(schema)

	filter := NewViewerFilter(ProfileAge(30), AgeRange{Min: 18, Max: 99}, SearchGroupManForWoman, nil)
	candidate := ProfileSummary{
		Age:            ProfileAge(28),
		SearchAgeRange: AgeRange{Min: 18, Max: 99},
		SearchGroups:   SearchGroupWomanForWoman, // wants a woman, not a man
	}
	if evaluator.Matches(filter, candidate) {
		t.Fatalf("expected one-directional mismatch to fail")
	}
}

func TestNumberListFilterSubsequence(t *testing.T) {
	schema := NewAttributeSchema([]AttributeDefinition{
		{ID: 1, Key: "interests", Mode: AttributeModeNumberList},
	})
	evaluator := NewEvaluator(schema)

	baseFilter := func(nums []int32, acceptMissing bool) ViewerFilter {
		return NewViewerFilter(ProfileAge(30), AgeRange{Min: 18, Max: 99}, SearchGroupManForWoman, []AttributeFilter{
			{AttributeID: 1, Numbers: nums, AcceptMissingAttribute: acceptMissing},
		})
	}
	baseCandidate := func(nums []int32) ProfileSummary {
		return ProfileSummary{
			Age:            ProfileAge(25),
			SearchAgeRange: AgeRange{Min: 18, Max: 99},
			SearchGroups:   SearchGroupWomanForMan,
			Attributes:     []AttributeValue{{AttributeID: 1, Numbers: nums}},
		}
	}

	if !evaluator.Matches(baseFilter([]int32{2, 5, 7}, false), baseCandidate([]int32{1, 2, 3, 5, 7, 9})) {
		t.Errorf("expected {2,5,7} to match against {1,2,3,5,7,9}")
	}
	if evaluator.Matches(baseFilter([]int32{2, 5, 7}, false), baseCandidate([]int32{1, 2, 5})) {
		t.Errorf("expected {2,5,7} to NOT match against {1,2,5}")
	}

	filter := NewViewerFilter(ProfileAge(30), AgeRange{Min: 18, Max: 99}, SearchGroupManForWoman, []AttributeFilter{
		{AttributeID: 1, Numbers: []int32{2, 5, 7}, AcceptMissingAttribute: true},
	})
	missing := ProfileSummary{
		Age:            ProfileAge(25),
		SearchAgeRange: AgeRange{Min: 18, Max: 99},
		SearchGroups:   SearchGroupWomanForMan,
	}
	if !evaluator.Matches(filter, missing) {
		t.Errorf("expected missing attribute to pass when accept_missing_attribute=true")
	}

	filterReject := NewViewerFilter(ProfileAge(30), AgeRange{Min: 18, Max: 99}, SearchGroupManForWoman, []AttributeFilter{
		{AttributeID: 1, Numbers: []int32{2, 5, 7}, AcceptMissingAttribute: false},
	})
	if evaluator.Matches(filterReject, missing) {
		t.Errorf("expected missing attribute to fail when accept_missing_attribute=false")
	}
}

func TestUnknownAttributeIDFailsCandidate(t *testing.T) {
	schema := NewAttributeSchema(nil) // empty schema: no attribute 7
	evaluator := NewEvaluator(schema)

	filter := NewViewerFilter(ProfileAge(30), AgeRange{Min: 18, Max: 99}, SearchGroupManForWoman, []AttributeFilter{
		{AttributeID: 7, TopLevel: 1},
	})
	candidate := ProfileSummary{
		Age:            ProfileAge(25),
		SearchAgeRange: AgeRange{Min: 18, Max: 99},
		SearchGroups:   SearchGroupWomanForMan,
	}
	if evaluator.Matches(filter, candidate) {
		t.Fatalf("expected unknown attribute id to fail the candidate")
	}
}

func TestEvaluatorPurity(t *testing.T) {
	schema := NewAttributeSchema([]AttributeDefinition{
		{ID: 1, Mode: AttributeModeBitflag},
	})
	evaluator := NewEvaluator(schema)
	filter := NewViewerFilter(ProfileAge(30), AgeRange{Min: 18, Max: 99}, SearchGroupManForWoman, []AttributeFilter{
		{AttributeID: 1, Bitflags: 0x3},
	})
	candidate := ProfileSummary{
		Age:            ProfileAge(28),
		SearchAgeRange: AgeRange{Min: 18, Max: 99},
		SearchGroups:   SearchGroupWomanForMan,
		Attributes:     []AttributeValue{{AttributeID: 1, Bitflags: 0x2}},
	}
	first := evaluator.Matches(filter, candidate)
	second := evaluator.Matches(filter, candidate)
	if first != second {
		t.Fatalf("evaluating the same filter against the same summary twice produced different results")
	}
}
