// Package selection applies the forceOnly/exclude precedence to declared
// tests and groups.
package selection

import "virtest/internal/domain"

type bucket int

const (
	bucketNeither bucket = iota
	bucketForced
	bucketExcluded
)

// classify checks forceOnly before exclude, so an item carrying both flags is
// forced and runs.
func classify(forceOnly, exclude bool) bucket {
	switch {
	case forceOnly:
		return bucketForced
	case exclude:
		return bucketExcluded
	default:
		return bucketNeither
	}
}

// combine assigns an ignored reason to each bucketed item. When any item is
// forced, unforced items are NonForced; excluded items are always Excluded.
func combine(buckets []bucket) []domain.IgnoredReason {
	anyForced := false
	for _, b := range buckets {
		if b == bucketForced {
			anyForced = true
			break
		}
	}

	reasons := make([]domain.IgnoredReason, len(buckets))
	for i, b := range buckets {
		switch {
		case b == bucketExcluded:
			reasons[i] = domain.IgnoredExcluded
		case b == bucketNeither && anyForced:
			reasons[i] = domain.IgnoredNonForced
		default:
			reasons[i] = domain.IgnoredNone
		}
	}
	return reasons
}

// Filter annotates every test and group with its ignored reason. Tests are
// resolved within their group first; a group counts as forced when it is
// flagged forceOnly or contains a forced test. The input is not modified and
// declaration order is kept.
func Filter(groups []domain.TestGroupOutput) []domain.FilteredTestGroupOutput {
	filtered := make([]domain.FilteredTestGroupOutput, len(groups))
	groupBuckets := make([]bucket, len(groups))

	for i, group := range groups {
		testBuckets := make([]bucket, len(group.Tests))
		hasForcedTest := false
		for j, test := range group.Tests {
			props := test.Input.Properties()
			testBuckets[j] = classify(props.ForceOnly, props.Exclude)
			if testBuckets[j] == bucketForced {
				hasForcedTest = true
			}
		}

		reasons := combine(testBuckets)
		tests := make([]domain.FilteredWrappedTest, len(group.Tests))
		for j, test := range group.Tests {
			tests[j] = domain.FilteredWrappedTest{
				WrappedTest:   test,
				IgnoredReason: reasons[j],
			}
		}

		groupBuckets[i] = classify(group.ForceOnly || hasForcedTest, group.Exclude)
		filtered[i] = domain.FilteredTestGroupOutput{
			Description: group.Description,
			Exclude:     group.Exclude,
			ForceOnly:   group.ForceOnly,
			Caller:      group.Caller,
			FileSource:  group.FileSource,
			Tests:       tests,
		}
	}

	for i, reason := range combine(groupBuckets) {
		filtered[i].IgnoredReason = reason
	}
	return filtered
}

// Runnable wraps groups that bypass selection, such as synthesized failures.
func Runnable(group domain.TestGroupOutput) domain.FilteredTestGroupOutput {
	tests := make([]domain.FilteredWrappedTest, len(group.Tests))
	for i, test := range group.Tests {
		tests[i] = domain.FilteredWrappedTest{WrappedTest: test}
	}
	return domain.FilteredTestGroupOutput{
		Description: group.Description,
		Exclude:     group.Exclude,
		ForceOnly:   group.ForceOnly,
		Caller:      group.Caller,
		FileSource:  group.FileSource,
		Tests:       tests,
	}
}
