package matcher

import (
	"fmt"
	"reflect"
	"regexp"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"virtest/internal/domain"
)

var equalOptions = []cmp.Option{
	cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) }),
	cmp.Comparer(func(a, b *regexp.Regexp) bool {
		if a == nil || b == nil {
			return a == b
		}
		return a.String() == b.String()
	}),
	cmpopts.EquateEmpty(),
	cmp.Exporter(func(reflect.Type) bool { return true }),
}

// compare is swapped in tests to exercise the internal-error path.
var compare = func(expected, actual any) bool {
	return cmp.Equal(expected, actual, equalOptions...)
}

// ValuesEqual deep-compares expected and actual. Maps (and so sets) compare
// by membership, slices by order and length, nil and empty slices or maps
// are equal, times by instant, regular
// expressions by source. A failure of the comparison itself is returned as
// an InternalError rather than being read as "not equal".
func ValuesEqual(expected, actual any) (equal bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			equal = false
			err = domain.NewInternalError(fmt.Errorf("%v", r), "equality check failed")
		}
	}()
	return compare(expected, actual), nil
}

// Diff renders a human readable difference, or "" when equal or when the
// values cannot be compared.
func Diff(expected, actual any) (diff string) {
	defer func() {
		if recover() != nil {
			diff = ""
		}
	}()
	return cmp.Diff(expected, actual, equalOptions...)
}
