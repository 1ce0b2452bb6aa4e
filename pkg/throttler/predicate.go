package throttler

import (
	"regexp"

	"github.com/mozilla-services/antenna/pkg/crashreport"
)

// Predicate tests whether a rule applies to a crash's annotations. The
// minimal vocabulary required by spec.md §4.2 is equality, regex,
// membership in a constant set, and logical AND across sub-predicates;
// each is a Predicate constructor below.
type Predicate interface {
	Test(annotations crashreport.Annotations) bool
}

// predicateFunc adapts a plain function to the Predicate interface.
type predicateFunc func(crashreport.Annotations) bool

func (f predicateFunc) Test(a crashreport.Annotations) bool { return f(a) }

// Equals matches when annotation field has exactly value.
func Equals(field, value string) Predicate {
	return predicateFunc(func(a crashreport.Annotations) bool {
		return a[field] == value
	})
}

// Regex matches when annotation field matches the compiled pattern.
// Panics at construction time if pattern fails to compile; rule tables are
// built once at process start, and LoadRules checks operator-supplied
// version patterns before building rules from them.
func Regex(field, pattern string) Predicate {
	re := regexp.MustCompile(pattern)
	return predicateFunc(func(a crashreport.Annotations) bool {
		return re.MatchString(a[field])
	})
}

// In matches when annotation field's value is a member of set.
func In(field string, set ...string) Predicate {
	members := make(map[string]struct{}, len(set))
	for _, s := range set {
		members[s] = struct{}{}
	}
	return predicateFunc(func(a crashreport.Annotations) bool {
		_, ok := members[a[field]]
		return ok
	})
}

// Present matches when annotation field is set to any non-empty value.
func Present(field string) Predicate {
	return predicateFunc(func(a crashreport.Annotations) bool {
		return a[field] != ""
	})
}

// And matches when every sub-predicate matches.
func And(preds ...Predicate) Predicate {
	return predicateFunc(func(a crashreport.Annotations) bool {
		for _, p := range preds {
			if !p.Test(a) {
				return false
			}
		}
		return true
	})
}

// Always matches unconditionally; used for a catch-all terminal rule.
func Always() Predicate {
	return predicateFunc(func(crashreport.Annotations) bool { return true })
}
