// Package throttler implements the ordered-rule crash throttling decision
// described in spec.md §4.2: each crash's annotations are evaluated
// against a compiled-in rule registry, producing a verdict of ACCEPT,
// DEFER, REJECT, FAKEACCEPT, or CONTINUE (CONTINUE falls through to the
// next rule rather than deciding the crash).
package throttler

import (
	"math/rand"

	"github.com/mozilla-services/antenna/pkg/crashreport"
)

// Verdict is the outcome of evaluating a crash's annotations against the
// rule list.
type Verdict string

const (
	Accept     Verdict = "ACCEPT"
	Defer      Verdict = "DEFER"
	Reject     Verdict = "REJECT"
	FakeAccept Verdict = "FAKEACCEPT"
	Continue   Verdict = "CONTINUE"
)

// bypassRuleName is the synthetic rule name reported when the
// Throttleable=0 client bypass fires, per §4.2.
const bypassRuleName = "has_throttleable_0"

// defaultRuleName is reported when no rule matches and the default REJECT
// applies.
const defaultRuleName = "default_reject"

// Decision is the result of Evaluate: a verdict, the name of the rule that
// produced it, and — for sampled verdicts — the acceptance percentage that
// was rolled against.
type Decision struct {
	Verdict    Verdict
	RuleName   string
	Percentage float64 // only meaningful when the matching rule was sampled
}

// Rule is one entry in the ordered rule list. Match is evaluated in order;
// the first rule whose Match returns true decides the result unless its
// Verdict is Continue, in which case evaluation proceeds to the next rule.
type Rule struct {
	Name    string
	Match   Predicate
	Verdict Verdict
	// Percentage is the probability (0.0-1.0) of ACCEPT for a sampled rule;
	// a sampled rule yields REJECT otherwise, whatever its Verdict. Only
	// meaningful when Sampled is true.
	Sampled    bool
	Percentage float64
}

// Throttler evaluates an ordered rule list against a crash's annotations.
type Throttler struct {
	rules []Rule
	// rng is overridable in tests so sampled rules are deterministic.
	rng func() float64
}

// New builds a Throttler from an ordered rule list. Rules are evaluated in
// the given order; supply them already sorted by priority.
func New(rules []Rule) *Throttler {
	return &Throttler{
		rules: rules,
		rng:   rand.Float64,
	}
}

// Evaluate returns the verdict for the given annotations. The
// Throttleable=0 client bypass is checked first and unconditionally
// overrides the rule list, per §4.2.
func (t *Throttler) Evaluate(annotations crashreport.Annotations) Decision {
	if v, ok := annotations[crashreport.AnnotationThrottleable]; ok && v == "0" {
		return Decision{Verdict: Accept, RuleName: bypassRuleName}
	}

	for _, rule := range t.rules {
		if !rule.Match.Test(annotations) {
			continue
		}
		if rule.Verdict == Continue {
			continue
		}
		if rule.Sampled {
			if t.rng() < rule.Percentage {
				return Decision{Verdict: Accept, RuleName: rule.Name, Percentage: rule.Percentage}
			}
			return Decision{Verdict: Reject, RuleName: rule.Name, Percentage: rule.Percentage}
		}
		return Decision{Verdict: rule.Verdict, RuleName: rule.Name}
	}

	return Decision{Verdict: Reject, RuleName: defaultRuleName}
}
