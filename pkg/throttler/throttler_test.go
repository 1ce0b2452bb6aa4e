package throttler

import (
	"testing"

	"github.com/mozilla-services/antenna/pkg/crashreport"
	"github.com/stretchr/testify/assert"
)

func TestThrottleableZeroBypassesRules(t *testing.T) {
	th := New([]Rule{
		{Name: "reject_all", Match: Always(), Verdict: Reject},
	})
	d := th.Evaluate(crashreport.Annotations{crashreport.AnnotationThrottleable: "0"})
	assert.Equal(t, Accept, d.Verdict)
	assert.Equal(t, bypassRuleName, d.RuleName)
}

func TestFirstMatchingRuleWins(t *testing.T) {
	th := New([]Rule{
		{Name: "first", Match: Equals("ReleaseChannel", "beta"), Verdict: Accept},
		{Name: "second", Match: Always(), Verdict: Reject},
	})
	d := th.Evaluate(crashreport.Annotations{"ReleaseChannel": "beta"})
	assert.Equal(t, Accept, d.Verdict)
	assert.Equal(t, "first", d.RuleName)
}

func TestContinueFallsThroughToNextRule(t *testing.T) {
	th := New([]Rule{
		{Name: "skip", Match: Always(), Verdict: Continue},
		{Name: "decide", Match: Always(), Verdict: Defer},
	})
	d := th.Evaluate(crashreport.Annotations{})
	assert.Equal(t, Defer, d.Verdict)
	assert.Equal(t, "decide", d.RuleName)
}

func TestNoMatchDefaultsToReject(t *testing.T) {
	th := New([]Rule{
		{Name: "never", Match: Equals("ReleaseChannel", "nonexistent"), Verdict: Accept},
	})
	d := th.Evaluate(crashreport.Annotations{"ReleaseChannel": "release"})
	assert.Equal(t, Reject, d.Verdict)
	assert.Equal(t, defaultRuleName, d.RuleName)
}

func TestSampledRuleUsesInjectedRNG(t *testing.T) {
	th := New([]Rule{
		{Name: "sampled", Match: Always(), Verdict: Accept, Sampled: true, Percentage: 0.5},
	})

	th.rng = func() float64 { return 0.1 }
	d := th.Evaluate(crashreport.Annotations{})
	assert.Equal(t, Accept, d.Verdict)
	assert.Equal(t, 0.5, d.Percentage)

	th.rng = func() float64 { return 0.9 }
	d = th.Evaluate(crashreport.Annotations{})
	assert.Equal(t, Reject, d.Verdict)
}

func TestProductVersionRuleMatchesAndSamples(t *testing.T) {
	rule := ProductVersionRule("firefox_115", "Firefox", `^115\.`, 1.0)
	th := New([]Rule{rule})
	th.rng = func() float64 { return 0 }

	d := th.Evaluate(crashreport.Annotations{
		crashreport.AnnotationProductName: "Firefox",
		crashreport.AnnotationVersion:     "115.0.2",
	})
	assert.Equal(t, Accept, d.Verdict)
	assert.Equal(t, "firefox_115", d.RuleName)

	d = th.Evaluate(crashreport.Annotations{
		crashreport.AnnotationProductName: "Firefox",
		crashreport.AnnotationVersion:     "116.0",
	})
	assert.Equal(t, Reject, d.Verdict)
	assert.Equal(t, defaultRuleName, d.RuleName)
}

func TestAndPredicateRequiresAllSubpredicates(t *testing.T) {
	p := And(Equals("a", "1"), Present("b"))
	assert.True(t, p.Test(crashreport.Annotations{"a": "1", "b": "x"}))
	assert.False(t, p.Test(crashreport.Annotations{"a": "1"}))
	assert.False(t, p.Test(crashreport.Annotations{"b": "x"}))
}

func TestDefaultRulesChannelOrdering(t *testing.T) {
	th := New(DefaultRules())
	th.rng = func() float64 { return 0 }

	d := th.Evaluate(crashreport.Annotations{crashreport.AnnotationReleaseChannel: "nightly"})
	assert.Equal(t, Accept, d.Verdict)
	assert.Equal(t, "channel_beta_nightly_accept", d.RuleName)

	d = th.Evaluate(crashreport.Annotations{crashreport.AnnotationReleaseChannel: "release"})
	assert.Equal(t, Accept, d.Verdict)
	assert.Equal(t, "channel_release_sampled", d.RuleName)

	d = th.Evaluate(crashreport.Annotations{crashreport.AnnotationReleaseChannel: "unknown"})
	assert.Equal(t, Reject, d.Verdict)
}
