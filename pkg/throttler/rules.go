package throttler

import "github.com/mozilla-services/antenna/pkg/crashreport"

// ProductVersionRule builds a Rule that matches a specific product name and
// a regex over its version string, sampling acceptance at percentage. This
// is the collector's per-product throttling knob: operators pin down
// unwanted crash volume from a specific release line without touching the
// rest of the rule list.
func ProductVersionRule(name, product, versionPattern string, percentage float64) Rule {
	return Rule{
		Name: name,
		Match: And(
			Equals(crashreport.AnnotationProductName, product),
			Regex(crashreport.AnnotationVersion, versionPattern),
		),
		Verdict:    Accept,
		Sampled:    true,
		Percentage: percentage,
	}
}

// ReleaseChannelRule builds a Rule that matches crashes from one of the
// given release channels and applies verdict unconditionally (no sampling).
func ReleaseChannelRule(name string, verdict Verdict, channels ...string) Rule {
	return Rule{
		Name:    name,
		Match:   In(crashreport.AnnotationReleaseChannel, channels...),
		Verdict: verdict,
	}
}

// DefaultRules returns the collector's built-in ordered rule list: beta and
// nightly channels pass straight through, release and esr channels are
// sampled at a low acceptance rate, and anything else falls through to the
// REJECT that Evaluate applies when no rule matches.
func DefaultRules() []Rule {
	return []Rule{
		ReleaseChannelRule("channel_beta_nightly_accept", Accept, "beta", "nightly", "aurora"),
		{
			Name:       "channel_release_sampled",
			Match:      In(crashreport.AnnotationReleaseChannel, "release"),
			Verdict:    Accept,
			Sampled:    true,
			Percentage: 0.1,
		},
		{
			Name:       "channel_esr_sampled",
			Match:      In(crashreport.AnnotationReleaseChannel, "esr"),
			Verdict:    Accept,
			Sampled:    true,
			Percentage: 0.01,
		},
	}
}
