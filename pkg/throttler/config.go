package throttler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// LoadRules is the "binding layer" spec.md §4.2 calls for: rule sets are
// configuration, not code. productsSpec is a semicolon-separated list of
// "product:version_regex:percentage" entries (BREAKPAD_THROTTLER_PRODUCTS);
// each becomes a ProductVersionRule evaluated before the built-in channel
// rules from DefaultRules. An empty productsSpec yields DefaultRules
// unchanged.
func LoadRules(productsSpec string) ([]Rule, error) {
	productsSpec = strings.TrimSpace(productsSpec)
	if productsSpec == "" {
		return DefaultRules(), nil
	}

	var rules []Rule
	for i, entry := range strings.Split(productsSpec, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		fields := strings.Split(entry, ":")
		if len(fields) != 3 {
			return nil, fmt.Errorf("throttler product rule %d: want product:version_regex:percentage, got %q", i, entry)
		}
		percentage, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("throttler product rule %d: invalid percentage %q: %w", i, fields[2], err)
		}
		versionPattern := strings.TrimSpace(fields[1])
		if _, err := regexp.Compile(versionPattern); err != nil {
			return nil, fmt.Errorf("throttler product rule %d: invalid version regex %q: %w", i, versionPattern, err)
		}
		name := fmt.Sprintf("product_%s", strings.TrimSpace(fields[0]))
		rules = append(rules, ProductVersionRule(name, strings.TrimSpace(fields[0]), versionPattern, percentage))
	}
	return append(rules, DefaultRules()...), nil
}
