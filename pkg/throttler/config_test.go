package throttler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRulesEmptySpecUsesDefaults(t *testing.T) {
	rules, err := LoadRules("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), rules)
}

func TestLoadRulesPrependsProductRules(t *testing.T) {
	rules, err := LoadRules("Nightbox:^9\\..*:0.5")
	require.NoError(t, err)
	require.Len(t, rules, len(DefaultRules())+1)
	assert.Equal(t, "product_Nightbox", rules[0].Name)
	assert.Equal(t, 0.5, rules[0].Percentage)
}

func TestLoadRulesRejectsMalformedEntry(t *testing.T) {
	_, err := LoadRules("onlytwo:fields")
	assert.Error(t, err)
}

func TestLoadRulesRejectsBadPercentage(t *testing.T) {
	_, err := LoadRules("p:v:notanumber")
	assert.Error(t, err)
}
