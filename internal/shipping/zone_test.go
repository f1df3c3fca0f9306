package shipping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveZone(t *testing.T) {
	cases := map[string]Zone{
		"FR":   ZoneDomestic,
		"fr":   ZoneDomestic,
		" MC ": ZoneDomestic,
		"AD":   ZoneDomestic,
		"DE":   ZoneEU,
		"be":   ZoneEU,
		"LT":   ZoneEU,
		"CH":   ZoneInternational,
		"US":   ZoneInternational,
		"XX":   ZoneInternational,
		"":     ZoneInternational,
	}

	for country, want := range cases {
		assert.Equal(t, want, ResolveZone(country), "pays %q", country)
	}
}
