package shipping

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate_FranceStandardPaid(t *testing.T) {
	resp := Calculate(Request{Country: "FR", Weight: 500, Value: 30})

	require.Empty(t, resp.Errors)
	require.NotEmpty(t, resp.AvailableMethods)

	std, ok := resp.Find("standard")
	require.True(t, ok)
	assert.Equal(t, 6.95, std.Price)
	assert.Equal(t, MethodStandard, std.Method.Type)

	require.NotNil(t, resp.DefaultMethod)
	assert.Equal(t, "relay", resp.DefaultMethod.Method.ID)
	assert.Equal(t, 3.99, resp.DefaultMethod.Price)
}

func TestCalculate_FranceStandardFreeAboveThreshold(t *testing.T) {
	resp := Calculate(Request{Country: "FR", Weight: 500, Value: 1000})

	std, ok := resp.Find("standard")
	require.True(t, ok)
	assert.Zero(t, std.Price)

	require.NotNil(t, resp.DefaultMethod)
	assert.Equal(t, "standard", resp.DefaultMethod.Method.ID)
}

func TestCalculate_FreeThresholdIsInclusive(t *testing.T) {
	below := Calculate(Request{Country: "FR", Weight: 500, Value: 49.99})
	at := Calculate(Request{Country: "FR", Weight: 500, Value: 50})

	b, ok := below.Find("standard")
	require.True(t, ok)
	assert.Equal(t, 6.95, b.Price)

	a, ok := at.Find("standard")
	require.True(t, ok)
	assert.Zero(t, a.Price)
}

func TestCalculate_UnknownCountryIsInternational(t *testing.T) {
	resp := Calculate(Request{Country: "XX", Weight: 200, Value: 10})

	require.Empty(t, resp.Errors)
	ids := methodIDs(resp)
	assert.Equal(t, []string{"standard", "express"}, ids)

	std, _ := resp.Find("standard")
	assert.Equal(t, "Colissimo International", std.Method.Name)
	assert.Equal(t, 17.50, std.Price)
}

func TestCalculate_InvalidInput(t *testing.T) {
	cases := []struct {
		name string
		req  Request
	}{
		{"zero weight", Request{Country: "FR", Weight: 0, Value: 10}},
		{"negative weight", Request{Country: "FR", Weight: -1, Value: 10}},
		{"negative value", Request{Country: "FR", Weight: 100, Value: -0.01}},
		{"missing country", Request{Country: "  ", Weight: 100, Value: 10}},
		{"nan weight", Request{Country: "FR", Weight: math.NaN(), Value: 10}},
		{"infinite value", Request{Country: "FR", Weight: 100, Value: math.Inf(1)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := Calculate(tc.req)
			assert.Empty(t, resp.AvailableMethods)
			assert.NotNil(t, resp.AvailableMethods)
			assert.Nil(t, resp.DefaultMethod)
			assert.Equal(t, []string{ErrMissingParams}, resp.Errors)
		})
	}
}

func TestCalculate_OutOfBracketWeight(t *testing.T) {
	resp := Calculate(Request{Country: "US", Weight: 6000, Value: 10})

	assert.Empty(t, resp.AvailableMethods)
	assert.Nil(t, resp.DefaultMethod)
	assert.Equal(t, []string{ErrNoMethod}, resp.Errors)
}

func TestCalculate_WeightBracketBoundaries(t *testing.T) {
	// 5000 g : dernier gramme accepté par le 24h.
	at := Calculate(Request{Country: "FR", Weight: 5000, Value: 10})
	_, ok := at.Find("next_day")
	assert.True(t, ok)

	over := Calculate(Request{Country: "FR", Weight: 5000.5, Value: 10})
	_, ok = over.Find("next_day")
	assert.False(t, ok)

	exp, ok := over.Find("express")
	require.True(t, ok)
	assert.Equal(t, 24.90, exp.Price)
}

func TestCalculate_Invariants(t *testing.T) {
	countries := []string{"FR", "fr", " mc ", "DE", "BE", "PL", "US", "JP", "XX"}
	weights := []float64{0.5, 1, 250, 251, 999.9, 1000, 2000, 4999, 5000, 10000, 20000, 30000, 40000}
	values := []float64{0, 10, 49.99, 50, 89.99, 90, 150, 1000}

	for _, c := range countries {
		for _, w := range weights {
			for _, v := range values {
				resp := Calculate(Request{Country: c, Weight: w, Value: v})

				assert.Equal(t, len(resp.AvailableMethods) == 0, len(resp.Errors) > 0,
					"%s %v %v", c, w, v)

				if resp.DefaultMethod != nil {
					_, ok := resp.Find(resp.DefaultMethod.Method.ID)
					assert.True(t, ok)
					assert.Equal(t, resp.AvailableMethods[0], *resp.DefaultMethod)
				}

				for i := 1; i < len(resp.AvailableMethods); i++ {
					prev, cur := resp.AvailableMethods[i-1], resp.AvailableMethods[i]
					assert.LessOrEqual(t, prev.Price, cur.Price)
					if prev.Price == cur.Price {
						assert.LessOrEqual(t, prev.Method.EstimatedDays.Max, cur.Method.EstimatedDays.Max)
					}
				}

				for _, m := range resp.AvailableMethods {
					assert.GreaterOrEqual(t, m.Price, 0.0)
				}
			}
		}
	}
}

func TestCalculate_Idempotent(t *testing.T) {
	req := Request{Country: "DE", PostalCode: "10115", Weight: 1200, Value: 42}

	first := Calculate(req)
	second := Calculate(req)
	assert.Equal(t, first, second)

	// La réponse est une copie : la modifier n'altère pas les appels suivants.
	first.AvailableMethods[0].Price = 999
	first.DefaultMethod.Method.Name = "modifié"
	assert.Equal(t, second, Calculate(req))
}

func TestCalculate_PostalCodeIgnored(t *testing.T) {
	a := Calculate(Request{Country: "FR", PostalCode: "75001", Weight: 800, Value: 20})
	b := Calculate(Request{Country: "FR", PostalCode: "97400", Weight: 800, Value: 20})
	assert.Equal(t, a, b)
}

func TestEligibleMethods_TieBreakByDeliveryEstimate(t *testing.T) {
	table, err := ParseRateTable([]byte(`
zones:
  - id: domestic
    countries: [FR]
    methods:
      - id: slow
        name: Lent
        type: standard
        estimated_days: { min: 3, max: 6 }
        max_weight: 1000
        pricing: { kind: flat, price: 5 }
      - id: fast
        name: Rapide
        type: express
        estimated_days: { min: 1, max: 2 }
        max_weight: 1000
        pricing: { kind: flat, price: 5 }
      - id: cheap
        name: Éco
        type: standard
        estimated_days: { min: 5, max: 10 }
        max_weight: 1000
        pricing: { kind: flat, price: 2.5 }
`))
	require.NoError(t, err)

	got := table.EligibleMethods(ZoneDomestic, 100, 0)
	require.Len(t, got, 3)
	assert.Equal(t, "cheap", got[0].Method.ID)
	assert.Equal(t, "fast", got[1].Method.ID)
	assert.Equal(t, "slow", got[2].Method.ID)
}

func TestEligibleMethods_ZoneWithoutMethods(t *testing.T) {
	table, err := ParseRateTable([]byte(`
zones:
  - id: domestic
    countries: [FR]
    methods:
      - id: standard
        name: Standard
        type: standard
        estimated_days: { min: 2, max: 3 }
        max_weight: 1000
        pricing: { kind: flat, price: 5 }
`))
	require.NoError(t, err)

	assert.Empty(t, table.EligibleMethods(ZoneInternational, 100, 10))

	resp := table.Calculate(Request{Country: "US", Weight: 100, Value: 10})
	assert.Empty(t, resp.AvailableMethods)
	assert.Equal(t, []string{ErrNoMethod}, resp.Errors)
}

func TestEligibleMethods_MinWeight(t *testing.T) {
	table, err := ParseRateTable([]byte(`
zones:
  - id: domestic
    countries: [FR]
    methods:
      - id: freight
        name: Messagerie
        type: standard
        estimated_days: { min: 3, max: 5 }
        min_weight: 2000
        max_weight: 50000
        pricing: { kind: flat, price: 30 }
`))
	require.NoError(t, err)

	assert.Empty(t, table.EligibleMethods(ZoneDomestic, 1999, 0))
	assert.Len(t, table.EligibleMethods(ZoneDomestic, 2000, 0), 1)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 12.35, round2(12.345000001))
	assert.Equal(t, 0.1, round2(0.1))
	assert.Equal(t, 19.9, round2(19.90))
}

func methodIDs(resp Response) []string {
	ids := make([]string, 0, len(resp.AvailableMethods))
	for _, m := range resp.AvailableMethods {
		ids = append(ids, m.Method.ID)
	}
	return ids
}
