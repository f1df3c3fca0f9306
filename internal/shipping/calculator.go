package shipping

import (
	"math"
	"sort"
	"strings"
)

const (
	ErrMissingParams = "Paramètres manquants"
	ErrNoMethod      = "Aucune méthode de livraison disponible pour cette destination"
)

// Request est une demande de devis. PostalCode n'intervient pas dans le tarif.
type Request struct {
	Country    string  `json:"country" form:"country"`
	PostalCode string  `json:"postalCode,omitempty" form:"postalCode"`
	Weight     float64 `json:"weight" form:"weight"`
	Value      float64 `json:"value" form:"value"`
}

// Calculation est le prix d'une méthode pour une demande donnée.
type Calculation struct {
	Method Method  `json:"method"`
	Price  float64 `json:"price"`
}

type Response struct {
	AvailableMethods []Calculation `json:"availableMethods"`
	DefaultMethod    *Calculation  `json:"defaultMethod"`
	Errors           []string      `json:"errors"`
}

// Valid indique si la demande peut être chiffrée.
func (r Request) Valid() bool {
	return strings.TrimSpace(r.Country) != "" &&
		isFinite(r.Weight) && r.Weight > 0 &&
		isFinite(r.Value) && r.Value >= 0
}

// EligibleMethods retourne les méthodes de la zone dont la tranche de poids
// contient weight, triées du moins cher au plus cher. Une entrée invalide
// donne une liste vide.
func (t *RateTable) EligibleMethods(zone Zone, weight, value float64) []Calculation {
	out := []Calculation{}
	if !isFinite(weight) || weight <= 0 || !isFinite(value) || value < 0 {
		return out
	}

	for _, m := range t.methodsFor(zone) {
		if weight < m.MinWeight || weight > m.MaxWeight {
			continue
		}
		price, ok := m.price(weight)
		if !ok {
			continue
		}
		if m.FreeAbove != nil && value >= *m.FreeAbove {
			price = 0
		}
		out = append(out, Calculation{Method: m.Method, Price: round2(price)})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Price != b.Price {
			return a.Price < b.Price
		}
		if a.Method.EstimatedDays.Max != b.Method.EstimatedDays.Max {
			return a.Method.EstimatedDays.Max < b.Method.EstimatedDays.Max
		}
		if a.Method.EstimatedDays.Min != b.Method.EstimatedDays.Min {
			return a.Method.EstimatedDays.Min < b.Method.EstimatedDays.Min
		}
		return a.Method.ID < b.Method.ID
	})
	return out
}

func (m MethodRate) price(weight float64) (float64, bool) {
	switch m.Pricing.Kind {
	case PricingFlat:
		return m.Pricing.Price, true
	case PricingTiered:
		for _, tier := range m.Pricing.Tiers {
			if weight <= tier.MaxWeight {
				return tier.Price, true
			}
		}
	}
	return 0, false
}

// Calculate chiffre une demande et construit la réponse complète : méthodes
// disponibles, méthode par défaut (la première) et erreurs éventuelles.
func (t *RateTable) Calculate(req Request) Response {
	if !req.Valid() {
		return assemble(nil, ErrMissingParams)
	}
	zone := t.ResolveZone(req.Country)
	return assemble(t.EligibleMethods(zone, req.Weight, req.Value), ErrNoMethod)
}

// Calculate utilise la grille embarquée.
func Calculate(req Request) Response {
	return DefaultRateTable().Calculate(req)
}

func assemble(methods []Calculation, reason string) Response {
	if len(methods) == 0 {
		return Response{
			AvailableMethods: []Calculation{},
			Errors:           []string{reason},
		}
	}
	def := methods[0]
	return Response{
		AvailableMethods: methods,
		DefaultMethod:    &def,
		Errors:           []string{},
	}
}

// Find retourne la méthode id parmi les méthodes disponibles.
func (r Response) Find(id string) (Calculation, bool) {
	for _, c := range r.AvailableMethods {
		if c.Method.ID == id {
			return c, true
		}
	}
	return Calculation{}, false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
