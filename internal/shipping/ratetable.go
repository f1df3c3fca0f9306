package shipping

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed rates.yaml
var defaultRatesYAML []byte

// Zone regroupe les pays qui partagent la même grille tarifaire.
type Zone string

const (
	ZoneDomestic      Zone = "domestic"
	ZoneEU            Zone = "eu"
	ZoneInternational Zone = "international"
)

// MethodType classe une méthode de livraison par rapidité.
type MethodType string

const (
	MethodStandard  MethodType = "standard"
	MethodExpress   MethodType = "express"
	MethodOvernight MethodType = "overnight"
)

// PricingKind indique comment le prix d'une méthode est calculé.
type PricingKind string

const (
	PricingFlat   PricingKind = "flat"
	PricingTiered PricingKind = "tiered"
)

// DeliveryEstimate est une fourchette de délai en jours ouvrés.
type DeliveryEstimate struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Method est l'entrée du catalogue exposée aux clients.
type Method struct {
	ID            string           `json:"id" yaml:"id"`
	Name          string           `json:"name" yaml:"name"`
	Description   string           `json:"description" yaml:"description"`
	Type          MethodType       `json:"type" yaml:"type"`
	EstimatedDays DeliveryEstimate `json:"estimatedDays" yaml:"estimated_days"`
}

// PriceTier : prix appliqué jusqu'à MaxWeight grammes inclus.
type PriceTier struct {
	MaxWeight float64 `yaml:"max_weight"`
	Price     float64 `yaml:"price"`
}

type Pricing struct {
	Kind  PricingKind `yaml:"kind"`
	Price float64     `yaml:"price"`
	Tiers []PriceTier `yaml:"tiers"`
}

// MethodRate associe une méthode à sa tranche de poids et à sa tarification.
type MethodRate struct {
	Method    `yaml:",inline"`
	MinWeight float64  `yaml:"min_weight"`
	MaxWeight float64  `yaml:"max_weight"`
	Pricing   Pricing  `yaml:"pricing"`
	FreeAbove *float64 `yaml:"free_above"`
}

type ZoneRates struct {
	ID        Zone         `yaml:"id"`
	Countries []string     `yaml:"countries"`
	Methods   []MethodRate `yaml:"methods"`
}

// RateTable est la configuration statique complète. Elle n'est jamais modifiée
// après le chargement et peut être partagée entre requêtes.
type RateTable struct {
	PackagingWeight float64     `yaml:"packaging_weight"`
	Zones           []ZoneRates `yaml:"zones"`

	countryZone map[string]Zone
	zoneIndex   map[Zone]int
}

var (
	defaultTable     *RateTable
	defaultTableOnce sync.Once
)

// DefaultRateTable retourne la grille embarquée dans le binaire.
func DefaultRateTable() *RateTable {
	defaultTableOnce.Do(func() {
		t, err := ParseRateTable(defaultRatesYAML)
		if err != nil {
			panic(fmt.Sprintf("grille tarifaire embarquée invalide: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}

// LoadRateTable lit une grille depuis un fichier YAML ; un chemin vide
// renvoie la grille embarquée.
func LoadRateTable(path string) (*RateTable, error) {
	if path == "" {
		return DefaultRateTable(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lecture grille tarifaire %s: %w", path, err)
	}
	return ParseRateTable(data)
}

// ParseRateTable décode et valide une grille tarifaire.
func ParseRateTable(data []byte) (*RateTable, error) {
	var t RateTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("décodage grille tarifaire: %w", err)
	}
	if err := t.build(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *RateTable) build() error {
	if t.PackagingWeight < 0 {
		return fmt.Errorf("packaging_weight négatif: %v", t.PackagingWeight)
	}

	t.countryZone = make(map[string]Zone)
	t.zoneIndex = make(map[Zone]int)

	for zi := range t.Zones {
		z := &t.Zones[zi]
		if z.ID == "" {
			return fmt.Errorf("zone #%d sans identifiant", zi)
		}
		if _, dup := t.zoneIndex[z.ID]; dup {
			return fmt.Errorf("zone %q définie deux fois", z.ID)
		}
		t.zoneIndex[z.ID] = zi

		for _, country := range z.Countries {
			code := normalizeCountry(country)
			if code == "" {
				return fmt.Errorf("zone %q: code pays vide", z.ID)
			}
			if other, dup := t.countryZone[code]; dup {
				return fmt.Errorf("pays %s présent dans les zones %q et %q", code, other, z.ID)
			}
			t.countryZone[code] = z.ID
		}

		seen := make(map[string]bool)
		for mi := range z.Methods {
			m := &z.Methods[mi]
			if err := m.validate(); err != nil {
				return fmt.Errorf("zone %q, méthode #%d: %w", z.ID, mi, err)
			}
			if seen[m.ID] {
				return fmt.Errorf("zone %q: méthode %q définie deux fois", z.ID, m.ID)
			}
			seen[m.ID] = true
		}
	}
	return nil
}

// validate vérifie une méthode et complète MaxWeight depuis la dernière
// tranche lorsqu'il n'est pas renseigné.
func (m *MethodRate) validate() error {
	if m.ID == "" {
		return fmt.Errorf("identifiant manquant")
	}
	switch m.Type {
	case MethodStandard, MethodExpress, MethodOvernight:
	default:
		return fmt.Errorf("%s: type %q inconnu", m.ID, m.Type)
	}
	if m.EstimatedDays.Min < 0 || m.EstimatedDays.Max < m.EstimatedDays.Min {
		return fmt.Errorf("%s: délai estimé incohérent %+v", m.ID, m.EstimatedDays)
	}
	if m.MinWeight < 0 {
		return fmt.Errorf("%s: poids minimum négatif", m.ID)
	}
	if m.FreeAbove != nil && *m.FreeAbove < 0 {
		return fmt.Errorf("%s: seuil de gratuité négatif", m.ID)
	}

	switch m.Pricing.Kind {
	case PricingFlat:
		if m.Pricing.Price < 0 {
			return fmt.Errorf("%s: prix négatif", m.ID)
		}
		if m.MaxWeight == 0 {
			return fmt.Errorf("%s: max_weight requis pour un tarif forfaitaire", m.ID)
		}
	case PricingTiered:
		if len(m.Pricing.Tiers) == 0 {
			return fmt.Errorf("%s: aucune tranche de poids", m.ID)
		}
		prev := 0.0
		for i, tier := range m.Pricing.Tiers {
			if tier.MaxWeight <= prev {
				return fmt.Errorf("%s: tranche #%d non croissante", m.ID, i)
			}
			if tier.Price < 0 {
				return fmt.Errorf("%s: tranche #%d à prix négatif", m.ID, i)
			}
			prev = tier.MaxWeight
		}
		if m.MaxWeight == 0 || m.MaxWeight > prev {
			m.MaxWeight = prev
		}
	default:
		return fmt.Errorf("%s: tarification %q inconnue", m.ID, m.Pricing.Kind)
	}

	if m.MaxWeight <= m.MinWeight {
		return fmt.Errorf("%s: tranche de poids vide [%v, %v]", m.ID, m.MinWeight, m.MaxWeight)
	}
	return nil
}

// methodsFor retourne les méthodes configurées pour une zone (nil si aucune).
func (t *RateTable) methodsFor(zone Zone) []MethodRate {
	i, ok := t.zoneIndex[zone]
	if !ok {
		return nil
	}
	return t.Zones[i].Methods
}

// Method retrouve une méthode par zone et identifiant.
func (t *RateTable) Method(zone Zone, id string) (MethodRate, bool) {
	for _, m := range t.methodsFor(zone) {
		if m.ID == id {
			return m, true
		}
	}
	return MethodRate{}, false
}

func normalizeCountry(country string) string {
	return strings.ToUpper(strings.TrimSpace(country))
}
