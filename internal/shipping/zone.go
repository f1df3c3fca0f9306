package shipping

// ResolveZone associe un code pays ISO à sa zone tarifaire. Un code inconnu
// (ou vide) retombe sur la zone internationale.
func (t *RateTable) ResolveZone(country string) Zone {
	if zone, ok := t.countryZone[normalizeCountry(country)]; ok {
		return zone
	}
	return ZoneInternational
}

// ResolveZone utilise la grille embarquée.
func ResolveZone(country string) Zone {
	return DefaultRateTable().ResolveZone(country)
}
