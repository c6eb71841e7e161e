package model

// Country is a supported country token.
type Country string

// City is a supported city token.
type City string

const (
	CountryFrance Country = "FRANCE"
	CityParis     City    = "PARIS"
)

// Location is the user's selected country and city. Both are empty until chosen.
type Location struct {
	Country Country
	City    City
}

// Complete reports whether both country and city are selected.
func (l Location) Complete() bool {
	return l.Country != "" && l.City != ""
}

// CityOption is a selectable city of a catalog country.
type CityOption struct {
	City  City
	Label string
}

// CountryOption is a selectable catalog country.
type CountryOption struct {
	Country Country
	Label   string
	Cities  []CityOption
}

var catalog = []CountryOption{
	{
		Country: CountryFrance,
		Label:   "🇫🇷 France",
		Cities: []CityOption{
			{City: CityParis, Label: "Paris"},
		},
	},
}

// Countries returns the supported countries in display order.
func Countries() []CountryOption {
	return catalog
}

// LookupCountry finds a catalog country by token.
func LookupCountry(c Country) (CountryOption, bool) {
	for _, opt := range catalog {
		if opt.Country == c {
			return opt, true
		}
	}
	return CountryOption{}, false
}

// LookupCity finds a catalog city by token and returns it with its country.
func LookupCity(c City) (CityOption, Country, bool) {
	for _, country := range catalog {
		for _, city := range country.Cities {
			if city.City == c {
				return city, country.Country, true
			}
		}
	}
	return CityOption{}, "", false
}

// CitiesOf returns the cities of a country, nil for unknown countries.
func CitiesOf(c Country) []CityOption {
	opt, ok := LookupCountry(c)
	if !ok {
		return nil
	}
	return opt.Cities
}

// WithCountry selects a country. A city that does not belong to it is cleared.
func (l Location) WithCountry(c Country) Location {
	l.Country = c
	if l.City != "" {
		if _, owner, ok := LookupCity(l.City); !ok || owner != c {
			l.City = ""
		}
	}
	return l
}

// WithCity selects a city. It is accepted only when it belongs to the selected country.
func (l Location) WithCity(c City) (Location, bool) {
	_, owner, ok := LookupCity(c)
	if !ok || l.Country == "" || owner != l.Country {
		return l, false
	}
	l.City = c
	return l, true
}
