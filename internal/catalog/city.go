// Package catalog resolves per-city price catalogs with fallback to the reference city.
package catalog

// City is a supported city slug.
type City string

const (
	Pune      City = "pune"
	Mumbai    City = "mumbai"
	Bengaluru City = "bengaluru"
)

// Reference is the authoritative city used when another city's catalog is
// missing or not ready. Its own catalog is never readiness-checked.
const Reference = Pune

// Cities lists every supported city in validation order.
var Cities = []City{Pune, Mumbai, Bengaluru}

var cityNames = map[City]string{
	Pune:      "Pune",
	Mumbai:    "Mumbai",
	Bengaluru: "Bengaluru",
}

// ParseCity maps an already-normalised slug to a supported City.
func ParseCity(slug string) (City, bool) {
	c := City(slug)
	_, ok := cityNames[c]
	return c, ok
}

// Name returns the display name of the city, or the slug for unknown values.
func (c City) Name() string {
	if n, ok := cityNames[c]; ok {
		return n
	}
	return string(c)
}

// CatalogFile is the file name of a city's catalog document.
func CatalogFile(c City) string {
	return string(c) + ".json"
}

// AddonsFile is the file name of a city's add-on list.
func AddonsFile(c City) string {
	return "addons." + string(c) + ".json"
}
