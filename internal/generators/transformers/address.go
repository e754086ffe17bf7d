package transformers

import (
	"fmt"
	"strconv"
	"strings"
)

var DefaultStreetNames = []string{
	"Oak", "Maple", "Cedar", "Pine", "Elm", "Walnut", "Chestnut", "Willow",
	"Birch", "Aspen", "Juniper", "Magnolia", "Sycamore", "Laurel", "Hawthorn", "Poplar",
	"Hickory", "Cypress", "Spruce", "Alder", "Linden", "Mulberry", "Redwood", "Sequoia",
	"River", "Lake", "Hill", "Valley", "Meadow", "Prairie", "Sunset", "Sunrise",
	"Highland", "Lakeside", "Ridgeway", "Brook", "Garden", "Orchard", "Vine", "Forest",
	"Park", "Spring", "Summit", "Crescent", "Harbor", "Bay", "Canyon", "Creek",
}

var DefaultStreetTypes = []string{
	"St", "Ave", "Rd", "Blvd", "Ln", "Dr", "Ct", "Pl", "Way", "Ter",
}

var DefaultStreetDirections = []string{
	"N", "S", "E", "W", "NE", "NW", "SE", "SW",
}

var DefaultCityBases = []string{
	"Spring", "River", "Oak", "Clear", "Fair", "Green", "Lake", "Mill",
	"Stone", "Bridge", "Ash", "Elm", "Glen", "Grand", "High", "Iron",
	"King", "Long", "Maple", "North", "Pine", "Red", "Salt", "Sand",
	"Silver", "Snow", "South", "Summer", "White", "Winter", "Wood", "York",
}

var DefaultCitySuffixes = []string{
	"field", "ville", "ton", "borough", "port", "haven", "wood", "dale",
	"burg", "ford", "mouth", "side",
}

var DefaultStates = []string{
	"Alabama", "Alaska", "Arizona", "Arkansas", "California", "Colorado", "Connecticut", "Delaware",
	"Florida", "Georgia", "Hawaii", "Idaho", "Illinois", "Indiana", "Iowa", "Kansas",
	"Kentucky", "Louisiana", "Maine", "Maryland", "Massachusetts", "Michigan", "Minnesota", "Mississippi",
	"Missouri", "Montana", "Nebraska", "Nevada", "New Hampshire", "New Jersey", "New Mexico", "New York",
	"North Carolina", "North Dakota", "Ohio", "Oklahoma", "Oregon", "Pennsylvania", "Rhode Island", "South Carolina",
	"South Dakota", "Tennessee", "Texas", "Utah", "Vermont", "Virginia", "Washington", "West Virginia",
	"Wisconsin", "Wyoming",
}

var DefaultCountries = []string{
	"United States", "Canada", "Mexico", "Brazil", "Argentina", "United Kingdom", "Ireland", "France",
	"Germany", "Spain", "Portugal", "Italy", "Netherlands", "Belgium", "Switzerland", "Austria",
	"Sweden", "Norway", "Denmark", "Finland", "Poland", "Czechia", "Greece", "Turkey",
	"Japan", "South Korea", "China", "India", "Australia", "New Zealand", "South Africa", "Egypt",
}

// generateAddressLine builds a composite street address with cumulative
// seeding: every sub-component folds the previously chosen ones into its seed,
// so one original value always reproduces the same full line while two
// originals never share unrelated composites. When the composition exceeds the
// column limit it degrades in a fixed order: drop the direction, shorten the
// street name, hard truncate.
func generateAddressLine(req *Request) (string, error) {
	r, err := req.Rand()
	if err != nil {
		return "", err
	}
	number := strconv.Itoa(100 + r.Intn(9899))

	dirRand, err := req.SubRand(number)
	if err != nil {
		return "", err
	}
	var direction string
	if dirRand.chance(0.3) {
		direction = dirRand.pick(DefaultStreetDirections)
	}

	nameRand, err := req.SubRand(number, direction)
	if err != nil {
		return "", err
	}
	name := nameRand.pick(DefaultStreetNames)

	typeRand, err := req.SubRand(number, direction, name)
	if err != nil {
		return "", err
	}
	streetType := typeRand.pick(DefaultStreetTypes)

	compose := func(dir, nm string) string {
		parts := []string{number}
		if dir != "" {
			parts = append(parts, dir)
		}
		parts = append(parts, nm, streetType)
		return strings.Join(parts, " ")
	}

	res := compose(direction, name)
	if req.MaxLength > 0 && len(res) > req.MaxLength {
		res = compose("", name)
	}
	if req.MaxLength > 0 && len(res) > req.MaxLength {
		overflow := len(res) - req.MaxLength
		if overflow < len(name) {
			res = compose("", name[:len(name)-overflow])
		}
	}
	return fitLength(res, req.MaxLength), nil
}

// generateCity composes base+suffix and degrades the same way: suffix first,
// then the base, then a hard cut.
func generateCity(req *Request) (string, error) {
	r, err := req.Rand()
	if err != nil {
		return "", err
	}
	base := r.pick(DefaultCityBases)

	sub, err := req.SubRand(base)
	if err != nil {
		return "", err
	}
	suffix := sub.pick(DefaultCitySuffixes)

	res := base + suffix
	if req.MaxLength > 0 && len(res) > req.MaxLength {
		res = base
	}
	return fitLength(res, req.MaxLength), nil
}

func generateState(req *Request) (string, error) {
	r, err := req.Rand()
	if err != nil {
		return "", err
	}
	return fitLength(r.pick(DefaultStates), req.MaxLength), nil
}

func generateCountry(req *Request) (string, error) {
	r, err := req.Rand()
	if err != nil {
		return "", err
	}
	return fitLength(r.pick(DefaultCountries), req.MaxLength), nil
}

func generatePostCode(req *Request) (string, error) {
	r, err := req.Rand()
	if err != nil {
		return "", err
	}
	return fitLength(r.digits(5), req.MaxLength), nil
}

func generateGPSCoordinate(req *Request) (string, error) {
	r, err := req.Rand()
	if err != nil {
		return "", err
	}
	lat := r.Float64()*180 - 90
	lon := r.Float64()*360 - 180
	return fitLength(fmt.Sprintf("%.6f,%.6f", lat, lon), req.MaxLength), nil
}

func init() {
	register("AddressLine", &Definition{
		Generate:    generateAddressLine,
		CachePolicy: CacheNever,
		Description: "Replaces a street address with a cumulative-seeded composite.",
	})
	register("City", &Definition{
		Generate:    generateCity,
		CachePolicy: CacheAlways,
		Description: "Replaces a city name, degrading gracefully on tight columns.",
	})
	register("State", &Definition{
		Generate:    generateState,
		CachePolicy: CacheAlways,
		Description: "Replaces a state or province name.",
	})
	register("Country", &Definition{
		Generate:    generateCountry,
		CachePolicy: CacheAlways,
		Description: "Replaces a country name.",
	})
	register("PostCode", &Definition{
		Generate:    generatePostCode,
		CachePolicy: CacheAlways,
		Description: "Replaces a postal code with a deterministic five digit code.",
	})
	register("GPSCoordinate", &Definition{
		Generate:    generateGPSCoordinate,
		CachePolicy: CacheDefault,
		Description: "Replaces a coordinate pair with a deterministic lat,lon value.",
	})
}
