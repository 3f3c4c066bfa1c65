package featuresource

import (
	port "github.com/district-compass/school-search-api/internal/ports/out/featuresource"
)

// DemoDistricts is a small Colorado-flavored dataset for the fixture backend,
// letting the service run end to end without upstream connectivity.
func DemoDistricts() []port.Feature {
	return []port.Feature{
		{Attributes: map[string]any{"OBJECTID": 1, "LEAID": "0803360", "NAME": "Denver County 1", "LCITY": "Denver", "LSTATE": "CO", "LAT": 39.7392, "LON": -104.9903}},
		{Attributes: map[string]any{"OBJECTID": 2, "LEAID": "0804800", "NAME": "Jefferson County R-1", "LCITY": "Golden", "LSTATE": "CO", "LAT": 39.7555, "LON": -105.2211}},
		{Attributes: map[string]any{"OBJECTID": 3, "LEAID": "0800001", "NAME": "Adams County 14", "LCITY": "Commerce City", "LSTATE": "CO", "LAT": 39.8083, "LON": -104.9342}},
		{Attributes: map[string]any{"OBJECTID": 4, "LEAID": "0806240", "NAME": "Mesa County Valley 51", "LCITY": "Grand Junction", "LSTATE": "CO", "LAT": 39.0639, "LON": -108.5506}},
	}
}

// DemoSchools pairs with DemoDistricts; LEAID values line up so district
// filtering works in the fixture backend.
func DemoSchools() []port.Feature {
	return []port.Feature{
		{Attributes: map[string]any{"OBJECTID": 1, "NCESSCH": "080336000706", "LEAID": "0803360", "NAME": "Lincoln Elementary School", "LCITY": "Denver", "LSTATE": "CO", "LAT": 39.7114, "LON": -104.9876}},
		{Attributes: map[string]any{"OBJECTID": 2, "NCESSCH": "080336001274", "LEAID": "0803360", "NAME": "East High School", "LCITY": "Denver", "LSTATE": "CO", "LAT": 39.7402, "LON": -104.9562}},
		{Attributes: map[string]any{"OBJECTID": 3, "NCESSCH": "080480000521", "LEAID": "0804800", "NAME": "Golden High School", "LCITY": "Golden", "LSTATE": "CO", "LAT": 39.7419, "LON": -105.2103}},
		{Attributes: map[string]any{"OBJECTID": 4, "NCESSCH": "080000100032", "LEAID": "0800001", "NAME": "Adams City High School", "LCITY": "Commerce City", "LSTATE": "CO", "LAT": 39.8244, "LON": -104.9201}},
		{Attributes: map[string]any{"OBJECTID": 5, "NCESSCH": "080624000891", "LEAID": "0806240", "NAME": "Grand Junction High School", "LCITY": "Grand Junction", "LSTATE": "CO", "LAT": 39.0786, "LON": -108.5593}},
	}
}
