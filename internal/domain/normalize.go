package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// The two upstream catalogs expose the same logical fields under different
// attribute names. Each canonical field is resolved by trying its alias list
// in order and taking the first present, non-empty value. Adding support for a
// new upstream schema means extending these lists, nothing else.
var schoolAliases = map[string][]string{
	"ncessch":    {"NCESSCH", "NCES_SCH", "SCHOOLID"},
	"leaid":      {"LEAID", "DISTRICTID", "LEA_ID"},
	"name":       {"NAME", "SCH_NAME", "SCHOOL_NAME", "SCHNAM"},
	"street":     {"LSTREET1", "LSTREET", "STREET", "ADDRESS"},
	"city":       {"LCITY", "CITY", "MCITY"},
	"state":      {"LSTATE", "STATE", "STABR", "MSTATE"},
	"zip":        {"LZIP", "ZIP", "MZIP"},
	"county":     {"NMCNTY", "CNTY_NAME", "COUNTY"},
	"countyFIPS": {"CNTY", "CNTY15", "COUNTYFIPS"},
	"locale":     {"ULOCALE", "LOCALE", "LOCALE15"},
	"lat":        {"LAT", "LATCOD", "LATITUDE"},
	"lon":        {"LON", "LONGCOD", "LONGITUDE"},
	"objectid":   {"OBJECTID", "FID"},
}

var districtAliases = map[string][]string{
	"leaid":      {"LEAID", "GEOID", "LEA_ID"},
	"name":       {"NAME", "LEA_NAME", "DISTRICT_NAME"},
	"street":     {"LSTREET1", "LSTREET", "STREET"},
	"city":       {"LCITY", "CITY"},
	"state":      {"LSTATE", "STATE", "STABR"},
	"zip":        {"LZIP", "ZIP"},
	"stateFIPS":  {"STFIP", "FIPST", "STATEFP"},
	"county":     {"NMCNTY", "CONAME", "COUNTY"},
	"countyFIPS": {"CNTY", "CONUM", "COUNTYFIPS"},
	"lat":        {"LAT", "LATCOD", "LATITUDE"},
	"lon":        {"LON", "LONGCOD", "LONGITUDE"},
	"objectid":   {"OBJECTID", "FID"},
}

// NormalizeSchool maps one raw feature from either upstream source into the
// canonical School shape. A missing or malformed attribute yields a nil field;
// this function never fails. When lat/lon attributes are absent, the supplied
// geometry point (y=lat, x=lon) is used instead.
func NormalizeSchool(attrs map[string]any, geom *Point) School {
	s := School{
		NCESSCH:    attrString(attrs, schoolAliases["ncessch"]),
		LEAID:      attrString(attrs, schoolAliases["leaid"]),
		Name:       attrString(attrs, schoolAliases["name"]),
		Street:     attrString(attrs, schoolAliases["street"]),
		City:       attrString(attrs, schoolAliases["city"]),
		State:      attrString(attrs, schoolAliases["state"]),
		Zip:        attrString(attrs, schoolAliases["zip"]),
		County:     attrString(attrs, schoolAliases["county"]),
		CountyFIPS: attrString(attrs, schoolAliases["countyFIPS"]),
		Locale:     attrString(attrs, schoolAliases["locale"]),
		Latitude:   attrFloat(attrs, schoolAliases["lat"]),
		Longitude:  attrFloat(attrs, schoolAliases["lon"]),
		ObjectID:   attrInt(attrs, schoolAliases["objectid"]),
	}
	if geom != nil {
		if s.Latitude == nil {
			y := geom.Y
			s.Latitude = &y
		}
		if s.Longitude == nil {
			x := geom.X
			s.Longitude = &x
		}
	}
	return s
}

// NormalizeDistrict maps one raw feature into the canonical District shape.
// When the source carries no name field, a label is synthesized from the
// district identifier so the record is still presentable.
func NormalizeDistrict(attrs map[string]any) District {
	d := District{
		LEAID:      attrString(attrs, districtAliases["leaid"]),
		Name:       attrString(attrs, districtAliases["name"]),
		Street:     attrString(attrs, districtAliases["street"]),
		City:       attrString(attrs, districtAliases["city"]),
		State:      attrString(attrs, districtAliases["state"]),
		Zip:        attrString(attrs, districtAliases["zip"]),
		StateFIPS:  attrString(attrs, districtAliases["stateFIPS"]),
		County:     attrString(attrs, districtAliases["county"]),
		CountyFIPS: attrString(attrs, districtAliases["countyFIPS"]),
		Latitude:   attrFloat(attrs, districtAliases["lat"]),
		Longitude:  attrFloat(attrs, districtAliases["lon"]),
		ObjectID:   attrInt(attrs, districtAliases["objectid"]),
	}
	if d.Name == nil && d.LEAID != nil {
		label := "District " + *d.LEAID
		d.Name = &label
	}
	return d
}

// attrString resolves the first present, non-empty string-convertible value.
// Numeric identifiers (LEAID, ZIP, FIPS codes) frequently arrive as numbers.
func attrString(attrs map[string]any, keys []string) *string {
	for _, k := range keys {
		v, ok := attrs[k]
		if !ok || v == nil {
			continue
		}
		var s string
		switch t := v.(type) {
		case string:
			s = strings.TrimSpace(t)
		case json.Number:
			s = t.String()
		case float64:
			s = strconv.FormatFloat(t, 'f', -1, 64)
		case int:
			s = strconv.Itoa(t)
		case int64:
			s = strconv.FormatInt(t, 10)
		default:
			continue
		}
		if s != "" {
			return &s
		}
	}
	return nil
}

func attrFloat(attrs map[string]any, keys []string) *float64 {
	for _, k := range keys {
		v, ok := attrs[k]
		if !ok || v == nil {
			continue
		}
		var f float64
		switch t := v.(type) {
		case float64:
			f = t
		case int:
			f = float64(t)
		case int64:
			f = float64(t)
		case json.Number:
			parsed, err := t.Float64()
			if err != nil {
				continue
			}
			f = parsed
		case string:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
			if err != nil {
				continue
			}
			f = parsed
		default:
			continue
		}
		return &f
	}
	return nil
}

func attrInt(attrs map[string]any, keys []string) *int {
	if f := attrFloat(attrs, keys); f != nil {
		n := int(*f)
		return &n
	}
	return nil
}
