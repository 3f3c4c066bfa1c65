package httpapi

import (
	"time"

	"github.com/oapi-codegen/nullable"

	"github.com/district-compass/school-search-api/internal/app/search"
	"github.com/district-compass/school-search-api/internal/domain"
	querylogport "github.com/district-compass/school-search-api/internal/ports/out/querylog"
)

// Wire shapes. Identity and display fields are always emitted (null when the
// upstream record lacks them); secondary address fields are omitted when
// absent.

type districtDTO struct {
	Leaid      *string  `json:"leaid"`
	Name       *string  `json:"name"`
	Street     *string  `json:"street,omitempty"`
	City       *string  `json:"city,omitempty"`
	State      *string  `json:"state,omitempty"`
	Zip        *string  `json:"zip,omitempty"`
	StateFIPS  *string  `json:"stateFips,omitempty"`
	County     *string  `json:"county,omitempty"`
	CountyFIPS *string  `json:"countyFips,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
}

type schoolDTO struct {
	Ncessch    *string  `json:"ncessch"`
	Leaid      *string  `json:"leaid"`
	Name       *string  `json:"name"`
	Street     *string  `json:"street,omitempty"`
	City       *string  `json:"city,omitempty"`
	State      *string  `json:"state,omitempty"`
	Zip        *string  `json:"zip,omitempty"`
	County     *string  `json:"county,omitempty"`
	CountyFIPS *string  `json:"countyFips,omitempty"`
	Locale     *string  `json:"locale,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
}

type markerDTO struct {
	ID        string  `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Label     string  `json:"label,omitempty"`
}

type pointDTO struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type mapViewDTO struct {
	Center  pointDTO    `json:"center"`
	Markers []markerDTO `json:"markers"`
}

type districtListResponse struct {
	Districts []districtDTO `json:"districts"`
}

type schoolListResponse struct {
	Schools []schoolDTO `json:"schools"`
}

type sessionCreatedResponse struct {
	SessionID string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type sessionStateResponse struct {
	SessionID string `json:"sessionId"`

	DistrictInput string `json:"districtInput"`
	SchoolInput   string `json:"schoolInput"`
	DistrictQuery string `json:"districtQuery"`
	SchoolQuery   string `json:"schoolQuery"`

	DistrictStatus string `json:"districtStatus"`
	SchoolStatus   string `json:"schoolStatus"`

	Districts []districtDTO `json:"districts"`
	Schools   []schoolDTO   `json:"schools"`

	SelectedDistrict *districtDTO `json:"selectedDistrict"`
	SelectedSchool   *schoolDTO   `json:"selectedSchool"`

	MapView *mapViewDTO `json:"mapView"`
}

type inputRequest struct {
	Text string `json:"text"`
}

type districtSelectionRequest struct {
	Leaid nullable.Nullable[string] `json:"leaid"`
}

type schoolSelectionRequest struct {
	Ncessch nullable.Nullable[string] `json:"ncessch"`
}

type mapConfigResponse struct {
	APIKey nullable.Nullable[string] `json:"apiKey"`
}

type queryLogEntryDTO struct {
	At          time.Time `json:"at"`
	Field       string    `json:"field"`
	Query       string    `json:"query"`
	DistrictID  string    `json:"districtId,omitempty"`
	ResultCount int       `json:"resultCount"`
	DurationMs  int64     `json:"durationMs"`
}

type queryLogResponse struct {
	Queries []queryLogEntryDTO `json:"queries"`
}

func districtFromDomain(d domain.District) districtDTO {
	return districtDTO{
		Leaid:      d.LEAID,
		Name:       d.Name,
		Street:     d.Street,
		City:       d.City,
		State:      d.State,
		Zip:        d.Zip,
		StateFIPS:  d.StateFIPS,
		County:     d.County,
		CountyFIPS: d.CountyFIPS,
		Latitude:   d.Latitude,
		Longitude:  d.Longitude,
	}
}

func schoolFromDomain(s domain.School) schoolDTO {
	return schoolDTO{
		Ncessch:    s.NCESSCH,
		Leaid:      s.LEAID,
		Name:       s.Name,
		Street:     s.Street,
		City:       s.City,
		State:      s.State,
		Zip:        s.Zip,
		County:     s.County,
		CountyFIPS: s.CountyFIPS,
		Locale:     s.Locale,
		Latitude:   s.Latitude,
		Longitude:  s.Longitude,
	}
}

func districtsFromDomain(ds []domain.District) []districtDTO {
	out := make([]districtDTO, 0, len(ds))
	for _, d := range ds {
		out = append(out, districtFromDomain(d))
	}
	return out
}

func schoolsFromDomain(ss []domain.School) []schoolDTO {
	out := make([]schoolDTO, 0, len(ss))
	for _, s := range ss {
		out = append(out, schoolFromDomain(s))
	}
	return out
}

func sessionStateFromDomain(id string, st search.State) sessionStateResponse {
	out := sessionStateResponse{
		SessionID:      id,
		DistrictInput:  st.DistrictInput,
		SchoolInput:    st.SchoolInput,
		DistrictQuery:  st.DistrictQuery,
		SchoolQuery:    st.SchoolQuery,
		DistrictStatus: string(st.DistrictStatus),
		SchoolStatus:   string(st.SchoolStatus),
		Districts:      districtsFromDomain(st.Districts),
		Schools:        schoolsFromDomain(st.Schools),
	}
	if st.SelectedDistrict != nil {
		d := districtFromDomain(*st.SelectedDistrict)
		out.SelectedDistrict = &d
	}
	if st.SelectedSchool != nil {
		s := schoolFromDomain(*st.SelectedSchool)
		out.SelectedSchool = &s
	}
	if st.MapView != nil {
		mv := mapViewDTO{
			Center:  pointDTO{Latitude: st.MapView.Center.Y, Longitude: st.MapView.Center.X},
			Markers: make([]markerDTO, 0, len(st.MapView.Markers)),
		}
		for _, m := range st.MapView.Markers {
			mv.Markers = append(mv.Markers, markerDTO{
				ID:        m.ID,
				Latitude:  m.Latitude,
				Longitude: m.Longitude,
				Label:     m.Label,
			})
		}
		out.MapView = &mv
	}
	return out
}

func queryLogEntriesFromDomain(es []querylogport.Entry) []queryLogEntryDTO {
	out := make([]queryLogEntryDTO, 0, len(es))
	for _, e := range es {
		out = append(out, queryLogEntryDTO{
			At:          e.At,
			Field:       string(e.Field),
			Query:       e.Query,
			DistrictID:  e.DistrictID,
			ResultCount: e.ResultCount,
			DurationMs:  e.Duration.Milliseconds(),
		})
	}
	return out
}
