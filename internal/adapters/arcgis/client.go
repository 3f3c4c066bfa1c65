package arcgis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/district-compass/school-search-api/internal/domain"
	"github.com/district-compass/school-search-api/internal/platform/config"
	"github.com/district-compass/school-search-api/internal/platform/metrics"
	"github.com/district-compass/school-search-api/internal/ports/out/featuresource"
)

// Client queries one layer of an ArcGIS-style feature service and implements
// featuresource.Source. Filter expressions are built from the layer's
// configured field names, so one client type covers both catalogs despite
// their schema differences.
type Client struct {
	name          string
	url           string
	nameField     string
	districtField string

	httpClient *http.Client
	log        *slog.Logger
}

func New(cfg config.LayerConfig, httpClient *http.Client, log *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		name:          cfg.Name,
		url:           cfg.URL,
		nameField:     cfg.NameField,
		districtField: cfg.DistrictField,
		httpClient:    httpClient,
		log:           log,
	}
}

func (c *Client) Name() string { return c.name }

// envelope is the feature-service response shape. Services report their own
// failures inside a 200 body via the error member.
type envelope struct {
	Features []struct {
		Attributes map[string]any `json:"attributes"`
		Geometry   *struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
		} `json:"geometry"`
	} `json:"features"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) Query(ctx context.Context, q featuresource.Query) ([]featuresource.Feature, error) {
	params := url.Values{}
	params.Set("f", "json")
	params.Set("outFields", "*")
	params.Set("returnGeometry", "true")
	params.Set("where", c.whereClause(q))
	if q.MaxRecords > 0 {
		params.Set("resultRecordCount", strconv.Itoa(q.MaxRecords))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	t0 := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(t0, "error")
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.observe(t0, "error")
		return nil, fmt.Errorf("%s: http %d", c.name, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		c.observe(t0, "error")
		return nil, fmt.Errorf("%s: decode: %w", c.name, err)
	}
	if env.Error != nil {
		c.observe(t0, "error")
		return nil, fmt.Errorf("%s: upstream error %d: %s", c.name, env.Error.Code, env.Error.Message)
	}

	out := make([]featuresource.Feature, 0, len(env.Features))
	for _, f := range env.Features {
		feat := featuresource.Feature{Attributes: f.Attributes}
		if f.Geometry != nil {
			feat.Geometry = &domain.Point{X: f.Geometry.X, Y: f.Geometry.Y}
		}
		out = append(out, feat)
	}

	c.observe(t0, "ok")
	c.log.Debug("source query", "source", c.name, "where", c.whereClause(q), "features", len(out))
	return out, nil
}

// whereClause builds a case-insensitive name-contains filter, ANDed with an
// exact district match when requested. Single quotes are doubled per the
// service's SQL-92 quoting rules.
func (c *Client) whereClause(q featuresource.Query) string {
	var parts []string
	if text := strings.TrimSpace(q.NameContains); text != "" {
		parts = append(parts, fmt.Sprintf("UPPER(%s) LIKE '%%%s%%'", c.nameField, escape(strings.ToUpper(text))))
	}
	if q.DistrictID != "" && c.districtField != "" {
		parts = append(parts, fmt.Sprintf("%s = '%s'", c.districtField, escape(q.DistrictID)))
	}
	if len(parts) == 0 {
		return "1=1"
	}
	return strings.Join(parts, " AND ")
}

func (c *Client) observe(t0 time.Time, outcome string) {
	metrics.SourceRequestsTotal.WithLabelValues(c.name, outcome).Inc()
	metrics.SourceRequestDuration.WithLabelValues(c.name).Observe(time.Since(t0).Seconds())
}

func escape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
