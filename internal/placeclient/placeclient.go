// Package placeclient implements a placestore.Loader backed by an HTTP
// place database, the external collaborator spec.md §1 describes as
// supplying named places (cities, passes, peaks, villages) for a chunk
// of territory. Grounded on the teacher's internal/httputil (HTTPClient
// abstraction, mockable without a live server) and internal/monitoring
// for the per-request diagnostic logging the teacher uses throughout.
package placeclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/fellridge/routebook/internal/geo"
	"github.com/fellridge/routebook/internal/httputil"
	"github.com/fellridge/routebook/internal/monitoring"
	"github.com/fellridge/routebook/internal/points"
	"github.com/fellridge/routebook/internal/tile"
	"github.com/fellridge/routebook/internal/track"
)

// Client fetches one chunk's worth of places over HTTP. It satisfies
// placestore.Loader (which this package does not import, to keep
// placestore free of an HTTP dependency; wiring happens where both are
// imported, e.g. cmd/routebook). Loader results feed placestore.Store
// on a cache miss without a later re-projection pass, so Client
// projects every point itself at load time with the same projector the
// track was built against.
type Client struct {
	HTTP      httputil.HTTPClient
	BaseURL   string
	Projector track.Projector
}

// New builds a Client. If client is nil, http.DefaultClient is wrapped
// via httputil.NewStandardClient.
func New(baseURL string, client httputil.HTTPClient, projector track.Projector) *Client {
	if client == nil {
		client = httputil.NewStandardClient(nil)
	}
	return &Client{HTTP: client, BaseURL: baseURL, Projector: projector}
}

// wirePlace is the JSON shape the place database returns per place: a
// geodetic point, a string kind, and the free-form tags spec.md §3
// recognizes (name, population, description).
type wirePlace struct {
	Lon         float64 `json:"lon"`
	Lat         float64 `json:"lat"`
	Elevation   float64 `json:"elevation"`
	Kind        string  `json:"kind"`
	Name        string  `json:"name"`
	Population  *int    `json:"population,omitempty"`
	Description string  `json:"description,omitempty"`
}

var kindByWire = map[string]points.Kind{
	"city":          points.KindCity,
	"town":          points.KindTown,
	"village":       points.KindVillage,
	"hamlet":        points.KindHamlet,
	"mountain_pass": points.KindMountainPass,
	"peak":          points.KindPeak,
}

// LoadChunk fetches every place within chunk's 100km square from
// BaseURL/chunks/{x}/{y}, the REST shape the original source's place
// database API uses. A 4xx/5xx response or malformed body logs through
// monitoring.Logf and returns the error; placestore.Store's Fetch
// treats that as an empty chunk, never surfacing it further.
func (c *Client) LoadChunk(ctx context.Context, chunk tile.Chunk) ([]*points.InputPoint, error) {
	url := fmt.Sprintf("%s/chunks/%d/%d", c.BaseURL, chunk.X, chunk.Y)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("placeclient: build request: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		monitoring.Logf("placeclient: chunk (%d,%d) request failed: %v", chunk.X, chunk.Y, err)
		return nil, fmt.Errorf("placeclient: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		monitoring.Logf("placeclient: chunk (%d,%d) status %d", chunk.X, chunk.Y, resp.StatusCode)
		return nil, fmt.Errorf("placeclient: unexpected status %d", resp.StatusCode)
	}

	var wire []wirePlace
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		monitoring.Logf("placeclient: chunk (%d,%d) decode failed: %v", chunk.X, chunk.Y, err)
		return nil, fmt.Errorf("placeclient: decode response: %w", err)
	}

	out := make([]*points.InputPoint, 0, len(wire))
	for _, w := range wire {
		kind, ok := kindByWire[w.Kind]
		if !ok {
			monitoring.Logf("placeclient: chunk (%d,%d) unknown kind %q, skipping", chunk.X, chunk.Y, w.Kind)
			continue
		}
		wgs := geo.NewWGS84(w.Lon, w.Lat, w.Elevation)
		p := points.New(wgs, c.Projector.Project(wgs), kind)
		p.Tags["name"] = w.Name
		if w.Description != "" {
			p.Tags["description"] = w.Description
		}
		if w.Population != nil {
			p.Tags["population"] = strconv.Itoa(*w.Population)
		}
		out = append(out, p)
	}
	return out, nil
}
