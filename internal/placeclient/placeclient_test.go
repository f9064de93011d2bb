package placeclient

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fellridge/routebook/internal/geo"
	"github.com/fellridge/routebook/internal/httputil"
	"github.com/fellridge/routebook/internal/points"
	"github.com/fellridge/routebook/internal/tile"
)

func TestLoadChunkDecodesKnownKinds(t *testing.T) {
	mock := httputil.NewMockHTTPClient()
	mock.AddResponse(http.StatusOK, `[
		{"lon": 6.1, "lat": 45.2, "elevation": 1200, "kind": "village", "name": "Les Contamines", "population": 3200},
		{"lon": 6.2, "lat": 45.3, "elevation": 2400, "kind": "mountain_pass", "name": "Col du Bonhomme"}
	]`)

	c := New("http://places.example", mock, geo.WebMercator{})
	out, err := c.LoadChunk(context.Background(), tile.Chunk{X: 1, Y: 2})
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, points.KindVillage, out[0].Kind)
	name, _ := out[0].Name()
	assert.Equal(t, "Les Contamines", name)
	pop, ok := out[0].Population()
	require.True(t, ok)
	assert.Equal(t, 3200, pop)
	assert.NotZero(t, out[0].Planar)

	assert.Equal(t, points.KindMountainPass, out[1].Kind)

	require.Equal(t, 1, mock.RequestCount())
	assert.Equal(t, "http://places.example/chunks/1/2", mock.GetRequest(0).URL.String())
}

func TestLoadChunkSkipsUnknownKind(t *testing.T) {
	mock := httputil.NewMockHTTPClient()
	mock.AddResponse(http.StatusOK, `[{"lon": 1, "lat": 2, "kind": "spaceport", "name": "??"}]`)

	c := New("http://places.example", mock, geo.WebMercator{})
	out, err := c.LoadChunk(context.Background(), tile.Chunk{X: 0, Y: 0})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestLoadChunkErrorsOnNon200(t *testing.T) {
	mock := httputil.NewMockHTTPClient()
	mock.AddResponse(http.StatusInternalServerError, "boom")

	c := New("http://places.example", mock, geo.WebMercator{})
	_, err := c.LoadChunk(context.Background(), tile.Chunk{X: 0, Y: 0})
	assert.Error(t, err)
}

func TestLoadChunkErrorsOnTransportFailure(t *testing.T) {
	mock := httputil.NewMockHTTPClient()
	mock.AddErrorResponse(errors.New("connection refused"))

	c := New("http://places.example", mock, geo.WebMercator{})
	_, err := c.LoadChunk(context.Background(), tile.Chunk{X: 0, Y: 0})
	assert.Error(t, err)
}
