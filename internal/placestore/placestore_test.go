package placestore

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fellridge/routebook/internal/geo"
	"github.com/fellridge/routebook/internal/points"
	"github.com/fellridge/routebook/internal/tile"
)

func openTestStore(t *testing.T, loader Loader) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "places.db")
	s, err := Open(path, loader, geo.WebMercator{})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func chunkTiles(chunk tile.Chunk) *tile.Set {
	set := tile.NewSet()
	set.Add(tile.Tile{X: chunk.X * tile.ChunkWidth, Y: chunk.Y * tile.ChunkWidth})
	return set
}

func TestFetch_CacheMissLoadsAndCaches(t *testing.T) {
	var calls int32
	loader := LoaderFunc(func(ctx context.Context, chunk tile.Chunk) ([]*points.InputPoint, error) {
		atomic.AddInt32(&calls, 1)
		wgs := geo.NewWGS84NoElevation(6.1, 45.2)
		p := points.New(wgs, geo.WebMercator{}.Project(wgs), points.KindVillage)
		p.Tags["name"] = "Les Contamines"
		return []*points.InputPoint{p}, nil
	})

	s := openTestStore(t, loader)
	tiles := chunkTiles(tile.Chunk{X: 0, Y: 0})

	out := s.Fetch(context.Background(), tiles)
	require.Len(t, out, 1)
	assert.Equal(t, "Les Contamines", out[0].Tags["name"])
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	// Second fetch of the same chunk must hit the cache, not the loader.
	out = s.Fetch(context.Background(), tiles)
	require.Len(t, out, 1)
	assert.Equal(t, "Les Contamines", out[0].Tags["name"])
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestFetch_CacheHitSkipsLoader(t *testing.T) {
	loader := LoaderFunc(func(ctx context.Context, chunk tile.Chunk) ([]*points.InputPoint, error) {
		wgs := geo.NewWGS84NoElevation(6.2, 45.3)
		return []*points.InputPoint{points.New(wgs, geo.WebMercator{}.Project(wgs), points.KindPeak)}, nil
	})

	s := openTestStore(t, loader)
	tiles := chunkTiles(tile.Chunk{X: 2, Y: -1})

	first := s.Fetch(context.Background(), tiles)
	require.Len(t, first, 1)

	// Swap in a loader that would fail if called again; the second fetch
	// must come entirely from the chunk_cache row written above.
	s.loader = LoaderFunc(func(ctx context.Context, chunk tile.Chunk) ([]*points.InputPoint, error) {
		return nil, errors.New("loader should not be called on a cache hit")
	})

	second := s.Fetch(context.Background(), tiles)
	require.Len(t, second, 1)
	assert.Equal(t, points.KindPeak, second[0].Kind)
}

func TestFetch_LoaderErrorYieldsEmptyChunk(t *testing.T) {
	loader := LoaderFunc(func(ctx context.Context, chunk tile.Chunk) ([]*points.InputPoint, error) {
		return nil, errors.New("upstream place API unreachable")
	})

	s := openTestStore(t, loader)
	tiles := chunkTiles(tile.Chunk{X: 5, Y: 5})

	out := s.Fetch(context.Background(), tiles)
	assert.Empty(t, out)
}

func TestFetch_MultipleChunksAggregate(t *testing.T) {
	loader := LoaderFunc(func(ctx context.Context, chunk tile.Chunk) ([]*points.InputPoint, error) {
		wgs := geo.NewWGS84NoElevation(float64(chunk.X), float64(chunk.Y))
		return []*points.InputPoint{points.New(wgs, geo.WebMercator{}.Project(wgs), points.KindTown)}, nil
	})

	s := openTestStore(t, loader)
	set := tile.NewSet()
	set.Add(tile.Tile{X: 0, Y: 0})
	set.Add(tile.Tile{X: tile.ChunkWidth * 3, Y: 0})

	out := s.Fetch(context.Background(), set)
	assert.Len(t, out, 2)
}

func TestEncodeDecodePoints_RoundTrip(t *testing.T) {
	wgs := geo.NewWGS84(6.05, 45.88, 1230)
	p := points.New(wgs, geo.WebMercator{}.Project(wgs), points.KindMountainPass)
	p.Tags["name"] = "Col du Bonhomme"
	p.Tags["population"] = "0"

	blob, err := encodePoints([]*points.InputPoint{p})
	require.NoError(t, err)

	out, err := decodePoints(blob, geo.WebMercator{})
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.Equal(t, wgs.Lon, out[0].WGS84.Lon)
	assert.Equal(t, wgs.Lat, out[0].WGS84.Lat)
	assert.Equal(t, wgs.Elevation, out[0].WGS84.Elevation)
	assert.True(t, out[0].WGS84.HasElevation)
	assert.Equal(t, points.KindMountainPass, out[0].Kind)
	assert.Equal(t, "Col du Bonhomme", out[0].Tags["name"])
	assert.InDelta(t, p.Planar.X, out[0].Planar.X, 1e-6)
	assert.InDelta(t, p.Planar.Y, out[0].Planar.Y, 1e-6)
}
