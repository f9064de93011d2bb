// Package placestore implements spec.md §4.3's place store: an external
// collaborator that supplies named place points (cities, passes, peaks...)
// for the tile set a track covers, cached per-chunk so repeated renders of
// the same track never re-fetch. Grounded on the teacher's internal/db
// package (db.go, migrate.go): a modernc.org/sqlite-backed *sql.DB, WAL
// pragmas, and golang-migrate/v4 schema migrations via an iofs source.
//
// A per-chunk load failure is logged and treated as an empty chunk
// (spec.md §7's PlaceStoreMiss) — it is never surfaced to the caller.
package placestore

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/fellridge/routebook/internal/geo"
	"github.com/fellridge/routebook/internal/monitoring"
	"github.com/fellridge/routebook/internal/points"
	"github.com/fellridge/routebook/internal/tile"
	"github.com/fellridge/routebook/internal/track"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Loader fetches every place point within one chunk from the upstream
// source (an HTTP API, a local extract, whatever the embedding layer
// wires up). The core never sees this boundary directly (spec.md §5:
// "the one unavoidable asynchronous boundary is the place-store fetch").
type Loader interface {
	LoadChunk(ctx context.Context, chunk tile.Chunk) ([]*points.InputPoint, error)
}

// LoaderFunc adapts a plain function to Loader.
type LoaderFunc func(ctx context.Context, chunk tile.Chunk) ([]*points.InputPoint, error)

func (f LoaderFunc) LoadChunk(ctx context.Context, chunk tile.Chunk) ([]*points.InputPoint, error) {
	return f(ctx, chunk)
}

// Store is the sqlite-backed chunk cache fronting a Loader.
type Store struct {
	db        *sql.DB
	loader    Loader
	projector track.Projector
}

// Open opens (or creates) the cache database at path, applies the
// teacher's pragma set, and runs pending migrations. projector is used
// to recompute Planar coordinates for points read back from the cache,
// which stores only WGS84 coordinates; points fresh from the loader are
// returned as the loader built them.
func Open(path string, loader Loader, projector track.Projector) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("placestore: open %q: %w", path, err)
	}
	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, loader: loader, projector: projector}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("placestore: pragma %q: %w", p, err)
		}
	}
	return nil
}

func migrateUp(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("placestore: iofs source: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("placestore: sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("placestore: migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("placestore: migrate up: %w", err)
	}
	return nil
}

// TilesForBBox returns the set of chunk coordinates covering tiles
// (spec.md §4.3's tiles_for_bbox, generalized to an arbitrary tile set
// rather than a single bbox since callers already hold the track's
// enlarged tile.Set from internal/tile).
func TilesForBBox(tiles *tile.Set) []tile.Chunk {
	seen := make(map[tile.Chunk]struct{})
	var out []tile.Chunk
	for _, t := range tiles.Tiles() {
		c := t.ChunkCoord()
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

// Fetch returns every place point cached or loadable for the chunks
// covering tiles. A chunk whose cache read or upstream load fails is
// logged and contributes no points — spec.md §7's PlaceStoreMiss, never
// surfaced as an error.
func (s *Store) Fetch(ctx context.Context, tiles *tile.Set) []*points.InputPoint {
	var out []*points.InputPoint
	for _, chunk := range TilesForBBox(tiles) {
		pts, err := s.fetchChunk(ctx, chunk)
		if err != nil {
			monitoring.Logf("placestore: chunk (%d,%d) miss: %v", chunk.X, chunk.Y, err)
			continue
		}
		out = append(out, pts...)
	}
	return out
}

func (s *Store) fetchChunk(ctx context.Context, chunk tile.Chunk) ([]*points.InputPoint, error) {
	if pts, ok, err := s.readCache(chunk); err != nil {
		return nil, err
	} else if ok {
		return pts, nil
	}

	pts, err := s.loader.LoadChunk(ctx, chunk)
	if err != nil {
		return nil, fmt.Errorf("load chunk: %w", err)
	}
	if err := s.writeCache(chunk, pts); err != nil {
		monitoring.Logf("placestore: chunk (%d,%d) cache write failed: %v", chunk.X, chunk.Y, err)
	}
	return pts, nil
}

func (s *Store) readCache(chunk tile.Chunk) ([]*points.InputPoint, bool, error) {
	var blob []byte
	err := s.db.QueryRow(
		`SELECT points FROM chunk_cache WHERE chunk_x = ? AND chunk_y = ?`,
		chunk.X, chunk.Y,
	).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	pts, err := decodePoints(blob, s.projector)
	if err != nil {
		return nil, false, err
	}
	return pts, true, nil
}

func (s *Store) writeCache(chunk tile.Chunk, pts []*points.InputPoint) error {
	blob, err := encodePoints(pts)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO chunk_cache (chunk_x, chunk_y, fetched_at, points) VALUES (?, ?, ?, ?)
		 ON CONFLICT (chunk_x, chunk_y) DO UPDATE SET fetched_at = excluded.fetched_at, points = excluded.points`,
		chunk.X, chunk.Y, time.Now().Unix(), blob,
	)
	return err
}

// wirePoint is the JSON-serializable shape of an InputPoint's place
// fields: WGS84 coordinate and tags. Planar is recomputed on read since
// the projector (and hence the planar frame) is chosen per-track, not
// fixed at write time.
type wirePoint struct {
	Lon, Lat, Ele float64
	HasElevation  bool
	Kind          points.Kind
	Tags          points.Tags
}

func encodePoints(pts []*points.InputPoint) ([]byte, error) {
	wire := make([]wirePoint, len(pts))
	for i, p := range pts {
		wire[i] = wirePoint{
			Lon: p.WGS84.Lon, Lat: p.WGS84.Lat, Ele: p.WGS84.Elevation,
			HasElevation: p.WGS84.HasElevation, Kind: p.Kind, Tags: p.Tags,
		}
	}
	return json.Marshal(wire)
}

func decodePoints(blob []byte, projector track.Projector) ([]*points.InputPoint, error) {
	var wire []wirePoint
	if err := json.Unmarshal(blob, &wire); err != nil {
		return nil, err
	}
	out := make([]*points.InputPoint, len(wire))
	for i, w := range wire {
		wgs := geo.WGS84{Lon: w.Lon, Lat: w.Lat, Elevation: w.Ele, HasElevation: w.HasElevation}
		planar := projector.Project(wgs)
		p := points.New(wgs, planar, w.Kind)
		for k, v := range w.Tags {
			p.Tags[k] = v
		}
		out[i] = p
	}
	return out, nil
}

// fsMigrations exposes the embedded migrations directory for callers
// that want to run them through a different tool (e.g. a CLI "migrate"
// subcommand), matching the teacher's DevMode/getMigrationsFS split.
func fsMigrations() (fs.FS, error) {
	return fs.Sub(migrationsFS, "migrations")
}
