// Package store keeps chunks in a sqlite database: one row per chunk with
// the block grid as a compressed column and everything else as JSON.
package store

import (
	"database/sql"
	"encoding/json"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/rmmh/worldshift/go/chunk"
)

var ErrNotFound = errors.New("chunk not found")

const schema = `CREATE TABLE IF NOT EXISTS chunks (
	cx INTEGER NOT NULL,
	cz INTEGER NOT NULL,
	version INTEGER NOT NULL,
	height INTEGER NOT NULL,
	grid BLOB NOT NULL,
	doc TEXT NOT NULL,
	PRIMARY KEY (cx, cz)
)`

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "creating schema in %s", path)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores c, replacing any chunk already at its coordinates.
func (s *Store) Put(chunkVersion int, c *chunk.Chunk, pal chunk.Palette) error {
	if c.Blocks == nil {
		return errors.Errorf("chunk %d,%d has no block grid", c.CX, c.CZ)
	}
	grid, err := encodeColumn(c.Blocks.Data)
	if err != nil {
		return errors.Wrapf(err, "encoding chunk %d,%d", c.CX, c.CZ)
	}
	d, err := NewDocument(c, pal)
	if err != nil {
		return err
	}
	d.Blocks = nil
	doc, err := json.Marshal(d)
	if err != nil {
		return errors.Wrapf(err, "encoding chunk %d,%d", c.CX, c.CZ)
	}
	_, err = s.db.Exec("INSERT OR REPLACE INTO chunks (cx, cz, version, height, grid, doc) VALUES (?, ?, ?, ?, ?, ?)",
		c.CX, c.CZ, chunkVersion, c.Blocks.Height, grid, string(doc))
	return errors.Wrapf(err, "storing chunk %d,%d", c.CX, c.CZ)
}

// Get returns the chunk at (cx, cz) and the chunk version it was stored with.
func (s *Store) Get(cx, cz int) (int, *chunk.Chunk, chunk.Palette, error) {
	var (
		version, height int
		grid            []byte
		doc             string
	)
	err := s.db.QueryRow("SELECT version, height, grid, doc FROM chunks WHERE cx=? AND cz=?", cx, cz).
		Scan(&version, &height, &grid, &doc)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil, nil, errors.Wrapf(ErrNotFound, "chunk %d,%d", cx, cz)
	} else if err != nil {
		return 0, nil, nil, errors.Wrapf(err, "loading chunk %d,%d", cx, cz)
	}

	var d Document
	if err := json.Unmarshal([]byte(doc), &d); err != nil {
		return 0, nil, nil, errors.Wrapf(err, "chunk %d,%d", cx, cz)
	}
	d.CX, d.CZ, d.Height = cx, cz, height
	if d.Blocks, err = decodeColumn(grid); err != nil {
		return 0, nil, nil, errors.Wrapf(err, "chunk %d,%d", cx, cz)
	}
	c, pal, err := d.Chunk()
	if err != nil {
		return 0, nil, nil, err
	}
	return version, c, pal, nil
}

// LoadChunk is Get without the version, for use as a neighbor source.
func (s *Store) LoadChunk(cx, cz int) (*chunk.Chunk, chunk.Palette, error) {
	_, c, pal, err := s.Get(cx, cz)
	return c, pal, err
}

// Coords lists every stored chunk, ordered by x then z.
func (s *Store) Coords() ([][2]int, error) {
	rows, err := s.db.Query("SELECT cx, cz FROM chunks ORDER BY cx, cz")
	if err != nil {
		return nil, errors.Wrap(err, "listing chunks")
	}
	defer rows.Close()
	var out [][2]int
	for rows.Next() {
		var xz [2]int
		if err := rows.Scan(&xz[0], &xz[1]); err != nil {
			return nil, err
		}
		out = append(out, xz)
	}
	return out, rows.Err()
}
