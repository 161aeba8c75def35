package retropic

import (
	"database/sql"
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
	_ "github.com/mattn/go-sqlite3"
	"github.com/paich64/retropic/raster"
)

// Store caches encoded artifacts in a sqlite database. Blobs are zstd
// compressed and keyed by a hash of the source pixels and the Config.
type Store struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewStore opens or creates the database in file.
func NewStore(file string) (*Store, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS artifact (id INTEGER PRIMARY KEY NOT NULL, key TEXT NOT NULL UNIQUE, format INTEGER NOT NULL, data BLOB NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		db.Close()
		return nil, err
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, err
	}

	return &Store{
		db:  db,
		enc: enc,
		dec: dec,
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.dec.Close()
	if err := s.enc.Close(); err != nil {
		s.db.Close()
		return err
	}
	return s.db.Close()
}

// Key returns the cache key for encoding m with cfg.
func Key(m *raster.Image, cfg Config) (string, error) {
	size, err := cfg.size()
	if err != nil {
		return "", err
	}

	h := xxhash.New()

	var hdr [6]int64
	hdr[0], hdr[1] = int64(m.Width), int64(m.Height)
	hdr[2] = int64(cfg.Format)<<48 | int64(cfg.Algorithm)<<40 | int64(cfg.Mode)<<32 |
		int64(cfg.Sampling)<<24 | int64(cfg.Merge)<<16 | int64(cfg.Quantizer)<<8
	if cfg.Dither {
		hdr[2] |= 1
	}
	hdr[3] = int64(cfg.Epochs)
	hdr[4], hdr[5] = int64(size.X), int64(size.Y)
	if err := binary.Write(h, binary.LittleEndian, hdr); err != nil {
		return "", err
	}
	if err := binary.Write(h, binary.LittleEndian, cfg.Seed); err != nil {
		return "", err
	}
	h.Write(m.Pix)

	if cfg.Format == FormatPetscii {
		if cfg.Network != nil {
			b, err := cfg.Network.MarshalBinary()
			if err != nil {
				return "", err
			}
			h.Write(b)
		}
		if cfg.Charset != nil {
			h.Write(cfg.Charset[:])
		}
	}

	return fmt.Sprintf("%016X", h.Sum64()), nil
}

// Find returns the cached artifact bytes for key, or nil if there are none.
func (s *Store) Find(key string) ([]byte, error) {
	var data []byte
	switch err := s.db.QueryRow("SELECT data FROM artifact WHERE key = ?", key).Scan(&data); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		b, err := s.dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("retropic: corrupt artifact %s: %w", key, err)
		}
		return b, nil
	default:
		return nil, err
	}
}

// Add stores the artifact bytes b under key, replacing any previous entry.
func (s *Store) Add(key string, f Format, b []byte) error {
	if _, err := s.db.Exec("INSERT OR REPLACE INTO artifact (key, format, data) VALUES (?, ?, ?)", key, int(f), s.enc.EncodeAll(b, nil)); err != nil {
		return err
	}
	return nil
}

// Length returns the number of cached artifacts.
func (s *Store) Length() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM artifact").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
