package retropic

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/ioutil"
	"log"
	"os"

	"github.com/paich64/retropic/raster"
	"golang.org/x/image/draw"
)

// Converter converts image files, caching the results.
type Converter struct {
	store  *Store
	logger *log.Logger
}

// New returns a Converter caching into the database in dbFile. A nil
// logger discards all output.
func New(dbFile string, logger *log.Logger) (*Converter, error) {
	store, err := NewStore(dbFile)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(ioutil.Discard, "", 0)
	}
	return &Converter{
		store:  store,
		logger: logger,
	}, nil
}

// Close closes the cache database.
func (c *Converter) Close() error {
	return c.store.Close()
}

// Fit scales src to size, ignoring the aspect ratio.
func Fit(src image.Image, size image.Point) *raster.Image {
	if src.Bounds().Size() == size {
		return raster.FromImage(src)
	}

	dst := image.NewRGBA(image.Rectangle{Max: size})
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return raster.FromImage(dst)
}

// Convert returns the artifact bytes for m, using the cache when possible.
func (c *Converter) Convert(m *raster.Image, cfg Config) ([]byte, error) {
	key, err := Key(m, cfg)
	if err != nil {
		return nil, err
	}

	b, err := c.store.Find(key)
	if err != nil {
		return nil, err
	}
	if b != nil {
		c.logger.Printf("Cache hit for %s with key \"%s\"\n", cfg.Format, key)
		return b, nil
	}

	a, err := Encode(m, cfg)
	if err != nil {
		return nil, err
	}
	if b, err = a.MarshalBinary(); err != nil {
		return nil, err
	}

	if err := c.store.Add(key, cfg.Format, b); err != nil {
		return nil, err
	}
	return b, nil
}

// ConvertReader decodes a PNG, JPEG or GIF image from r, fits it to the
// format and returns the artifact bytes.
func (c *Converter) ConvertReader(r io.Reader, cfg Config) ([]byte, error) {
	size, err := cfg.size()
	if err != nil {
		return nil, err
	}

	src, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return c.Convert(Fit(src, size), cfg)
}

// ConvertFile converts the image in file in and writes the artifact bytes
// to file out.
func (c *Converter) ConvertFile(in, out string, cfg Config) error {
	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()

	b, err := c.ConvertReader(f, cfg)
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}

	return os.WriteFile(out, b, 0o644)
}
