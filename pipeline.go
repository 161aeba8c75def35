package retropic

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	workers = 10
	maxSize = 64 << (10 * 2)
)

// OutputName returns the file an image is converted into, next to the
// source with the format name appended so pic.png and pic.jpg stay apart.
func OutputName(file string, f Format) string {
	return file + "." + f.String()
}

func isImage(file string) bool {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".png", ".jpg", ".jpeg", ".gif":
		return true
	}
	return false
}

func (c *Converter) findImages(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	info, err := os.Stat(base)
	if err != nil {
		return nil, nil, err
	}
	if !info.IsDir() {
		return nil, nil, errors.New("retropic: not a directory")
	}

	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Skip hidden files and directories
			if info.Name()[0] == '.' && file != base {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if !info.Mode().IsRegular() || !isImage(file) {
				return nil
			}

			if info.Size() > maxSize {
				c.logger.Printf("Skipping \"%s\", too large\n", file)
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("retropic: walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

func (c *Converter) imageWorker(ctx context.Context, in <-chan string, cfg Config) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			out := OutputName(file, cfg.Format)
			if err := c.ConvertFile(file, out, cfg); err != nil {
				errc <- err
				return
			}
			c.logger.Printf("Converted \"%s\" to \"%s\"\n", file, out)

			select {
			case <-ctx.Done():
				return
			default:
			}
		}
	}()
	return errc, nil
}

// waitForPipeline returns the first error, cancelling the rest of the
// pipeline and waiting for every stage to stop.
func waitForPipeline(cancel context.CancelFunc, errs ...<-chan error) error {
	var first error
	for err := range mergeErrors(errs...) {
		if err != nil && first == nil {
			first = err
			cancel()
		}
	}
	return first
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// ConvertDir converts every PNG, JPEG and GIF image below path. Each
// result is written next to its source, see OutputName. On error no
// conversion is left running when ConvertDir returns.
func (c *Converter) ConvertDir(path string, cfg Config) error {
	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := c.findImages(ctx, dir)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < workers; i++ {
		errc, err := c.imageWorker(ctx, files, cfg)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(cancelFunc, errcList...)
}
