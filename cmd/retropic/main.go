package main

import (
	"io/ioutil"
	"log"
	"os"
	"path/filepath"

	"github.com/paich64/retropic"
	"github.com/paich64/retropic/c64"
	"github.com/paich64/retropic/dither"
	"github.com/paich64/retropic/glyph"
	"github.com/paich64/retropic/rgb"
	"github.com/urfave/cli/v2"
)

const defaultDB = "retropic.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

var convertFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   retropic.FormatStandard.String(),
		Usage:   "target format: standard, ham, hires, multicolor or petscii",
	},
	&cli.StringFlag{
		Name:  "size",
		Usage: "Amiga screen size: 320x256, 320x512 or 640x512, default depends on format",
	},
	&cli.BoolFlag{
		Name:  "dither",
		Value: true,
		Usage: "diffuse quantization error",
	},
	&cli.StringFlag{
		Name:  "kernel",
		Value: dither.AlgorithmFloydSteinberg.String(),
		Usage: "error diffusion kernel: fs or atkinson",
	},
	&cli.StringFlag{
		Name:  "metric",
		Value: rgb.Perceptual.String(),
		Usage: "color distance: euclidean or perceptual",
	},
	&cli.StringFlag{
		Name:  "quantizer",
		Value: retropic.QuantizeSOM.String(),
		Usage: "Amiga palette: som, median-cut or uniform",
	},
	&cli.IntFlag{
		Name:  "epochs",
		Value: retropic.DefaultEpochs,
		Usage: "palette training rounds",
	},
	&cli.Int64Flag{
		Name:  "seed",
		Usage: "palette training seed",
	},
	&cli.StringFlag{
		Name:  "sampling",
		Value: c64.SampleAll.String(),
		Usage: "hires cell sampling: all, outer or checker",
	},
	&cli.StringFlag{
		Name:  "merge",
		Value: c64.MergeAverage.String(),
		Usage: "multicolor pixel merge: average or brightest",
	},
	&cli.StringFlag{
		Name:      "network",
		TakesFile: true,
		Usage:     "glyph network weights for petscii",
	},
	&cli.StringFlag{
		Name:      "charset",
		TakesFile: true,
		Usage:     "2048 byte charset for petscii",
	},
}

func loadNetwork(file string) (*glyph.Network, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return glyph.LoadNetwork(f)
}

func loadCharset(file string) (*glyph.Charset, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return glyph.LoadCharset(f)
}

func config(c *cli.Context) (retropic.Config, error) {
	format, err := retropic.ParseFormat(c.String("format"))
	if err != nil {
		return retropic.Config{}, err
	}
	cfg := retropic.DefaultConfig(format)
	cfg.Dither = c.Bool("dither")
	cfg.Epochs = c.Int("epochs")
	cfg.Seed = c.Int64("seed")

	if c.IsSet("size") {
		if cfg.Size, err = retropic.ParseSize(c.String("size")); err != nil {
			return cfg, err
		}
	}

	if cfg.Algorithm, err = dither.ParseAlgorithm(c.String("kernel")); err != nil {
		return cfg, err
	}
	if cfg.Mode, err = rgb.ParseMode(c.String("metric")); err != nil {
		return cfg, err
	}
	if cfg.Quantizer, err = retropic.ParseQuantizer(c.String("quantizer")); err != nil {
		return cfg, err
	}
	if cfg.Sampling, err = c64.ParseSampling(c.String("sampling")); err != nil {
		return cfg, err
	}
	if cfg.Merge, err = c64.ParseMerge(c.String("merge")); err != nil {
		return cfg, err
	}

	if format == retropic.FormatPetscii {
		if cfg.Network, err = loadNetwork(c.String("network")); err != nil {
			return cfg, err
		}
		if cfg.Charset, err = loadCharset(c.String("charset")); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

func converter(c *cli.Context) (*retropic.Converter, error) {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return retropic.New(c.String("db"), logger)
}

func main() {
	app := cli.NewApp()

	app.Name = "retropic"
	app.Usage = "Amiga and Commodore 64 image converter"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"RETROPIC_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to cache database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "convert",
			Usage:       "Convert a single image",
			Description: "Writes the raw hardware data of the converted image to OUT.",
			ArgsUsage:   "FILE OUT",
			Flags:       convertFlags,
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				cfg, err := config(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				r, err := converter(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer r.Close()

				if err := r.ConvertFile(c.Args().Get(0), c.Args().Get(1), cfg); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "batch",
			Usage:       "Convert every image below a directory",
			Description: "Each image is written next to its source with the format name as extension.",
			ArgsUsage:   "DIRECTORY",
			Flags:       convertFlags,
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				cfg, err := config(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				r, err := converter(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer r.Close()

				if err := r.ConvertDir(c.Args().First(), cfg); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
