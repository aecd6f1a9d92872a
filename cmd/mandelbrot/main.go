// Command mandelbrot renders the Mandelbrot set tile by tile.
//
// By default it shows the image in the terminal while it is being
// rendered: finished tiles appear as soon as a worker publishes them, and
// the total rendering time is reported once every tile is done.
//
// With --headless it renders without a display, prints a summary and a
// BLAKE3 digest of the final image, and optionally writes a PNG. The
// digest is independent of the worker count, which makes it a quick
// check that parallel rendering is deterministic.
//
// Usage:
//
//	mandelbrot [flags]
//
// Job settings come from an optional YAML file (--config); flags override
// the file.
package main

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"github.com/zeebo/blake3"

	"github.com/gogpu/fractal"
	"github.com/gogpu/fractal/internal/config"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// options holds the command-line settings that are not part of the job.
type options struct {
	configPath  string
	headless    bool
	output      string
	logLevel    string
	logFile     string
	listRegions bool
}

func run(args []string) error {
	var opts options
	flagSet := pflag.NewFlagSet("mandelbrot", pflag.ContinueOnError)
	flagSet.StringVar(&opts.configPath, "config", "", "path to a YAML job file")
	flagSet.BoolVar(&opts.headless, "headless", false, "render without a display and print a digest of the image")
	flagSet.StringVarP(&opts.output, "output", "o", "", "write the final image to this PNG file")
	flagSet.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	flagSet.StringVar(&opts.logFile, "log-file", "", "write JSON log records to this file")
	flagSet.BoolVar(&opts.listRegions, "list-regions", false, "list the preset regions and exit")
	addJobFlags(flagSet)

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}

	if opts.listRegions {
		for _, name := range fractal.RegionNames() {
			r, _ := fractal.Region(name)
			fmt.Printf("%-18s %v\n", name, r)
		}
		return nil
	}

	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := applyJobFlags(flagSet, cfg); err != nil {
		return err
	}

	closeLog, err := setupLogging(opts)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	j, err := newJob(cfg)
	if err != nil {
		return err
	}
	if err := j.start(ctx); err != nil {
		return err
	}

	if opts.headless {
		<-j.scheduler.Done()
	} else {
		program := tea.NewProgram(newModel(j), tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return err
		}
		// Leaving the display stops the job; wait for the workers to wind down.
		j.scheduler.Cancel()
		<-j.scheduler.Done()
	}

	fmt.Println(j.summary())
	if opts.headless {
		sum := blake3.Sum256(j.canvas.Snapshot().Pix)
		fmt.Printf("blake3 %x\n", sum)
	}
	if opts.output != "" {
		if err := writePNG(opts.output, j); err != nil {
			return err
		}
	}
	return j.scheduler.Report().Err()
}

// addJobFlags registers the flags that override job settings.
func addJobFlags(flagSet *pflag.FlagSet) {
	def := config.Default()
	flagSet.String("region", def.Region, "preset region: "+strings.Join(fractal.RegionNames(), ", "))
	flagSet.Int("width", def.Width, "image width in pixels")
	flagSet.Int("height", def.Height, "image height in pixels")
	flagSet.Int("tile-width", def.Tile.Width, "tile width in pixels")
	flagSet.Int("tile-height", def.Tile.Height, "tile height in pixels")
	flagSet.IntP("workers", "w", def.Workers, "number of rendering workers")
	flagSet.Int("threshold", def.Threshold, "iteration limit of the escape test")
	flagSet.String("palette", def.Palette.Kind, "palette kind: ultra, gradient or mapping")
	flagSet.StringSlice("colors", nil, "hex colors for the gradient and mapping palettes")
}

// applyJobFlags copies explicitly set job flags into cfg and revalidates it.
func applyJobFlags(flagSet *pflag.FlagSet, cfg *config.Config) error {
	var err error
	set := func(name string, apply func() error) {
		if err == nil && flagSet.Changed(name) {
			err = apply()
		}
	}
	intFlag := func(name string, dst *int) {
		set(name, func() (e error) { *dst, e = flagSet.GetInt(name); return })
	}

	set("region", func() (e error) {
		cfg.Plane = nil
		cfg.Region, e = flagSet.GetString("region")
		return
	})
	intFlag("width", &cfg.Width)
	intFlag("height", &cfg.Height)
	intFlag("tile-width", &cfg.Tile.Width)
	intFlag("tile-height", &cfg.Tile.Height)
	intFlag("workers", &cfg.Workers)
	intFlag("threshold", &cfg.Threshold)
	set("palette", func() (e error) { cfg.Palette.Kind, e = flagSet.GetString("palette"); return })
	set("colors", func() (e error) { cfg.Palette.Colors, e = flagSet.GetStringSlice("colors"); return })
	if err != nil {
		return err
	}
	return cfg.Validate()
}

// setupLogging installs the package logger. The display owns the
// terminal, so without --log-file the interactive mode logs nothing.
func setupLogging(opts options) (func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(opts.logLevel)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", opts.logLevel, err)
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	switch {
	case opts.logFile != "":
		file, err := os.Create(opts.logFile)
		if err != nil {
			return nil, fmt.Errorf("cannot open log file %s: %w", opts.logFile, err)
		}
		fractal.SetLogger(slog.New(slog.NewJSONHandler(file, handlerOpts)))
		return func() { file.Close() }, nil
	case opts.headless:
		fractal.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, handlerOpts)))
	default:
		fractal.SetLogger(nil)
	}
	return func() {}, nil
}

func writePNG(path string, j *job) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(file, j.canvas.Snapshot()); err != nil {
		file.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return file.Close()
}
