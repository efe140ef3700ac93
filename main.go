package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/df07/go-schwarzschild-raytracer/pkg/catalog"
	"github.com/df07/go-schwarzschild-raytracer/pkg/core"
	"github.com/df07/go-schwarzschild-raytracer/pkg/output"
	"github.com/df07/go-schwarzschild-raytracer/pkg/renderer"
	"github.com/df07/go-schwarzschild-raytracer/pkg/scene"
)

const scenesDir = "scenes"

type options struct {
	sceneID    string
	configPath string
	radius     float64

	width, height int
	rays, steps   int
	step          float64
	adaptive      bool
	predict       bool
	workers       int
	seed          int64
	exposure      float64
	gamma         float64

	outDir     string
	hdr        bool
	retone     string
	tracePixel string
	traceOut   string
	storeKind  string
	dbPath     string
	help       bool

	set map[string]bool // Flags given explicitly on the command line
}

func newFlagSet(opts *options) *flag.FlagSet {
	fs := flag.NewFlagSet("schwarzschild", flag.ContinueOnError)
	fs.StringVar(&opts.sceneID, "scene", scene.PresetDisk, "Scene: a preset name or file:<name> from the scenes directory")
	fs.StringVar(&opts.configPath, "config", "", "Path to a JSON scene file (overrides -scene)")
	fs.Float64Var(&opts.radius, "radius", 0, "Horizon radius; the scene's lengths scale with it (0 = scene default)")
	fs.IntVar(&opts.width, "width", 0, "Image width in pixels")
	fs.IntVar(&opts.height, "height", 0, "Image height in pixels")
	fs.IntVar(&opts.rays, "rays", 0, "Sub-sample rays per pixel")
	fs.IntVar(&opts.steps, "steps", 0, "Integration step budget per ray")
	fs.Float64Var(&opts.step, "step", 0, "Nominal integration step size")
	fs.BoolVar(&opts.adaptive, "adaptive", true, "Shrink steps near the horizon and the poles")
	fs.BoolVar(&opts.predict, "predict", false, "Stop rays early once they are aimed into the horizon")
	fs.IntVar(&opts.workers, "workers", 0, "Number of parallel workers (0 = CPU count)")
	fs.Int64Var(&opts.seed, "seed", 0, "Seed of the per-tile random generators")
	fs.Float64Var(&opts.exposure, "exposure", 0, "Exposure applied after normalizing by the brightest channel")
	fs.Float64Var(&opts.gamma, "gamma", 0, "Gamma exponent of the tone map")
	fs.StringVar(&opts.outDir, "out", "output", "Output root directory")
	fs.BoolVar(&opts.hdr, "hdr", false, "Also write the linear radiance buffer next to the PNG")
	fs.StringVar(&opts.retone, "retone", "", "Tone-map a saved radiance buffer instead of rendering")
	fs.StringVar(&opts.tracePixel, "trace-pixel", "", "Trace the center ray of pixel x,y and log every step")
	fs.StringVar(&opts.traceOut, "trace-out", "", "Path of the step log written by -trace-pixel")
	fs.StringVar(&opts.storeKind, "store", "", "Keep a render history in this catalog backend (sqlite); empty keeps none")
	fs.StringVar(&opts.dbPath, "db-path", "renders.db", "SQLite catalog path")
	fs.BoolVar(&opts.help, "help", false, "Show help information")
	return fs
}

func parseFlags(args []string) (options, *flag.FlagSet, error) {
	var opts options
	fs := newFlagSet(&opts)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return options{}, fs, err
	}
	opts.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, fs, nil
}

// createScene resolves the requested scene, scales it to -radius, and applies
// explicit flag overrides. Overrides of lengths such as -step are absolute.
func createScene(opts options) (scene.Scene, error) {
	if opts.set["radius"] && opts.radius <= 0 {
		return scene.Scene{}, fmt.Errorf("radius must be positive, got %g", opts.radius)
	}

	var s scene.Scene
	var err error
	if opts.configPath != "" {
		s, err = scene.Load(opts.configPath)
		s.Rescale(opts.radius)
	} else {
		s, err = scene.Resolve(opts.sceneID, scenesDir, opts.radius)
	}
	if err != nil {
		return scene.Scene{}, err
	}

	if opts.set["width"] {
		s.Width = opts.width
	}
	if opts.set["height"] {
		s.Height = opts.height
	}
	if opts.set["rays"] {
		s.RaysPerPixel = opts.rays
	}
	if opts.set["steps"] {
		s.MaxSteps = opts.steps
	}
	if opts.set["step"] {
		s.StepSize = opts.step
	}
	if opts.set["adaptive"] {
		s.Adaptive = opts.adaptive
	}
	if opts.set["predict"] {
		s.PredictHorizon = opts.predict
	}
	if opts.set["seed"] {
		s.Seed = opts.seed
	}
	if opts.set["exposure"] {
		s.Exposure = opts.exposure
	}
	if opts.set["gamma"] {
		s.Gamma = opts.gamma
	}

	if err := s.Validate(); err != nil {
		return scene.Scene{}, err
	}
	return s, nil
}

// parsePixel parses "x,y"
func parsePixel(value string) (int, int, error) {
	xs, ys, ok := strings.Cut(value, ",")
	if !ok {
		return 0, 0, fmt.Errorf("pixel must be given as x,y, got %q", value)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid pixel x %q: %w", xs, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid pixel y %q: %w", ys, err)
	}
	return x, y, nil
}

// terminalProgress redraws a single status line
type terminalProgress struct{ w io.Writer }

func (p terminalProgress) Progress(percent float64) {
	fmt.Fprintf(p.w, "\rRendering... %3.0f%%", percent)
	if percent >= 100 {
		fmt.Fprintln(p.w)
	}
}

// lineProgress prints a line whenever progress enters a new ten percent band,
// for logs and pipes. Small images skip whole-percent values, so bands are
// compared rather than exact multiples of ten.
type lineProgress struct {
	w        io.Writer
	lastBand int
}

func newLineProgress(w io.Writer) *lineProgress {
	return &lineProgress{w: w, lastBand: -1}
}

func (p *lineProgress) Progress(percent float64) {
	band := int(percent) / 10
	if band <= p.lastBand {
		return
	}
	p.lastBand = band
	fmt.Fprintf(p.w, "Rendering... %.0f%%\n", percent)
}

func newProgressSink(f *os.File) core.ProgressSink {
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return terminalProgress{w: f}
	}
	return newLineProgress(f)
}

func printHelp(fs *flag.FlagSet) {
	fmt.Println("Schwarzschild Raytracer")
	fmt.Println("Usage: schwarzschild [options]")
	fmt.Println()
	fmt.Println("Options:")
	fs.SetOutput(os.Stdout)
	fs.PrintDefaults()
	fmt.Println()
	fmt.Println("Available scenes:")
	if response, err := scene.ListAllScenes(scenesDir); err == nil {
		for _, group := range response.Groups {
			for _, info := range group.Scenes {
				fmt.Printf("  %-20s %s\n", info.ID, info.Description)
			}
		}
	}
	fmt.Println()
	fmt.Println("Output will be saved to output/<scene>/render_<timestamp>.png")
}

func main() {
	opts, fs, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		printHelp(fs)
		os.Exit(2)
	}
	if opts.help {
		printHelp(fs)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	selected, err := createScene(opts)
	if err != nil {
		return err
	}

	switch {
	case opts.retone != "":
		return retone(selected, opts.retone)
	case opts.tracePixel != "":
		return tracePixel(selected, opts)
	default:
		return render(ctx, selected, opts)
	}
}

func render(ctx context.Context, selected scene.Scene, opts options) error {
	fmt.Println("Starting Schwarzschild Raytracer...")
	fmt.Printf("Using %s scene (%dx%d, horizon radius %g)...\n",
		selected.Name, selected.Width, selected.Height, selected.HorizonRadius)

	store, err := openCatalog(ctx, opts)
	if err != nil {
		return err
	}
	if store != nil {
		defer catalog.CloseIfSupported(store)
	}

	raytracer, err := selected.NewRaytracer(opts.workers, renderer.NewDefaultLogger())
	if err != nil {
		return err
	}

	buffer, stats, renderErr := raytracer.Render(ctx, newProgressSink(os.Stdout))
	if renderErr != nil && !errors.Is(renderErr, context.Canceled) {
		return renderErr
	}
	if renderErr != nil {
		fmt.Println("Interrupted; saving the partial image")
	}

	fmt.Printf("Traced %s rays in %v (%.1f steps per ray, longest %s)\n",
		humanize.Comma(int64(stats.TotalSamples)), stats.Duration.Round(time.Millisecond),
		stats.AverageSteps(), humanize.Comma(int64(stats.MaxStepsUsed)))
	for kind, hits := range stats.ObstacleHits {
		fmt.Printf("  %-18s %s\n", kind, humanize.Comma(int64(hits)))
	}

	path := output.RenderPath(opts.outDir, selected.Name, time.Now())
	img := renderer.ToneMap(buffer, selected.Exposure, selected.Gamma)
	if err := output.SavePNG(path, img); err != nil {
		return err
	}
	fmt.Printf("Render saved as %s (%s)\n", path, fileSize(path))

	if opts.hdr {
		hdrPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".srad"
		if err := output.SaveRadiance(hdrPath, buffer); err != nil {
			return err
		}
		fmt.Printf("Radiance saved as %s (%s)\n", hdrPath, fileSize(hdrPath))
	}

	if store != nil {
		sceneJSON, err := scene.MarshalScene(selected)
		if err != nil {
			return err
		}
		record := catalog.NewRecord(selected.Name, sceneJSON, selected.Width, selected.Height, stats, path, time.Now())
		if err := store.SaveRender(context.WithoutCancel(ctx), record); err != nil {
			return fmt.Errorf("failed to catalog render: %w", err)
		}
		fmt.Printf("Catalogued as %s\n", record.ID)
	}

	return renderErr
}

// openCatalog opens the render history named by -store, or returns nil when
// none was asked for. The in-memory backend is refused: it would be discarded
// as soon as the command exits.
func openCatalog(ctx context.Context, opts options) (catalog.Store, error) {
	switch opts.storeKind {
	case "":
		return nil, nil
	case catalog.BackendMemory:
		return nil, fmt.Errorf("the %s catalog does not outlive the command; use -store %s", catalog.BackendMemory, catalog.BackendSQLite)
	}
	return catalog.OpenStore(ctx, opts.storeKind, opts.dbPath)
}

func retone(selected scene.Scene, radiancePath string) error {
	buffer, err := output.LoadRadiance(radiancePath)
	if err != nil {
		return err
	}

	path := strings.TrimSuffix(radiancePath, filepath.Ext(radiancePath)) + "_retoned.png"
	img := renderer.ToneMap(buffer, selected.Exposure, selected.Gamma)
	if err := output.SavePNG(path, img); err != nil {
		return err
	}
	fmt.Printf("Tone-mapped %dx%d buffer (exposure %g, gamma %g) saved as %s\n",
		buffer.Width, buffer.Height, selected.Exposure, selected.Gamma, path)
	return nil
}

func tracePixel(selected scene.Scene, opts options) error {
	x, y, err := parsePixel(opts.tracePixel)
	if err != nil {
		return err
	}
	if x < 0 || x >= selected.Width || y < 0 || y >= selected.Height {
		return fmt.Errorf("pixel %d,%d lies outside the %dx%d image", x, y, selected.Width, selected.Height)
	}

	raytracer, err := selected.NewRaytracer(1, renderer.NewDefaultLogger())
	if err != nil {
		return err
	}

	path := opts.traceOut
	if path == "" {
		path = filepath.Join(opts.outDir, selected.Name, fmt.Sprintf("trace_%d_%d.jsonl.sz", x, y))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	pathLog := output.NewPathLog(file, raytracer.Space())
	initial, result := raytracer.TracePixel(x, y, pathLog)
	if err := pathLog.Close(); err != nil {
		return fmt.Errorf("failed to write step log: %w", err)
	}

	fmt.Printf("Pixel %d,%d: %s after %s steps\n", x, y, result.Outcome, humanize.Comma(int64(result.Steps)))
	if result.Collision != nil {
		p := result.Collision.Position
		fmt.Printf("  hit %s at r=%.4g theta=%.4f phi=%.4f\n", result.Collision.Obstacle, p[core.R], p[core.Theta], p[core.Phi])
	}
	drift := math.Abs(result.Final.NullNorm(raytracer.Space()) - initial.NullNorm(raytracer.Space()))
	fmt.Printf("  null-norm drift %.3g\n", drift)
	fmt.Printf("Step log saved as %s (%s steps)\n", path, humanize.Comma(int64(pathLog.Steps())))
	return nil
}

func fileSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "unknown size"
	}
	return humanize.Bytes(uint64(info.Size()))
}
