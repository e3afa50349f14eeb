// Command flowarc renders origin-destination trips as 3D flow arcs into a
// PNG image.
//
// Trips are read from a CSV file or URL with start_lng, start_lat, end_lng
// and end_lat columns. Stations are drawn as cubes. Without -trips a
// reference scene of random points, axes and a cube is drawn instead.
//
//	flowarc -trips trips.csv -stations stations.csv -output flows.png
//	flowarc -trips trips.csv -start-color '#ff000020' -end-color '#00ff00'
//
// With -gpu noop the frame is also recorded through the wgpu HAL on the
// noop backend, which checks pipeline creation and uploads without a GPU.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"os/signal"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"
	"golang.org/x/text/language"

	"github.com/gogpu/flowarc"
	"github.com/gogpu/flowarc/canvas"
	"github.com/gogpu/flowarc/geo"
	"github.com/gogpu/flowarc/gpu"
	"github.com/gogpu/flowarc/mat4"
	"github.com/gogpu/flowarc/render"
	"github.com/gogpu/flowarc/scene"
	"github.com/gogpu/flowarc/shader"
	"github.com/gogpu/flowarc/trips"
)

type config struct {
	trips        string
	stations     string
	segments     int
	exaggeration float64
	width        int
	height       int
	output       string
	heading      float64
	tilt         float64
	lang         string
	startColor   flowarc.RGBA
	endColor     flowarc.RGBA
	background   flowarc.RGBA
	wireframe    bool
	backend      string
	glsl         bool
	verbose      bool
}

func defaultConfig() config {
	return config{
		startColor: flowarc.DefaultStartColor,
		endColor:   flowarc.DefaultEndColor,
		background: flowarc.Black,
	}
}

// hexColor is a flag.Value for colors written as #rgb, #rgba, #rrggbb or
// #rrggbbaa.
type hexColor struct{ c *flowarc.RGBA }

func (h hexColor) String() string {
	if h.c == nil {
		return ""
	}
	return h.c.Hex()
}

func (h hexColor) Set(s string) error {
	c, err := flowarc.ParseHex(s)
	if err != nil {
		return err
	}
	*h.c = c
	return nil
}

func main() {
	cfg := defaultConfig()
	flag.StringVar(&cfg.trips, "trips", "", "trip CSV file or URL")
	flag.StringVar(&cfg.stations, "stations", "", "station CSV file or URL")
	flag.IntVar(&cfg.segments, "segments", flowarc.DefaultSegments, "points per arc")
	flag.Float64Var(&cfg.exaggeration, "exaggeration", flowarc.DefaultExaggeration, "arc height relative to half the chord")
	flag.IntVar(&cfg.width, "width", 1024, "image width")
	flag.IntVar(&cfg.height, "height", 768, "image height")
	flag.StringVar(&cfg.output, "output", "flowarc.png", "output file")
	flag.Float64Var(&cfg.heading, "heading", 0, "camera heading in degrees")
	flag.Float64Var(&cfg.tilt, "tilt", 45, "camera tilt in degrees from straight down")
	flag.StringVar(&cfg.lang, "lang", "en", "legend language")
	flag.Var(hexColor{&cfg.startColor}, "start-color", "arc color at the trip origin")
	flag.Var(hexColor{&cfg.endColor}, "end-color", "arc color at the trip destination")
	flag.Var(hexColor{&cfg.background}, "background", "background color")
	flag.BoolVar(&cfg.wireframe, "wireframe", false, "draw the demo cube as a wireframe")
	flag.StringVar(&cfg.backend, "gpu", "", `also record the frame on a HAL backend ("noop")`)
	flag.BoolVar(&cfg.glsl, "glsl", false, "print the WebGL shaders and exit")
	flag.BoolVar(&cfg.verbose, "v", false, "verbose logging")
	flag.Parse()

	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	flowarc.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.glsl {
		if err := printGLSL(os.Stdout); err != nil {
			log.Fatalf("Failed to translate shaders: %v", err)
		}
		return
	}
	if err := run(ctx, cfg); err != nil {
		log.Fatalf("flowarc: %v", err)
	}
	log.Printf("Flows saved to %s (%dx%d)\n", cfg.output, cfg.width, cfg.height)
}

func printGLSL(w io.Writer) error {
	prog, err := shader.CompileFlow()
	if err != nil {
		return err
	}
	gl, err := prog.TranslateWebGL()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "// vertex\n%s\n// fragment\n%s", gl.Vertex, gl.Fragment)
	return err
}

// sceneData is what one frame draws.
type sceneData struct {
	nodes  []*render.Node
	frame  render.FrameConfig
	target mat4.Vec3
	radius float32
	stats  canvas.Stats
	ramp   bool
}

func run(ctx context.Context, cfg config) (err error) {
	tag, err := language.Parse(cfg.lang)
	if err != nil {
		return fmt.Errorf("invalid -lang %q: %w", cfg.lang, err)
	}

	var sd *sceneData
	if cfg.trips == "" {
		sd = demoScene(cfg)
	} else {
		sd, err = flowScene(ctx, cfg)
	}
	if err != nil {
		return err
	}

	cam := render.OrbitCamera(sd.target, sd.radius*2.5, float32(cfg.heading), float32(cfg.tilt), sd.frame, cfg.width, cfg.height)
	var (
		host render.Host = &render.Headless{Cam: cam}
		dev  *gpu.Host
	)
	switch cfg.backend {
	case "":
	case "noop":
		dev, err = gpu.Open(noop.API{}, cam)
		if err != nil {
			return err
		}
		defer dev.Close()
		host = dev
	default:
		return fmt.Errorf("unknown -gpu backend %q", cfg.backend)
	}

	hooks := make([]render.Hook, len(sd.nodes))
	for i, n := range sd.nodes {
		hooks[i] = n
	}
	release, err := watch(ctx, host, hooks)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := release(); err == nil {
			err = rerr
		}
	}()

	c := canvas.New(cfg.width, cfg.height)
	c.Clear(cfg.background.Color())
	if err := render.RenderFrame(host, sd.frame, c, hooks...); err != nil {
		return err
	}
	if dev != nil {
		if err := drawGPU(dev, cfg, sd, hooks); err != nil {
			return err
		}
	}

	if err := c.Legend(sd.stats, tag, flowarc.White.Color()); err != nil {
		return err
	}
	if sd.ramp {
		w := min(160, cfg.width-16)
		c.Ramp(image.Rect(8, cfg.height-16, 8+w, cfg.height-8), cfg.startColor, cfg.endColor)
	}
	return c.SavePNG(cfg.output)
}

// watch runs render.Watch over hooks and returns once they are set up.
// release closes the ready channel and waits for Watch to dispose them.
func watch(ctx context.Context, host render.Host, hooks []render.Hook) (release func() error, err error) {
	ready := make(chan bool)
	done := make(chan error, 1)
	go func() { done <- render.Watch(ctx, ready, host, hooks...) }()

	// Watch receives the second value only after the first Setup pass.
	for i := 0; i < 2; i++ {
		select {
		case ready <- true:
		case err := <-done:
			if err == nil {
				err = errors.New("render loop stopped during setup")
			}
			return nil, err
		}
	}
	return func() error {
		close(ready)
		return <-done
	}, nil
}

// drawGPU records the frame into a HAL target on dev and logs its stats.
func drawGPU(dev *gpu.Host, cfg config, sd *sceneData, hooks []render.Hook) error {
	t, err := gpu.NewTarget(dev, cfg.width, cfg.height)
	if err != nil {
		return err
	}
	defer t.Destroy()

	bg := cfg.background
	if err := t.Begin(gputypes.Color{R: bg.R, G: bg.G, B: bg.B, A: bg.A}); err != nil {
		return err
	}
	if err := render.RenderFrame(dev, sd.frame, t, hooks...); err != nil {
		return err
	}
	if err := t.Submit(); err != nil {
		return err
	}
	st := t.Stats()
	flowarc.Logger().Info("flowarc: gpu frame submitted",
		"adapter", dev.AdapterInfo().Name,
		"draws", st.Draws,
		"elements", st.Elements,
		"uploaded", st.Uploaded)
	return nil
}

// flowScene loads trips (and optionally stations) and builds the arc and
// station nodes. Map coordinates are re-centered on the trips' bounds and
// scaled so the larger extent spans two units.
func flowScene(ctx context.Context, cfg config) (*sceneData, error) {
	set, err := trips.Load(ctx, cfg.trips)
	if err != nil {
		return nil, err
	}
	if len(set.Trips) == 0 {
		return nil, fmt.Errorf("%s: no usable trips", cfg.trips)
	}
	batch, err := flowarc.GenerateArcs(
		set.Pairs(cfg.startColor, cfg.endColor),
		flowarc.WithSegments(cfg.segments),
		flowarc.WithExaggeration(cfg.exaggeration),
	)
	if err != nil {
		return nil, err
	}

	bounds := set.Bounds()
	center := bounds.Center()
	space := flowarc.LocalOrigin{Origin: flowarc.V3(center.X, center.Y, 0)}
	w, h := bounds.Size()
	extent := math.Max(w, h)
	if extent == 0 {
		extent = 1
	}
	s := float32(2 / extent)

	sd := &sceneData{
		frame:  render.DefaultFrameConfig().WithScale(s, s, s),
		radius: 1,
		stats:  canvas.Stats{Trips: len(set.Trips), Skipped: len(set.Skipped)},
		ramp:   true,
	}

	// Stations go first so arcs behind a cube fail the depth test.
	if cfg.stations != "" {
		stations, err := trips.LoadStations(ctx, cfg.stations)
		if err != nil {
			return nil, err
		}
		lngLats := make([]flowarc.Vec2, len(stations))
		for i, st := range stations {
			lngLats[i] = flowarc.V2(st.Lng, st.Lat)
		}
		cubes := scene.Cubes(float32(extent/80), lngLats, space)
		sd.stats.Stations = len(stations)
		sd.stats.Vertices += cubes.VertexCount()
		sd.nodes = append(sd.nodes, render.NewNode("stations", cubes, gputypes.PrimitiveTopologyTriangleList))
	}

	arcs := batch.Buffers(space)
	sd.stats.Vertices += arcs.VertexCount()
	sd.nodes = append(sd.nodes, render.NewNode("arcs", arcs, gputypes.PrimitiveTopologyLineStrip))

	flowarc.Logger().Info("flowarc: scene built",
		"trips", len(set.Trips),
		"skipped", len(set.Skipped),
		"stations", sd.stats.Stations,
		"center", geoLabel(center))
	return sd, nil
}

func geoLabel(p flowarc.Vec2) string {
	lng, lat := geo.XYToLngLat(p.X, p.Y)
	return fmt.Sprintf("%.5f,%.5f", lng, lat)
}

// demoScene draws random points, the axes and a cube.
func demoScene(cfg config) *sceneData {
	points := scene.RandomPoints(rand.New(rand.NewPCG(1, 2)), 500)
	axes := scene.AxisMarkers(1.2)
	mesh := scene.Cube(1)

	cube := render.NewNode("cube", mesh.VertexData(), gputypes.PrimitiveTopologyTriangleList)
	if cfg.wireframe {
		cube = render.NewNode("cube", mesh.Wireframe(), gputypes.PrimitiveTopologyLineStrip)
	}
	return &sceneData{
		nodes: []*render.Node{
			cube,
			render.NewNode("points", points, gputypes.PrimitiveTopologyPointList),
			render.NewNode("axes", axes, gputypes.PrimitiveTopologyLineStrip),
		},
		frame:  render.DefaultFrameConfig(),
		radius: 1.5,
		stats:  canvas.Stats{Vertices: points.VertexCount() + axes.VertexCount() + mesh.VertexCount()},
	}
}
