// worldstat is a CLI utility that compiles stepworld levels and reports
// what the renderer would do with them, without opening a window.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/stepworld/internal/assets"
	"github.com/Faultbox/stepworld/internal/config"
	"github.com/Faultbox/stepworld/internal/engine/camera"
	"github.com/Faultbox/stepworld/internal/engine/scene"
	"github.com/Faultbox/stepworld/internal/engine/shadow"
	"github.com/Faultbox/stepworld/internal/engine/terrain"
	"github.com/Faultbox/stepworld/internal/level"
	"github.com/Faultbox/stepworld/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "compile", "c":
		cmdCompile(args)
	case "frame", "f":
		cmdFrame(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`worldstat - stepworld level compiler and inspector

Usage:
  worldstat <command> [options]

Commands:
  info <level.yaml>               Show grid, sector and face statistics
  compile <level.yaml> [-cache d] Compile and write the world cache
  frame <level.yaml> [options]    Stream one frame from a camera pose

Examples:
  worldstat info levels/terrace.yaml
  worldstat compile -cache /tmp/swc levels/terrace.yaml
  worldstat frame -pos 4,6,4 -yaw 45 -pitch -30 levels/terrace.yaml`)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func loadWorld(path, cacheDir string) (*level.Level, *terrain.World) {
	lvl, err := level.LoadFile(path)
	if err != nil {
		fail("%v", err)
	}
	world, err := assets.NewManager(cacheDir).World(lvl)
	if err != nil {
		fail("%v", err)
	}
	return lvl, world
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	verbose := fs.Bool("v", false, "List every sector")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: worldstat info [-v] <level.yaml>")
		os.Exit(1)
	}

	start := time.Now()
	lvl, world := loadWorld(fs.Arg(0), "")
	elapsed := time.Since(start)

	st := world.Stats()
	fmt.Printf("Level:    %s\n", lvl.Name)
	fmt.Printf("Grid:     %d x %d (max height %d)\n", st.Width, st.Depth, st.MaxHeight)
	fmt.Printf("Sectors:  %d (%.2f cells each)\n", st.Sectors, float64(st.Width*st.Depth)/float64(st.Sectors))
	fmt.Printf("Faces:    %d (%d flat, %d walls)\n", st.Faces, st.FlatFaces, st.WallFaces)
	fmt.Printf("Edges:    %d\n", st.EdgeFaces)

	light, err := lvl.DynamicLight()
	if err != nil {
		fail("%v", err)
	}
	from, to := light.Extremes()
	casters := shadow.TrimForShadow(world.Mesh, world.Edges, from, to)
	total := st.Faces + st.EdgeFaces
	fmt.Printf("Casters:  %d of %d (%.1f%% trimmed)\n", len(casters), total,
		100*float64(total-len(casters))/float64(total))
	fmt.Printf("Compiled: %v\n", elapsed.Round(time.Microsecond))

	if *verbose {
		fmt.Println()
		fmt.Println("  #     origin   size     height  mat  faces")
		for i, s := range world.Sectors {
			fmt.Printf("  %-5d %3d,%-3d  %3dx%-3d  %3d-%-3d %3d  %d+%d\n", i,
				s.Origin[0], s.Origin[1], s.Size[0], s.Size[1],
				s.MinVisible, s.MaxVisible, s.Material, s.Faces.Start, s.Faces.Length)
		}
	}
}

func cmdCompile(args []string) {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	cacheDir := fs.String("cache", "", "Cache directory (default: next to the level)")
	debug := fs.Bool("debug", false, "Log cache decisions")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: worldstat compile [-cache dir] <level.yaml>")
		os.Exit(1)
	}

	logLevel := "info"
	if *debug {
		logLevel = "debug"
	}
	if err := logger.Init(logLevel, ""); err != nil {
		fail("%v", err)
	}
	defer logger.Sync()

	path := fs.Arg(0)
	dir := config.CacheConfig{Enabled: true, Dir: *cacheDir}.DirFor(path)
	m := assets.NewManager(dir)
	lvl, err := level.LoadFile(path)
	if err != nil {
		fail("%v", err)
	}
	if _, err := m.World(lvl); err != nil {
		fail("%v", err)
	}
	fmt.Printf("Wrote %s\n", m.CachePath(path))
}

func cmdFrame(args []string) {
	fs := flag.NewFlagSet("frame", flag.ExitOnError)
	pos := fs.String("pos", "", "Camera position x,y,z (default: level spawn)")
	yaw := fs.Float64("yaw", 0, "Yaw in degrees, 0 looks down +X")
	pitch := fs.Float64("pitch", 0, "Pitch in degrees")
	at := fs.Duration("t", 0, "Time into the light cycle")
	aspect := fs.Float64("aspect", 16.0/9.0, "Viewport aspect ratio")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: worldstat frame [options] <level.yaml>")
		os.Exit(1)
	}

	cfg := config.Default()
	lvl, world := loadWorld(fs.Arg(0), "")

	eye := lvl.SpawnPoint(world.Heights, cfg.Camera.EyeHeight)
	if *pos != "" {
		var x, y, z float32
		if _, err := fmt.Sscanf(*pos, "%g,%g,%g", &x, &y, &z); err != nil {
			fail("bad -pos %q: %v", *pos, err)
		}
		eye = mgl32.Vec3{x, y, z}
	}

	light, err := lvl.DynamicLight()
	if err != nil {
		fail("%v", err)
	}

	dev := &scene.MemoryDevice{}
	w, err := scene.New(world, light, shadow.CascadeConfig{
		NumCascades:       cfg.Shadow.NumCascades,
		Resolution:        cfg.Shadow.Resolution,
		SubFrustumScale:   cfg.Shadow.SubFrustumScale,
		LinearSplitWeight: cfg.Shadow.LinearSplitWeight,
		AverageFOV:        cfg.Camera.AverageFOV(),
	}, dev)
	if err != nil {
		fail("%v", err)
	}

	far := w.FarClip(cfg.Camera.JumpVelocity, cfg.Camera.Gravity, cfg.Camera.EyeHeight)
	cam := camera.New(eye, cfg.Camera.InitFOV, float32(*aspect), cfg.Camera.NearClip, far)
	cam.Rotate(mgl32.DegToRad(float32(*yaw)), mgl32.DegToRad(float32(*pitch)))
	cam.Update()

	f, err := w.Frame(cam, *at)
	if err != nil {
		fail("%v", err)
	}

	st := w.Stats()
	fmt.Printf("Camera:   %v dir %v far %.2f\n", cam.Pos, cam.Dir, far)
	fmt.Printf("Streamed: %d of %d faces at offset %d\n", f.Main.Count, st.Faces, f.Main.First)
	fmt.Printf("Shadow:   %d faces\n", f.Shadow.Count)
	fmt.Printf("Light:    %v\n", f.ToLight)
	fmt.Printf("Splits:   %v\n", f.Splits)
	for i, m := range f.LightViewProjection {
		// The ortho scale on X is 1/radius
		fmt.Printf("Cascade %d: radius %.3f\n", i, 1/m.Col(0).Vec3().Len())
	}
}
