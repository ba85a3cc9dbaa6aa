// plytool is a headless CLI for inspecting and transforming ASCII PLY meshes.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Faultbox/plyview/internal/config"
	"github.com/Faultbox/plyview/internal/lighting"
	"github.com/Faultbox/plyview/internal/logger"
	"github.com/Faultbox/plyview/internal/mesh"
	"github.com/Faultbox/plyview/internal/scene"
	"github.com/Faultbox/plyview/pkg/formats"
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
	case "light":
		cmdLight(args)
	case "rescale":
		cmdRescale(args)
	case "invert":
		cmdInvert(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`plytool - ASCII PLY mesh utility

Usage:
  plytool <command> [options] <file.ply>

Commands:
  info <file.ply>                    Show header, attributes and bounds
  light [options] <file.ply>         Bake software lighting into vertex colors
  rescale [-o out.ply] <file.ply>    Fit the mesh into [-1, 1]
  invert [-o out.ply] <file.ply>     Flip normals and face winding

Options for light:
  -o out.ply        Output file (default stdout)
  -config file      Take light and material from a viewer config file
  -yaw, -pitch      View angles in degrees (default 20, 30)
  -distance         Viewer distance (default 5)
  -linear           Linear attenuation coefficient
  -quadratic        Quadratic attenuation coefficient
  -invert           Invert normals before lighting
  -no-rescale       Keep original coordinates

All commands accept -v for debug logging.

Examples:
  plytool info bunny.ply
  plytool light -o lit.ply -yaw 45 bunny.ply
  plytool rescale -o unit.ply dragon.ply`)
}

// parse parses a command's flags and sets up logging.
func parse(fs *flag.FlagSet, args []string) {
	verbose := fs.Bool("v", false, "Debug logging")
	fs.Parse(args)

	level := "warn"
	if *verbose {
		level = "debug"
	}
	if err := logger.Init(level, ""); err != nil {
		fatalf("Logger error: %v", err)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	logger.Sync()
	os.Exit(1)
}

func load(fs *flag.FlagSet, usage string) *mesh.Mesh {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: plytool "+usage)
		os.Exit(1)
	}
	m, err := mesh.LoadFile(fs.Arg(0))
	if err != nil {
		fatalf("Error: %v", err)
	}
	return m
}

func write(m *mesh.Mesh, path string) {
	ply := m.ToPLY()
	ply.Header.Comments = append(ply.Header.Comments, "written by plytool")

	if path == "" || path == "-" {
		if err := formats.WritePLY(os.Stdout, ply); err != nil {
			fatalf("Error writing PLY: %v", err)
		}
		return
	}
	if err := formats.WritePLYFile(path, ply); err != nil {
		fatalf("Error writing PLY: %v", err)
	}
	fmt.Fprintf(os.Stderr, "Wrote: %s (%d vertices, %d faces)\n", path, m.VertexCount(), m.FaceCount())
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	parse(fs, args)
	m := load(fs, "info <file.ply>")

	fmt.Printf("File:        %s\n", fs.Arg(0))
	fmt.Printf("Vertices:    %d\n", m.VertexCount())
	fmt.Printf("Faces:       %d\n", m.FaceCount())

	var cols []string
	for attr := formats.AttrX; attr <= formats.AttrTV; attr++ {
		if col := m.Order.Column(attr); col >= 0 {
			cols = append(cols, fmt.Sprintf("%s=%d", attr, col))
		}
	}
	fmt.Printf("Columns:     %s\n", strings.Join(cols, " "))

	normals := "reconstructed"
	if m.SourceNormals {
		normals = "from file"
	}
	fmt.Printf("Normals:     %s\n", normals)
	fmt.Printf("Color:       %v\n", m.HasColor)
	fmt.Printf("Texture:     %v\n", m.HasTexture)

	b := m.ComputeBounds()
	fmt.Printf("Bounds:      (%g, %g, %g) - (%g, %g, %g)\n",
		b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
	size := b.Size()
	fmt.Printf("Size:        %g x %g x %g\n", size.X, size.Y, size.Z)

	if degenerate := m.DegenerateNormals(); len(degenerate) > 0 {
		fmt.Printf("Degenerate:  %d vertices without a normal\n", len(degenerate))
	}
}

func cmdLight(args []string) {
	fs := flag.NewFlagSet("light", flag.ExitOnError)
	out := fs.String("o", "", "Output file")
	configPath := fs.String("config", "", "Viewer config file")
	yaw := fs.Float64("yaw", scene.DefaultYaw, "View yaw in degrees")
	pitch := fs.Float64("pitch", scene.DefaultPitch, "View pitch in degrees")
	distance := fs.Float64("distance", float64(scene.DefaultViewPosition.Z), "Viewer distance")
	linear := fs.Float64("linear", 0, "Linear attenuation")
	quadratic := fs.Float64("quadratic", 0, "Quadratic attenuation")
	invert := fs.Bool("invert", false, "Invert normals first")
	noRescale := fs.Bool("no-rescale", false, "Keep original coordinates")
	parse(fs, args)

	params := lighting.DefaultParams()
	if *configPath != "" {
		cfg, err := config.LoadFile(*configPath)
		if err != nil {
			fatalf("Config error: %v", err)
		}
		params = cfg.Lighting.Params()
	}
	if *linear != 0 {
		params.Light.Attenuation.Linear = float32(*linear)
	}
	if *quadratic != 0 {
		params.Light.Attenuation.Quadratic = float32(*quadratic)
	}

	m := load(fs, "light [options] <file.ply>")
	if !*noRescale {
		if err := m.RescaleToUnitCube(); err != nil {
			fatalf("Error: %v", err)
		}
	}
	if *invert {
		m.InvertNormals()
	}

	s := scene.New(params, true, nil)
	s.View.Yaw = float32(*yaw)
	s.View.Pitch = float32(*pitch)
	s.View.Position.Z = float32(*distance)
	s.Apply(m)

	// The colors are now defined by the lighting pass.
	m.HasColor = true
	write(m, *out)
}

func cmdRescale(args []string) {
	fs := flag.NewFlagSet("rescale", flag.ExitOnError)
	out := fs.String("o", "", "Output file")
	parse(fs, args)

	m := load(fs, "rescale [-o out.ply] <file.ply>")
	if err := m.RescaleToUnitCube(); err != nil {
		fatalf("Error: %v", err)
	}
	write(m, *out)
}

func cmdInvert(args []string) {
	fs := flag.NewFlagSet("invert", flag.ExitOnError)
	out := fs.String("o", "", "Output file")
	parse(fs, args)

	m := load(fs, "invert [-o out.ply] <file.ply>")
	m.InvertNormals()
	write(m, *out)
}
