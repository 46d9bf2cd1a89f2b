// booktool is a CLI utility for checking castle book assets and inspecting
// page turns without opening a window.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/castle-book/internal/assets"
	"github.com/Faultbox/castle-book/internal/book"
	"github.com/Faultbox/castle-book/internal/engine/bend"
	"github.com/Faultbox/castle-book/internal/engine/page"
	"github.com/Faultbox/castle-book/internal/export"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "pages", "check":
		cmdPages(args)
	case "simulate", "sim":
		cmdSimulate(args)
	case "export":
		cmdExport(args)
	case "presets":
		cmdPresets()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`booktool - castle book utility

Usage:
  booktool <command> [options]

Commands:
  pages [-assets dir]                     Resolve page images and report missing ones
  simulate [-preset p] [-joints list]     Print joint angles for every tick of a turn
  export [-preset p] [-progress t] <out>  Write a page posed mid-turn as .glb
  presets                                 List bend presets

Examples:
  booktool pages -assets ./assets
  booktool simulate -preset curl -joints 0,8,15,30
  booktool export -progress 0.5 page.glb
  booktool export -static -preset flip -progress 0.25 flip.glb`)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func cmdPages(args []string) {
	fs := flag.NewFlagSet("pages", flag.ExitOnError)
	dir := fs.String("assets", "assets", "Directory holding descriptions/ and photos/")
	fs.Parse(args)

	mgr := assets.NewManager()
	defer mgr.Close()
	if err := mgr.AddRoot(*dir); err != nil {
		fail("%v", err)
	}

	names := assets.DefaultPages
	if fs.NArg() > 0 {
		names = fs.Args()
	}
	catalog, err := assets.NewCatalog(names, mgr)
	if err != nil {
		fail("%v", err)
	}

	for i, p := range catalog.Pages() {
		fmt.Printf("%3d  %-24s %-36s %s\n", i, p.Name,
			mark(mgr, p.Description), mark(mgr, p.Photo))
	}

	missing := catalog.Missing(mgr)
	fmt.Println()
	fmt.Printf("Pages:   %d\n", catalog.Len())
	fmt.Printf("Missing: %d\n", len(missing))
	if len(missing) > 0 {
		os.Exit(2)
	}
}

func mark(mgr *assets.Manager, path string) string {
	if mgr.Exists(path) {
		return path
	}
	return path + " (missing)"
}

func cmdSimulate(args []string) {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	preset := fs.String("preset", "curl", "Bend preset")
	segments := fs.Int("segments", page.DefaultShape().Segments, "Page segments")
	jointList := fs.String("joints", "", "Comma-separated joints to print (default: spine, middle, edge)")
	every := fs.Int("every", 1, "Print every Nth tick")
	fs.Parse(args)

	shape := page.DefaultShape()
	shape.Segments = *segments
	m, driver := startTurn(shape, *preset)

	joints, err := parseJoints(*jointList, m.Chain.Len())
	if err != nil {
		fail("%v", err)
	}

	fmt.Printf("%5s %9s", "tick", "progress")
	for _, j := range joints {
		fmt.Printf(" %8s", fmt.Sprintf("j%d", j))
	}
	fmt.Println("   (degrees)")

	for done := false; !done; {
		done = driver.Step()
		if driver.TickCount()%max(*every, 1) != 0 && !done {
			continue
		}
		fmt.Printf("%5d %9.4f", driver.TickCount(), driver.Progress())
		for _, j := range joints {
			fmt.Printf(" %8.3f", m.Chain.Rotation(j)*180/math.Pi)
		}
		fmt.Println()
	}
}

func cmdExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	preset := fs.String("preset", "curl", "Bend preset")
	progress := fs.Float64("progress", 0.5, "Turn progress to pose the page at, 0..1")
	static := fs.Bool("static", false, "Bake the pose into vertices instead of writing a skin")
	name := fs.String("name", "page", "Mesh name")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: booktool export [options] <out.glb>")
		os.Exit(1)
	}
	if *progress < 0 || *progress > 1 {
		fail("progress must be in [0,1], got %v", *progress)
	}

	m, driver := startTurn(page.DefaultShape(), *preset)
	for driver.Progress() < *progress-1e-9 {
		if driver.Step() {
			break
		}
	}

	out := fs.Arg(0)
	if err := export.SaveBinary(m, out, export.Options{Name: *name, Static: *static}); err != nil {
		fail("%v", err)
	}
	fmt.Printf("Wrote %s (progress %.3f after %d ticks)\n", out, driver.Progress(), driver.TickCount())
}

func cmdPresets() {
	for _, name := range bend.PresetNames() {
		p, _ := bend.Preset(name)
		fmt.Printf("%-8s curve=%-5s easing=%.2f step=%.3f ticks=%d angle=%.1f°\n",
			name, p.Curve, p.Easing, p.Step, p.Ticks(), p.FullTurnAngle*180/math.Pi)
	}
}

// startTurn builds an untextured page and starts a one-tick-per-step turn.
func startTurn(shape page.Shape, preset string) (*page.Mesh, *book.Driver) {
	params, err := bend.Preset(preset)
	if err != nil {
		fail("%v", err)
	}
	solver, err := bend.NewSolver(params)
	if err != nil {
		fail("%v", err)
	}
	builder, err := page.NewBuilder(shape, nil)
	if err != nil {
		fail("%v", err)
	}
	m, err := builder.Build("", "")
	if err != nil {
		fail("%v", err)
	}
	driver := book.NewDriver(solver, book.DriverOptions{FixedStep: true})
	driver.Start(m.Chain)
	return m, driver
}

func parseJoints(list string, n int) ([]int, error) {
	if list == "" {
		return []int{0, n / 2, n - 1}, nil
	}
	var joints []int
	for _, s := range strings.Split(list, ",") {
		j, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("bad joint %q: %w", s, err)
		}
		if j < 0 || j >= n {
			return nil, fmt.Errorf("joint %d out of range [0,%d)", j, n)
		}
		joints = append(joints, j)
	}
	return joints, nil
}
