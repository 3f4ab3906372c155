// chesslens tracks a physical chess game played on a DGT EBoard, fusing
// the board's reported positions into a single committed trajectory via
// a delay-based commitment protocol, and dumps the resulting FEN history
// and a PGN placeholder on exit.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/herohde/chesslens/pkg/livefeed"
	"github.com/herohde/chesslens/pkg/tracker"
	"github.com/herohde/livechess-go/pkg/livechess"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
)

var (
	serial = flag.String("serial", "auto", "EBoard selection by serial number (default: auto)")
	flip   = flag.Bool("flip", false, "Flip board")
	delay  = flag.Duration("delay", 5*time.Second, "Commitment delay: how long an observation must age before it is committed")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: chesslens [options] [algorithm_name] [output_directory]

chesslens tracks a physical chess game and commits a FEN trajectory.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	algorithm := "cnn_onnx_static"
	if flag.NArg() > 0 {
		algorithm = flag.Arg(0)
	}
	outputDir := "game_fens"
	if flag.NArg() > 1 {
		outputDir = flag.Arg(1)
	}

	logw.Infof(ctx, "Algorithm: %v", algorithm)
	logw.Infof(ctx, "Output directory: %v", outputDir)

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		logw.Exitf(ctx, "Failed to create output directory %v: %v", outputDir, err)
	}

	csv, err := os.Create(filepath.Join(outputDir, "game_fens.csv"))
	if err != nil {
		logw.Exitf(ctx, "Failed to create game_fens.csv: %v", err)
	}
	defer csv.Close()

	clock := commitmentClock{}
	bcast := tracker.FenBroadcastFunc(func(timestep int, position string) {
		fmt.Fprintln(csv, position)
		logw.Infof(ctx, "Committed %v: %v", timestep, position)
	})

	opts := tracker.Options{
		Breadth: lang.Some(64),
		Delay:   *delay,
	}

	t, err := tracker.New(tracker.Initial, clock, bcast, opts)
	if err != nil {
		logw.Exitf(ctx, "Failed to initialize tracker: %v", err)
	}

	src, err := livefeed.Connect(ctx, livechess.EBoardSerial(*serial), *flip)
	if err != nil {
		logw.Exitf(ctx, "Failed to connect to EBoard: %v", err)
	}

	logw.Infof(ctx, "Tracking with %v. Press Ctrl+C to stop.", t.Name())

	if err := t.Run(ctx, src, clock); err != nil {
		logw.Errorf(ctx, "Tracker stopped: %v", err)
	}

	logw.Infof(ctx, "Avg Advance time: %v", t.AverageAdvanceDuration())

	if err := writeGameOut(outputDir, t.History(false)); err != nil {
		logw.Exitf(ctx, "Failed to write game_out.txt: %v", err)
	}
}

// writeGameOut dumps the final FEN list followed by a blank line and the
// PGN. PGN generation is out of scope; the placeholder mirrors
// original_source's get_pgn(), which always returns "".
func writeGameOut(outputDir string, fens []string) error {
	f, err := os.Create(filepath.Join(outputDir, "game_out.txt"))
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintln(f, strings.Join(fens, "\n"))
	fmt.Fprintln(f)
	fmt.Fprintln(f, pgnPlaceholder)
	return nil
}

// pgnPlaceholder mirrors original_source's get_pgn(), which always
// returns "": PGN generation needs move disambiguation against the full
// game history and is out of scope here.
const pgnPlaceholder = ""

type commitmentClock struct{}

func (commitmentClock) Now() time.Time { return time.Now() }
