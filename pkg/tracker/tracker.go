// Package tracker binds the Orientation Resolver, Inference Engine, and
// Commitment Controller into a single façade driven by a FrameSource, a
// Clock, and a FenBroadcast callback.
package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/herohde/chesslens/pkg/board/fen"
	"github.com/herohde/chesslens/pkg/commitment"
	"github.com/herohde/chesslens/pkg/gametree"
	"github.com/herohde/chesslens/pkg/history"
	"github.com/herohde/chesslens/pkg/hmm"
	"github.com/herohde/chesslens/pkg/orientation"
	"github.com/herohde/chesslens/pkg/tensor"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/seekerror/stdlib/pkg/util/contextx"
	"github.com/seekerror/stdlib/pkg/util/iox"
)

var version = build.NewVersion(0, 1, 0)

// FrameSource delivers observation tensors on demand. Next blocks until a
// new frame is available, returns false when the source is exhausted.
type FrameSource interface {
	Next(ctx context.Context) (tensor.Observation, bool, error)
}

// Clock produces monotonic time-points.
type Clock = commitment.Clock

// FenBroadcast is invoked with each newly committed FEN, in commitment
// order.
type FenBroadcast interface {
	Committed(timestep int, position string)
}

// FenBroadcastFunc adapts a function to a FenBroadcast.
type FenBroadcastFunc func(timestep int, position string)

func (f FenBroadcastFunc) Committed(timestep int, position string) { f(timestep, position) }

// Options configure a Tracker.
type Options struct {
	// Breadth caps every Beam's size. Defaults to 64 if unset (zero value).
	Breadth lang.Optional[int]
	// Delay is how long an observation must age before it can be committed.
	Delay time.Duration
}

const defaultBreadth = 64

// Tracker is the orchestration façade: it owns the game-tree and HMM
// arenas, the orientation resolver, and the commitment controller, and
// drains a FrameSource until cancelled or exhausted.
type Tracker struct {
	iox.AsyncCloser

	game    *gametree.Arena
	engine  *hmm.Engine
	resolve orientation.Resolver
	ctrl    *commitment.Controller
	bcast   FenBroadcast

	mu          sync.Mutex
	avgAdvance  time.Duration
	nAdvance    int
	broadcasted int // number of FENs already handed to bcast
}

// New constructs a Tracker rooted at the given FEN.
func New(position string, clock Clock, bcast FenBroadcast, opts Options) (*Tracker, error) {
	ga := gametree.NewArena()
	root, err := ga.Root(position)
	if err != nil {
		return nil, err
	}

	breadth := defaultBreadth
	if v, ok := opts.Breadth.V(); ok {
		breadth = v
	}

	e := hmm.NewEngine(ga, root, breadth)
	return &Tracker{
		AsyncCloser: iox.NewAsyncCloser(),
		game:        ga,
		engine:      e,
		ctrl:        commitment.NewController(e, opts.Delay),
		bcast:       bcast,
	}, nil
}

// Name identifies this tracker build, in the teacher's engine.Name style.
func (t *Tracker) Name() string {
	return fmt.Sprintf("chesslens %v", version)
}

// Run drains src until ctx is cancelled, src is exhausted, or Close is
// called, advancing the inference engine on every frame and polling the
// commitment controller on every tick.
func (t *Tracker) Run(ctx context.Context, src FrameSource, clock Clock) error {
	defer t.Close()

	wctx, cancel := contextx.WithQuitCancel(ctx, t.Closed())
	defer cancel()

	for {
		obs, ok, err := src.Next(wctx)
		if err != nil {
			logw.Infof(ctx, "Stopping: %v", err)
			return t.Drain(clock)
		}
		if !ok {
			logw.Infof(ctx, "Frame source exhausted")
			return t.Drain(clock)
		}

		if err := t.advance(obs, clock); err != nil {
			return err
		}
		committed, err := t.ctrl.Poll(clock.Now())
		if err != nil {
			logw.Errorf(ctx, "Commit did not happen this tick: %v", err)
		} else if committed {
			t.broadcastNew()
		}

		if contextx.IsCancelled(wctx) {
			return t.Drain(clock)
		}
	}
}

func (t *Tracker) advance(obs tensor.Observation, clock Clock) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	rotated := t.resolve.Apply(obs)

	start := time.Now()
	timestep := t.engine.TopT() + 1
	err := t.engine.Advance(timestep, rotated)
	elapsed := time.Since(start)

	t.nAdvance++
	t.avgAdvance += (elapsed - t.avgAdvance) / time.Duration(t.nAdvance)

	if err != nil {
		return err
	}
	t.ctrl.Observe(timestep, clock.Now())
	return nil
}

// broadcastNew emits only the FENs not yet handed to bcast: it re-derives
// the full deduplicated committed history (cheap relative to a frame
// interval) but slices off the prefix already broadcast, so a tick that
// commits nothing new never re-announces old commitments.
func (t *Tracker) broadcastNew() {
	if t.bcast == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	fens := history.FENs(history.Extract(t.engine, t.game, false))
	fresh := fens[t.broadcasted:]
	t.broadcasted = len(fens)

	for _, s := range fresh {
		t.bcast.Committed(t.engine.TopBindT(), s)
	}
}

// Drain flushes any observations still pending commitment, committing up
// to the current frontier regardless of their age.
func (t *Tracker) Drain(clock Clock) error {
	t.mu.Lock()
	top := t.engine.TopT()
	bound := t.engine.TopBindT()
	t.mu.Unlock()

	if top <= bound {
		return nil
	}
	if err := t.engine.Commit(top); err != nil {
		return err
	}
	t.broadcastNew()
	return nil
}

// History returns the committed (or, if includeUncommitted, full
// tentative) FEN trajectory, position fields only, de-duplicated.
func (t *Tracker) History(includeUncommitted bool) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return history.FENs(history.Extract(t.engine, t.game, includeUncommitted))
}

// AverageAdvanceDuration reports the rolling average wall-clock duration
// of Advance calls, mirroring the original pipeline's "Avg HMM" timing
// statistic.
func (t *Tracker) AverageAdvanceDuration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.avgAdvance
}

// Initial is the standard starting FEN, re-exported for convenience.
const Initial = fen.Initial
