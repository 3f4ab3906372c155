// Package livefeed adapts a DGT EBoard fed through livechess-go into a
// tracker.FrameSource, the same way the teacher's cmd/livechess-uci
// adapts the same feed to drive a UCI engine. A physical EBoard reports
// its position directly (no per-square classifier uncertainty), so each
// event is translated into a one-hot observation tensor: probability 1
// on the label the board reports, 0 on every other label. The tracker
// applies orientation resolution and the negative-log cost transform
// itself, so Source must hand it raw probabilities, not costs.
package livefeed

import (
	"context"

	"github.com/herohde/chesslens/pkg/board"
	"github.com/herohde/chesslens/pkg/board/fen"
	"github.com/herohde/chesslens/pkg/tensor"
	"github.com/herohde/livechess-go/pkg/livechess"
	"github.com/seekerror/logw"
)

// Source is a tracker.FrameSource backed by a live DGT EBoard feed.
type Source struct {
	client livechess.FeedClient
	events <-chan livechess.EBoardEventResponse
}

// Connect auto-detects (or uses the given serial) an EBoard, sets it up
// at the standard starting position, and returns a ready Source.
func Connect(ctx context.Context, serial livechess.EBoardSerial, flip bool) (*Source, error) {
	id := serial
	if id == "auto" {
		auto, err := livechess.AutoDetect(ctx, livechess.DefaultClient)
		if err != nil {
			return nil, err
		}
		id = auto
	}

	client, events, err := livechess.NewFeed(ctx, id)
	if err != nil {
		return nil, err
	}
	if flip {
		if err := client.Flip(ctx, true); err != nil {
			return nil, err
		}
	}
	if err := client.Setup(ctx, fen.Initial); err != nil {
		return nil, err
	}

	logw.Infof(ctx, "Connected to EBoard %v", id)
	return &Source{client: client, events: events}, nil
}

// Next blocks until the EBoard reports a new position, or ctx is
// cancelled. Events with no move recorded yet (startup echoes) are
// skipped.
func (s *Source) Next(ctx context.Context) (tensor.Observation, bool, error) {
	for {
		select {
		case event, ok := <-s.events:
			if !ok {
				return nil, false, nil
			}
			if len(event.San) == 0 {
				continue
			}

			b, err := fen.Decode(event.Board)
			if err != nil {
				return nil, false, &board.InvalidFENError{FEN: event.Board, Reason: err.Error()}
			}
			return oneHot(b), true, nil

		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}
}

// oneHot builds a raw probability tensor with 1.0 on the label the board
// actually reports at each square and 0.0 on every other label.
func oneHot(b board.Board) tensor.Observation {
	obs := tensor.NewObservation()
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			for k := 0; k < board.NumLabels; k++ {
				obs.Set(r, f, board.Label(k), 0.0)
			}
			obs.Set(r, f, b.Cells[r][f], 1.0)
		}
	}
	return obs
}
