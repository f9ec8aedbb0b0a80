package export

import (
	"errors"
	"strings"
	"testing"

	"github.com/merement/Dice/internal/dynamo"
	"github.com/merement/Dice/internal/graph"
	"github.com/merement/Dice/internal/optim"
)

func TestHistorySVG(t *testing.T) {
	if _, err := HistorySVG(nil, 100, 50); !errors.Is(err, ErrNothingToDraw) {
		t.Fatalf("expected ErrNothingToDraw, got %v", err)
	}

	history := []optim.Round{
		{Cut: 3, Best: 3},
		{Cut: 4, Best: 4},
		{Cut: 2, Best: 4},
	}
	svg, err := HistorySVG(history, 200, 100)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>\n") {
		t.Errorf("not an SVG document:\n%s", svg)
	}
	if n := strings.Count(svg, "<polyline"); n != 2 {
		t.Errorf("expected 2 polylines, got %d", n)
	}
	// first point on the left edge, last on the right
	if !strings.Contains(svg, `points="0.0,`) || !strings.Contains(svg, " 200.0,") {
		t.Errorf("x axis not spanning the width:\n%s", svg)
	}

	single, err := HistorySVG(history[:1], 200, 100)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(single, `points="100.0,`) {
		t.Errorf("single round not centred:\n%s", single)
	}
}

func TestPhaseSVG(t *testing.T) {
	relaxed := dynamo.State{0.1, -1.9, 0.2, 2.1}
	conf := graph.Configuration{1, -1, 1, 1}

	svg, err := PhaseSVG(relaxed, conf, 400)
	if err != nil {
		t.Fatal(err)
	}
	// outline plus one dot per node
	if n := strings.Count(svg, "<circle"); n != 5 {
		t.Errorf("expected 5 circles, got %d", n)
	}
	if n := strings.Count(svg, downColor); n != 1 {
		t.Errorf("expected one node on the down side, got %d", n)
	}

	if _, err := PhaseSVG(relaxed, conf[:2], 400); !errors.Is(err, graph.ErrSizeMismatch) {
		t.Errorf("expected ErrSizeMismatch, got %v", err)
	}
	if _, err := PhaseSVG(nil, nil, 400); !errors.Is(err, ErrNothingToDraw) {
		t.Errorf("expected ErrNothingToDraw, got %v", err)
	}
}
