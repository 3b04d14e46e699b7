package events

import (
	"errors"
	"strings"
	"testing"
)

var checkpoints = []string{"navigationStart", "requestStart", "domLoading", "domComplete", "loadEventEnd"}

func TestPhases(t *testing.T) {
	phases := Phases(checkpoints)

	if len(phases) != 4 {
		t.Fatalf("expected 4 phases, got %d", len(phases))
	}
	if phases[0] != "navigationStart" || phases[3] != "domComplete" {
		t.Errorf("unexpected phases %v", phases)
	}

	if Phases([]string{"only"}) != nil {
		t.Error("expected no phases for a single checkpoint")
	}
}

func TestWindows(t *testing.T) {
	ev := Event{
		Site: "amazon",
		Checkpoints: map[string]float64{
			"navigationStart": 1000,
			"requestStart":    1040,
			"domLoading":      1500,
			"domComplete":     2300,
			"loadEventEnd":    2310,
		},
	}

	windows, err := ev.Windows(checkpoints)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) != 4 {
		t.Fatalf("expected 4 windows, got %d", len(windows))
	}

	if windows[1].Phase != "requestStart" || windows[1].Start != 1040 || windows[1].End != 1500 {
		t.Errorf("unexpected window %+v", windows[1])
	}
	if windows[3].Duration() != 10 {
		t.Errorf("expected 10ms, got %v", windows[3].Duration())
	}
}

func TestWindows_OutOfOrderIsReported(t *testing.T) {
	ev := Event{
		Site: "cnn",
		Checkpoints: map[string]float64{
			"navigationStart": 1000,
			"requestStart":    900,
			"domLoading":      1500,
			"domComplete":     2300,
			"loadEventEnd":    2310,
		},
	}

	windows, err := ev.Windows(checkpoints)
	if !errors.Is(err, ErrOutOfOrder) {
		t.Fatalf("expected ErrOutOfOrder, got %v", err)
	}
	if len(windows) != 4 {
		t.Fatalf("expected all 4 windows despite the violation, got %d", len(windows))
	}
	if !windows[0].Reversed() {
		t.Error("expected first window to be reversed")
	}
	if windows[1].Reversed() {
		t.Error("second window should not be reversed")
	}
}

func TestWindows_Missing(t *testing.T) {
	ev := Event{Site: "bbc", Checkpoints: map[string]float64{"navigationStart": 1}}

	windows, err := ev.Windows(checkpoints)
	if !errors.Is(err, ErrMissingCheckpoint) {
		t.Fatalf("expected ErrMissingCheckpoint, got %v", err)
	}
	for _, w := range windows {
		if !w.Missing {
			t.Errorf("expected window %s to be missing", w.Phase)
		}
	}
}

func TestRead(t *testing.T) {
	input := `{
  "timestamps": {
    "google": [{"navigationStart": [1500000000000], "loadEventEnd": [1500000000420, 7]}],
    "amazon": [{"navigationStart": [1500000001000]}],
    "empty": []
  }
}`

	f, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	sites := f.Sites()
	if len(sites) != 3 || sites[0] != "amazon" {
		t.Errorf("unexpected sites %v", sites)
	}

	ev, ok := f.Event("google", 4)
	if !ok {
		t.Fatal("expected google event")
	}
	if ev.Iteration != 4 {
		t.Errorf("expected iteration 4, got %d", ev.Iteration)
	}
	if ev.Checkpoints["loadEventEnd"] != 1500000000420 {
		t.Errorf("expected first timestamp, got %v", ev.Checkpoints["loadEventEnd"])
	}

	if _, ok := f.Event("empty", 0); ok {
		t.Error("expected no event for a site without records")
	}
}

func TestRead_Invalid(t *testing.T) {
	if _, err := Read(strings.NewReader("not json")); err == nil {
		t.Error("expected decode error")
	}
}
