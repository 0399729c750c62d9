package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/radioactivebrix/squarebot/pkg/linesquare"
)

func TestObserveRun(t *testing.T) {
	r := NewRecorder()

	r.ObserveRun(linesquare.Result{Left: 12, Right: 14, Outcome: linesquare.Aligned, Attempts: 2}, nil, time.Second)
	r.ObserveRun(linesquare.Result{Left: 60, Right: 10, Outcome: linesquare.AlignmentIncomplete, Attempts: 20}, nil, 4*time.Second)
	r.ObserveRun(linesquare.Result{Outcome: linesquare.ApproachTimedOut},
		&linesquare.TimeoutError{Phase: linesquare.PhaseApproach, Limit: 15 * time.Second}, 15*time.Second)
	r.ObserveRun(linesquare.Result{}, errors.New("read left sensor: unplugged"), time.Millisecond)

	tests := []struct {
		outcome string
		want    float64
	}{
		{"aligned", 1},
		{"alignment_incomplete", 1},
		{"approach_timed_out", 1},
		{"error", 1},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(r.runs.WithLabelValues(tt.outcome)); got != tt.want {
			t.Errorf("runs{outcome=%q} = %f, want %f", tt.outcome, got, tt.want)
		}
	}

	// The failed run does not overwrite the difference of the timed-out one.
	if got := testutil.ToFloat64(r.difference); got != 0 {
		t.Errorf("difference = %f, want 0", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveRun(linesquare.Result{Outcome: linesquare.Aligned}, nil, time.Second)

	path := filepath.Join(t.TempDir(), "squarebot.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "squarebot_linesquare_run_duration_seconds") {
		t.Errorf("textfile missing duration histogram:\n%s", data)
	}
}
