package energy

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haskel/phasepower/internal/trace"
)

type recordingWarner struct {
	messages []string
}

func (w *recordingWarner) Warn(msg string, args ...any) {
	w.messages = append(w.messages, msg)
}

// constantTrace samples every 100ms from 0 to 1000 with two constant channels.
func constantTrace(t *testing.T, little, big float64) *trace.PowerTrace {
	t.Helper()

	var times, l, b []float64
	for ts := 0.0; ts <= 1000; ts += 100 {
		times = append(times, ts)
		l = append(l, little)
		b = append(b, big)
	}
	tr, err := trace.New(times,
		trace.Channel{Name: "little", Watts: l},
		trace.Channel{Name: "big", Watts: b},
	)
	require.NoError(t, err)
	return tr
}

func TestEstimate_RegularIntegration(t *testing.T) {
	tr := constantTrace(t, 1.0, 2.0)
	in := New(DefaultConfig(), nil)

	// 350ms window, samples at 100, 200, 300 and 400 ms are inside the range.
	est := in.Estimate(tr, 50, 400)

	require.Equal(t, MethodIntegrated, est.Method)
	assert.Equal(t, 1, est.StartIdx)
	assert.Equal(t, 5, est.EndIdx)
	// three 100ms steps of (1.0 + 2.0) W
	assert.InDelta(t, 900.0, est.Energy, 1e-9)
	assert.False(t, est.NearZero)
}

func TestEstimate_SubSamplingApproximation(t *testing.T) {
	tr, err := trace.New([]float64{0, 100, 200, 300},
		trace.Channel{Name: "cpu", Watts: []float64{0, 1.0, 3.0, 5.0}},
	)
	require.NoError(t, err)
	in := New(DefaultConfig(), nil)

	// 40ms strictly between the samples at 100ms (1.0W) and 200ms (3.0W).
	est := in.Estimate(tr, 120, 160)

	require.Equal(t, MethodApproximated, est.Method)
	assert.Equal(t, est.StartIdx+1, est.EndIdx)
	assert.InDelta(t, 2.0, est.AvgPower, 1e-12)
	assert.InDelta(t, 2.0*100*(40.0/100.0), est.Energy, 1e-9)
}

func TestEstimate_ApproximationSumsChannels(t *testing.T) {
	tr := constantTrace(t, 0.5, 1.5)
	in := New(DefaultConfig(), nil)

	est := in.Estimate(tr, 310, 330)

	require.Equal(t, MethodApproximated, est.Method)
	assert.InDelta(t, (0.5+1.5)*20, est.Energy, 1e-9)
}

func TestEstimate_ZeroDurationIsSentinel(t *testing.T) {
	tr := constantTrace(t, 1, 2)
	cfg := DefaultConfig()
	in := New(cfg, nil)

	est := in.Estimate(tr, 250, 250)

	assert.Equal(t, MethodZeroDuration, est.Method)
	assert.Equal(t, cfg.InvalidSentinel, est.Energy)
	assert.NotZero(t, est.Energy)
	assert.True(t, est.Resolved())
	assert.False(t, est.Valid())
}

func TestEstimate_EdgeCases(t *testing.T) {
	tr := constantTrace(t, 1, 2)
	cfg := DefaultConfig()
	in := New(cfg, nil)

	tests := []struct {
		name       string
		start, end float64
	}{
		{"before trace", -80, -20},
		{"after trace", 1020, 1060},
		{"single sample before trace end", 950, 1400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := in.Estimate(tr, tt.start, tt.end)
			assert.Equal(t, MethodEdge, est.Method)
			assert.Equal(t, cfg.InvalidSentinel, est.Energy)
			assert.False(t, est.NearZero)
		})
	}
}

func TestEstimate_ReversedWindowIsUnresolvable(t *testing.T) {
	tr := constantTrace(t, 1, 2)
	in := New(DefaultConfig(), nil)

	for _, w := range [][2]float64{{400, 100}, {130, 120}} {
		est := in.Estimate(tr, w[0], w[1])
		assert.Equal(t, MethodUnresolvable, est.Method, "window %v", w)
		assert.False(t, est.Resolved())
	}
}

func TestEstimate_NonNegativeForNonNegativePower(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	var times, watts []float64
	for i := 0; i < 200; i++ {
		times = append(times, float64(i)*100)
		watts = append(watts, rng.Float64()*4)
	}
	tr, err := trace.New(times, trace.Channel{Name: "cpu", Watts: watts})
	require.NoError(t, err)
	in := New(DefaultConfig(), nil)

	for i := 0; i < 2000; i++ {
		start := rng.Float64() * 21000
		end := start + rng.Float64()*3000
		est := in.Estimate(tr, start, end)
		if est.Valid() {
			require.GreaterOrEqual(t, est.Energy, 0.0, "window [%v, %v]", start, end)
		}
	}
}

func TestEstimate_NearZeroIsFlaggedNotDiscarded(t *testing.T) {
	tr := constantTrace(t, 0, 0)
	warn := &recordingWarner{}
	in := New(DefaultConfig(), warn)

	est := in.Estimate(tr, 0, 500)

	assert.Equal(t, MethodIntegrated, est.Method)
	assert.Equal(t, 0.0, est.Energy)
	assert.True(t, est.NearZero)
	assert.Equal(t, []string{"near-zero energy"}, warn.messages)
}

func TestMeasure_ReconcilesApproximationWithLoadtime(t *testing.T) {
	tr, err := trace.New([]float64{0, 100, 200, 300},
		trace.Channel{Name: "cpu", Watts: []float64{0, 1.0, 3.0, 5.0}},
	)
	require.NoError(t, err)
	in := New(DefaultConfig(), nil)

	// Loadtime within tolerance keeps the window-based estimate.
	est := in.Measure(tr, 120, 160, 40.2)
	assert.False(t, est.Reconciled)
	assert.InDelta(t, 80.0, est.Energy, 1e-9)

	// A longer observed loadtime keeps average power and stretches duration.
	est = in.Measure(tr, 120, 160, 50)
	assert.True(t, est.Reconciled)
	assert.InDelta(t, 2.0*50, est.Energy, 1e-9)
}

func TestMeasure_LeavesIntegrationUntouched(t *testing.T) {
	tr := constantTrace(t, 1, 2)
	in := New(DefaultConfig(), nil)

	est := in.Measure(tr, 50, 400, 999)

	assert.Equal(t, MethodIntegrated, est.Method)
	assert.False(t, est.Reconciled)
	assert.InDelta(t, 900.0, est.Energy, 1e-9)
}

func TestIntegrate_ClampsAndShortSlices(t *testing.T) {
	tr := constantTrace(t, 1, 1)
	in := New(DefaultConfig(), nil)

	assert.Equal(t, 0.0, in.Integrate(tr, 3, 4))
	assert.InDelta(t, 2*1000.0, in.Integrate(tr, -5, 50), 1e-9)
}

func TestMethod_String(t *testing.T) {
	assert.Equal(t, "approximated", MethodApproximated.String())
	assert.Equal(t, "unknown", Method(42).String())
}
