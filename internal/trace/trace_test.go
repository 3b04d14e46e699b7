package trace

import (
	"errors"
	"strings"
	"testing"
)

func TestNew_Valid(t *testing.T) {
	tr, err := New([]float64{0, 100, 200},
		Channel{Name: "little", Watts: []float64{1, 1, 1}},
		Channel{Name: "big", Watts: []float64{2, 2, 2}},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tr.Len() != 3 {
		t.Errorf("expected 3 samples, got %d", tr.Len())
	}
	if tr.Start() != 0 || tr.End() != 200 {
		t.Errorf("unexpected bounds %v..%v", tr.Start(), tr.End())
	}
	if _, ok := tr.Channel("big"); !ok {
		t.Error("expected channel big")
	}
	if _, ok := tr.Channel("gpu"); ok {
		t.Error("did not expect channel gpu")
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name string
		tr   PowerTrace
		want error
	}{
		{"empty", PowerTrace{Channels: []Channel{{Name: "a"}}}, ErrEmptyTrace},
		{"no channels", PowerTrace{Times: []float64{0}}, ErrNoChannels},
		{"length mismatch", PowerTrace{
			Times:    []float64{0, 100},
			Channels: []Channel{{Name: "a", Watts: []float64{1}}},
		}, ErrLengthMismatch},
		{"decreasing", PowerTrace{
			Times:    []float64{0, 200, 100},
			Channels: []Channel{{Name: "a", Watts: []float64{1, 1, 1}}},
		}, ErrTimeNotMonotonic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tr.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestMedianPeriod(t *testing.T) {
	tr := PowerTrace{Times: []float64{0, 0, 100, 200, 301, 400}}

	if got := tr.MedianPeriod(); got != 100 {
		t.Errorf("expected median period 100, got %v", got)
	}
}

func TestRead(t *testing.T) {
	input := "Time_Milliseconds\tPower_A7\tPower_A15\tPower_GPU\n" +
		"1000\t0.5\t1.5\t0.1\n" +
		"1100\t0.6\t1.4\t0.1\n" +
		"1200\t0.7\t1.3\t0.1\n" +
		"1300\t0.8\n"

	tr, err := Read(strings.NewReader(input), DefaultReadOptions())
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if tr.Len() != 3 {
		t.Fatalf("expected 3 samples (truncated row skipped), got %d", tr.Len())
	}
	little, _ := tr.Channel("Power_A7")
	if little.Watts[2] != 0.7 {
		t.Errorf("expected 0.7, got %v", little.Watts[2])
	}
	big, _ := tr.Channel("Power_A15")
	if big.Watts[0] != 1.5 {
		t.Errorf("expected 1.5, got %v", big.Watts[0])
	}
}

func TestRead_MissingColumn(t *testing.T) {
	input := "Time_Milliseconds,Power_A7\n0,1\n"

	_, err := Read(strings.NewReader(input), ReadOptions{
		TimeColumn: "Time_Milliseconds",
		Channels:   []string{"Power_A7", "Power_A15"},
		Delimiter:  ',',
	})
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("expected ErrMissingColumn, got %v", err)
	}
}

func TestRead_BadNumber(t *testing.T) {
	input := "t,p\n0,1\n100,abc\n"

	_, err := Read(strings.NewReader(input), ReadOptions{TimeColumn: "t", Channels: []string{"p"}, Delimiter: ','})
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Errorf("expected parse error on line 3, got %v", err)
	}
}

func TestReadFile_NotFound(t *testing.T) {
	if _, err := ReadFile("/nonexistent/trace.tsv", DefaultReadOptions()); err == nil {
		t.Error("expected error for missing file")
	}
}
