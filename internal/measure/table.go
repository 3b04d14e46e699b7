package measure

import (
	"errors"
	"fmt"

	"github.com/haskel/phasepower/internal/cleaning"
)

var (
	ErrIterationRange = errors.New("iteration out of range")
	ErrUnknownKey     = errors.New("key outside domain")
	ErrInvalidWindow  = errors.New("invalid iteration window")
)

// Metric selects one of the two measured quantities of a cell.
type Metric int

const (
	Loadtime Metric = iota
	Energy
)

// Metrics lists every metric in storage order.
var Metrics = []Metric{Loadtime, Energy}

func (m Metric) String() string {
	switch m {
	case Loadtime:
		return "loadtime"
	case Energy:
		return "energy"
	default:
		return fmt.Sprintf("metric(%d)", int(m))
	}
}

// Series holds the per-iteration observations of one cell.
type Series struct {
	Loadtime []float64 `json:"loadtime"`
	Energy   []float64 `json:"energy"`
}

// Values returns the slice backing the given metric.
func (s Series) Values(m Metric) []float64 {
	if m == Energy {
		return s.Energy
	}
	return s.Loadtime
}

func (s Series) clone() Series {
	return Series{
		Loadtime: append([]float64(nil), s.Loadtime...),
		Energy:   append([]float64(nil), s.Energy...),
	}
}

// Table is the measurement store. Every cell owns its own slices; writing
// to one cell never changes another.
type Table struct {
	domain     Domain
	iterations int
	sentinel   float64
	cells      []Series
}

// NewTable allocates a table over domain with iterations slots per cell,
// every slot pre-filled with sentinel.
func NewTable(domain Domain, iterations int, sentinel float64) (*Table, error) {
	if err := domain.Validate(); err != nil {
		return nil, fmt.Errorf("invalid domain: %w", err)
	}
	if iterations < 0 {
		return nil, fmt.Errorf("%w: %d iterations", ErrIterationRange, iterations)
	}

	t := &Table{
		domain:     domain.Clone(),
		iterations: iterations,
		sentinel:   sentinel,
		cells:      make([]Series, domain.Cells()),
	}
	for i := range t.cells {
		t.cells[i] = Series{
			Loadtime: filled(iterations, sentinel),
			Energy:   filled(iterations, sentinel),
		}
	}
	return t, nil
}

func filled(n int, v float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func (t *Table) Domain() Domain { return t.domain.Clone() }
func (t *Table) Iterations() int { return t.iterations }
func (t *Table) Sentinel() float64 { return t.sentinel }

func (t *Table) index(k Key) (int, error) {
	if !t.domain.contains(k) {
		return 0, fmt.Errorf("%w: %+v", ErrUnknownKey, k)
	}
	d := t.domain
	return ((k.Config*len(d.Governors)+k.Governor)*len(d.Sites)+k.Site)*len(d.Phases) + k.Phase, nil
}

// Set stores one observation of metric m for iteration i.
func (t *Table) Set(k Key, m Metric, i int, v float64) error {
	idx, err := t.index(k)
	if err != nil {
		return err
	}
	vals := t.cells[idx].Values(m)
	if i < 0 || i >= len(vals) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIterationRange, i, len(vals))
	}
	vals[i] = v
	return nil
}

// Series returns a copy of the cell's observations.
func (t *Table) Series(k Key) (Series, error) {
	idx, err := t.index(k)
	if err != nil {
		return Series{}, err
	}
	return t.cells[idx].clone(), nil
}

// SetSeries replaces a whole cell. The table keeps its own copy.
func (t *Table) SetSeries(k Key, s Series) error {
	idx, err := t.index(k)
	if err != nil {
		return err
	}
	t.cells[idx] = s.clone()
	return nil
}

// Each calls fn for every cell in key order.
func (t *Table) Each(fn func(k Key, s Series)) {
	d := t.domain
	for c := range d.Configurations {
		for g := range d.Governors {
			for s := range d.Sites {
				for p := range d.Phases {
					k := Key{Config: c, Governor: g, Site: s, Phase: p}
					idx, _ := t.index(k)
					fn(k, t.cells[idx])
				}
			}
		}
	}
}

// Clean filters every cell and metric in place: invalid entries first, then
// entries farther than maxStdDevs population standard deviations from the
// mean.
func (t *Table) Clean(maxStdDevs float64) {
	for i := range t.cells {
		t.cells[i].Loadtime = cleaning.FilterSeries(t.cells[i].Loadtime, maxStdDevs)
		t.cells[i].Energy = cleaning.FilterSeries(t.cells[i].Energy, maxStdDevs)
	}
}

// Reduce collapses each cell's series over window to a single mean, in
// place. Cells with no data in the window become empty and are returned.
func (t *Table) Reduce(w Window) ([]Key, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	var missing []Key
	t.Each(func(k Key, _ Series) {
		idx, _ := t.index(k)
		cell := &t.cells[idx]
		short := false
		for _, m := range Metrics {
			mean, err := cleaning.Mean(w.Slice(cell.Values(m)))
			var reduced []float64
			if err == nil {
				reduced = []float64{mean}
			} else {
				short = true
			}
			if m == Energy {
				cell.Energy = reduced
			} else {
				cell.Loadtime = reduced
			}
		}
		if short {
			missing = append(missing, k)
		}
	})
	return missing, nil
}

// ExtractIteration returns a new single-iteration table holding entry i of
// every cell. Cells shorter than i+1 (after cleaning) get the sentinel.
func (t *Table) ExtractIteration(i int) (*Table, error) {
	if i < 0 || i >= t.iterations {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrIterationRange, i, t.iterations)
	}

	out, err := NewTable(t.domain, 1, t.sentinel)
	if err != nil {
		return nil, err
	}
	for idx, cell := range t.cells {
		if i < len(cell.Loadtime) {
			out.cells[idx].Loadtime[0] = cell.Loadtime[i]
		}
		if i < len(cell.Energy) {
			out.cells[idx].Energy[0] = cell.Energy[i]
		}
	}
	return out, nil
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{
		domain:     t.domain.Clone(),
		iterations: t.iterations,
		sentinel:   t.sentinel,
		cells:      make([]Series, len(t.cells)),
	}
	for i, c := range t.cells {
		out.cells[i] = c.clone()
	}
	return out
}

// Window is an iteration range [Start, Stop). Stop 0 means the full series.
type Window struct {
	Start int `json:"start" yaml:"start"`
	Stop  int `json:"stop" yaml:"stop"`
}

func (w Window) Validate() error {
	if w.Start < 0 || w.Stop < 0 {
		return fmt.Errorf("%w: negative bound [%d, %d)", ErrInvalidWindow, w.Start, w.Stop)
	}
	if w.Stop != 0 && w.Stop < w.Start {
		return fmt.Errorf("%w: stop %d before start %d", ErrInvalidWindow, w.Stop, w.Start)
	}
	return nil
}

// Slice returns the part of values inside the window, clamped to its length.
func (w Window) Slice(values []float64) []float64 {
	stop := w.Stop
	if stop == 0 || stop > len(values) {
		stop = len(values)
	}
	start := w.Start
	if start > stop {
		start = stop
	}
	return values[start:stop]
}
