package measure

import (
	"fmt"
	"math"

	"github.com/haskel/phasepower/internal/cleaning"
)

// Aggregate is an immutable per-cell mean view of a Table over an iteration
// window. Cells without data hold NaN and are listed by Missing.
type Aggregate struct {
	domain  Domain
	window  Window
	means   [2][]float64
	counts  [2][]int
	missing []Key
}

// Aggregate computes the mean of every cell and metric over w without
// modifying the table.
func (t *Table) Aggregate(w Window) (*Aggregate, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	a := &Aggregate{domain: t.domain.Clone(), window: w}
	for _, m := range Metrics {
		a.means[m] = make([]float64, len(t.cells))
		a.counts[m] = make([]int, len(t.cells))
	}

	t.Each(func(k Key, s Series) {
		idx, _ := t.index(k)
		short := false
		for _, m := range Metrics {
			vals := w.Slice(s.Values(m))
			mean, err := cleaning.Mean(vals)
			if err != nil {
				mean = math.NaN()
				short = true
			}
			a.means[m][idx] = mean
			a.counts[m][idx] = len(vals)
		}
		if short {
			a.missing = append(a.missing, k)
		}
	})
	return a, nil
}

func (a *Aggregate) Domain() Domain { return a.domain.Clone() }
func (a *Aggregate) Window() Window { return a.window }

func (a *Aggregate) index(k Key) (int, error) {
	if !a.domain.contains(k) {
		return 0, fmt.Errorf("%w: %+v", ErrUnknownKey, k)
	}
	d := a.domain
	return ((k.Config*len(d.Governors)+k.Governor)*len(d.Sites)+k.Site)*len(d.Phases) + k.Phase, nil
}

// Mean returns the cell mean of metric m. Cells without data return
// cleaning.ErrInsufficientData and NaN.
func (a *Aggregate) Mean(k Key, m Metric) (float64, error) {
	idx, err := a.index(k)
	if err != nil {
		return math.NaN(), err
	}
	v := a.means[m][idx]
	if math.IsNaN(v) {
		return v, fmt.Errorf("%w: %+v %s", cleaning.ErrInsufficientData, k, m)
	}
	return v, nil
}

// Count returns how many samples contributed to the cell mean.
func (a *Aggregate) Count(k Key, m Metric) int {
	idx, err := a.index(k)
	if err != nil {
		return 0
	}
	return a.counts[m][idx]
}

// Missing lists the cells where at least one metric had no data.
func (a *Aggregate) Missing() []Key {
	return append([]Key(nil), a.missing...)
}

// SiteMatrix returns the [phase][configuration] means of metric m for one
// site and governor. Missing cells are NaN.
func (a *Aggregate) SiteMatrix(site, governor int, m Metric) ([][]float64, error) {
	d := a.domain
	if site < 0 || site >= len(d.Sites) || governor < 0 || governor >= len(d.Governors) {
		return nil, fmt.Errorf("%w: site %d governor %d", ErrUnknownKey, site, governor)
	}

	out := make([][]float64, len(d.Phases))
	for p := range d.Phases {
		out[p] = make([]float64, len(d.Configurations))
		for c := range d.Configurations {
			idx, _ := a.index(Key{Config: c, Governor: governor, Site: site, Phase: p})
			out[p][c] = a.means[m][idx]
		}
	}
	return out, nil
}
