// Package measure holds the per-(configuration, governor, site, phase)
// measurement table and its cleaning and aggregation passes.
package measure

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyDomain  = errors.New("domain dimension is empty")
	ErrDuplicate    = errors.New("duplicate label")
	ErrUnknownLabel = errors.New("unknown label")
)

// Domain enumerates the labels of every table dimension. Position in each
// slice is the label's integer index used by Key.
type Domain struct {
	Configurations []string `json:"configurations" yaml:"configurations"`
	Governors      []string `json:"governors" yaml:"governors"`
	Sites          []string `json:"sites" yaml:"sites"`
	Phases         []string `json:"phases" yaml:"phases"`
	Baseline       string   `json:"baseline" yaml:"baseline"`
}

// Validate checks that every dimension is non-empty and free of duplicates
// and that the baseline is one of the configurations.
func (d Domain) Validate() error {
	var errs []error

	dims := []struct {
		name   string
		labels []string
	}{
		{"configurations", d.Configurations},
		{"governors", d.Governors},
		{"sites", d.Sites},
		{"phases", d.Phases},
	}
	for _, dim := range dims {
		if len(dim.labels) == 0 {
			errs = append(errs, fmt.Errorf("%w: %s", ErrEmptyDomain, dim.name))
			continue
		}
		seen := make(map[string]bool, len(dim.labels))
		for _, l := range dim.labels {
			if seen[l] {
				errs = append(errs, fmt.Errorf("%w in %s: %q", ErrDuplicate, dim.name, l))
			}
			seen[l] = true
		}
	}

	if d.Baseline != "" {
		if _, ok := indexOf(d.Configurations, d.Baseline); !ok {
			errs = append(errs, fmt.Errorf("%w: baseline %q is not a configuration", ErrUnknownLabel, d.Baseline))
		}
	}

	return errors.Join(errs...)
}

// Clone returns a deep copy.
func (d Domain) Clone() Domain {
	return Domain{
		Configurations: append([]string(nil), d.Configurations...),
		Governors:      append([]string(nil), d.Governors...),
		Sites:          append([]string(nil), d.Sites...),
		Phases:         append([]string(nil), d.Phases...),
		Baseline:       d.Baseline,
	}
}

// Cells returns the number of (configuration, governor, site, phase) cells.
func (d Domain) Cells() int {
	return len(d.Configurations) * len(d.Governors) * len(d.Sites) * len(d.Phases)
}

func (d Domain) ConfigIndex(name string) (int, bool) { return indexOf(d.Configurations, name) }
func (d Domain) GovernorIndex(name string) (int, bool) { return indexOf(d.Governors, name) }
func (d Domain) SiteIndex(name string) (int, bool) { return indexOf(d.Sites, name) }
func (d Domain) PhaseIndex(name string) (int, bool) { return indexOf(d.Phases, name) }

// BaselineIndex returns the configuration index of the baseline.
func (d Domain) BaselineIndex() (int, bool) {
	return indexOf(d.Configurations, d.Baseline)
}

// Key addresses one cell by integer indices into the Domain.
type Key struct {
	Config   int `json:"config"`
	Governor int `json:"governor"`
	Site     int `json:"site"`
	Phase    int `json:"phase"`
}

// Resolve maps labels to a Key.
func (d Domain) Resolve(config, governor, site, phase string) (Key, error) {
	var k Key
	var ok bool
	if k.Config, ok = d.ConfigIndex(config); !ok {
		return Key{}, fmt.Errorf("%w: configuration %q", ErrUnknownLabel, config)
	}
	if k.Governor, ok = d.GovernorIndex(governor); !ok {
		return Key{}, fmt.Errorf("%w: governor %q", ErrUnknownLabel, governor)
	}
	if k.Site, ok = d.SiteIndex(site); !ok {
		return Key{}, fmt.Errorf("%w: site %q", ErrUnknownLabel, site)
	}
	if k.Phase, ok = d.PhaseIndex(phase); !ok {
		return Key{}, fmt.Errorf("%w: phase %q", ErrUnknownLabel, phase)
	}
	return k, nil
}

// Labels returns the label form of a key, for logs and reports.
func (d Domain) Labels(k Key) (config, governor, site, phase string) {
	return d.Configurations[k.Config], d.Governors[k.Governor], d.Sites[k.Site], d.Phases[k.Phase]
}

func (d Domain) contains(k Key) bool {
	return k.Config >= 0 && k.Config < len(d.Configurations) &&
		k.Governor >= 0 && k.Governor < len(d.Governors) &&
		k.Site >= 0 && k.Site < len(d.Sites) &&
		k.Phase >= 0 && k.Phase < len(d.Phases)
}

func indexOf(labels []string, name string) (int, bool) {
	for i, l := range labels {
		if l == name {
			return i, true
		}
	}
	return -1, false
}
