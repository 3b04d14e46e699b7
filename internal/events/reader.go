package events

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
)

// File is the page-load timing document written by the browser driver:
// per site a list of navigation-timing records, each checkpoint holding a
// list of timestamps. Only the first record and first timestamp are used.
type File struct {
	Timestamps map[string][]map[string][]float64 `json:"timestamps"`
}

// ReadFile reads and decodes an event file.
func ReadFile(path string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open events: %w", err)
	}
	defer file.Close()

	f, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Read decodes an event document.
func Read(r io.Reader) (*File, error) {
	var f File
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	if f.Timestamps == nil {
		f.Timestamps = make(map[string][]map[string][]float64)
	}
	return &f, nil
}

// Sites returns the recorded site names in sorted order.
func (f *File) Sites() []string {
	sites := make([]string, 0, len(f.Timestamps))
	for site := range f.Timestamps {
		sites = append(sites, site)
	}
	sort.Strings(sites)
	return sites
}

// Event extracts the event for one site, tagged with the given iteration.
func (f *File) Event(site string, iteration int) (Event, bool) {
	records := f.Timestamps[site]
	if len(records) == 0 {
		return Event{}, false
	}

	ev := Event{
		Site:        site,
		Iteration:   iteration,
		Checkpoints: make(map[string]float64, len(records[0])),
	}
	for name, values := range records[0] {
		if len(values) > 0 {
			ev.Checkpoints[name] = values[0]
		}
	}
	return ev, true
}
