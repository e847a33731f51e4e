// SPDX-License-Identifier: MIT

package store

// Record is the merged view of one country across every source.
type Record struct {
	Key         string            `json:"key"`
	DisplayName string            `json:"displayName"`
	Continent   string            `json:"continent,omitempty"`
	ColorValue  *float64          `json:"colorValue,omitempty"`
	Events      map[Year]*YearRow `json:"veriler,omitempty"`
	Incidents   map[Year][]string `json:"ozet,omitempty"`
	Positives   map[Year][]string `json:"pozet,omitempty"`
	Details     map[string]string `json:"details,omitempty"`
	Flag        string            `json:"flag,omitempty"`
	Photo       string            `json:"photo,omitempty"`
}

// SetColorValue overwrites the map colouring metric.
func (r *Record) SetColorValue(v float64) {
	r.ColorValue = &v
}

// SetEvents replaces the metric row of year y wholesale.
func (r *Record) SetEvents(y Year, row *YearRow) {
	if r.Events == nil {
		r.Events = make(map[Year]*YearRow, len(Years))
	}
	r.Events[y] = row
}

// SetIncidents replaces the critical incident examples of year y.
func (r *Record) SetIncidents(y Year, items []string) {
	if r.Incidents == nil {
		r.Incidents = make(map[Year][]string, len(Years))
	}
	r.Incidents[y] = items
}

// SetPositives replaces the positive development examples of year y.
func (r *Record) SetPositives(y Year, items []string) {
	if r.Positives == nil {
		r.Positives = make(map[Year][]string, len(Years))
	}
	r.Positives[y] = items
}

// YearEvents returns the metric row of year y, or nil.
func (r *Record) YearEvents(y Year) *YearRow {
	if r == nil || r.Events == nil {
		return nil
	}
	return r.Events[y]
}

// HasColorValue reports whether a colouring metric is present.
func (r *Record) HasColorValue() bool {
	return r != nil && r.ColorValue != nil
}
