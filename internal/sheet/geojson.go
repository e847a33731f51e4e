// SPDX-License-Identifier: MIT

package sheet

import (
	"encoding/json"
	"fmt"
	"io"
)

// FeatureCollection is the subset of a GeoJSON document the service reads.
// Geometry is kept opaque.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a single GeoJSON feature.
type Feature struct {
	Type       string          `json:"type"`
	ID         any             `json:"id,omitempty"`
	Properties map[string]any  `json:"properties"`
	Geometry   json.RawMessage `json:"geometry,omitempty"`
}

var nameProperties = []string{"name", "ADMIN", "NAME", "admin", "NAME_LONG"}

// Name returns the English country name of the feature, checking the common
// Natural Earth property names in order.
func (f Feature) Name() string {
	for _, p := range nameProperties {
		if s, ok := f.Properties[p].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// Names returns the non-empty feature names in document order.
func (fc *FeatureCollection) Names() []string {
	if fc == nil {
		return nil
	}
	out := make([]string, 0, len(fc.Features))
	for _, f := range fc.Features {
		if n := f.Name(); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// ReadGeoJSON decodes a FeatureCollection.
func ReadGeoJSON(name string, r io.Reader) (*FeatureCollection, error) {
	var fc FeatureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	if fc.Type != "" && fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("decode %s: unexpected GeoJSON type %q", name, fc.Type)
	}
	return &fc, nil
}
