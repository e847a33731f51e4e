// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldLoadID    = "load_id"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldSource    = "source"
	FieldKind      = "kind"
	FieldYear      = "year"

	// Data fields
	FieldCountry = "country"
	FieldRecords = "records"
	FieldSkipped = "skipped"

	// Path / URL fields
	FieldPath    = "path"
	FieldBaseURL = "base_url"
)
