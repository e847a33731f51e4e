// SPDX-License-Identifier: MIT

package ingest

import (
	"context"
	"encoding/base64"
	"mime"
	"path"
	"strings"

	"github.com/ManuGH/incidentmap/internal/normalize"
	"github.com/ManuGH/incidentmap/internal/store"
)

// ParseImage derives the country name and slot from the asset path.
func ParseImage(src Source, data []byte) (ImageRow, error) {
	p := src.Path
	if p == "" {
		p = src.Name
	}
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	ext := path.Ext(base)
	name := normalize.NFC(strings.ReplaceAll(strings.TrimSuffix(base, ext), "_", " "))
	if normalize.Key(name) == "" {
		return ImageRow{}, skip("image has no name")
	}

	// An image in neither slot still registers the country.
	hint := strings.ToLower(p)
	slot := SlotNone
	switch {
	case strings.Contains(hint, "flag"):
		slot = SlotFlag
	case strings.Contains(hint, "photo"):
		slot = SlotPhoto
	}

	return ImageRow{Name: name, Slot: slot, DataURL: DataURL(ext, data)}, nil
}

// DataURL encodes data as a base64 data URL typed by the file extension.
func DataURL(ext string, data []byte) string {
	typ := mime.TypeByExtension(strings.ToLower(ext))
	if typ == "" {
		typ = "application/octet-stream"
	}
	if i := strings.IndexByte(typ, ';'); i >= 0 {
		typ = typ[:i]
	}
	return "data:" + typ + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Image stores a flag or photo asset.
func Image(ctx context.Context, st *store.Store, src Source, data []byte) Result {
	log := logger(ctx, src)
	res := Result{Source: src}
	row, err := ParseImage(src, data)
	if err == nil {
		err = upsert(st, row.Name, func(rec *store.Record) {
			switch row.Slot {
			case SlotFlag:
				rec.Flag = row.DataURL
			case SlotPhoto:
				rec.Photo = row.DataURL
			}
		})
	}
	res.count(err, log, 0)
	return res
}
