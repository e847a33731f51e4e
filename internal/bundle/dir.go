// SPDX-License-Identifier: MIT

package bundle

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ManuGH/incidentmap/internal/ingest"
	xglog "github.com/ManuGH/incidentmap/internal/log"
)

// DirSource reads a bundle from a local folder, recursing into
// subdirectories. Encrypted files are decrypted when Decrypter is set and
// skipped with a warning otherwise.
type DirSource struct {
	Dir       string
	Decrypter *Decrypter
}

// Describe implements Source.
func (d *DirSource) Describe() string {
	return "dir:" + d.Dir
}

// Fetch implements Source.
func (d *DirSource) Fetch(ctx context.Context) (*Bundle, error) {
	logger := xglog.WithComponentFromContext(ctx, "bundle")
	b := &Bundle{}

	err := filepath.WalkDir(d.Dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if entry.IsDir() {
			if path != d.Dir && strings.HasPrefix(entry.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(entry.Name(), ".") {
			return nil
		}

		rel, err := filepath.Rel(d.Dir, path)
		if err != nil {
			return err
		}
		src, ok := ingest.Classify(filepath.ToSlash(rel))
		if !ok {
			logger.Debug().Str(xglog.FieldPath, rel).Msg("ignoring unrecognised file")
			return nil
		}

		// #nosec G304 -- paths come from walking the configured data directory
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", rel, err)
		}

		encrypted := strings.HasSuffix(entry.Name(), ingest.EncryptedSuffix)
		if encrypted {
			if d.Decrypter == nil {
				b.Warn(fmt.Sprintf("%s: encrypted file skipped, no password configured", rel))
				return nil
			}
			if data, err = d.Decrypter.Decrypt(data); err != nil {
				return fmt.Errorf("%s: %w", rel, err)
			}
		}

		b.Files = append(b.Files, File{Source: src, Data: data, Encrypted: encrypted})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(b.Files) == 0 {
		return nil, fmt.Errorf("%s: %w", d.Dir, ErrNoFiles)
	}

	SortFiles(b.Files)
	return b, nil
}
