package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/evidence-toolkit/evitool/internal/schema"
)

// hashFile computes the SHA256 of the file at path without loading it
// entirely into memory.
func hashFile(path string) (schema.SHA256Hex, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return schema.SHA256Hex(hex.EncodeToString(h.Sum(nil))), nil
}

// writeFileAtomic writes data to a temp file under the store's tmp/
// directory, then renames it into place. Rename is atomic on a single
// filesystem, so readers never observe a partially written file.
func (s *Store) writeFileAtomic(dest string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.path("tmp"), "write-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, dest)
}

// writeJSONAtomic marshals v and writes it with a trailing newline, per
// the store's "all JSON files are UTF-8 with a trailing newline" rule.
func (s *Store) writeJSONAtomic(dest string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(dest), err)
	}
	data = append(data, '\n')
	return s.writeFileAtomic(dest, data)
}

// copyFileAtomic copies src to a dest path via a temp-then-rename, used
// for the raw original (we never want readers to see a half-copied file).
func (s *Store) copyFileAtomic(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.path("tmp"), "copy-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, dest)
}

// linkInto creates a hard link at dest pointing at src, falling back to a
// plain copy (and reporting that fallback) when the filesystem doesn't
// support hard links across the two paths (e.g. distinct volumes).
func (s *Store) linkInto(src, dest string) (usedCopy bool, err error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return false, err
	}
	if s.linkMode == LinkCopy {
		return true, s.copyFileAtomic(src, dest)
	}
	if err := os.Link(src, dest); err != nil {
		if copyErr := s.copyFileAtomic(src, dest); copyErr != nil {
			return false, copyErr
		}
		return true, nil
	}
	return false, nil
}
