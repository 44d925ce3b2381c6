package store

import (
	"path/filepath"

	"github.com/evidence-toolkit/evitool/internal/schema"
)

func (s *Store) path(parts ...string) string {
	return filepath.Join(append([]string{s.root}, parts...)...)
}

func rawDirName(hash schema.SHA256Hex) string {
	return "sha256=" + string(hash)
}

func (s *Store) rawDir(hash schema.SHA256Hex) string {
	return s.path("raw", rawDirName(hash))
}

func (s *Store) rawOriginalPath(hash schema.SHA256Hex, ext string) string {
	return filepath.Join(s.rawDir(hash), "original"+ext)
}

func (s *Store) derivedDir(hash schema.SHA256Hex) string {
	return s.path("derived", rawDirName(hash))
}

func (s *Store) metadataPath(hash schema.SHA256Hex) string {
	return filepath.Join(s.derivedDir(hash), "metadata.json")
}

func (s *Store) analysisPath(hash schema.SHA256Hex) string {
	return filepath.Join(s.derivedDir(hash), "analysis.v1.json")
}

func (s *Store) bundlePath(hash schema.SHA256Hex) string {
	return filepath.Join(s.derivedDir(hash), "evidence_bundle.v1.json")
}

func (s *Store) custodyPath(hash schema.SHA256Hex) string {
	return filepath.Join(s.derivedDir(hash), "chain_of_custody.json")
}

func (s *Store) exifPath(hash schema.SHA256Hex) string {
	return filepath.Join(s.derivedDir(hash), "exif.json")
}

func (s *Store) caseLinkDir(caseID string) string {
	return s.path("cases", caseID)
}

func (s *Store) caseLinkPath(caseID string, hash schema.SHA256Hex, ext string) string {
	return filepath.Join(s.caseLinkDir(caseID), string(hash)+ext)
}

func (s *Store) labelLinkDir(label string) string {
	return s.path("labels", label)
}

func (s *Store) labelLinkPath(label string, hash schema.SHA256Hex, ext string) string {
	return filepath.Join(s.labelLinkDir(label), string(hash)+ext)
}
