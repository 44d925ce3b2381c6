package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/evidence-toolkit/evitool/internal/schema"
)

func hashFromLinkName(name string) schema.SHA256Hex {
	ext := filepath.Ext(name)
	return schema.SHA256Hex(strings.TrimSuffix(name, ext))
}

// ListCase returns the hashes linked under cases/<caseID>, ordered by each
// hash's first `ingest` custody timestamp ascending, hash ascending as a
// tie-break. When a secondary index is attached it answers the query
// instead of walking the filesystem; any index error falls back to the
// filesystem scan rather than failing the call.
func (s *Store) ListCase(caseID string) ([]schema.SHA256Hex, error) {
	if s.index != nil {
		if hashes, err := s.index.ListCase(context.Background(), caseID); err == nil {
			return hashes, nil
		} else {
			s.log.Warn("index: list_case failed, falling back to filesystem", "case_id", caseID, "error", err)
		}
	}

	entries, err := os.ReadDir(s.caseLinkDir(caseID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	hashes := make([]schema.SHA256Hex, 0, len(entries))
	firstIngest := make(map[schema.SHA256Hex]int64, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		hash := hashFromLinkName(e.Name())
		hashes = append(hashes, hash)

		events, err := s.readCustody(hash)
		if err != nil {
			return nil, err
		}
		ts := int64(0)
		for _, ev := range events {
			if ev.EventType == schema.CustodyIngest {
				ts = ev.Timestamp.UnixNano()
				break
			}
		}
		firstIngest[hash] = ts
	}

	sort.Slice(hashes, func(i, j int) bool {
		ti, tj := firstIngest[hashes[i]], firstIngest[hashes[j]]
		if ti != tj {
			return ti < tj
		}
		return hashes[i] < hashes[j]
	})
	return hashes, nil
}

// ListAll returns every hash known to the store (i.e. present under raw/),
// in ascending lexical order.
func (s *Store) ListAll() ([]schema.SHA256Hex, error) {
	entries, err := os.ReadDir(s.path("raw"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var hashes []schema.SHA256Hex
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		const prefix = "sha256="
		if strings.HasPrefix(name, prefix) {
			hashes = append(hashes, schema.SHA256Hex(strings.TrimPrefix(name, prefix)))
		}
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })
	return hashes, nil
}

// Stats aggregates counts and sizes across the whole store.
type Stats struct {
	EvidenceCount int
	TotalBytes    int64
	AnalyzedCount int
	CaseCount     int
	LabelCount    int
}

// Stats computes aggregate counts and sizes across the entire store. When
// a secondary index is attached it answers the query instead of scanning
// every hash's metadata; any index error falls back to the filesystem
// scan rather than failing the call.
func (s *Store) Stats() (Stats, error) {
	if s.index != nil {
		if idxStats, err := s.index.Stats(context.Background()); err == nil {
			st := Stats{
				EvidenceCount: idxStats.EvidenceCount,
				TotalBytes:    idxStats.TotalBytes,
				AnalyzedCount: idxStats.AnalyzedCount,
				CaseCount:     idxStats.CaseCount,
			}
			// The index doesn't track label indirection, so label count
			// still comes from a cheap filesystem listing.
			if entries, err := os.ReadDir(s.path("labels")); err == nil {
				for _, e := range entries {
					if e.IsDir() {
						st.LabelCount++
					}
				}
			}
			return st, nil
		} else {
			s.log.Warn("index: stats failed, falling back to filesystem", "error", err)
		}
	}

	hashes, err := s.ListAll()
	if err != nil {
		return Stats{}, err
	}

	var st Stats
	st.EvidenceCount = len(hashes)
	for _, h := range hashes {
		if data, err := os.ReadFile(s.metadataPath(h)); err == nil {
			var meta schema.FileMetadata
			if json.Unmarshal(data, &meta) == nil {
				st.TotalBytes += meta.FileSize
			}
		}
		if _, err := os.Stat(s.analysisPath(h)); err == nil {
			st.AnalyzedCount++
		}
	}

	if entries, err := os.ReadDir(s.path("cases")); err == nil {
		for _, e := range entries {
			if e.IsDir() {
				st.CaseCount++
			}
		}
	}
	if entries, err := os.ReadDir(s.path("labels")); err == nil {
		for _, e := range entries {
			if e.IsDir() {
				st.LabelCount++
			}
		}
	}
	return st, nil
}

// CleanupResult reports what Cleanup removed (or would remove, in dry-run).
type CleanupResult struct {
	BrokenLinksRemoved []string
	EmptyDirsRemoved   []string
}

// Cleanup removes broken hard links (links whose raw target no longer
// exists) under cases/ and labels/, and any case or label directory left
// empty as a result. Raw files are never removed by Cleanup.
func (s *Store) Cleanup(dryRun bool) (CleanupResult, error) {
	var result CleanupResult

	for _, root := range []string{"cases", "labels"} {
		dirs, err := os.ReadDir(s.path(root))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return result, err
		}
		for _, dir := range dirs {
			if !dir.IsDir() {
				continue
			}
			dirPath := s.path(root, dir.Name())
			entries, err := os.ReadDir(dirPath)
			if err != nil {
				return result, err
			}
			remaining := 0
			for _, e := range entries {
				linkPath := filepath.Join(dirPath, e.Name())
				hash := hashFromLinkName(e.Name())
				if s.GetOriginalPathMust(hash) == "" {
					result.BrokenLinksRemoved = append(result.BrokenLinksRemoved, linkPath)
					if !dryRun {
						os.Remove(linkPath)
					}
					continue
				}
				remaining++
			}
			if remaining == 0 && len(entries) > 0 {
				result.EmptyDirsRemoved = append(result.EmptyDirsRemoved, dirPath)
				if !dryRun {
					os.Remove(dirPath)
				}
			}
		}
	}
	return result, nil
}

// GetOriginalPathMust is GetOriginalPath with errors swallowed to "",
// for use in internal best-effort checks like Cleanup.
func (s *Store) GetOriginalPathMust(hash schema.SHA256Hex) string {
	p, err := s.GetOriginalPath(hash)
	if err != nil {
		return ""
	}
	return p
}

// caseIDsForHash returns every case directory that currently links hash.
func (s *Store) caseIDsForHash(hash schema.SHA256Hex) ([]string, error) {
	dirs, err := os.ReadDir(s.path("cases"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var caseIDs []string
	for _, dir := range dirs {
		if !dir.IsDir() {
			continue
		}
		entries, err := os.ReadDir(s.path("cases", dir.Name()))
		if err != nil {
			continue
		}
		for _, e := range entries {
			if hashFromLinkName(e.Name()) == hash {
				caseIDs = append(caseIDs, dir.Name())
				break
			}
		}
	}
	return caseIDs, nil
}

// PruneResult reports which hashes PruneCase removed (or would remove).
type PruneResult struct {
	Removed []schema.SHA256Hex
}

// PruneCase removes every hash whose only case association is caseID:
// its case link, its raw original, and its derived/ directory. Evidence
// shared with any other case is left untouched.
func (s *Store) PruneCase(caseID string, dryRun bool) (PruneResult, error) {
	var result PruneResult

	hashes, err := s.ListCase(caseID)
	if err != nil {
		return result, err
	}

	for _, hash := range hashes {
		caseIDs, err := s.caseIDsForHash(hash)
		if err != nil {
			return result, err
		}
		if len(caseIDs) != 1 || caseIDs[0] != caseID {
			continue
		}

		result.Removed = append(result.Removed, hash)
		if dryRun {
			continue
		}
		ext := filepath.Ext(s.GetOriginalPathMust(hash))
		os.RemoveAll(s.rawDir(hash))
		os.RemoveAll(s.derivedDir(hash))
		os.Remove(s.caseLinkPath(caseID, hash, ext))
		if s.index != nil {
			if err := s.index.Remove(context.Background(), hash); err != nil {
				s.log.Warn("index: remove failed", "sha256", hash, "error", err)
			}
		}
	}

	if !dryRun {
		s.pruneEmptyLabelLinks(hashes)
	}
	return result, nil
}

// pruneEmptyLabelLinks removes label links that now point at hashes PruneCase
// just deleted.
func (s *Store) pruneEmptyLabelLinks(hashes []schema.SHA256Hex) {
	labelDirs, err := os.ReadDir(s.path("labels"))
	if err != nil {
		return
	}
	removed := map[schema.SHA256Hex]bool{}
	for _, h := range hashes {
		if _, err := os.Stat(s.rawDir(h)); os.IsNotExist(err) {
			removed[h] = true
		}
	}
	for _, dir := range labelDirs {
		if !dir.IsDir() {
			continue
		}
		entries, err := os.ReadDir(s.path("labels", dir.Name()))
		if err != nil {
			continue
		}
		for _, e := range entries {
			if removed[hashFromLinkName(e.Name())] {
				os.Remove(s.path("labels", dir.Name(), e.Name()))
			}
		}
	}
}
