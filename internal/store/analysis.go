package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	evierrors "github.com/evidence-toolkit/evitool/internal/errors"
	"github.com/evidence-toolkit/evitool/internal/schema"
)

// GetAnalysis returns the validated UnifiedAnalysis for hash, or (nil, nil)
// if the hash is ingested but has not been analyzed yet.
func (s *Store) GetAnalysis(hash schema.SHA256Hex) (*schema.UnifiedAnalysis, error) {
	data, err := os.ReadFile(s.analysisPath(hash))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var ua schema.UnifiedAnalysis
	if err := json.Unmarshal(data, &ua); err != nil {
		return nil, evierrors.Wrapf(err, evierrors.SchemaValidation, evierrors.SeverityFatal,
			"corrupt analysis.v1.json for %s", hash)
	}
	custody, err := s.readCustody(hash)
	if err != nil {
		return nil, err
	}
	ua.ChainOfCustody = custody
	if err := ua.Validate(); err != nil {
		return nil, err
	}
	return &ua, nil
}

// SaveAnalysis validates analysis, overwrites analysis.v1.json, appends an
// `analyze` custody event, and creates label links for each of its labels.
// hash must already be ingested.
func (s *Store) SaveAnalysis(hash schema.SHA256Hex, analysis schema.UnifiedAnalysis, actor string) error {
	if !s.hashKnown(hash) {
		return evierrors.StoreConsistencyErr("cannot save analysis: hash not ingested: " + string(hash))
	}
	if err := analysis.Validate(); err != nil {
		return err
	}

	if err := s.writeJSONAtomic(s.analysisPath(hash), analysis); err != nil {
		return err
	}

	event := schema.ChainOfCustodyEvent{
		Timestamp:   time.Now().UTC(),
		EventType:   schema.CustodyAnalyze,
		Actor:       actor,
		Description: "analyzed as " + string(analysis.EvidenceType),
	}
	if err := s.appendCustody(hash, event); err != nil {
		return err
	}

	ext := analysis.Metadata.Extension
	for _, label := range analysis.Labels {
		if _, err := s.linkInto(s.rawOriginalPath(hash, ext), s.labelLinkPath(label, hash, ext)); err != nil {
			return evierrors.IngestErr(err, "link label "+label)
		}
	}

	if s.index != nil {
		if err := s.index.MarkAnalyzed(context.Background(), hash); err != nil {
			s.log.Warn("index: mark analyzed failed", "sha256", hash, "error", err)
		}
	}
	return nil
}

// GetOriginalPath returns the path to hash's raw original, or "" if hash is
// unknown to the store.
func (s *Store) GetOriginalPath(hash schema.SHA256Hex) (string, error) {
	dir := s.rawDir(hash)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if !e.IsDir() {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", nil
}
