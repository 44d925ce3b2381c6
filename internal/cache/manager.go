package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"github.com/evidence-toolkit/evitool/internal/logging"
	"github.com/evidence-toolkit/evitool/internal/schema"
)

// Manager fronts the local bbolt tier and an optional remote redis tier.
// Remote may be nil: a miss there is treated the same as a miss, and Set
// only writes to it when present.
type Manager struct {
	local  *BoltCache
	remote *RemoteCache
	log    *logging.Logger
}

// NewManager builds a Manager over local (required) and remote (optional,
// pass nil to run local-only).
func NewManager(local *BoltCache, remote *RemoteCache) *Manager {
	return &Manager{local: local, remote: remote, log: logging.With("component", "cache-manager")}
}

// SnapshotKey derives a cache key from a case id and the sorted set of
// evidence hashes it currently contains: an ingest or prune that changes
// the hash set changes the key, so such a stale entry is simply never
// looked up again. The key does not depend on analysis contents, so a
// re-analysis of the same evidence set leaves the key unchanged.
func SnapshotKey(caseID string, hashes []schema.SHA256Hex) string {
	sorted := make([]string, len(hashes))
	for i, h := range hashes {
		sorted[i] = string(h)
	}
	sort.Strings(sorted)

	h := sha256.New()
	h.Write([]byte(caseID))
	for _, s := range sorted {
		h.Write([]byte{0})
		h.Write([]byte(s))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// GetCorrelation returns a cached CorrelationAnalysis for key, promoting
// a remote hit into the local tier so the next call is local-only.
func (m *Manager) GetCorrelation(ctx context.Context, key string) (*schema.CorrelationAnalysis, bool, error) {
	var result schema.CorrelationAnalysis
	found, err := m.local.get(bucketCorrelation, key, &result)
	if err != nil {
		return nil, false, err
	}
	if found {
		return &result, true, nil
	}
	if m.remote == nil {
		return nil, false, nil
	}
	found, err = m.remote.get(ctx, correlationRemoteKey(key), &result)
	if err != nil || !found {
		return nil, false, err
	}
	if err := m.local.set(bucketCorrelation, key, result); err != nil {
		m.log.Warn("failed to promote remote correlation hit into local cache", "error", err)
	}
	return &result, true, nil
}

// SetCorrelation writes analysis to both tiers.
func (m *Manager) SetCorrelation(ctx context.Context, key string, analysis schema.CorrelationAnalysis) error {
	if err := m.local.set(bucketCorrelation, key, analysis); err != nil {
		return err
	}
	if m.remote != nil {
		if err := m.remote.set(ctx, correlationRemoteKey(key), analysis); err != nil {
			m.log.Warn("failed to write correlation to remote cache", "error", err)
		}
	}
	return nil
}

// GetCaseSummary returns a cached CaseSummary for key, promoting a remote
// hit into the local tier.
func (m *Manager) GetCaseSummary(ctx context.Context, key string) (*schema.CaseSummary, bool, error) {
	var result schema.CaseSummary
	found, err := m.local.get(bucketCaseSummary, key, &result)
	if err != nil {
		return nil, false, err
	}
	if found {
		return &result, true, nil
	}
	if m.remote == nil {
		return nil, false, nil
	}
	found, err = m.remote.get(ctx, summaryRemoteKey(key), &result)
	if err != nil || !found {
		return nil, false, err
	}
	if err := m.local.set(bucketCaseSummary, key, result); err != nil {
		m.log.Warn("failed to promote remote case summary hit into local cache", "error", err)
	}
	return &result, true, nil
}

// SetCaseSummary writes summary to both tiers.
func (m *Manager) SetCaseSummary(ctx context.Context, key string, summary schema.CaseSummary) error {
	if err := m.local.set(bucketCaseSummary, key, summary); err != nil {
		return err
	}
	if m.remote != nil {
		if err := m.remote.set(ctx, summaryRemoteKey(key), summary); err != nil {
			m.log.Warn("failed to write case summary to remote cache", "error", err)
		}
	}
	return nil
}

// Invalidate drops key from both tiers for both value kinds, for an
// explicit drop of a cached entry; no write path in the store or CLI
// calls it.
func (m *Manager) Invalidate(ctx context.Context, key string) error {
	if err := m.local.delete(bucketCorrelation, key); err != nil {
		return err
	}
	if err := m.local.delete(bucketCaseSummary, key); err != nil {
		return err
	}
	if m.remote != nil {
		_ = m.remote.delete(ctx, correlationRemoteKey(key))
		_ = m.remote.delete(ctx, summaryRemoteKey(key))
	}
	return nil
}

// Close releases the local tier's file lock and the remote tier's
// connection, if present.
func (m *Manager) Close() error {
	if m.remote != nil {
		if err := m.remote.Close(); err != nil {
			return err
		}
	}
	return m.local.Close()
}

func correlationRemoteKey(key string) string {
	return "evitool:correlation:" + key
}

func summaryRemoteKey(key string) string {
	return "evitool:case_summary:" + key
}
