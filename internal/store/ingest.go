package store

import (
	"context"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	evierrors "github.com/evidence-toolkit/evitool/internal/errors"
	"github.com/evidence-toolkit/evitool/internal/schema"
	"github.com/evidence-toolkit/evitool/internal/store/index"
)

// IngestResult reports the outcome of a single ingest call.
type IngestResult struct {
	SHA256        schema.SHA256Hex
	AlreadyExists bool
	LinkMode      string
}

// Ingest computes filePath's content hash and either links it to caseID
// (if the hash is already known to the store) or copies it into raw/,
// writes its metadata and first custody event, and links it to caseID.
// EXIF is extracted for image files as a best-effort side effect; a
// failure to parse EXIF does not fail the ingest.
func (s *Store) Ingest(ctx context.Context, filePath, caseID, actor string) (IngestResult, error) {
	if err := ctx.Err(); err != nil {
		return IngestResult{}, evierrors.CancelRequestedErr()
	}

	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return IngestResult{}, evierrors.IngestErr(err, "file not found: "+filePath)
		}
		return IngestResult{}, evierrors.IngestErr(err, "stat "+filePath)
	}

	hash, err := hashFile(filePath)
	if err != nil {
		return IngestResult{}, evierrors.IngestErr(err, "hash "+filePath)
	}

	ext := filepath.Ext(filePath)
	now := time.Now().UTC()

	exists := s.hashKnown(hash)
	if exists {
		usedCopy, err := s.linkInto(s.rawOriginalPath(hash, ext), s.caseLinkPath(caseID, hash, ext))
		if err != nil {
			return IngestResult{}, evierrors.IngestErr(err, "link existing evidence into case "+caseID)
		}
		linkMode := s.linkMode
		if usedCopy {
			linkMode = LinkCopy
		}
		event := schema.ChainOfCustodyEvent{
			Timestamp:   now,
			EventType:   schema.CustodyCaseAssociation,
			Actor:       actor,
			Description: "associated existing evidence with case " + caseID,
		}
		if usedCopy {
			event.Metadata = map[string]interface{}{"link_mode": LinkCopy}
		}
		if err := s.appendCustody(hash, event); err != nil {
			return IngestResult{}, err
		}
		s.log.Info("ingest: case association", "sha256", hash, "case_id", caseID)
		if s.index != nil {
			if meta, err := s.ReadMetadata(hash); err == nil {
				// The first ingest time keeps the index's case order the
				// same as ListCase's filesystem order.
				s.indexUpsert(hash, caseID, meta, meta.CreatedTime)
			}
		}
		return IngestResult{SHA256: hash, AlreadyExists: true, LinkMode: linkMode}, nil
	}

	if err := s.copyFileAtomic(filePath, s.rawOriginalPath(hash, ext)); err != nil {
		return IngestResult{}, evierrors.IngestErr(err, "copy into raw store")
	}

	mimeType := detectMimeType(filePath, ext)
	metadata := schema.FileMetadata{
		Filename:     filepath.Base(filePath),
		FileSize:     info.Size(),
		MimeType:     mimeType,
		CreatedTime:  now,
		ModifiedTime: info.ModTime().UTC(),
		Extension:    ext,
		SHA256:       hash,
	}
	if err := metadata.Validate(); err != nil {
		return IngestResult{}, err
	}
	if err := s.writeJSONAtomic(s.metadataPath(hash), metadata); err != nil {
		return IngestResult{}, err
	}

	ingestEvent := schema.ChainOfCustodyEvent{
		Timestamp:   now,
		EventType:   schema.CustodyIngest,
		Actor:       actor,
		Description: "ingested " + metadata.Filename,
	}
	if err := s.appendCustody(hash, ingestEvent); err != nil {
		return IngestResult{}, err
	}

	usedCopy, err := s.linkInto(s.rawOriginalPath(hash, ext), s.caseLinkPath(caseID, hash, ext))
	if err != nil {
		return IngestResult{}, evierrors.IngestErr(err, "link into case "+caseID)
	}
	linkMode := s.linkMode
	if usedCopy {
		linkMode = LinkCopy
	}

	if strings.HasPrefix(mimeType, "image/") {
		if exif, err := extractEXIF(s.rawOriginalPath(hash, ext)); err == nil && len(exif) > 0 {
			_ = s.writeJSONAtomic(s.exifPath(hash), exif)
		} else if err != nil {
			s.log.Debug("exif extraction skipped", "sha256", hash, "error", err)
		}
	}

	s.log.Info("ingest: new evidence", "sha256", hash, "case_id", caseID, "bytes", info.Size())
	if s.index != nil {
		s.indexUpsert(hash, caseID, metadata, now)
	}
	return IngestResult{SHA256: hash, AlreadyExists: false, LinkMode: linkMode}, nil
}

// indexUpsert mirrors an ingested hash into the optional secondary index.
// The filesystem store is already durable by this point, so an index
// failure is logged and swallowed rather than failing the caller.
func (s *Store) indexUpsert(hash schema.SHA256Hex, caseID string, meta schema.FileMetadata, ingestedAt time.Time) {
	rec := index.Record{
		SHA256:     hash,
		CaseID:     caseID,
		Filename:   meta.Filename,
		MimeType:   meta.MimeType,
		FileSize:   meta.FileSize,
		IngestedAt: ingestedAt,
	}
	if err := s.index.Upsert(context.Background(), rec); err != nil {
		s.log.Warn("index: upsert failed", "sha256", hash, "case_id", caseID, "error", err)
	}
}

func (s *Store) hashKnown(hash schema.SHA256Hex) bool {
	_, err := os.Stat(s.metadataPath(hash))
	return err == nil
}

// detectMimeType prefers the extension-registered type and falls back to
// content sniffing, matching the stdlib's own DetectContentType fallback
// order for files with unregistered or missing extensions.
func detectMimeType(path, ext string) string {
	if t := mime.TypeByExtension(ext); t != "" {
		if i := strings.Index(t, ";"); i >= 0 {
			t = t[:i]
		}
		return t
	}
	f, err := os.Open(path)
	if err != nil {
		return "application/octet-stream"
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, _ := f.Read(buf)
	return http.DetectContentType(buf[:n])
}
