package store

import (
	"encoding/json"
	"os"

	evierrors "github.com/evidence-toolkit/evitool/internal/errors"
	"github.com/evidence-toolkit/evitool/internal/schema"
)

// ReadMetadata returns the FileMetadata recorded at ingest time for hash.
func (s *Store) ReadMetadata(hash schema.SHA256Hex) (schema.FileMetadata, error) {
	data, err := os.ReadFile(s.metadataPath(hash))
	if os.IsNotExist(err) {
		return schema.FileMetadata{}, evierrors.StoreConsistencyErr("hash not ingested: " + string(hash))
	}
	if err != nil {
		return schema.FileMetadata{}, err
	}
	var meta schema.FileMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return schema.FileMetadata{}, evierrors.Wrapf(err, evierrors.SchemaValidation, evierrors.SeverityFatal,
			"corrupt metadata.json for %s", hash)
	}
	return meta, nil
}

// CaseIDs returns every case currently associated with hash.
func (s *Store) CaseIDs(hash schema.SHA256Hex) ([]string, error) {
	return s.caseIDsForHash(hash)
}

// ReadEXIF returns the EXIF map for hash, or nil if none was extracted.
func (s *Store) ReadEXIF(hash schema.SHA256Hex) (map[string]interface{}, error) {
	data, err := os.ReadFile(s.exifPath(hash))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var exif map[string]interface{}
	if err := json.Unmarshal(data, &exif); err != nil {
		return nil, err
	}
	return exif, nil
}
