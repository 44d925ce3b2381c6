package store

import (
	"encoding/json"
	"os"

	evierrors "github.com/evidence-toolkit/evitool/internal/errors"
	"github.com/evidence-toolkit/evitool/internal/schema"
)

// readCustody loads the chain-of-custody list for hash, returning an empty
// slice (not an error) if no custody file exists yet.
func (s *Store) readCustody(hash schema.SHA256Hex) ([]schema.ChainOfCustodyEvent, error) {
	data, err := os.ReadFile(s.custodyPath(hash))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var events []schema.ChainOfCustodyEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, evierrors.Wrapf(err, evierrors.SchemaValidation, evierrors.SeverityFatal,
			"corrupt chain_of_custody.json for %s", hash)
	}
	return events, nil
}

// appendCustody implements the spec's append-with-replace discipline: read
// the whole file, append the event, write to a temp file, rename. This is
// the only way chain_of_custody.json is ever written, so the list is
// append-only from the caller's perspective.
func (s *Store) appendCustody(hash schema.SHA256Hex, event schema.ChainOfCustodyEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}
	events, err := s.readCustody(hash)
	if err != nil {
		return err
	}
	events = append(events, event)
	return s.writeJSONAtomic(s.custodyPath(hash), events)
}
