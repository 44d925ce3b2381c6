package main

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// defaultCaseSummaryPath is where `summarise` writes a CaseSummary when
// --out isn't given, and where `generate-reports` looks for one when no
// explicit path is passed.
func defaultCaseSummaryPath(caseID string) string {
	return filepath.Join(cfg.Store.RootDir, "cases", caseID, "case_summary.json")
}

// writeJSONFile marshals v as indented JSON with a trailing newline
// (spec §6: "All JSON files are UTF-8 with a trailing newline"), creating
// any missing parent directories.
func writeJSONFile(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func readJSONFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// expandIngestPath returns path itself if it's a file, or every regular
// file beneath it (recursively) if it's a directory, so `evitool ingest`
// accepts either a single evidence file or a case folder.
func expandIngestPath(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}
