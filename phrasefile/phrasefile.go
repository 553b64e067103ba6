// Package phrasefile bootstraps a phrase engine from a directory of
// JSON seed files.
//
// Each file is named <key>.json and holds an array of single-entry
// objects mapping an intent key to one phrase wording:
//
//	[
//	  {"greeting": "Hello"},
//	  {"greeting": "Hi there"},
//	  {"": "hiya"}
//	]
//
// An empty object key falls back to the key derived from the file
// name, so a file can seed several intents or just its own.
package phrasefile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mindset-labs/phrasematch"
)

// FileReport describes the outcome of loading one seed file.
type FileReport struct {
	// Path is the seed file that produced this report.
	Path string `json:"path"`

	// Reports holds one ingestion report per intent key found in the
	// file.
	Reports []*phrasematch.Report `json:"reports,omitempty"`

	// Err is set when the file could not be read or parsed. Phrase
	// level failures live inside Reports instead.
	Err error `json:"-"`
}

// LoadDir reads every *.json file in dir and adds its phrases to the
// engine. Files are processed in lexical order so repeated runs behave
// the same way. A file that fails to parse is reported and skipped;
// the remaining files still load.
func LoadDir(ctx context.Context, engine *phrasematch.Engine, dir string) ([]FileReport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading phrase directory %q: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var reports []FileReport
	for _, name := range names {
		path := filepath.Join(dir, name)
		defaultKey := strings.TrimSuffix(name, ".json")
		reports = append(reports, loadFile(ctx, engine, path, defaultKey))
	}
	return reports, nil
}

// LoadFile reads a single seed file and adds its phrases to the
// engine, using the file name (without extension) as the default key.
func LoadFile(ctx context.Context, engine *phrasematch.Engine, path string) (FileReport, error) {
	defaultKey := strings.TrimSuffix(filepath.Base(path), ".json")
	report := loadFile(ctx, engine, path, defaultKey)
	return report, report.Err
}

func loadFile(ctx context.Context, engine *phrasematch.Engine, path, defaultKey string) FileReport {
	report := FileReport{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		report.Err = fmt.Errorf("reading phrase file %q: %w", path, err)
		return report
	}

	var objects []map[string]string
	if err := json.Unmarshal(data, &objects); err != nil {
		report.Err = fmt.Errorf("parsing phrase file %q: %w", path, err)
		return report
	}

	// Group phrases by key so each key gets a single AddPhrase call,
	// preserving the order in which wordings appear in the file.
	byKey := make(map[string][]string)
	var keyOrder []string
	for _, object := range objects {
		for key, phrase := range object {
			if key == "" {
				key = defaultKey
			}
			if _, seen := byKey[key]; !seen {
				keyOrder = append(keyOrder, key)
			}
			byKey[key] = append(byKey[key], phrase)
		}
	}

	for _, key := range keyOrder {
		added, err := engine.AddPhrase(ctx, key, byKey[key])
		if err != nil {
			report.Err = fmt.Errorf("adding phrases for key %q from %q: %w", key, path, err)
			return report
		}
		report.Reports = append(report.Reports, added)
	}
	return report
}
