package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironvale/configcore/internal/configstore"
	"github.com/ironvale/configcore/internal/infrastructure/logging"
)

// fileExtensions are tried for each candidate basename, in order.
var fileExtensions = []string{".json", ".yaml", ".yml"}

// File loads layered configuration documents from a directory. For an
// identity it considers up to four candidate basenames, lowest priority
// first:
//
//	config               global defaults
//	config.<environment> per-environment overlay
//	<service>            per-service overlay
//	<user>               per-user overlay
//
// Each document is flattened to dot-delimited keys and merged key-by-key
// over the previous layer. Missing files are normal; unreadable or
// unparsable files are logged and skipped.
type File struct {
	dir    string
	id     configstore.Identity
	logger *logging.Logger
}

// NewFile creates a file provider rooted at dir for the given identity.
func NewFile(dir string, id configstore.Identity, logger *logging.Logger) *File {
	if logger == nil {
		logger = logging.Default()
	}
	return &File{dir: dir, id: id, logger: logger.With("component", "provider.file")}
}

// Name identifies the provider in logs.
func (*File) Name() string { return "file" }

// Source reports the provenance of file-loaded entries.
func (*File) Source() configstore.Source { return configstore.SourceConfigFile }

// Load reads and merges every candidate document. It only returns an error
// when the directory itself is unusable; individual files are best-effort.
func (p *File) Load(_ context.Context) ([]configstore.Seed, error) {
	if p.dir == "" {
		return nil, nil
	}
	if _, err := os.Stat(p.dir); err != nil {
		return nil, fmt.Errorf("config directory: %w", err)
	}

	merged := make(map[string]any)
	for _, base := range p.candidates() {
		for _, ext := range fileExtensions {
			path := filepath.Join(p.dir, base+ext)
			doc, err := parseDocument(path)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				p.logger.Warn("skipping unreadable config file", "path", path, "error", err)
				continue
			}
			for k, v := range Flatten(doc) {
				merged[k] = v
			}
			p.logger.Debug("config file merged", "path", path)
		}
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	seeds := make([]configstore.Seed, 0, len(keys))
	for _, k := range keys {
		seeds = append(seeds, configstore.Seed{Key: k, Value: merged[k]})
	}
	return seeds, nil
}

// candidates returns the ordered basenames for this identity. Later
// basenames override earlier ones.
func (p *File) candidates() []string {
	bases := []string{"config"}
	if p.id.Environment != "" {
		bases = append(bases, "config."+p.id.Environment)
	}
	if p.id.Service != "" {
		bases = append(bases, p.id.Service)
	}
	if p.id.User != "" {
		bases = append(bases, p.id.User)
	}
	return bases
}

// parseDocument reads one file and unmarshals it by extension.
func parseDocument(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc := make(map[string]any)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
	}
	return doc, nil
}

// Flatten converts a nested document into dot-delimited keys. Arrays and
// scalars are leaves; only nested objects recurse.
func Flatten(doc map[string]any) map[string]any {
	out := make(map[string]any)
	flattenInto(out, "", doc)
	return out
}

func flattenInto(out map[string]any, prefix string, doc map[string]any) {
	for k, v := range doc {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			flattenInto(out, key, nested)
			continue
		}
		out[key] = v
	}
}
