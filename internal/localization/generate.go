package localization

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
)

// Asset is the JSON document written for one language.
type Asset struct {
	Language string            `json:"language"`
	Labels   map[string]string `json:"labels"`
}

// Generate writes one <language>.json asset per catalog language into
// outDir and returns the written paths in catalog order. Keys missing from a
// language are filled from the fallback language.
func Generate(c *Catalog, outDir string, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create asset dir: %w", err)
	}

	for lang, keys := range c.Missing() {
		logger.Warn("localization keys missing", "language", lang, "keys", keys)
	}

	fallbackKeys := slices.Sorted(maps.Keys(c.tables[0]))

	paths := make([]string, 0, len(c.tags))
	for i, tag := range c.tags {
		labels := Labels{tag: tag, table: c.tables[i], fallback: c.tables[0]}
		asset := Asset{Language: tag.String(), Labels: make(map[string]string)}
		for k := range c.tables[i] {
			asset.Labels[k] = labels.Get(k)
		}
		for _, k := range fallbackKeys {
			asset.Labels[k] = labels.Get(k)
		}

		out, err := json.MarshalIndent(asset, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", tag, err)
		}
		path := filepath.Join(outDir, tag.String()+".json")
		if err := os.WriteFile(path, append(out, '\n'), 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		logger.Debug("localization asset written", "language", tag.String(), "path", path)
		paths = append(paths, path)
	}
	return paths, nil
}
