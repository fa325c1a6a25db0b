package postprocessors

import (
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/postprocessors/chunker"
)

// ChunkerName is the registry name of the character splitter.
const ChunkerName = "chunker"

// RegisterDefaults registers all built-in splitters with the registry.
func RegisterDefaults(r *Registry) {
	r.Register(ChunkerName, buildChunker)
}

// SplitterFromSettings returns the configured splitter, or nil when
// splitting is disabled and every page becomes one chunk.
func SplitterFromSettings(s domain.SplitterSettings) (driven.TextSplitter, error) {
	if !s.Enabled {
		return nil, nil
	}
	r := NewRegistry()
	RegisterDefaults(r)
	return r.Build(ChunkerName, map[string]any{
		"chunk_size": s.ChunkSize,
		"overlap":    s.Overlap,
		"separator":  s.Separator,
	})
}

// buildChunker creates a chunker from generic config.
// Supported config keys:
//   - chunk_size (int): Characters per chunk (default: 800)
//   - overlap (int): Overlapping characters between chunks (default: 200)
//   - separator (string): Split point (default: "\n")
func buildChunker(cfg map[string]any) (driven.TextSplitter, error) {
	var opts []chunker.Option

	if cfg != nil {
		if size := getIntFromConfig(cfg, "chunk_size"); size > 0 {
			opts = append(opts, chunker.WithChunkSize(size))
		}
		if _, ok := cfg["overlap"]; ok {
			opts = append(opts, chunker.WithOverlap(getIntFromConfig(cfg, "overlap")))
		}
		if sep, ok := cfg["separator"].(string); ok {
			opts = append(opts, chunker.WithSeparator(sep))
		}
	}

	return chunker.New(opts...), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
