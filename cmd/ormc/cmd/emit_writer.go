package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/svt/orm/internal/pipeline"
)

// writeEmittedConfigs serializes the emitter's structured output to
// --output-dir as JSON: one file per domain's cache-tier config plus
// one load-balancer config. Rendering this into actual VCL/LB config
// text is the text-template engine's job, not ormc's (spec.md §6/§7);
// ormc's contract ends at handing over well-formed, already-escaped
// values.
func writeEmittedConfigs(outputDir string, result *pipeline.Result) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	for domain, cfg := range result.CacheTier {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling cache-tier config for %q: %w", domain, err)
		}
		path := filepath.Join(outputDir, sanitizeFilename(domain)+".cachetier.json")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}

	if result.LBTier != nil {
		data, err := json.MarshalIndent(result.LBTier, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling lb-tier config: %w", err)
		}
		path := filepath.Join(outputDir, "lbtier.json")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}

	return nil
}

func sanitizeFilename(domain string) string {
	out := make([]rune, 0, len(domain))
	for _, r := range domain {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
