package rules

import (
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/svt/orm/internal/diag"
)

// ListRuleFiles implements spec.md §4.2 "List rule files": given a glob
// pattern, return the sorted list of regular-file paths. Sorting
// guarantees deterministic rule_id assignment (spec.md §3 Identity,
// P1).
//
// Go's path/filepath.Glob does not support the "**" recursive-wildcard
// shorthand spec.md §6's default (namespaces/**/*.yml) relies on, so a
// "**" segment directly before the file-name part is expanded by walking
// the tree rooted at the pattern's prefix and matching the file-name
// part against each candidate's base name —
// the same "glob with a walk fallback" approach the teacher's ecosystem
// uses via github.com/gobwas/glob for the same reason (plain filepath
// globs can't express recursive wildcards either).
func ListRuleFiles(pattern string, report *diag.Report) []string {
	matches, err := expandGlob(pattern)
	if err != nil {
		report.Fatal(diag.KindInput, diag.Location{File: pattern}, "invalid rule glob: %v", err)
		return nil
	}
	if len(matches) == 0 {
		report.Fatal(diag.KindInput, diag.Location{File: pattern}, "no rule files matched glob %q", pattern)
		return nil
	}
	sort.Strings(matches)
	return matches
}

func expandGlob(pattern string) ([]string, error) {
	dir, file := filepath.Split(pattern)
	if filepath.Base(dir) != "**" {
		return filepath.Glob(pattern)
	}

	root := filepath.Dir(filepath.Clean(dir)) // strip the trailing "**/"
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		ok, err := filepath.Match(file, filepath.Base(path))
		if err != nil {
			return err
		}
		if ok {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}
