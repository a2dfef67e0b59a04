package parser

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// IgnoreFile lists, in gitignore syntax, headers below an input root that
// are never parsed.
const IgnoreFile = ".cxxbindignore"

type source struct {
	name   string
	data   []byte
	system bool
}

// macroPattern matches the export macros, with an argument list when one
// follows immediately: CV_EXPORTS_AS(name).
func macroPattern(macros []string) (*regexp.Regexp, error) {
	seen := make(map[string]bool)
	names := make([]string, 0, len(macros))
	for _, m := range macros {
		if m = strings.TrimSpace(m); m != "" && !seen[m] {
			seen[m] = true
			names = append(names, regexp.QuoteMeta(m))
		}
	}
	if len(names) == 0 {
		return nil, nil
	}
	// longest first, so CV_EXPORTS_W wins over CV_EXPORTS
	sort.SliceStable(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
	re, err := regexp.Compile(`\b(?:` + strings.Join(names, "|") + `)\b(?:\([^()\n]*\))?`)
	if err != nil {
		return nil, fmt.Errorf("export macros: %w", err)
	}
	return re, nil
}

// blank overwrites every macro match with spaces. Byte offsets, and with
// them line and column numbers, are unchanged.
func blank(re *regexp.Regexp, src []byte) []byte {
	if re == nil {
		return src
	}
	matches := re.FindAllIndex(src, -1)
	if len(matches) == 0 {
		return src
	}
	out := bytes.Clone(src)
	for _, m := range matches {
		for i := m[0]; i < m[1]; i++ {
			if out[i] != '\n' {
				out[i] = ' '
			}
		}
	}
	return out
}

func hasExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// underAny reports whether name lies below one of dirs. Both absolute and
// archive-relative names work.
func underAny(name string, dirs []string) bool {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(name))
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// collect walks roots for header files and returns them sorted, each path
// once. Hidden directories and headers matched by the root's IgnoreFile are
// skipped.
func collect(roots []string, exts []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, root := range roots {
		if root == "" {
			continue
		}
		gi := loadIgnore(root)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if !hasExtension(path, exts) {
				return nil
			}
			if rel, err := filepath.Rel(root, path); err == nil && gi != nil && gi.MatchesPath(filepath.ToSlash(rel)) {
				return nil
			}
			abs, err := filepath.Abs(path)
			if err != nil {
				return err
			}
			if !seen[abs] {
				seen[abs] = true
				files = append(files, abs)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

func loadIgnore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, IgnoreFile))
	if err != nil {
		return nil
	}
	return gi
}

func readSources(files []string, systemDirs []string) ([]source, error) {
	abs := make([]string, 0, len(systemDirs))
	for _, d := range systemDirs {
		a, err := filepath.Abs(d)
		if err != nil {
			return nil, fmt.Errorf("system include dir %s: %w", d, err)
		}
		abs = append(abs, a)
	}
	out := make([]source, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		out = append(out, source{name: f, data: data, system: underAny(f, abs)})
	}
	return out, nil
}
