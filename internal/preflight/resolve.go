package preflight

import (
	"os"
	"path/filepath"
	"strings"
)

// moduleExtensions are tried, in order, after the exact file name.
var moduleExtensions = []string{".js", ".cjs", ".mjs", ".json"}

// Resolver locates Node packages the way require.resolve does for a file
// placed in a given directory.
type Resolver struct {
	// GlobalPaths are searched after every node_modules ancestor.
	GlobalPaths []string
}

// NewResolver creates a resolver using NODE_PATH and the legacy global
// folders under the user's home directory.
func NewResolver() *Resolver {
	var global []string
	if np := os.Getenv("NODE_PATH"); np != "" {
		for _, p := range filepath.SplitList(np) {
			if p != "" {
				global = append(global, p)
			}
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		global = append(global,
			filepath.Join(home, ".node_modules"),
			filepath.Join(home, ".node_libraries"),
		)
	}
	return &Resolver{GlobalPaths: global}
}

// Resolve looks up request ("eslint", "jscodeshift/bin/jscodeshift.js",
// "@scope/pkg") from baseDir. It walks baseDir and each ancestor, probing
// <dir>/node_modules/<request>, then the global paths.
// Returns the resolved path and whether it was found.
func (r *Resolver) Resolve(baseDir, request string) (string, bool) {
	if request == "" {
		return "", false
	}
	rel := filepath.FromSlash(request)

	for _, dir := range nodeModulesPaths(baseDir) {
		if p, ok := probe(filepath.Join(dir, rel)); ok {
			return p, true
		}
	}
	for _, dir := range r.GlobalPaths {
		if p, ok := probe(filepath.Join(dir, rel)); ok {
			return p, true
		}
	}
	return "", false
}

// nodeModulesPaths lists the node_modules directories visible from baseDir,
// nearest first. Ancestors that are themselves node_modules are skipped.
func nodeModulesPaths(baseDir string) []string {
	dir, err := filepath.Abs(baseDir)
	if err != nil {
		dir = baseDir
	}

	var paths []string
	for {
		if filepath.Base(dir) != "node_modules" {
			paths = append(paths, filepath.Join(dir, "node_modules"))
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return paths
}

// probe checks candidate as a file, as a file with a module extension, and
// as a package directory (one holding package.json or index.js).
func probe(candidate string) (string, bool) {
	if isFile(candidate) {
		return candidate, true
	}
	for _, ext := range moduleExtensions {
		if strings.HasSuffix(candidate, ext) {
			continue
		}
		if isFile(candidate + ext) {
			return candidate + ext, true
		}
	}
	if isDir(candidate) {
		if isFile(filepath.Join(candidate, "package.json")) || isFile(filepath.Join(candidate, "index.js")) {
			return candidate, true
		}
	}
	return "", false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
