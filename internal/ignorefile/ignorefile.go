// Package ignorefile decides whether jscodeshift can be pointed at the
// caller's .gitignore.
//
// jscodeshift's --ignore-config understands plain exclusion patterns only.
// A negation line ("!keep-me/") re-includes a path, which it cannot express,
// so such files are not passed along at all.
package ignorefile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/randomizedcoder/go-suppress-eslint-errors/internal/diag"
)

// DefaultName is the ignore file looked up in the working directory.
const DefaultName = ".gitignore"

// FlagPrefix is the jscodeshift option that names an ignore file.
const FlagPrefix = "--ignore-config="

// Warnings emitted when the ignore file contains negation patterns.
const (
	WarnUnsupported = "your .gitignore contains exclusions, which jscodeshift does not properly support."
	WarnSkipped     = "skipping the ignore-config option."
)

// Derive returns the extra jscodeshift flags for the ignore file name in dir.
//
// A missing file yields no flags and no diagnostics. A file with a negation
// line yields no flags and two warnings on r. Otherwise the single flag
// references name exactly as given, relative to the child's working
// directory. Read errors other than non-existence are returned.
func Derive(dir, name string, r diag.Reporter) ([]string, error) {
	path := filepath.Join(dir, name)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if HasNegation(string(data)) {
		r.Warn(WarnUnsupported)
		r.Warn(WarnSkipped)
		return nil, nil
	}

	return []string{FlagPrefix + name}, nil
}

// HasNegation reports whether any line of content starts with '!'.
// Lines are split on '\n' only; leading whitespace is significant.
func HasNegation(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "!") {
			return true
		}
	}
	return false
}
