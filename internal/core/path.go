package core

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// NormalizePath returns a clean slash-separated project-relative path.
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}
	p = filepath.ToSlash(p)
	p = strings.TrimPrefix(p, "./")
	p = path.Clean(p)
	p = strings.TrimPrefix(p, "/")
	if p == "." {
		return ""
	}
	return p
}

func ValidateOutputPath(p string) error {
	if p == "" {
		return fmt.Errorf("path cannot be empty")
	}

	if strings.HasPrefix(p, "/") {
		return fmt.Errorf("path must be relative")
	}

	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return fmt.Errorf("path cannot contain parent directory references")
		}
	}

	if strings.ContainsAny(p, "*?") {
		return fmt.Errorf("path cannot contain wildcards")
	}

	return nil
}

// RelativeImport returns the specifier a module at fromPath uses to import
// the module at toPath.
func RelativeImport(fromPath string, toPath string) string {
	from := path.Dir(NormalizePath(fromPath))
	to := NormalizePath(toPath)

	fromParts := splitDir(from)
	toParts := strings.Split(to, "/")

	common := 0
	for common < len(fromParts) && common < len(toParts)-1 && fromParts[common] == toParts[common] {
		common++
	}

	var parts []string
	for i := common; i < len(fromParts); i++ {
		parts = append(parts, "..")
	}
	parts = append(parts, toParts[common:]...)

	rel := strings.Join(parts, "/")
	if strings.HasPrefix(rel, ".") {
		return rel
	}
	return "./" + rel
}

func splitDir(dir string) []string {
	if dir == "." || dir == "" {
		return nil
	}
	return strings.Split(dir, "/")
}
