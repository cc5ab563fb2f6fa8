package core

import (
	"path"
	"strings"
)

// RouteForPath turns an output script path into the extension-less route the
// mini-program runtime addresses pages by.
func RouteForPath(p string) string {
	p = NormalizePath(p)
	return strings.TrimSuffix(p, path.Ext(p))
}

func TemplatePathFor(p string, templateExt string) string {
	return RouteForPath(p) + templateExt
}
