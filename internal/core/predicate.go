package core

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ModulePath is the structured value stage predicates are evaluated on.
type ModulePath struct {
	Raw   string
	Entry EntryKind
}

func NewModulePath(raw string, entry EntryKind) ModulePath {
	return ModulePath{Raw: NormalizePath(raw), Entry: entry}
}

func (p ModulePath) Ext() string {
	return path.Ext(p.Raw)
}

func (p ModulePath) Segments() []string {
	if p.Raw == "" {
		return nil
	}
	return strings.Split(p.Raw, "/")
}

func (p ModulePath) InNodeModules() bool {
	for _, seg := range p.Segments() {
		if seg == "node_modules" {
			return true
		}
	}
	return false
}

func (p ModulePath) IsEntry() bool {
	return p.Entry != EntryNone
}

type Predicate func(ModulePath) bool

func All() Predicate {
	return func(ModulePath) bool { return true }
}

func Exts(exts ...string) Predicate {
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		set[e] = true
	}
	return func(p ModulePath) bool { return set[p.Ext()] }
}

func Entries() Predicate {
	return func(p ModulePath) bool { return p.IsEntry() }
}

func NodeModules() Predicate {
	return func(p ModulePath) bool { return p.InNodeModules() }
}

func Glob(patterns ...string) (Predicate, error) {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern %q", pattern)
		}
	}
	return func(p ModulePath) bool {
		for _, pattern := range patterns {
			if ok, _ := doublestar.Match(pattern, p.Raw); ok {
				return true
			}
		}
		return false
	}, nil
}

func MustGlob(patterns ...string) Predicate {
	p, err := Glob(patterns...)
	if err != nil {
		panic(err)
	}
	return p
}

func And(preds ...Predicate) Predicate {
	return func(p ModulePath) bool {
		for _, pred := range preds {
			if !pred(p) {
				return false
			}
		}
		return true
	}
}

func Or(preds ...Predicate) Predicate {
	return func(p ModulePath) bool {
		for _, pred := range preds {
			if pred(p) {
				return true
			}
		}
		return false
	}
}

func Not(pred Predicate) Predicate {
	return func(p ModulePath) bool { return !pred(p) }
}
