package core

import (
	"fmt"
	"strings"
)

const DefaultSandboxPrefix = "demo/src/"

// RenameRule either strips a leading Prefix or swaps the FromExt suffix for
// ToExt. Exactly one of Prefix and FromExt is set.
type RenameRule struct {
	Prefix  string
	FromExt string
	ToExt   string
}

type RenameRules []RenameRule

// DefaultRenameRules strips each non-empty prefix in order, then remaps
// source extensions to their output form.
func DefaultRenameRules(prefixes ...string) RenameRules {
	var rules RenameRules
	for _, prefix := range prefixes {
		if prefix != "" {
			rules = append(rules, RenameRule{Prefix: prefix})
		}
	}
	return append(rules,
		RenameRule{FromExt: ".less", ToExt: ".js"},
		RenameRule{FromExt: ".css", ToExt: ".acss"},
		RenameRule{FromExt: ".ts", ToExt: ".js"},
		RenameRule{FromExt: ".tsx", ToExt: ".js"},
	)
}

// Validate rejects rule sets whose output could be renamed again by a later
// pass.
func (rs RenameRules) Validate() error {
	for _, r := range rs {
		if (r.Prefix == "") == (r.FromExt == "") {
			return fmt.Errorf("rename rule must set exactly one of prefix or extension: %+v", r)
		}
		if r.FromExt != "" && r.ToExt == "" {
			return fmt.Errorf("rename rule for %s has no target extension", r.FromExt)
		}
	}
	for _, r := range rs {
		if r.ToExt == "" {
			continue
		}
		for _, other := range rs {
			if other.FromExt != "" && strings.HasSuffix(r.ToExt, other.FromExt) {
				return fmt.Errorf("rename target %s is matched again by rule for %s", r.ToExt, other.FromExt)
			}
		}
	}
	return nil
}

// Apply strips prefix rules in order until none matches, then applies the
// single extension rule with the longest matching FromExt. The result is a
// fixed point: Apply(Apply(p)) == Apply(p).
func (rs RenameRules) Apply(p string) string {
	if p == "" {
		return p
	}
	for stripped := true; stripped; {
		stripped = false
		for _, r := range rs {
			if r.Prefix != "" && strings.HasPrefix(p, r.Prefix) {
				p = p[len(r.Prefix):]
				stripped = true
			}
		}
	}
	if r, ok := rs.extRule(p); ok {
		p = strings.TrimSuffix(p, r.FromExt) + r.ToExt
	}
	return p
}

// ChangesExt reports whether a path with extension ext is renamed to a
// different extension.
func (rs RenameRules) ChangesExt(ext string) bool {
	r, ok := rs.extRule("x" + ext)
	return ok && r.FromExt == ext
}

func (rs RenameRules) extRule(p string) (RenameRule, bool) {
	var best RenameRule
	found := false
	for _, r := range rs {
		if r.FromExt == "" || !strings.HasSuffix(p, r.FromExt) {
			continue
		}
		if !found || len(r.FromExt) > len(best.FromExt) {
			best = r
			found = true
		}
	}
	return best, found
}

// Rename applies the chain to a module and its assets at most once.
func (rs RenameRules) Rename(m *Module) {
	if m.Renamed {
		return
	}
	m.Path = rs.Apply(m.Path)
	for i := range m.Assets {
		m.Assets[i].Path = rs.Apply(m.Assets[i].Path)
	}
	m.Renamed = true
}
