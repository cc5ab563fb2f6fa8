package core

import "context"

type Role int

const (
	RoleClean Role = iota
	RoleReport
	RoleResolve
	RoleInterop
	RoleTransform
	RoleComponent
	RoleStyle
	RoleRename
	RoleStrip
	RoleEmit
)

func (r Role) String() string {
	switch r {
	case RoleClean:
		return "clean"
	case RoleReport:
		return "report"
	case RoleResolve:
		return "resolve"
	case RoleInterop:
		return "interop"
	case RoleTransform:
		return "transform"
	case RoleComponent:
		return "component"
	case RoleStyle:
		return "style"
	case RoleRename:
		return "rename"
	case RoleStrip:
		return "strip"
	case RoleEmit:
		return "emit"
	default:
		return "unknown"
	}
}

// IsContent reports whether stages of this role rewrite module content.
func (r Role) IsContent() bool {
	switch r {
	case RoleInterop, RoleTransform, RoleComponent, RoleStyle, RoleRename:
		return true
	}
	return false
}

type Warner interface {
	Warn(d Diagnostic)
}

type StartFunc func(ctx context.Context) error

// TransformFunc may only mutate the module it is given.
type TransformFunc func(ctx context.Context, m *Module, w Warner) error

type BundleFunc func(ctx context.Context, b *Bundle, w Warner) error

type Stage struct {
	Name     string
	Role     Role
	Include  Predicate
	Consumes []string

	BuildStart StartFunc
	Transform  TransformFunc
	Bundle     BundleFunc
}

func (s Stage) Includes(p ModulePath) bool {
	if s.Include == nil {
		return true
	}
	return s.Include(p)
}
