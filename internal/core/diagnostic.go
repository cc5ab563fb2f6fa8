package core

import (
	"errors"
	"fmt"
)

const (
	CodeThisIsUndefined      = "THIS_IS_UNDEFINED"
	CodeUnresolvedImport     = "UNRESOLVED_IMPORT"
	CodeUnknownHostProp      = "UNKNOWN_HOST_PROP"
	CodeUnknownHostComponent = "UNKNOWN_HOST_COMPONENT"
	CodeMissingDefaultExport = "MISSING_DEFAULT_EXPORT"
)

type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

type Diagnostic struct {
	Code     string
	Message  string
	Stage    string
	Module   string
	Severity Severity
}

func Warning(code, module, format string, args ...any) Diagnostic {
	return Diagnostic{
		Code:     code,
		Module:   module,
		Message:  fmt.Sprintf(format, args...),
		Severity: SeverityWarning,
	}
}

func (d Diagnostic) String() string {
	s := fmt.Sprintf("(%s) %s", d.Code, d.Message)
	if d.Module != "" {
		s = d.Module + ": " + s
	}
	if d.Stage != "" {
		s = "[" + d.Stage + "] " + s
	}
	return s
}

var (
	ErrInvalidConfig        = errors.New("invalid project config")
	ErrNoEntries            = errors.New("no entries found")
	ErrStageOrder           = errors.New("stage order violation")
	ErrCleanFailed          = errors.New("failed to clean output directory")
	ErrUnknownHostProp      = errors.New("unknown host component prop")
	ErrUnknownHostComponent = errors.New("unknown host component")
	ErrMissingTemplateInput = errors.New("template input missing")
)
