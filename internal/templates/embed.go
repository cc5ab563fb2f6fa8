package templates

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed all:scaffold
var scaffoldFS embed.FS

//go:embed emit/*.tmpl
var emitFS embed.FS

var validTemplates = []string{"minimal", "less"}

var ErrInvalidTemplate = errors.New("invalid template name")

// Template files use [[ ]] so the {{ }} bindings of the mini-program markup
// pass through untouched.
var emitTemplates = template.Must(template.New("emit").Delims("[[", "]]").ParseFS(emitFS, "emit/*.tmpl"))

func GetTemplate(name string) (fs.FS, error) {
	for _, valid := range validTemplates {
		if name == valid {
			return fs.Sub(scaffoldFS, "scaffold/"+name)
		}
	}
	return nil, fmt.Errorf("%w: %q (want one of %s)", ErrInvalidTemplate, name, strings.Join(validTemplates, ", "))
}

func Names() []string {
	return append([]string(nil), validTemplates...)
}

type TemplateData struct {
	Name     string
	Platform string
}

func ProcessFilename(filename string, data TemplateData) (string, bool) {
	if before, ok := strings.CutSuffix(filename, ".tmpl"); ok {
		return before, true
	}
	return filename, false
}

func ProcessContent(content []byte, isTemplate bool, data TemplateData) ([]byte, error) {
	if !isTemplate {
		return content, nil
	}

	tmpl, err := template.New("scaffold").Delims("[[", "]]").Option("missingkey=error").Parse(string(content))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DeriveProjectName(projectDir string) string {
	base := filepath.Base(projectDir)
	if base == "." || base == "/" || base == "" {
		return "mini-app"
	}
	return base
}

// HostTemplate is one REMAX_TPL_<tag> definition in the base template.
type HostTemplate struct {
	Tag   string
	Attrs []string
}

type BaseData struct {
	Directive  string
	Components []HostTemplate
}

type PageData struct {
	Base string
}

func RenderBase(data BaseData) ([]byte, error) {
	return render("base.tmpl", data)
}

func RenderPage(data PageData) ([]byte, error) {
	return render("page.tmpl", data)
}

func render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := emitTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
