package core

import "context"

type Loader string

const (
	LoaderJS  Loader = "js"
	LoaderJSX Loader = "jsx"
	LoaderTS  Loader = "ts"
	LoaderTSX Loader = "tsx"
)

// LoaderForPath picks the transpiler loader for a script path.
func LoaderForPath(path string) Loader {
	switch NewModulePath(path, EntryNone).Ext() {
	case ".ts":
		return LoaderTS
	case ".tsx":
		return LoaderTSX
	case ".jsx":
		return LoaderJSX
	default:
		return LoaderJS
	}
}

type TransformRequest struct {
	Path   string
	Source []byte
	Loader Loader
}

type TransformResult struct {
	Code []byte
	Map  []byte
}

// Transformer turns TS/JSX source into plain ES module JavaScript.
type Transformer interface {
	Transform(ctx context.Context, req TransformRequest) (TransformResult, error)
}
