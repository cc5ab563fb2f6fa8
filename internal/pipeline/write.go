package pipeline

import (
	"fmt"
	"path"
	"path/filepath"

	"github.com/3-lines-studio/bifrost-mini/internal/adapters/fs"
	"github.com/3-lines-studio/bifrost-mini/internal/core"
)

// Write lays the bundle out under outDir: one file per module, a .map beside
// every module that carries a source map, then module assets and emitted
// files. It returns the written paths relative to outDir.
func Write(fsys fs.FileSystem, outDir string, b *core.Bundle) ([]string, error) {
	var written []string
	put := func(p string, data []byte) error {
		if err := core.ValidateOutputPath(p); err != nil {
			return fmt.Errorf("invalid output path %q: %w", p, err)
		}
		if err := fs.WriteFileAll(fsys, filepath.Join(outDir, filepath.FromSlash(p)), data); err != nil {
			return fmt.Errorf("failed to write %s: %w", p, err)
		}
		written = append(written, p)
		return nil
	}

	var assets []core.Asset
	for _, m := range b.Modules() {
		content := m.Content
		if len(m.Map) > 0 {
			content = withMapComment(content, path.Base(m.Path)+".map")
		}
		if err := put(m.Path, content); err != nil {
			return written, err
		}
		if len(m.Map) > 0 {
			if err := put(m.Path+".map", m.Map); err != nil {
				return written, err
			}
		}
		assets = append(assets, m.Assets...)
	}

	for _, a := range append(assets, b.Emitted()...) {
		if err := put(a.Path, a.Content); err != nil {
			return written, err
		}
	}

	return written, nil
}

func withMapComment(content []byte, mapName string) []byte {
	out := append([]byte(nil), content...)
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	return append(out, "//# sourceMappingURL="+mapName+"\n"...)
}
