package stages

import (
	"encoding/json"
)

type sourceMap struct {
	Version        int      `json:"version"`
	SourceRoot     string   `json:"sourceRoot"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// identityMap is a v3 source map that carries the original source without
// segment mappings. Sources are relative to the project root.
func identityMap(id, source string) []byte {
	data, err := json.Marshal(sourceMap{
		Version:        3,
		SourceRoot:     "/",
		Sources:        []string{id},
		SourcesContent: []string{source},
		Names:          []string{},
	})
	if err != nil {
		return nil
	}
	return data
}
