package core

import (
	"encoding/json"
)

// AppManifest is the app.json the template stage writes at the output root.
type AppManifest struct {
	Pages []string `json:"pages"`
}

func ParseManifest(data []byte) (*AppManifest, error) {
	var m AppManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *AppManifest) Marshal() ([]byte, error) {
	if m.Pages == nil {
		m.Pages = []string{}
	}
	return json.MarshalIndent(m, "", "  ")
}
