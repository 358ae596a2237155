package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultDoc []byte

// Load parses a YAML catalog document and builds a Registry from it.
func Load(data []byte) (*Registry, error) {
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("catalog: parsing document: %w", err)
	}
	return Build(spec)
}

var buildDefault = sync.OnceValue(func() *Registry {
	r, err := Load(defaultDoc)
	if err != nil {
		// The embedded document ships with the binary; a parse or
		// validation failure is a build defect, not a runtime condition.
		panic(err)
	}
	return r
})

// Default returns the registry built from the embedded manufacturing
// catalog. The result is shared; callers must treat it as read-only.
func Default() *Registry {
	return buildDefault()
}
