// pkg/manifest/xml.go
package manifest

import (
	"encoding/xml"
	"fmt"
	"os"
)

// xmlHeader matches the declaration the platform tooling emits
const xmlHeader = `<?xml version="1.0" encoding="utf-8"?>` + "\n"

// XML serializes the manifest to the platform's XML format. Serialization
// is deterministic: field order is fixed by the struct layout and the
// set-valued fields are kept canonically sorted by the constructors, so
// field-wise equal manifests produce byte-identical output.
func (m *Manifest) XML() ([]byte, error) {
	body, err := xml.MarshalIndent(m, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("serializing manifest: %w", err)
	}
	out := make([]byte, 0, len(xmlHeader)+len(body)+1)
	out = append(out, xmlHeader...)
	out = append(out, body...)
	out = append(out, '\n')
	return out, nil
}

// WriteFile serializes the manifest to path
func (m *Manifest) WriteFile(path string) error {
	data, err := m.XML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}
