package metadata

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Serialize converts a descriptor to JSON. The output is deterministic: the
// same descriptor always produces the same bytes, so serialized descriptors
// can be hashed for change detection.
func Serialize(d *KernelDescriptor) ([]byte, error) {
	if d == nil {
		return nil, fmt.Errorf("descriptor cannot be nil")
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize descriptor %s: %w", d.Name, err)
	}
	return data, nil
}

// Deserialize parses a JSON-serialized descriptor and re-validates it.
// Serialize followed by Deserialize yields an identical descriptor.
func Deserialize(data []byte) (*KernelDescriptor, error) {
	var d KernelDescriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to deserialize descriptor: %w", err)
	}
	if verr := d.Validate(); verr != nil {
		return nil, verr
	}
	return &d, nil
}

// ParseYAML decodes one kernel descriptor from its structured YAML form and
// validates it. This is the exchange format consumed from the front-end
// collaborator; parsing raw kernel source is out of scope.
func ParseYAML(data []byte) (*KernelDescriptor, error) {
	var d KernelDescriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to decode kernel metadata: %w", err)
	}
	if verr := d.Validate(); verr != nil {
		return nil, verr
	}
	return &d, nil
}

// LoadFile reads and parses a kernel descriptor YAML file
func LoadFile(path string) (*KernelDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read kernel metadata file: %w", err)
	}
	d, perr := ParseYAML(data)
	if perr != nil {
		return nil, fmt.Errorf("%s: %w", path, perr)
	}
	return d, nil
}
