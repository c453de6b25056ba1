package metadata

import (
	"sort"

	"github.com/psykal-lang/psykal/internal/compiler/errors"
)

// Registry holds the set of kernel descriptors resolvable from one
// compilation run. It is populated before any unit is bound and is read-only
// afterwards, so concurrent pipeline instances can share it.
type Registry struct {
	kernels map[string]*KernelDescriptor
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{kernels: make(map[string]*KernelDescriptor)}
}

// Register validates the descriptor and adds it to the registry. A duplicate
// name is a metadata error.
func (r *Registry) Register(d *KernelDescriptor) *errors.GeneratorError {
	if err := d.Validate(); err != nil {
		return err
	}
	if _, exists := r.kernels[d.Name]; exists {
		return errors.NewMetadataDuplicateKernel(d.Name)
	}
	r.kernels[d.Name] = d
	return nil
}

// Lookup returns the descriptor registered under the given name
func (r *Registry) Lookup(name string) (*KernelDescriptor, bool) {
	d, ok := r.kernels[name]
	return d, ok
}

// Names returns every registered kernel name in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.kernels))
	for name := range r.kernels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered kernels
func (r *Registry) Len() int {
	return len(r.kernels)
}
