package config

import (
	"sort"
	"sync"

	"github.com/askiada/go-dataprep/pkg/dataprep"
	"github.com/askiada/go-dataprep/pkg/dataprep/model"
)

// OperationEntry is a registered operation and the class of its parameters.
// Params may be nil for operations without parameters.
type OperationEntry struct {
	Operation dataprep.Operation
	Params    *model.Class
}

// FilterEntry is a registered filter and the class of its parameters.
type FilterEntry struct {
	Filter dataprep.Filter
	Params *model.Class
}

// Registry maps names to operations and filters. Safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	operations map[string]OperationEntry
	filters    map[string]FilterEntry
}

func NewRegistry() *Registry {
	return &Registry{
		operations: make(map[string]OperationEntry),
		filters:    make(map[string]FilterEntry),
	}
}

// RegisterOperation adds an operation under name, replacing any previous one.
func (r *Registry) RegisterOperation(name string, op dataprep.Operation, params *model.Class) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.operations[name] = OperationEntry{Operation: op, Params: params}
}

// RegisterFilter adds a filter under name, replacing any previous one.
func (r *Registry) RegisterFilter(name string, f dataprep.Filter, params *model.Class) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.filters[name] = FilterEntry{Filter: f, Params: params}
}

func (r *Registry) Operation(name string) (OperationEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.operations[name]

	return entry, ok
}

func (r *Registry) Filter(name string) (FilterEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.filters[name]

	return entry, ok
}

// Names returns the registered operation and filter names, sorted.
func (r *Registry) Names() (operations, filters []string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for name := range r.operations {
		operations = append(operations, name)
	}

	for name := range r.filters {
		filters = append(filters, name)
	}

	sort.Strings(operations)
	sort.Strings(filters)

	return operations, filters
}
