package registrar

import (
	"slices"
	"sync"
)

// Inventory is the ordered set of sources known to a process.
type Inventory struct {
	mu      sync.RWMutex
	sources []*Source
}

// Default is the process inventory Provide adds to.
var Default = &Inventory{}

// Provide adds src to the Default inventory.
func Provide(src *Source) { Default.Add(src) }

// Add appends src unless it is nil or already present.
func (i *Inventory) Add(src *Source) {
	if src == nil {
		return
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if !slices.Contains(i.sources, src) {
		i.sources = append(i.sources, src)
	}
}

// Sources returns the sources in the order they were added.
func (i *Inventory) Sources() []*Source {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return slices.Clone(i.sources)
}
