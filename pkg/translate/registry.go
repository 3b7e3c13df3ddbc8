package translate

import (
	"fmt"
	"sort"
	"sync"

	"regionbridge/pkg/shape"
	"regionbridge/pkg/subset"
)

// Format tags understood by DefaultRegistry.
const (
	FormatRegions       = "regions"
	FormatRegionsLegacy = "regions-legacy"
)

// Exporter converts a selection on a dataset into a shape for one output
// format.
type Exporter interface {
	Export(data subset.Dataset, s subset.State) (shape.Shape, error)
}

// ExporterFunc adapts a function to the Exporter interface.
type ExporterFunc func(data subset.Dataset, s subset.State) (shape.Shape, error)

func (f ExporterFunc) Export(data subset.Dataset, s subset.State) (shape.Shape, error) {
	return f(data, s)
}

// Registry maps format tags to exporters. It is owned by whoever builds it;
// nothing in this package keeps a global instance.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Exporter
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: map[string]Exporter{}}
}

// DefaultRegistry returns a registry with the canonical and legacy region
// exporters registered, both translating with opts.
func DefaultRegistry(opts Options) *Registry {
	r := NewRegistry()
	r.handlers[FormatRegions] = RegionsExporter{Options: opts}
	r.handlers[FormatRegionsLegacy] = LegacyRegionsExporter{Options: opts}
	return r
}

// Register adds an exporter under tag. Tags must be unique.
func (r *Registry) Register(tag string, e Exporter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[tag]; exists {
		return fmt.Errorf("format %q is already registered", tag)
	}
	r.handlers[tag] = e
	return nil
}

// Lookup returns the exporter for tag.
func (r *Registry) Lookup(tag string) (Exporter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.handlers[tag]
	return e, ok
}

// Formats lists the registered tags in sorted order.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.handlers))
	for tag := range r.handlers {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// SelectionToShape exports s with the exporter registered for tag.
func (r *Registry) SelectionToShape(tag string, data subset.Dataset, s subset.State) (shape.Shape, error) {
	e, ok := r.Lookup(tag)
	if !ok {
		return nil, fail(ErrUnknownFormat, tag, "")
	}
	return e.Export(data, s)
}

// RegionsExporter produces canonical shapes, with circular annuli as
// first-class shapes.
type RegionsExporter struct {
	Options Options
}

func (e RegionsExporter) Export(data subset.Dataset, s subset.State) (shape.Shape, error) {
	return New(data, e.Options).ToShape(s)
}

// LegacyRegionsExporter serves consumers without an annulus shape: every
// annulus is written as the XOR of its outer and inner circles, which
// covers exactly the same points.
type LegacyRegionsExporter struct {
	Options Options
}

func (e LegacyRegionsExporter) Export(data subset.Dataset, s subset.State) (shape.Shape, error) {
	out, err := New(data, e.Options).ToShape(s)
	if err != nil {
		return nil, err
	}
	return ExpandAnnuli(out), nil
}

// ExpandAnnuli rewrites every CircularAnnulus in s as
// Compound(XOR, outer circle, inner circle). An annulus whose inner radius
// is not below its outer radius is empty; it becomes the XOR of the outer
// circle with itself, which is empty too.
func ExpandAnnuli(s shape.Shape) shape.Shape {
	return shape.Walk(s, func(n shape.Shape) shape.Shape {
		a, ok := n.(shape.CircularAnnulus)
		if !ok {
			return n
		}
		outer := shape.Circle{Center: a.Center, Radius: a.OuterRadius}
		inner := shape.Circle{Center: a.Center, Radius: a.InnerRadius}
		if !(a.InnerRadius < a.OuterRadius) {
			inner = outer
		}
		return shape.Combine(shape.Xor, outer, inner)
	})
}
