package registrar

import (
	"fmt"
	"slices"
	"strings"

	berr "github.com/next-trace/scg-mediator/contract/errors"
)

type selectorKind int

const (
	selectAll selectorKind = iota + 1
	selectExplicit
	selectPrefix
)

// Selector decides which sources a registration scans. The zero Selector is invalid.
type Selector struct {
	kind     selectorKind
	sources  []*Source
	prefixes []string
}

// AllLoaded selects every named source of the inventory.
func AllLoaded() Selector { return Selector{kind: selectAll} }

// Explicit selects exactly srcs, in the given order, whether or not they are in the inventory.
func Explicit(srcs ...*Source) Selector {
	return Selector{kind: selectExplicit, sources: slices.Clone(srcs)}
}

// ByPrefix selects named inventory sources whose name starts with any of prefixes.
func ByPrefix(prefixes ...string) Selector {
	return Selector{kind: selectPrefix, prefixes: slices.Clone(prefixes)}
}

// SelectorOf maps the loosely typed selection form onto a Selector: no arguments
// selects all loaded sources, only *Source values select those sources, and only
// strings select by name prefix.
func SelectorOf(args ...any) (Selector, error) {
	if len(args) == 0 {
		return AllLoaded(), nil
	}

	switch args[0].(type) {
	case *Source:
		srcs := make([]*Source, 0, len(args))

		for _, a := range args {
			s, ok := a.(*Source)
			if !ok || s == nil {
				return Selector{}, invalidSelector(a)
			}

			srcs = append(srcs, s)
		}

		return Explicit(srcs...), nil
	case string:
		prefixes := make([]string, 0, len(args))

		for _, a := range args {
			p, ok := a.(string)
			if !ok {
				return Selector{}, invalidSelector(a)
			}

			prefixes = append(prefixes, p)
		}

		return ByPrefix(prefixes...), nil
	default:
		return Selector{}, invalidSelector(args[0])
	}
}

func invalidSelector(got any) error {
	return fmt.Errorf("selector accepts nothing, *registrar.Source values, or name prefix strings; got %T: %w",
		got, berr.ErrInvalidSelector)
}

func (s Selector) String() string {
	switch s.kind {
	case selectAll:
		return "all loaded"
	case selectExplicit:
		names := make([]string, 0, len(s.sources))
		for _, src := range s.sources {
			if src != nil {
				names = append(names, src.name)
			}
		}

		return "explicit(" + strings.Join(names, ", ") + ")"
	case selectPrefix:
		return "prefix(" + strings.Join(s.prefixes, ", ") + ")"
	default:
		return "invalid"
	}
}

func (s Selector) resolve(inv *Inventory) ([]*Source, error) {
	switch s.kind {
	case selectAll:
		return slices.DeleteFunc(inv.Sources(), unnamed), nil
	case selectExplicit:
		for _, src := range s.sources {
			if src == nil {
				return nil, fmt.Errorf("selector %s: nil source: %w", s, berr.ErrInvalidSelector)
			}
		}

		return slices.Clone(s.sources), nil
	case selectPrefix:
		var out []*Source

		for _, src := range inv.Sources() {
			if unnamed(src) {
				continue
			}

			if slices.ContainsFunc(s.prefixes, func(p string) bool { return strings.HasPrefix(src.name, p) }) {
				out = append(out, src)
			}
		}

		return out, nil
	default:
		return nil, fmt.Errorf("selector %s: %w", s, berr.ErrInvalidSelector)
	}
}

// unnamed sources are reachable only through Explicit.
func unnamed(src *Source) bool { return src.name == "" }
