// Package format renders aggregated documents as markdown or plain text and
// writes output artifacts atomically.
package format

import (
	"fmt"
	"sort"
	"strings"

	"ctxcopy/pkg/aggregate"
)

// Formatter renders one document as a text artifact.
type Formatter interface {
	Name() string
	Extension() string
	Render(doc aggregate.Document) string
}

var registry = map[string]Formatter{
	"markdown": Markdown{},
	"txt":      Text{},
}

// Get returns the named formatter.
func Get(name string) (Formatter, error) {
	f, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown format %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return f, nil
}

// Names lists the registered formatter names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
