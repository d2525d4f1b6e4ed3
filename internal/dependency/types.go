package dependency

import (
	"fmt"
	"sort"
	"strings"
)

// ComponentKey identifies a pluggable component variant, e.g. {Type: "llm", Provider: "openai"}.
// It is a plain value type so it can be used directly as a map key.
type ComponentKey struct {
	Type     string `yaml:"type" json:"type"`
	Provider string `yaml:"provider" json:"provider"`
}

// NewKey is a shorthand for building a ComponentKey.
func NewKey(componentType, provider string) ComponentKey {
	return ComponentKey{Type: componentType, Provider: provider}
}

// ParseKey parses the "type/provider" form produced by String.
func ParseKey(s string) (ComponentKey, error) {
	componentType, provider, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || componentType == "" || provider == "" {
		return ComponentKey{}, fmt.Errorf("invalid component key %q: expected type/provider", s)
	}
	return ComponentKey{Type: componentType, Provider: provider}, nil
}

// String renders the key as "type/provider".
func (k ComponentKey) String() string {
	return k.Type + "/" + k.Provider
}

// IsZero reports whether both parts of the key are empty.
func (k ComponentKey) IsZero() bool {
	return k.Type == "" && k.Provider == ""
}

// Less orders keys by type, then provider.
func (k ComponentKey) Less(other ComponentKey) bool {
	if k.Type != other.Type {
		return k.Type < other.Type
	}
	return k.Provider < other.Provider
}

func sortKeys(keys []ComponentKey) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
}

// KeySet is a set of component keys, typically the components currently available.
type KeySet map[ComponentKey]struct{}

// NewKeySet builds a set from the given keys.
func NewKeySet(keys ...ComponentKey) KeySet {
	set := make(KeySet, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

// Has reports whether key is in the set.
func (s KeySet) Has(key ComponentKey) bool {
	_, ok := s[key]
	return ok
}

// Add inserts key into the set.
func (s KeySet) Add(key ComponentKey) {
	s[key] = struct{}{}
}

// Kind classifies a dependency edge.
type Kind string

const (
	// KindRequired means the dependent cannot function without the dependency.
	KindRequired Kind = "required"
	// KindOptional means the dependent degrades gracefully without the dependency.
	KindOptional Kind = "optional"
	// KindRuntime means the dependency is only needed after initialization.
	KindRuntime Kind = "runtime"
	// KindEnhances means the dependency augments the dependent. Ordering treats it like any other edge.
	KindEnhances Kind = "enhances"
)

// Kinds lists every valid Kind.
var Kinds = []Kind{KindRequired, KindOptional, KindRuntime, KindEnhances}

// ParseKind parses a kind name case-insensitively. An empty string yields KindRequired.
func ParseKind(s string) (Kind, error) {
	if strings.TrimSpace(s) == "" {
		return KindRequired, nil
	}
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", fmt.Errorf("unknown dependency kind %q", s)
	}
	return k, nil
}

// IsValid reports whether k is one of the known kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindRequired, KindOptional, KindRuntime, KindEnhances:
		return true
	}
	return false
}

func (k Kind) String() string {
	return string(k)
}

// Edge is a directed relation: From depends on To.
type Edge struct {
	From ComponentKey
	To   ComponentKey
	Kind Kind
}

func (e Edge) String() string {
	return fmt.Sprintf("%s -[%s]-> %s", e.From, e.Kind, e.To)
}
