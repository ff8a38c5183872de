package vdom

import (
	"fmt"
	"sync"
)

// TemplateNodeKind discriminates the static root/child descriptors of a
// template.
type TemplateNodeKind uint8

const (
	// TemplateElement is a static element with a tag, static and dynamic
	// attributes, and children.
	TemplateElement TemplateNodeKind = iota
	// TemplateText is a static text node whose content never changes.
	TemplateText
	// TemplateDynamic is a dynamic node slot, filled at runtime by the
	// instance's DynamicNodes[Index].
	TemplateDynamic
	// TemplateDynamicText is a dynamic text slot; the instance value at
	// Index must be a DynamicText node.
	TemplateDynamicText
)

// TemplateNode is one node of a template's static shape.  Which fields are
// meaningful depends on Kind.
type TemplateNode struct {
	Kind TemplateNodeKind

	// TemplateElement
	Tag       string             `json:",omitempty"`
	Namespace string             `json:",omitempty"`
	Attrs     []TemplateAttribute `json:",omitempty"`
	Children  []TemplateNode     `json:",omitempty"`

	// TemplateText
	Text string `json:",omitempty"`

	// TemplateDynamic / TemplateDynamicText: index of the dynamic node
	// slot this position is filled from.
	Index int `json:",omitempty"`
}

// TemplateAttribute is an attribute declared on a static element: either a
// literal name/value pair or a dynamic slot reference.
type TemplateAttribute struct {
	// Dynamic indicates the attribute's value comes from the instance's
	// DynamicAttrs[Index] rather than the static Name/Value.
	Dynamic   bool   `json:",omitempty"`
	Index     int    `json:",omitempty"`
	Name      string `json:",omitempty"`
	Value     string `json:",omitempty"`
	Namespace string `json:",omitempty"`
}

// TemplateTables holds a template's static roots and the addresses of its
// dynamic slots.  A tables value is immutable once handed to a Template;
// hot reload replaces it wholesale, never piecemeal.
type TemplateTables struct {
	// Roots are the template's top-level nodes, in document order.
	Roots []TemplateNode
	// NodePaths has one entry per dynamic node slot: the root index
	// followed by child indices locating the slot.  A path of length one
	// names a slot that is itself a root.
	NodePaths [][]uint8
	// AttrPaths has one entry per dynamic attribute slot, same shape.
	AttrPaths [][]uint8
}

// Template is the immutable compiled description of a subtree's static
// shape.  All instances rendered from the same source site share one
// Template value, so the differ compares templates by pointer identity.
// The tables may be swapped atomically by hot reload between diff passes;
// they are never mutated in place.
type Template struct {
	Name string

	mu     sync.RWMutex
	tables *TemplateTables
}

// NewTemplate compiles tables into a standalone Template.  It panics if
// the tables are internally inconsistent; a malformed template is a
// compiler bug, not a runtime condition.
func NewTemplate(name string, tables *TemplateTables) *Template {
	validateTables(name, tables)
	t := &Template{Name: name}
	t.tables = tables
	return t
}

// Tables returns the template's current roots and slot paths.  The result
// is stable for the duration of one diff pass.
func (t *Template) Tables() *TemplateTables {
	t.mu.RLock()
	tables := t.tables
	t.mu.RUnlock()
	return tables
}

// swap atomically replaces the template's tables, preserving identity.
func (t *Template) swap(tables *TemplateTables) {
	t.mu.Lock()
	t.tables = tables
	t.mu.Unlock()
}

// NodeSlots returns the number of dynamic node slots the template declares.
func (t *Template) NodeSlots() int { return len(t.Tables().NodePaths) }

// AttrSlots returns the number of dynamic attribute slots the template
// declares.
func (t *Template) AttrSlots() int { return len(t.Tables().AttrPaths) }

func validateTables(name string, tables *TemplateTables) {
	if len(tables.Roots) == 0 {
		panic(fmt.Sprintf("template %q has no roots", name))
	}
	nodeSlots := 0
	attrSlots := 0
	var walk func(n *TemplateNode)
	walk = func(n *TemplateNode) {
		switch n.Kind {
		case TemplateDynamic, TemplateDynamicText:
			nodeSlots++
		case TemplateElement:
			for i := range n.Attrs {
				if n.Attrs[i].Dynamic {
					attrSlots++
				}
			}
			for i := range n.Children {
				walk(&n.Children[i])
			}
		}
	}
	for i := range tables.Roots {
		walk(&tables.Roots[i])
	}
	if nodeSlots != len(tables.NodePaths) {
		panic(fmt.Sprintf("template %q declares %d dynamic node slots but has %d node paths",
			name, nodeSlots, len(tables.NodePaths)))
	}
	if attrSlots != len(tables.AttrPaths) {
		panic(fmt.Sprintf("template %q declares %d dynamic attribute slots but has %d attribute paths",
			name, attrSlots, len(tables.AttrPaths)))
	}
	for i, path := range tables.NodePaths {
		if len(path) == 0 || int(path[0]) >= len(tables.Roots) {
			panic(fmt.Sprintf("template %q node path %d is out of range", name, i))
		}
	}
	for i, path := range tables.AttrPaths {
		if len(path) == 0 || int(path[0]) >= len(tables.Roots) {
			panic(fmt.Sprintf("template %q attribute path %d is out of range", name, i))
		}
	}
}

// Registry maps template names to compiled Template values and applies
// hot-reload swaps.  Re-registering content already seen by the shared
// TemplateCache reuses the previously compiled tables.
type Registry struct {
	mu        sync.Mutex
	templates map[string]*Template
	cache     TemplateCache
}

// NewRegistry returns a registry.  cache may be nil to disable content
// deduplication.
func NewRegistry(cache TemplateCache) *Registry {
	return &Registry{
		templates: map[string]*Template{},
		cache:     cache,
	}
}

// Register compiles and records the template for name.  The first
// registration for a name wins; later calls return the existing Template
// unchanged (use Swap to replace content).
func (r *Registry) Register(name string, tables *TemplateTables) *Template {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.templates[name]; ok {
		return t
	}
	t := NewTemplate(name, r.dedupe(name, tables))
	r.templates[name] = t
	return t
}

// Swap atomically replaces the tables of the named template, preserving
// its identity so instances rendered before and after the swap still diff
// in place.  Swapping an unregistered name registers it.  Mount records
// are sized when an instance is created, so a swap that changes the
// number of dynamic slots requires rebuilding mounted trees rather than
// diffing them.
func (r *Registry) Swap(name string, tables *TemplateTables) *Template {
	r.mu.Lock()
	defer r.mu.Unlock()
	tables = r.dedupe(name, tables)
	if t, ok := r.templates[name]; ok {
		t.swap(tables)
		return t
	}
	t := NewTemplate(name, tables)
	r.templates[name] = t
	return t
}

// Lookup returns the registered template for name, if any.
func (r *Registry) Lookup(name string) (*Template, bool) {
	r.mu.Lock()
	t, ok := r.templates[name]
	r.mu.Unlock()
	return t, ok
}

func (r *Registry) dedupe(name string, tables *TemplateTables) *TemplateTables {
	if r.cache == nil {
		validateTables(name, tables)
		return tables
	}
	hash := hashTables(tables)
	if cached, ok := r.cache.Get(hash); ok {
		return cached.(*TemplateTables)
	}
	validateTables(name, tables)
	r.cache.Add(hash, tables)
	return tables
}
