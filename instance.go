package vdom

import (
	"fmt"
	"strconv"
)

// DynamicKind discriminates the values a dynamic node slot can hold.  The
// variant set is closed; every consumption site switches exhaustively.
type DynamicKind uint8

const (
	// DynamicText is a text node whose content varies per render.
	DynamicText DynamicKind = iota
	// DynamicPlaceholder is an empty marker node, used where a slot is
	// currently rendering nothing (an empty list, a false conditional).
	DynamicPlaceholder
	// DynamicFragment is a non-empty sequence of child instances.
	DynamicFragment
	// DynamicComponent references an embedded component whose rendered
	// root fills the slot.
	DynamicComponent
)

// DynamicNode is the runtime value occupying one dynamic node slot.
type DynamicNode struct {
	Kind DynamicKind

	// DynamicText
	Text string

	// DynamicFragment; must be non-empty (an empty list renders as a
	// DynamicPlaceholder instead).
	Children []*Instance

	// DynamicComponent
	Component ComponentID
}

// AttributeValueKind discriminates attribute values.
type AttributeValueKind uint8

const (
	// ValueText is a string-valued attribute.
	ValueText AttributeValueKind = iota
	// ValueInt is an integer-valued attribute.
	ValueInt
	// ValueFloat is a float-valued attribute.
	ValueFloat
	// ValueBool is a boolean-valued attribute.
	ValueBool
	// ValueNone indicates the attribute is unset.
	ValueNone
)

// AttributeValue is an attribute's value.  Values compare with ==; two
// values are structurally equal when their kind and the corresponding
// field match.
type AttributeValue struct {
	Kind  AttributeValueKind
	Text  string
	Int   int64
	Float float64
	Bool  bool
}

// String renders the value for diagnostics and textual renderers.
func (v AttributeValue) String() string {
	switch v.Kind {
	case ValueText:
		return v.Text
	case ValueInt:
		return strconv.FormatInt(v.Int, 10)
	case ValueFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case ValueBool:
		return strconv.FormatBool(v.Bool)
	}
	return ""
}

// TextValue returns a string attribute value.
func TextValue(s string) AttributeValue { return AttributeValue{Kind: ValueText, Text: s} }

// IntValue returns an integer attribute value.
func IntValue(i int64) AttributeValue { return AttributeValue{Kind: ValueInt, Int: i} }

// FloatValue returns a float attribute value.
func FloatValue(f float64) AttributeValue { return AttributeValue{Kind: ValueFloat, Float: f} }

// BoolValue returns a boolean attribute value.
func BoolValue(b bool) AttributeValue { return AttributeValue{Kind: ValueBool, Bool: b} }

// NoneValue returns the unset attribute value.
func NoneValue() AttributeValue { return AttributeValue{Kind: ValueNone} }

// Attribute is one runtime attribute occupying (part of) a dynamic
// attribute slot.  Several attributes may be merged at one slot, so
// Instance.DynamicAttrs carries a list per slot.
type Attribute struct {
	Name      string
	Namespace string
	Value     AttributeValue
	// Volatile attributes are re-emitted on every diff even when the
	// value is unchanged, for host properties the user can mutate out
	// from under the renderer (input value, checked, selected).
	Volatile bool
}

// Instance is one rendering of a Template: the template reference, the
// values of its dynamic slots, and an optional ordering key for
// reorder-aware sibling matching.  Instances are transient; each render
// pass produces fresh ones, which the differ walks against the previous
// pass's tree.
//
// The mount cell is the live binding to concrete identifiers; it is an
// index into the owning Dom's mount arena, set when the instance is first
// materialized or when a diff transfers the previous instance's mount.
type Instance struct {
	Template *Template
	// Key orders keyed siblings.  Empty means unkeyed; within one sibling
	// list keys must be uniformly present or uniformly absent.
	Key          string
	DynamicNodes []DynamicNode
	DynamicAttrs [][]Attribute

	mount mountID
}

// NewInstance binds dynamic values to a template.  The value counts must
// match the template's declared slot counts exactly; a mismatch is a
// compiler-contract violation and panics.
func NewInstance(t *Template, key string, nodes []DynamicNode, attrs [][]Attribute) *Instance {
	tables := t.Tables()
	if len(nodes) != len(tables.NodePaths) {
		panic(fmt.Sprintf("template %q declares %d dynamic node slots, got %d values",
			t.Name, len(tables.NodePaths), len(nodes)))
	}
	if len(attrs) != len(tables.AttrPaths) {
		panic(fmt.Sprintf("template %q declares %d dynamic attribute slots, got %d value lists",
			t.Name, len(tables.AttrPaths), len(attrs)))
	}
	return &Instance{
		Template:     t,
		Key:          key,
		DynamicNodes: nodes,
		DynamicAttrs: attrs,
	}
}

// Mounted reports whether the instance is currently materialized.
func (inst *Instance) Mounted() bool {
	return inst.mount != 0
}
