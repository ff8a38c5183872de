package vdom

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var defaultGopterParameters = gopter.DefaultTestParameters()

// The host tree below is a minimal interpreter for the mutation stream: it
// resolves identifiers and template paths exactly as Sink documents, so a
// diff pass applied to it must converge on the same tree a fresh rebuild of
// the new state produces.

type hostKind uint8

const (
	hostElement hostKind = iota
	hostText
	hostPlaceholder
)

type hostNode struct {
	kind     hostKind
	tag      string
	text     string
	attrs    map[string]AttributeValue
	parent   *hostNode
	children []*hostNode
}

type hostTree struct {
	root  *hostNode
	byID  map[ElementID]*hostNode
	stack []*hostNode
}

func newHostTree() *hostTree {
	root := &hostNode{kind: hostElement, tag: "#root"}
	return &hostTree{
		root: root,
		byID: map[ElementID]*hostNode{RootID: root},
	}
}

func buildStatic(tn *TemplateNode) *hostNode {
	switch tn.Kind {
	case TemplateElement:
		n := &hostNode{kind: hostElement, tag: tn.Tag}
		for _, a := range tn.Attrs {
			if !a.Dynamic {
				n.setAttr(a.Name, a.Namespace, TextValue(a.Value))
			}
		}
		for i := range tn.Children {
			c := buildStatic(&tn.Children[i])
			c.parent = n
			n.children = append(n.children, c)
		}
		return n
	case TemplateText:
		return &hostNode{kind: hostText, text: tn.Text}
	}
	// dynamic slots start out as markers until hydration replaces them
	return &hostNode{kind: hostPlaceholder}
}

func (n *hostNode) setAttr(name, namespace string, value AttributeValue) {
	key := name
	if namespace != "" {
		key = namespace + ":" + name
	}
	if value.Kind == ValueNone {
		delete(n.attrs, key)
		return
	}
	if n.attrs == nil {
		n.attrs = map[string]AttributeValue{}
	}
	n.attrs[key] = value
}

func (n *hostNode) detach() {
	if n.parent == nil {
		return
	}
	sib := n.parent.children
	for i, c := range sib {
		if c == n {
			n.parent.children = append(sib[:i], sib[i+1:]...)
			n.parent = nil
			return
		}
	}
	panic("host node not among its parent's children")
}

func (n *hostNode) indexIn(p *hostNode) int {
	for i, c := range p.children {
		if c == n {
			return i
		}
	}
	panic("host node not among its parent's children")
}

func (p *hostNode) insertAt(at int, nodes []*hostNode) {
	for _, n := range nodes {
		n.parent = p
	}
	rest := append([]*hostNode{}, p.children[at:]...)
	p.children = append(append(p.children[:at], nodes...), rest...)
}

func (h *hostTree) node(id ElementID) *hostNode {
	n, ok := h.byID[id]
	if !ok {
		panic(fmt.Sprintf("unknown host identifier %d", id))
	}
	return n
}

// pop detaches the top m nodes and returns them in push order.
func (h *hostTree) pop(m int) []*hostNode {
	if m > len(h.stack) {
		panic(fmt.Sprintf("pop %d with %d on stack", m, len(h.stack)))
	}
	popped := h.stack[len(h.stack)-m:]
	h.stack = h.stack[:len(h.stack)-m]
	for _, n := range popped {
		n.detach()
	}
	return popped
}

// resolve walks a template path from the root on top of the stack.  The
// first path entry is the root's index within its template, consumed by
// LoadTemplate itself.
func (h *hostTree) resolve(path []uint8) *hostNode {
	n := h.stack[len(h.stack)-1]
	for _, p := range path[1:] {
		n = n.children[p]
	}
	return n
}

func (h *hostTree) LoadTemplate(t *Template, root int, id ElementID) {
	tables := t.Tables()
	n := buildStatic(&tables.Roots[root])
	h.byID[id] = n
	h.stack = append(h.stack, n)
}

func (h *hostTree) CreateText(text string, id ElementID) {
	n := &hostNode{kind: hostText, text: text}
	h.byID[id] = n
	h.stack = append(h.stack, n)
}

func (h *hostTree) CreatePlaceholder(id ElementID) {
	n := &hostNode{kind: hostPlaceholder}
	h.byID[id] = n
	h.stack = append(h.stack, n)
}

func (h *hostTree) SetText(text string, id ElementID) {
	h.node(id).text = text
}

func (h *hostTree) SetAttribute(name, namespace string, value AttributeValue, id ElementID) {
	h.node(id).setAttr(name, namespace, value)
}

func (h *hostTree) AssignID(path []uint8, id ElementID) {
	h.byID[id] = h.resolve(path)
}

func (h *hostTree) replace(target *hostNode, popped []*hostNode) {
	p := target.parent
	if p == nil {
		panic("replacing a detached host node")
	}
	at := target.indexIn(p)
	p.insertAt(at, popped)
	target.detach()
}

func (h *hostTree) ReplaceWith(id ElementID, m int) {
	target := h.node(id)
	h.replace(target, h.pop(m))
}

func (h *hostTree) ReplacePlaceholder(path []uint8, m int) {
	popped := h.pop(m)
	h.replace(h.resolve(path), popped)
}

func (h *hostTree) InsertAfter(id ElementID, m int) {
	popped := h.pop(m)
	anchor := h.node(id)
	anchor.parent.insertAt(anchor.indexIn(anchor.parent)+1, popped)
}

func (h *hostTree) InsertBefore(id ElementID, m int) {
	popped := h.pop(m)
	anchor := h.node(id)
	anchor.parent.insertAt(anchor.indexIn(anchor.parent), popped)
}

func (h *hostTree) AppendChildren(id ElementID, m int) {
	popped := h.pop(m)
	p := h.node(id)
	p.insertAt(len(p.children), popped)
}

func (h *hostTree) Remove(id ElementID) {
	h.node(id).detach()
}

func (h *hostTree) PushRoot(id ElementID) {
	h.stack = append(h.stack, h.node(id))
}

// String renders the tree deterministically, ignoring identifiers, so two
// trees built through different mutation histories compare equal exactly
// when they look the same to a host.
func (h *hostTree) String() string {
	var sb strings.Builder
	for _, c := range h.root.children {
		c.renderTo(&sb)
	}
	return sb.String()
}

func (n *hostNode) renderTo(sb *strings.Builder) {
	switch n.kind {
	case hostText:
		fmt.Fprintf(sb, "%q", n.text)
	case hostPlaceholder:
		sb.WriteString("<!>")
	case hostElement:
		sb.WriteByte('<')
		sb.WriteString(n.tag)
		keys := make([]string, 0, len(n.attrs))
		for k := range n.attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(sb, " %s=%q", k, n.attrs[k].String())
		}
		sb.WriteByte('>')
		for _, c := range n.children {
			c.renderTo(sb)
		}
		sb.WriteString("</" + n.tag + ">")
	}
}

// random list states

type exItem struct {
	key  string
	text string
	form int
}

var exTexts = []string{"w", "x", "y", "z"}

func genItems(rng *rand.Rand, keyed bool) []exItem {
	keys := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	rng.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
	items := make([]exItem, rng.Intn(len(keys)+1))
	for i := range items {
		if keyed {
			items[i].key = keys[i]
		}
		items[i].text = exTexts[rng.Intn(len(exTexts))]
		items[i].form = rng.Intn(3)
	}
	return items
}

func instancesOf(items []exItem) []*Instance {
	out := make([]*Instance, len(items))
	for i, it := range items {
		switch it.form {
		case 0:
			out[i] = NewInstance(tmplItem, it.key,
				[]DynamicNode{{Kind: DynamicText, Text: it.text}}, nil)
		case 1:
			out[i] = NewInstance(tmplText, it.key,
				[]DynamicNode{{Kind: DynamicText, Text: it.text}}, nil)
		default:
			out[i] = NewInstance(tmplButton, it.key, nil,
				[][]Attribute{{{Name: "title", Value: TextValue(it.text)}}})
		}
	}
	return out
}

func convergesOnHostTree(seed int64, keyed bool) bool {
	rng := rand.New(rand.NewSource(seed))
	states := [][]exItem{
		genItems(rng, keyed),
		genItems(rng, keyed),
		genItems(rng, keyed),
	}

	d := New(nil)
	live := newHostTree()
	cur := list(instancesOf(states[0])...)
	d.Rebuild(cur, live)
	for _, items := range states[1:] {
		next := list(instancesOf(items)...)
		d.Diff(cur, next, live)
		cur = next
	}

	fresh := newHostTree()
	New(nil).Rebuild(list(instancesOf(states[len(states)-1])...), fresh)

	if live.String() != fresh.String() {
		fmt.Printf("diverged for seed %d:\n  live:  %s\n  fresh: %s\n",
			seed, live.String(), fresh.String())
		return false
	}
	return len(live.stack) == 0
}

func TestKeyedDiffConvergesOnHostTree(t *testing.T) {
	t.Parallel()
	properties := gopter.NewProperties(defaultGopterParameters)
	properties.Property("successive keyed diffs equal a fresh rebuild",
		prop.ForAll(
			func(seed int64) bool { return convergesOnHostTree(seed, true) },
			gen.Int64()))
	properties.TestingRun(t)
}

func TestUnkeyedDiffConvergesOnHostTree(t *testing.T) {
	t.Parallel()
	properties := gopter.NewProperties(defaultGopterParameters)
	properties.Property("successive unkeyed diffs equal a fresh rebuild",
		prop.ForAll(
			func(seed int64) bool { return convergesOnHostTree(seed, false) },
			gen.Int64()))
	properties.TestingRun(t)
}

func TestDiffOfEqualStatesIsSilent(t *testing.T) {
	t.Parallel()
	properties := gopter.NewProperties(defaultGopterParameters)
	properties.Property("diffing a copy of the mounted state emits nothing",
		prop.ForAll(
			func(seed int64) bool {
				rng := rand.New(rand.NewSource(seed))
				d := New(nil)
				cur := list(instancesOf(genItems(rng, rng.Intn(2) == 0))...)
				d.Rebuild(cur, newHostTree())
				rec := NewRecorder()
				d.Diff(cur, deepCopy(cur), rec)
				return len(rec.Mutations) == 0
			},
			gen.Int64()))
	properties.TestingRun(t)
}

func TestUnmountReleasesEveryIdentifier(t *testing.T) {
	t.Parallel()
	properties := gopter.NewProperties(defaultGopterParameters)
	properties.Property("unmount after diffs returns the allocator to its start",
		prop.ForAll(
			func(seed int64) bool {
				rng := rand.New(rand.NewSource(seed))
				d := New(nil)
				live := newHostTree()
				cur := list(instancesOf(genItems(rng, true))...)
				d.Rebuild(cur, live)
				for i := 0; i < 3; i++ {
					next := list(instancesOf(genItems(rng, true))...)
					d.Diff(cur, next, live)
					cur = next
				}
				d.Unmount(cur, live)
				allocated := int(d.nextID) - 1 - len(d.freeIDs)
				return allocated == 0 && len(live.stack) == 0 &&
					len(live.root.children) == 0
			},
			gen.Int64()))
	properties.TestingRun(t)
}
