package vdom

import (
	"fmt"
	"math"
)

// noMatch marks a new keyed node with no counterpart in the old list.  It
// compares greater than every real position so at most one can land in a
// longest increasing subsequence, and only at its greater end.
const noMatch = math.MaxInt

// diffNode reconciles two same-position instances.  If they share a
// compiled template identity the dynamic slots are diffed structurally and
// the old mount is carried over; otherwise the new subtree replaces the
// old one wholesale.
func (d *Dom) diffNode(old, new *Instance, sink Sink) {
	if old.Template != new.Template {
		if d.debug {
			fmt.Printf("replacing %q with %q\n", old.Template.Name, new.Template.Name)
		}
		d.replaceInstance(old, new, sink)
		return
	}

	// The new instance takes over the old one's live binding.
	mid := old.mount
	new.mount = mid
	d.mounts[mid].instance = new

	for slot := range new.DynamicAttrs {
		d.diffAttrSlot(old, new, slot, sink)
	}
	for slot := range new.DynamicNodes {
		d.diffDynamicNode(old, new, slot, sink)
	}
}

func (d *Dom) diffAttrSlot(old, new *Instance, slot int, sink Sink) {
	id := d.mounts[new.mount].attrs[slot].id
	oldAttrs := old.DynamicAttrs[slot]
	newAttrs := new.DynamicAttrs[slot]
	if d.debug && len(oldAttrs) != len(newAttrs) {
		panic(fmt.Sprintf("template %q attribute slot %d: %d attributes before, %d after",
			new.Template.Name, slot, len(oldAttrs), len(newAttrs)))
	}
	for i := range newAttrs {
		attr := &newAttrs[i]
		if i < len(oldAttrs) && !attr.Volatile &&
			oldAttrs[i].Name == attr.Name && oldAttrs[i].Namespace == attr.Namespace &&
			oldAttrs[i].Value == attr.Value {
			continue
		}
		sink.SetAttribute(attr.Name, attr.Namespace, attr.Value, id)
	}
}

func (d *Dom) diffDynamicNode(old, new *Instance, slot int, sink Sink) {
	o := &old.DynamicNodes[slot]
	n := &new.DynamicNodes[slot]
	if o.Kind != n.Kind {
		d.replaceDynamicNode(old, new, slot, sink)
		return
	}
	switch n.Kind {
	case DynamicText:
		if o.Text != n.Text {
			sink.SetText(n.Text, d.mounts[new.mount].slots[slot])
		}
	case DynamicPlaceholder:
		// nothing to do
	case DynamicFragment:
		d.diffChildren(o.Children, n.Children, new, sink)
	case DynamicComponent:
		if o.Component != n.Component {
			d.replaceDynamicNode(old, new, slot, sink)
			return
		}
		oldRoot := d.mounts[new.mount].comps[slot]
		newRoot := d.components.Render(n.Component)
		d.mounts[new.mount].comps[slot] = newRoot
		d.diffNode(oldRoot, newRoot, sink)
	}
}

// replaceDynamicNode swaps the content of one dynamic slot: the new value
// is materialized, then the old value's nodes are removed with the last
// one receiving the batched ReplaceWith.
func (d *Dom) replaceDynamicNode(old, new *Instance, slot int, sink Sink) {
	mid := new.mount
	o := &old.DynamicNodes[slot]
	// Capture the outgoing node's bindings before materialization
	// overwrites the slot entries with the replacement's.
	var oldID ElementID
	if o.Kind == DynamicText || o.Kind == DynamicPlaceholder {
		oldID = d.mounts[mid].slots[slot]
	}
	oldRoot := d.mounts[mid].comps[slot]
	d.mounts[mid].slots[slot] = 0
	d.mounts[mid].comps[slot] = nil
	m := d.createDynamicNode(new, mid, slot, sink)
	switch o.Kind {
	case DynamicText, DynamicPlaceholder:
		sink.ReplaceWith(oldID, m)
		d.freeID(oldID)
	case DynamicFragment:
		d.removeChildren(o.Children, m, sink)
	case DynamicComponent:
		d.removeInstance(oldRoot, m, sink)
	}
}

// replaceInstance performs a full replacement across template identities:
// materialize the new subtree, then remove the old one, replacing its last
// root so the new nodes land in position.
func (d *Dom) replaceInstance(old, new *Instance, sink Sink) {
	parent := d.mounts[old.mount].parent
	m := d.createInstance(new, parent, sink)
	d.removeInstance(old, m, sink)
}

// diffChildren is the child-list reconciliation entry point.  Within each
// list siblings must be uniformly keyed or uniformly unkeyed; the function
// dispatches on whether the lists carry keys.
func (d *Dom) diffChildren(old, new []*Instance, parent *Instance, sink Sink) {
	if d.debug {
		checkChildren(old)
		checkChildren(new)
	}
	if old[0].Key != "" && new[0].Key != "" {
		d.diffKeyed(old, new, parent, sink)
	} else {
		d.diffUnkeyed(old, new, parent, sink)
	}
}

// diffUnkeyed reconciles unkeyed sibling lists positionally in O(n).  No
// moves are ever emitted on this path.
func (d *Dom) diffUnkeyed(old, new []*Instance, parent *Instance, sink Sink) {
	switch {
	case len(old) > len(new):
		for i := range new {
			d.diffNode(old[i], new[i], sink)
		}
		d.removeChildren(old[len(new):], -1, sink)
	case len(new) > len(old):
		for i := range old {
			d.diffNode(old[i], new[i], sink)
		}
		anchor := d.lastBoundary(new[len(old)-1])
		m := 0
		for _, inst := range new[len(old):] {
			m += d.createInstance(inst, d.parentMount(parent), sink)
		}
		sink.InsertAfter(anchor, m)
	default:
		for i := range new {
			d.diffNode(old[i], new[i], sink)
		}
	}
}

// diffKeyed reconciles keyed sibling lists: matching ends are peeled off
// in linear time, and only a surviving non-empty middle pays for the
// move-minimizing reconciliation.
func (d *Dom) diffKeyed(old, new []*Instance, parent *Instance, sink Sink) {
	left, right, done := d.diffKeyedEnds(old, new, parent, sink)
	if done {
		return
	}
	oldMiddle := old[left : len(old)-right]
	newMiddle := new[left : len(new)-right]
	switch {
	case len(newMiddle) == 0:
		d.removeChildren(oldMiddle, -1, sink)
	case len(oldMiddle) == 0:
		// The suffix is non-empty here: had the front scan consumed all
		// of old, diffKeyedEnds would have returned early.
		anchor := d.firstBoundary(new[len(new)-right])
		m := 0
		for _, inst := range newMiddle {
			m += d.createInstance(inst, d.parentMount(parent), sink)
		}
		sink.InsertBefore(anchor, m)
	default:
		d.diffKeyedMiddle(oldMiddle, newMiddle, parent, sink)
	}
}

// diffKeyedEnds scans matching keys from the front and back, diffing in
// place.  It handles pure append, prepend and truncate without the middle
// algorithm, reporting done=true when nothing is left to reconcile.
func (d *Dom) diffKeyedEnds(old, new []*Instance, parent *Instance, sink Sink) (left, right int, done bool) {
	for left < len(old) && left < len(new) && old[left].Key == new[left].Key {
		d.diffNode(old[left], new[left], sink)
		left++
	}
	if left == len(old) {
		if left < len(new) {
			// purely appended suffix
			anchor := d.lastBoundary(new[left-1])
			m := 0
			for _, inst := range new[left:] {
				m += d.createInstance(inst, d.parentMount(parent), sink)
			}
			sink.InsertAfter(anchor, m)
		}
		return 0, 0, true
	}
	if left == len(new) {
		// purely removed suffix
		d.removeChildren(old[left:], -1, sink)
		return 0, 0, true
	}
	for right < len(old)-left && right < len(new)-left &&
		old[len(old)-1-right].Key == new[len(new)-1-right].Key {
		d.diffNode(old[len(old)-1-right], new[len(new)-1-right], sink)
		right++
	}
	return left, right, false
}

// diffKeyedMiddle reconciles the middles left over after end matching,
// both known non-empty.  Old positions matched by key feed a longest
// increasing subsequence; nodes on it stay put and everything else is
// created or relocated in one batched insert per gap between anchors.
func (d *Dom) diffKeyedMiddle(old, new []*Instance, parent *Instance, sink Sink) {
	oldIndex := make(map[string]int, len(old))
	for i, o := range old {
		oldIndex[o.Key] = i
	}
	mapped := make([]int, len(new))
	shared := 0
	for i, n := range new {
		if j, ok := oldIndex[n.Key]; ok {
			mapped[i] = j
			shared++
		} else {
			mapped[i] = noMatch
		}
	}
	if d.debug {
		fmt.Printf("keyed middle: %d old, %d new, %d shared\n", len(old), len(new), shared)
	}

	// No key in common: replace the whole middle range, no per-node reuse.
	if shared == 0 {
		m := 0
		for _, inst := range new {
			m += d.createInstance(inst, d.parentMount(parent), sink)
		}
		d.removeChildren(old, m, sink)
		return
	}

	// Drop old nodes whose keys are gone before anything is repositioned.
	newKeys := make(map[string]struct{}, len(new))
	for _, n := range new {
		newKeys[n.Key] = struct{}{}
	}
	for _, o := range old {
		if _, ok := newKeys[o.Key]; !ok {
			d.removeInstance(o, -1, sink)
		}
	}

	anchors := longestIncreasingSubsequence(mapped)
	// An unmatched new node cannot anchor the no-move subsequence; the
	// sentinel compares greater than every real position, so if selected
	// it sits at the subsequence's greater end and is stripped here.
	if n := len(anchors); n > 0 && mapped[anchors[n-1]] == noMatch {
		anchors = anchors[:n-1]
	}
	if len(anchors) == 0 {
		// Unreachable while shared > 0: a real mapped position always
		// displaces a lone sentinel from the computed subsequence.
		panic("keyed middle reconciliation found no anchors")
	}

	// Anchors need only a content diff, and carrying their mounts over
	// first lets the gap batches below resolve boundaries on new nodes.
	for _, i := range anchors {
		d.diffNode(old[mapped[i]], new[i], sink)
	}

	// after the last anchor
	last := anchors[len(anchors)-1]
	if last < len(new)-1 {
		m := 0
		for i := last + 1; i < len(new); i++ {
			m += d.createOrRelocate(old, new, mapped, i, parent, sink)
		}
		sink.InsertAfter(d.lastBoundary(new[last]), m)
	}
	// between consecutive anchors
	for k := len(anchors) - 2; k >= 0; k-- {
		a, b := anchors[k], anchors[k+1]
		if b-a > 1 {
			m := 0
			for i := a + 1; i < b; i++ {
				m += d.createOrRelocate(old, new, mapped, i, parent, sink)
			}
			sink.InsertBefore(d.firstBoundary(new[b]), m)
		}
	}
	// before the first anchor
	if first := anchors[0]; first > 0 {
		m := 0
		for i := 0; i < first; i++ {
			m += d.createOrRelocate(old, new, mapped, i, parent, sink)
		}
		sink.InsertBefore(d.firstBoundary(new[first]), m)
	}
}

// createOrRelocate pushes the nodes for one off-anchor new element: brand
// new elements are materialized, matched ones are diffed in place and
// their existing nodes re-pushed for the batched move.
func (d *Dom) createOrRelocate(old, new []*Instance, mapped []int, i int, parent *Instance, sink Sink) int {
	if mapped[i] == noMatch {
		return d.createInstance(new[i], d.parentMount(parent), sink)
	}
	d.diffNode(old[mapped[i]], new[i], sink)
	return d.pushAllRoots(new[i], sink)
}

func (d *Dom) removeChildren(old []*Instance, replaceM int, sink Sink) {
	for i, inst := range old {
		if i == len(old)-1 {
			d.removeInstance(inst, replaceM, sink)
		} else {
			d.removeInstance(inst, -1, sink)
		}
	}
}

func (d *Dom) parentMount(parent *Instance) mountID {
	if parent == nil {
		return 0
	}
	return parent.mount
}

// checkChildren enforces the sibling-list invariants under debug: lists
// are non-empty, keying is uniform, and keys are unique.
func checkChildren(list []*Instance) {
	if len(list) == 0 {
		panic("empty sibling list; an empty child list must render as a placeholder")
	}
	keyed := list[0].Key != ""
	seen := make(map[string]struct{}, len(list))
	for i, inst := range list {
		if (inst.Key != "") != keyed {
			panic(fmt.Sprintf("sibling %d mixes keyed and unkeyed children in one list", i))
		}
		if !keyed {
			continue
		}
		if _, dup := seen[inst.Key]; dup {
			panic(fmt.Sprintf("duplicate key %q in sibling list", inst.Key))
		}
		seen[inst.Key] = struct{}{}
	}
}
