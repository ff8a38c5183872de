package vdom

import "fmt"

// RootID is the identifier of the host's mount point.  Rebuild appends the
// materialized tree to it; the allocator never hands it out.
const RootID ElementID = 0

// ElementID is an opaque handle naming one materialized node.  Handles are
// valid only while referenced by a live mount; once an instance is removed
// its identifiers return to the free list and may be reassigned.
type ElementID uint

// mountID indexes the Dom's mount arena.  Zero means unmounted.
type mountID int

// mountRecord is the live binding between a mounted instance and the
// concrete identifiers it owns.
type mountRecord struct {
	instance *Instance
	parent   mountID
	// roots holds the identifier of each static template root; entries
	// for roots that are dynamic slots stay zero (the slot's own nodes
	// are tracked below or in child mounts).
	roots []ElementID
	// slots holds, per dynamic node slot, the identifier of a text or
	// placeholder node.  Fragment and component slots stay zero; their
	// contents live in the child instances' own mounts.
	slots []ElementID
	// comps holds, per dynamic node slot, the root instance a component
	// slot rendered when it was materialized.  The removal and boundary
	// walks read this sub-mount rather than asking the ComponentSource,
	// whose current-root mapping may already describe a replacement.
	comps []*Instance
	// attrs holds, per dynamic attribute slot, the identifier of the
	// element the slot addresses.
	attrs []attrAnchor
}

type attrAnchor struct {
	id ElementID
	// owned indicates the id was allocated for this slot via AssignID,
	// as opposed to aliasing a root element's id.
	owned bool
}

// Dom owns the identifier table and mount records for one rendered tree
// and runs diff passes against it.  A Dom is exclusively owned by one
// tree; concurrent diff passes over the same Dom are undefined.
type Dom struct {
	nextID     ElementID
	freeIDs    []ElementID
	mounts     []mountRecord
	freeMounts []mountID
	components ComponentSource
	debug      bool
}

func (d *Dom) allocID() ElementID {
	if n := len(d.freeIDs); n > 0 {
		id := d.freeIDs[n-1]
		d.freeIDs = d.freeIDs[:n-1]
		return id
	}
	id := d.nextID
	d.nextID++
	return id
}

func (d *Dom) freeID(id ElementID) {
	if id == RootID {
		panic("freeing the reserved root identifier")
	}
	d.freeIDs = append(d.freeIDs, id)
}

func (d *Dom) allocMount(inst *Instance, parent mountID, tables *TemplateTables) mountID {
	record := mountRecord{
		instance: inst,
		parent:   parent,
		roots:    make([]ElementID, len(tables.Roots)),
		slots:    make([]ElementID, len(tables.NodePaths)),
		comps:    make([]*Instance, len(tables.NodePaths)),
		attrs:    make([]attrAnchor, len(tables.AttrPaths)),
	}
	var mid mountID
	if n := len(d.freeMounts); n > 0 {
		mid = d.freeMounts[n-1]
		d.freeMounts = d.freeMounts[:n-1]
		d.mounts[mid] = record
	} else {
		d.mounts = append(d.mounts, record)
		mid = mountID(len(d.mounts) - 1)
	}
	inst.mount = mid
	return mid
}

func (d *Dom) freeMountRecord(mid mountID) {
	d.mounts[mid] = mountRecord{}
	d.freeMounts = append(d.freeMounts, mid)
}

// createInstance materializes an instance for the first time: allocates
// identifiers for the template's static roots, recursively materializes
// dynamic slots, and emits the creation mutations.  Returns the number of
// root nodes pushed onto the sink's stack.
func (d *Dom) createInstance(inst *Instance, parent mountID, sink Sink) int {
	tables := inst.Template.Tables()
	if d.debug {
		fmt.Printf("creating instance of %q (%d roots)\n", inst.Template.Name, len(tables.Roots))
	}
	if len(inst.DynamicNodes) != len(tables.NodePaths) ||
		len(inst.DynamicAttrs) != len(tables.AttrPaths) {
		panic(fmt.Sprintf("instance of %q carries %d/%d dynamic values for %d/%d declared slots",
			inst.Template.Name, len(inst.DynamicNodes), len(inst.DynamicAttrs),
			len(tables.NodePaths), len(tables.AttrPaths)))
	}
	mid := d.allocMount(inst, parent, tables)
	pushed := 0
	for rootIdx := range tables.Roots {
		root := &tables.Roots[rootIdx]
		switch root.Kind {
		case TemplateElement, TemplateText:
			id := d.allocID()
			d.mounts[mid].roots[rootIdx] = id
			sink.LoadTemplate(inst.Template, rootIdx, id)
			pushed++
			d.hydrateRoot(inst, mid, tables, rootIdx, sink)
		case TemplateDynamic, TemplateDynamicText:
			pushed += d.createDynamicNode(inst, mid, root.Index, sink)
		}
	}
	return pushed
}

// hydrateRoot assigns identifiers to the dynamic attribute anchors inside
// a freshly loaded static root, emits initial attribute values, and
// splices the root's nested dynamic node slots.  Interleaving per root
// keeps the stack accounting local: each ReplacePlaceholder pops exactly
// the nodes pushed since the root's LoadTemplate.
func (d *Dom) hydrateRoot(inst *Instance, mid mountID, tables *TemplateTables, rootIdx int, sink Sink) {
	for slot, path := range tables.AttrPaths {
		if int(path[0]) != rootIdx {
			continue
		}
		var anchor attrAnchor
		if len(path) == 1 {
			anchor = attrAnchor{id: d.mounts[mid].roots[rootIdx]}
		} else {
			anchor = attrAnchor{id: d.allocID(), owned: true}
			sink.AssignID(path, anchor.id)
		}
		d.mounts[mid].attrs[slot] = anchor
		for _, attr := range inst.DynamicAttrs[slot] {
			sink.SetAttribute(attr.Name, attr.Namespace, attr.Value, anchor.id)
		}
	}
	for slot, path := range tables.NodePaths {
		if int(path[0]) != rootIdx || len(path) == 1 {
			continue
		}
		m := d.createDynamicNode(inst, mid, slot, sink)
		sink.ReplacePlaceholder(path, m)
	}
}

// createDynamicNode materializes the value occupying one dynamic node
// slot and returns the number of nodes pushed.
func (d *Dom) createDynamicNode(inst *Instance, mid mountID, slot int, sink Sink) int {
	dn := &inst.DynamicNodes[slot]
	switch dn.Kind {
	case DynamicText:
		id := d.allocID()
		d.mounts[mid].slots[slot] = id
		sink.CreateText(dn.Text, id)
		return 1
	case DynamicPlaceholder:
		id := d.allocID()
		d.mounts[mid].slots[slot] = id
		sink.CreatePlaceholder(id)
		return 1
	case DynamicFragment:
		if d.debug && len(dn.Children) == 0 {
			panic("empty fragment; empty lists must render as a placeholder")
		}
		pushed := 0
		for _, child := range dn.Children {
			pushed += d.createInstance(child, mid, sink)
		}
		return pushed
	case DynamicComponent:
		root := d.components.Render(dn.Component)
		d.mounts[mid].comps[slot] = root
		return d.createInstance(root, mid, sink)
	}
	panic(fmt.Sprintf("unknown dynamic node kind %d", dn.Kind))
}

// removeInstance detaches an instance's nodes and releases everything it
// owns.  If replaceM >= 0, the instance's last root is replaced (via
// ReplaceWith, consuming replaceM pushed nodes) instead of removed, which
// is how the differ swaps new content into an old position in one batch.
func (d *Dom) removeInstance(inst *Instance, replaceM int, sink Sink) {
	d.removeRoots(inst, replaceM, sink)
	d.reclaim(inst)
}

// removeRoots emits the Remove/ReplaceWith mutations for an instance's
// top-level nodes.  Identifier bookkeeping is left to reclaim.
func (d *Dom) removeRoots(inst *Instance, replaceM int, sink Sink) {
	tables := inst.Template.Tables()
	mid := inst.mount
	last := len(tables.Roots) - 1
	for rootIdx := range tables.Roots {
		rm := -1
		if rootIdx == last {
			rm = replaceM
		}
		root := &tables.Roots[rootIdx]
		switch root.Kind {
		case TemplateElement, TemplateText:
			id := d.mounts[mid].roots[rootIdx]
			if rm >= 0 {
				sink.ReplaceWith(id, rm)
			} else {
				sink.Remove(id)
			}
		case TemplateDynamic, TemplateDynamicText:
			d.removeDynamicRoots(inst, root.Index, rm, sink)
		}
	}
}

func (d *Dom) removeDynamicRoots(inst *Instance, slot int, replaceM int, sink Sink) {
	dn := &inst.DynamicNodes[slot]
	switch dn.Kind {
	case DynamicText, DynamicPlaceholder:
		id := d.mounts[inst.mount].slots[slot]
		if replaceM >= 0 {
			sink.ReplaceWith(id, replaceM)
		} else {
			sink.Remove(id)
		}
	case DynamicFragment:
		lastChild := len(dn.Children) - 1
		for i, child := range dn.Children {
			rm := -1
			if i == lastChild {
				rm = replaceM
			}
			d.removeRoots(child, rm, sink)
		}
	case DynamicComponent:
		d.removeRoots(d.mounts[inst.mount].comps[slot], replaceM, sink)
	}
}

// reclaim returns an instance's identifiers to the free list and frees its
// mount, recursively.  No mutations are emitted; removing a root detaches
// its whole subtree on the renderer side.
func (d *Dom) reclaim(inst *Instance) {
	tables := inst.Template.Tables()
	mid := inst.mount
	for rootIdx := range tables.Roots {
		if id := d.mounts[mid].roots[rootIdx]; id != 0 {
			d.freeID(id)
		}
	}
	for slot := range tables.NodePaths {
		dn := &inst.DynamicNodes[slot]
		switch dn.Kind {
		case DynamicText, DynamicPlaceholder:
			d.freeID(d.mounts[mid].slots[slot])
		case DynamicFragment:
			for _, child := range dn.Children {
				d.reclaim(child)
			}
		case DynamicComponent:
			d.reclaim(d.mounts[mid].comps[slot])
		}
	}
	for slot := range tables.AttrPaths {
		if anchor := d.mounts[mid].attrs[slot]; anchor.owned {
			d.freeID(anchor.id)
		}
	}
	d.freeMountRecord(mid)
	inst.mount = 0
}

// firstBoundary resolves the identifier of the first concrete node an
// instance occupies, for anchoring insert-before mutations.
func (d *Dom) firstBoundary(inst *Instance) ElementID {
	tables := inst.Template.Tables()
	root := &tables.Roots[0]
	if root.Kind == TemplateElement || root.Kind == TemplateText {
		return d.mounts[inst.mount].roots[0]
	}
	dn := &inst.DynamicNodes[root.Index]
	switch dn.Kind {
	case DynamicText, DynamicPlaceholder:
		return d.mounts[inst.mount].slots[root.Index]
	case DynamicFragment:
		return d.firstBoundary(dn.Children[0])
	case DynamicComponent:
		return d.firstBoundary(d.mounts[inst.mount].comps[root.Index])
	}
	panic(fmt.Sprintf("unknown dynamic node kind %d", dn.Kind))
}

// lastBoundary resolves the identifier of the last concrete node an
// instance occupies, for anchoring insert-after mutations.
func (d *Dom) lastBoundary(inst *Instance) ElementID {
	tables := inst.Template.Tables()
	root := &tables.Roots[len(tables.Roots)-1]
	if root.Kind == TemplateElement || root.Kind == TemplateText {
		return d.mounts[inst.mount].roots[len(tables.Roots)-1]
	}
	dn := &inst.DynamicNodes[root.Index]
	switch dn.Kind {
	case DynamicText, DynamicPlaceholder:
		return d.mounts[inst.mount].slots[root.Index]
	case DynamicFragment:
		return d.lastBoundary(dn.Children[len(dn.Children)-1])
	case DynamicComponent:
		return d.lastBoundary(d.mounts[inst.mount].comps[root.Index])
	}
	panic(fmt.Sprintf("unknown dynamic node kind %d", dn.Kind))
}

// pushAllRoots re-pushes every top-level node of an already-mounted
// instance, so a batched insert can move it alongside freshly created
// nodes.  Returns the number of nodes pushed.
func (d *Dom) pushAllRoots(inst *Instance, sink Sink) int {
	tables := inst.Template.Tables()
	pushed := 0
	for rootIdx := range tables.Roots {
		root := &tables.Roots[rootIdx]
		if root.Kind == TemplateElement || root.Kind == TemplateText {
			sink.PushRoot(d.mounts[inst.mount].roots[rootIdx])
			pushed++
			continue
		}
		dn := &inst.DynamicNodes[root.Index]
		switch dn.Kind {
		case DynamicText, DynamicPlaceholder:
			sink.PushRoot(d.mounts[inst.mount].slots[root.Index])
			pushed++
		case DynamicFragment:
			for _, child := range dn.Children {
				pushed += d.pushAllRoots(child, sink)
			}
		case DynamicComponent:
			pushed += d.pushAllRoots(d.mounts[inst.mount].comps[root.Index], sink)
		}
	}
	return pushed
}
