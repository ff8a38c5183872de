package vdom

// Options configures a Dom.
type Options struct {
	// Components resolves embedded component slots.  Required if any
	// instance carries a DynamicComponent value.
	Components ComponentSource
	// Debug enables trace output and the structural invariant checks
	// (uniform keying, unique keys, slot counts).  Violations panic with
	// a diagnostic instead of degrading silently.
	Debug bool
}

// New returns a Dom that owns one rendered tree's identifier table and
// mount records.
func New(options *Options) *Dom {
	d := &Dom{
		nextID: RootID + 1,
		mounts: make([]mountRecord, 1),
	}
	if options != nil {
		d.components = options.Components
		d.debug = options.Debug
	}
	return d
}

// Rebuild materializes a freshly rendered root instance from scratch and
// appends it to the host's mount point (RootID).  Use it for the first
// render pass; later passes go through Diff.
func (d *Dom) Rebuild(root *Instance, sink Sink) {
	m := d.createInstance(root, 0, sink)
	sink.AppendChildren(RootID, m)
}

// Diff reconciles the previously rendered instance against a freshly
// rendered one, emitting the mutations that transform the displayed tree
// into the new one.  The old instance's mount records are updated in
// place: after the call, new owns the live bindings and becomes the
// previous tree for the next pass.
func (d *Dom) Diff(old, new *Instance, sink Sink) {
	d.diffNode(old, new, sink)
}

// ReconcileChildren diffs two sibling lists under the same parent.
// Within each list, siblings must be uniformly keyed or uniformly
// unkeyed, and both lists must be non-empty; an empty child list renders
// as a placeholder dynamic node and is reconciled by Diff instead.
func (d *Dom) ReconcileChildren(old, new []*Instance, parent *Instance, sink Sink) {
	d.diffChildren(old, new, parent, sink)
}

// Unmount removes a previously rendered instance from the displayed tree,
// releasing its mount records and returning its identifiers to the pool.
func (d *Dom) Unmount(root *Instance, sink Sink) {
	d.removeInstance(root, -1, sink)
}
