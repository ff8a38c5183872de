/*
Package vdom computes the minimal sequence of imperative mutations
needed to transform one rendered node tree into another.  It is the
reconciliation core of a retained-mode UI: a render pass produces a
fresh Instance tree, the differ walks it against the previously
rendered tree, and the resulting mutation stream is handed to whatever
renderer owns the real display surface (a browser DOM, a native widget
tree, a terminal).

Templates and Instances

Rendered output is split into a static Template and a runtime
Instance.  The Template describes everything about a subtree that can
never change, plus the addresses (root index and child-index path) of
each dynamic slot.  The Instance carries only the values that can
vary: text, attributes, nested fragments, embedded components.  The
differ never re-scans static structure; it only walks dynamic slots,
which is what keeps a diff pass cheap no matter how large the static
markup is.

Diffing

Sibling lists are reconciled positionally when unkeyed, and with a
three-phase keyed algorithm otherwise: matching ends are peeled off in
linear time, the surviving middle is matched by key, and a longest
increasing subsequence over the matched old positions picks the set of
nodes that can stay put, so that only the remainder is moved.  Nodes
that keep their template identity are diffed in place; nodes that
change template identity are replaced wholesale.

The differ is a synchronous, single-threaded, pure computation.  It
performs no I/O, returns no errors, and always emits some mutation
sequence; structural invariants (uniform keying within a sibling list,
unique keys) are checked only when debugging is enabled, and violating
them in release mode degrades to a possibly incorrect but memory-safe
render.

Sinks

Mutations are written into a Sink interface threaded through every
recursive call, so the same differ drives unrelated renderer backends
and tests can observe the exact stream with a Recorder.  Mutations
must be applied strictly in emission order: later operations reference
identifiers created by earlier ones in the same pass.

Inspiration

The template/instance split and the keyed middle reconciliation follow
the approach popularized by modern declarative UI runtimes; the LIS
based move minimization goes back to earlier virtual DOM
implementations such as ivi and inferno.
*/
package vdom
