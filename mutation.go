package vdom

// Sink receives the mutation stream emitted by a diff pass.  Applying the
// operations strictly in call order reproduces the target tree; later
// operations reference identifiers created by earlier ones in the same
// pass, so a partially applied stream is meaningless.
//
// Operations follow a stack convention: LoadTemplate, CreateText,
// CreatePlaceholder and PushRoot each push one logical node entry;
// ReplaceWith, ReplacePlaceholder, InsertAfter, InsertBefore and
// AppendChildren pop the top m entries and reposition them, preserving the
// order in which they were pushed.
//
// Paths (ReplacePlaceholder, AssignID) address a node inside a loaded
// template root's static shape.  The first entry records the root's index
// within its template and is satisfied by the load itself; the remaining
// entries are child indices walked from the template root on top of the
// stack.  For ReplacePlaceholder the walk starts after the m popped nodes
// are removed, so intervening pushes never shift the base.
type Sink interface {
	// LoadTemplate materializes root number root of the template,
	// assigns it id, and pushes it.
	LoadTemplate(t *Template, root int, id ElementID)
	// CreateText creates a text node and pushes it.
	CreateText(text string, id ElementID)
	// CreatePlaceholder creates an empty marker node and pushes it.
	CreatePlaceholder(id ElementID)
	// SetText updates an existing text node's content.
	SetText(text string, id ElementID)
	// SetAttribute updates an attribute of an existing node.
	SetAttribute(name, namespace string, value AttributeValue, id ElementID)
	// AssignID assigns id to the node at path of the template root on
	// top of the stack, so later mutations can address it.
	AssignID(path []uint8, id ElementID)
	// ReplaceWith pops m nodes and replaces node id with them.
	ReplaceWith(id ElementID, m int)
	// ReplacePlaceholder pops m nodes and splices them into the template
	// slot at path.
	ReplacePlaceholder(path []uint8, m int)
	// InsertAfter pops m nodes and inserts them after node id.
	InsertAfter(id ElementID, m int)
	// InsertBefore pops m nodes and inserts them before node id.
	InsertBefore(id ElementID, m int)
	// AppendChildren pops m nodes and appends them as children of id.
	AppendChildren(id ElementID, m int)
	// Remove detaches and discards node id and its subtree.
	Remove(id ElementID)
	// PushRoot pushes an already-existing node, so a batch can move it
	// the same way it positions freshly created ones.
	PushRoot(id ElementID)
}

// Op names a mutation operation in a recorded stream.
type Op uint8

const (
	OpLoadTemplate Op = iota
	OpCreateText
	OpCreatePlaceholder
	OpSetText
	OpSetAttribute
	OpAssignID
	OpReplaceWith
	OpReplacePlaceholder
	OpInsertAfter
	OpInsertBefore
	OpAppendChildren
	OpRemove
	OpPushRoot
)

var opNames = [...]string{
	OpLoadTemplate:       "LoadTemplate",
	OpCreateText:         "CreateText",
	OpCreatePlaceholder:  "CreatePlaceholder",
	OpSetText:            "SetText",
	OpSetAttribute:       "SetAttribute",
	OpAssignID:           "AssignID",
	OpReplaceWith:        "ReplaceWith",
	OpReplacePlaceholder: "ReplacePlaceholder",
	OpInsertAfter:        "InsertAfter",
	OpInsertBefore:       "InsertBefore",
	OpAppendChildren:     "AppendChildren",
	OpRemove:             "Remove",
	OpPushRoot:           "PushRoot",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "Op(?)"
}

// Mutation is one recorded operation.  Which fields are meaningful depends
// on Op, mirroring the Sink method of the same name.
type Mutation struct {
	Op        Op
	Template  *Template
	Root      int
	ID        ElementID
	Text      string
	Name      string
	Namespace string
	Value     AttributeValue
	Path      []uint8
	Many      int
}

// Recorder is a Sink that records the mutation stream as a value slice,
// usually for testing or for transports that forward whole batches.
type Recorder struct {
	Mutations []Mutation
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// Reset discards all recorded mutations.
func (r *Recorder) Reset() { r.Mutations = r.Mutations[:0] }

func (r *Recorder) LoadTemplate(t *Template, root int, id ElementID) {
	r.Mutations = append(r.Mutations, Mutation{Op: OpLoadTemplate, Template: t, Root: root, ID: id})
}

func (r *Recorder) CreateText(text string, id ElementID) {
	r.Mutations = append(r.Mutations, Mutation{Op: OpCreateText, Text: text, ID: id})
}

func (r *Recorder) CreatePlaceholder(id ElementID) {
	r.Mutations = append(r.Mutations, Mutation{Op: OpCreatePlaceholder, ID: id})
}

func (r *Recorder) SetText(text string, id ElementID) {
	r.Mutations = append(r.Mutations, Mutation{Op: OpSetText, Text: text, ID: id})
}

func (r *Recorder) SetAttribute(name, namespace string, value AttributeValue, id ElementID) {
	r.Mutations = append(r.Mutations, Mutation{
		Op: OpSetAttribute, Name: name, Namespace: namespace, Value: value, ID: id,
	})
}

func (r *Recorder) AssignID(path []uint8, id ElementID) {
	r.Mutations = append(r.Mutations, Mutation{Op: OpAssignID, Path: path, ID: id})
}

func (r *Recorder) ReplaceWith(id ElementID, m int) {
	r.Mutations = append(r.Mutations, Mutation{Op: OpReplaceWith, ID: id, Many: m})
}

func (r *Recorder) ReplacePlaceholder(path []uint8, m int) {
	r.Mutations = append(r.Mutations, Mutation{Op: OpReplacePlaceholder, Path: path, Many: m})
}

func (r *Recorder) InsertAfter(id ElementID, m int) {
	r.Mutations = append(r.Mutations, Mutation{Op: OpInsertAfter, ID: id, Many: m})
}

func (r *Recorder) InsertBefore(id ElementID, m int) {
	r.Mutations = append(r.Mutations, Mutation{Op: OpInsertBefore, ID: id, Many: m})
}

func (r *Recorder) AppendChildren(id ElementID, m int) {
	r.Mutations = append(r.Mutations, Mutation{Op: OpAppendChildren, ID: id, Many: m})
}

func (r *Recorder) Remove(id ElementID) {
	r.Mutations = append(r.Mutations, Mutation{Op: OpRemove, ID: id})
}

func (r *Recorder) PushRoot(id ElementID) {
	r.Mutations = append(r.Mutations, Mutation{Op: OpPushRoot, ID: id})
}
