package vdom

import "fmt"

// ComponentID identifies an embedded component to the ComponentSource.
type ComponentID uint32

// ComponentSource is the differ's view of the component system.  The
// scheduler that decides when components re-render lives outside this
// package; the differ only asks for a fresh root when it reaches a
// component slot, and tracks the root each slot is currently showing in
// its own mount records (two mounted trees may embed the same component
// id mid-replacement, so a shared current-root mapping cannot answer
// which root a given slot holds).
type ComponentSource interface {
	// Render produces a fresh root instance for the component.
	Render(id ComponentID) *Instance
}

// ComponentMap is a map-backed ComponentSource for embedders and tests
// that don't carry a full component runtime.
type ComponentMap struct {
	render map[ComponentID]func() *Instance
	roots  map[ComponentID]*Instance
}

// NewComponentMap returns an empty ComponentMap.
func NewComponentMap() *ComponentMap {
	return &ComponentMap{
		render: map[ComponentID]func() *Instance{},
		roots:  map[ComponentID]*Instance{},
	}
}

// Set installs the render function for a component.
func (c *ComponentMap) Set(id ComponentID, render func() *Instance) {
	c.render[id] = render
}

// RootInstance returns the component's current root instance.
func (c *ComponentMap) RootInstance(id ComponentID) *Instance {
	return c.roots[id]
}

// Render invokes the component's render function and retains the result.
func (c *ComponentMap) Render(id ComponentID) *Instance {
	render, ok := c.render[id]
	if !ok {
		panic(fmt.Sprintf("no render function for component %d", id))
	}
	root := render()
	c.roots[id] = root
	return root
}
