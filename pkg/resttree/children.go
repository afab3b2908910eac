package resttree

import (
	"fmt"
	"strings"
)

// Children is the child collection of an endpoint node. Members are
// keyed by path segment, unique per parent; attaching and detaching is
// done exclusively through this collection so the parent back-reference
// stays consistent with membership.
//
// The collection carries no iteration order guarantee and performs no
// locking; concurrent mutation must be serialized by the caller.
type Children struct {
	owner   *Endpoint
	members map[string]*Endpoint
}

func newChildren(owner *Endpoint) *Children {
	return &Children{
		owner:   owner,
		members: make(map[string]*Endpoint),
	}
}

// Len returns the number of children.
func (c *Children) Len() int {
	return len(c.members)
}

// Contains reports whether the given node is a member, by path
// identity.
func (c *Children) Contains(child *Endpoint) bool {
	if child == nil {
		return false
	}

	member, ok := c.members[child.segment]

	return ok && member.Equal(child)
}

// All returns the children in no particular order.
func (c *Children) All() []*Endpoint {
	out := make([]*Endpoint, 0, len(c.members))
	for _, child := range c.members {
		out = append(out, child)
	}

	return out
}

// Get returns the child with the given segment, or nil. It never
// creates.
func (c *Children) Get(segment string) *Endpoint {
	return c.members[segment]
}

// Add attaches a child, setting its parent to the owner. Adding a node
// that is attached elsewhere re-parents it: the node is detached from
// its previous parent first. A member with the same segment is
// replaced, since segments are unique per parent.
func (c *Children) Add(child *Endpoint) {
	if child == nil || child == c.owner {
		return
	}

	if child.parent != nil && child.parent != c.owner {
		child.parent.children.Discard(child)
	}

	if displaced, ok := c.members[child.segment]; ok && displaced != child {
		displaced.parent = nil
	}

	child.parent = c.owner
	c.members[child.segment] = child
}

// Update attaches multiple children, forcing their parent to the
// owner.
func (c *Children) Update(children ...*Endpoint) {
	for _, child := range children {
		c.Add(child)
	}
}

// Discard detaches a child, clearing the member's parent reference.
// Membership is judged by path identity, same as Contains, so a
// structurally equal node detaches the actual member. Discarding a
// non-member is a no-op.
func (c *Children) Discard(child *Endpoint) {
	if child == nil {
		return
	}

	member, ok := c.members[child.segment]
	if !ok || !member.Equal(child) {
		return
	}

	member.parent = nil
	delete(c.members, child.segment)
}

// Remove detaches a child and errors if it is not a member. Membership
// follows the same path identity as Contains.
func (c *Children) Remove(child *Endpoint) error {
	if child == nil {
		return fmt.Errorf("%w: <nil>", ErrChildNotFound)
	}

	member, ok := c.members[child.segment]
	if !ok || !member.Equal(child) {
		return fmt.Errorf("%w: %s", ErrChildNotFound, child.segment)
	}

	c.Discard(child)

	return nil
}

// Pop detaches and returns the child with the given segment, or nil
// when absent.
func (c *Children) Pop(segment string) *Endpoint {
	child, ok := c.members[segment]
	if !ok {
		return nil
	}

	c.Discard(child)

	return child
}

// Clear detaches every child.
func (c *Children) Clear() {
	for _, child := range c.members {
		child.parent = nil
	}

	c.members = make(map[string]*Endpoint)
}

// materialize is the get-or-create lookup behind Endpoint.Child: the
// lookup key is the segment within this collection, and a miss builds
// a new node sharing the owner's client.
func (c *Children) materialize(segment string) *Endpoint {
	segment = strings.Trim(segment, "/")

	if child, ok := c.members[segment]; ok {
		return child
	}

	child := newEndpoint(c.owner.client, segment)
	c.Add(child)

	return child
}
