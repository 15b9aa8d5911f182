package settings

import (
	"fmt"
	"strings"

	"github.com/kf7lze/radioclone/bitfield"
	"github.com/kf7lze/radioclone/memmap"
)

// node is either a *Group or a *Setting.
type node interface {
	nodeName() string
}

// Setting is a leaf: one field element bound to one memory map.
type Setting struct {
	name  string
	field *bitfield.Field
	mm    *memmap.MemoryMap
	index int
}

// NewSetting binds a scalar field to mm under the given name.
func NewSetting(name string, f *bitfield.Field, mm *memmap.MemoryMap) *Setting {
	return NewSettingAt(name, f, mm, 0)
}

// NewSettingAt binds element index of a repeated field to mm.
func NewSettingAt(name string, f *bitfield.Field, mm *memmap.MemoryMap, index int) *Setting {
	if f == nil || mm == nil {
		panic("settings: nil field or memory map")
	}
	return &Setting{name: name, field: f, mm: mm, index: index}
}

func (s *Setting) nodeName() string { return s.name }

// Name returns the setting's name within its parent group.
func (s *Setting) Name() string { return s.name }

// Field returns the descriptor the setting is bound to.
func (s *Setting) Field() *bitfield.Field { return s.field }

// Get decodes the setting's current value from the underlying bytes.
func (s *Setting) Get() (interface{}, error) {
	return s.field.DecodeAt(s.mm, s.index)
}

// Set validates v and commits it to the underlying bytes. On error the
// memory map is unchanged.
func (s *Setting) Set(v interface{}) error {
	return s.field.EncodeAt(s.mm, s.index, v)
}

// Group is an ordered collection of named child nodes.
type Group struct {
	name  string
	order []string
	nodes map[string]node
}

// NewGroup creates an empty group.
func NewGroup(name string) *Group {
	return &Group{name: name, nodes: make(map[string]node)}
}

func (g *Group) nodeName() string { return g.name }

// Name returns the group's name within its parent.
func (g *Group) Name() string { return g.name }

// AddGroup appends a child group. Panics on a duplicate name: tree shape is
// driver configuration, and a collision is a driver bug.
func (g *Group) AddGroup(child *Group) *Group {
	g.add(child)
	return child
}

// AddSetting appends a leaf setting.
func (g *Group) AddSetting(s *Setting) *Setting {
	g.add(s)
	return s
}

func (g *Group) add(n node) {
	name := n.nodeName()
	if name == "" || strings.Contains(name, "/") {
		panic(fmt.Sprintf("settings: invalid node name %q", name))
	}
	if _, dup := g.nodes[name]; dup {
		panic(fmt.Sprintf("settings: duplicate node %q in group %q", name, g.name))
	}
	g.order = append(g.order, name)
	g.nodes[name] = n
}

// ChangeFunc is notified after each successful Set with the full path and
// the committed value.
type ChangeFunc func(path string, value interface{})

// Tree provides path-addressed access to a built settings hierarchy.
// Construct the full group structure first; the tree does not support
// adding or removing nodes afterwards.
type Tree struct {
	root     *Group
	onChange ChangeFunc
}

// NewTree wraps the root group of a built hierarchy.
func NewTree(root *Group) *Tree {
	if root == nil {
		panic("settings: nil root group")
	}
	return &Tree{root: root}
}

// OnChange registers the change-notification callback. A nil function
// disables notification.
func (t *Tree) OnChange(fn ChangeFunc) {
	t.onChange = fn
}

// Get returns the decoded value of the setting at path.
func (t *Tree) Get(path string) (interface{}, error) {
	s, err := t.setting(path)
	if err != nil {
		return nil, err
	}
	return s.Get()
}

// Set validates and commits a new value for the setting at path, then
// fires the change callback. A rejected value leaves the memory map
// byte-for-byte unchanged and fires nothing.
func (t *Tree) Set(path string, v interface{}) error {
	s, err := t.setting(path)
	if err != nil {
		return err
	}
	if err := s.Set(v); err != nil {
		return err
	}
	if t.onChange != nil {
		t.onChange(path, v)
	}
	return nil
}

// Children returns the ordered child names of the group at path. The empty
// path addresses the root group.
func (t *Tree) Children(path string) ([]string, error) {
	n, err := t.resolve(path)
	if err != nil {
		return nil, err
	}
	g, ok := n.(*Group)
	if !ok {
		return nil, &PathError{Path: path, Reason: "not a group"}
	}
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out, nil
}

// Walk visits every setting of the tree in definition order, depth first,
// passing its full path. Walking stops at the first error returned by fn.
func (t *Tree) Walk(fn func(path string, s *Setting) error) error {
	return walkGroup(t.root, "", fn)
}

func walkGroup(g *Group, prefix string, fn func(string, *Setting) error) error {
	for _, name := range g.order {
		path := name
		if prefix != "" {
			path = prefix + "/" + name
		}
		switch n := g.nodes[name].(type) {
		case *Group:
			if err := walkGroup(n, path, fn); err != nil {
				return err
			}
		case *Setting:
			if err := fn(path, n); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *Tree) setting(path string) (*Setting, error) {
	n, err := t.resolve(path)
	if err != nil {
		return nil, err
	}
	s, ok := n.(*Setting)
	if !ok {
		return nil, &PathError{Path: path, Reason: "not a setting"}
	}
	return s, nil
}

func (t *Tree) resolve(path string) (node, error) {
	if path == "" {
		return t.root, nil
	}
	var cur node = t.root
	for _, part := range strings.Split(path, "/") {
		g, ok := cur.(*Group)
		if !ok {
			return nil, &PathError{Path: path, Reason: "path descends through a setting"}
		}
		next, ok := g.nodes[part]
		if !ok {
			return nil, &PathError{Path: path, Reason: fmt.Sprintf("no node %q", part)}
		}
		cur = next
	}
	return cur, nil
}
