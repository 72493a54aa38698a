package tree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formpath/pkg/cast"
	"github.com/goliatone/go-formpath/pkg/fieldpath"
)

var (
	// ErrInconsistentPathKind reports a path addressing an existing node with
	// the wrong container kind (a map as a list, a list as a map, a container
	// as a scalar or a scalar as a container).
	ErrInconsistentPathKind = errors.New("tree: inconsistent path kind")
	// ErrIndexOutOfRange reports an index above the builder's maximum.
	ErrIndexOutOfRange = errors.New("tree: index out of range")
	// ErrEmptyPath reports an insertion without segments.
	ErrEmptyPath = errors.New("tree: empty path")
	// ErrNilRoot reports an insertion into a nil map.
	ErrNilRoot = errors.New("tree: nil root")
)

// DefaultMaxIndex caps explicit indices so a crafted field name cannot force
// a huge allocation.
const DefaultMaxIndex = 10000

// AppendMode selects how append markers in the middle of a path resolve.
type AppendMode uint8

const (
	// AppendAlways resolves every marker to the current list length, so each
	// insertion through `rows[].name` creates a new element.
	AppendAlways AppendMode = iota
	// AppendGroup reuses the last element while it is a map that does not yet
	// hold the next key, grouping `rows[].name` and `rows[].qty` pairs.
	AppendGroup
)

// ParseAppendMode maps a configuration string onto an AppendMode. "always"
// and "push" select AppendAlways, "group" selects AppendGroup. Unknown values
// yield AppendAlways.
func ParseAppendMode(raw string) AppendMode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "group":
		return AppendGroup
	case "always", "push":
		return AppendAlways
	default:
		return AppendAlways
	}
}

func (m AppendMode) String() string {
	if m == AppendGroup {
		return "group"
	}
	return "always"
}

// Option configures a Builder.
type Option func(*Builder)

// WithAppendMode selects the append marker semantics.
func WithAppendMode(mode AppendMode) Option {
	return func(b *Builder) {
		b.mode = mode
	}
}

// WithMaxIndex overrides DefaultMaxIndex. Values below zero are ignored.
func WithMaxIndex(n int) Option {
	return func(b *Builder) {
		if n >= 0 {
			b.maxIndex = n
		}
	}
}

// Builder inserts (path, value) pairs into a tree rooted at a map. A Builder
// is not safe for concurrent use; build one per serialization.
type Builder struct {
	root     *Map
	mode     AppendMode
	maxIndex int
}

// NewBuilder returns a Builder with an empty root.
func NewBuilder(options ...Option) *Builder {
	b := &Builder{
		root:     NewMap(),
		maxIndex: DefaultMaxIndex,
	}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Root returns the tree built so far.
func (b *Builder) Root() *Map {
	return b.root
}

// Insert is a convenience that inserts into root with default options.
func Insert(root *Map, p fieldpath.Path, v cast.Value) error {
	b := &Builder{root: root, maxIndex: DefaultMaxIndex}
	return b.Insert(p, v)
}

// Insert writes v at p, creating intermediate maps and lists as needed. A
// mid-path append marker resolves once to the list length and stays fixed
// for the rest of this insertion. A failed insertion leaves the tree
// unchanged.
func (b *Builder) Insert(p fieldpath.Path, v cast.Value) error {
	if b.root == nil {
		return ErrNilRoot
	}
	if len(p) == 0 {
		return ErrEmptyPath
	}
	if p[0].IsSequence() {
		return fmt.Errorf("%w: %q must start with a key", ErrInconsistentPathKind, p.String())
	}
	for _, seg := range p {
		if seg.Kind == fieldpath.KindIndex && seg.Index > b.maxIndex {
			return fmt.Errorf("%w: %q index %d exceeds %d", ErrIndexOutOfRange, p.String(), seg.Index, b.maxIndex)
		}
	}

	var current Node = b.root
	for i := 0; i < len(p)-1; i++ {
		child, err := b.descend(current, p[i], p[i+1])
		if err != nil {
			return fmt.Errorf("%w: %q at segment %d", err, p.String(), i)
		}
		current = child
	}

	if err := b.assign(current, p[len(p)-1], Leaf(v)); err != nil {
		return fmt.Errorf("%w: %q at segment %d", err, p.String(), len(p)-1)
	}
	return nil
}

func (b *Builder) descend(parent Node, seg, next fieldpath.Segment) (Node, error) {
	wantList := next.IsSequence()

	switch node := parent.(type) {
	case *Map:
		if seg.IsSequence() {
			return nil, ErrInconsistentPathKind
		}
		existing, ok := node.Get(seg.Key)
		if !ok || existing == nil {
			child := newContainer(wantList)
			node.Set(seg.Key, child)
			return child, nil
		}
		return matchContainer(existing, wantList)

	case *List:
		idx, err := b.position(node, seg, next)
		if err != nil {
			return nil, err
		}
		existing := node.At(idx)
		if existing == nil {
			child := newContainer(wantList)
			node.Set(idx, child)
			return child, nil
		}
		return matchContainer(existing, wantList)

	default:
		return nil, ErrInconsistentPathKind
	}
}

func (b *Builder) assign(parent Node, seg fieldpath.Segment, leaf Scalar) error {
	switch node := parent.(type) {
	case *Map:
		if seg.IsSequence() {
			return ErrInconsistentPathKind
		}
		if existing, ok := node.Get(seg.Key); ok && isContainer(existing) {
			return ErrInconsistentPathKind
		}
		node.Set(seg.Key, leaf)
		return nil

	case *List:
		switch seg.Kind {
		case fieldpath.KindAppend:
			if node.Len() > b.maxIndex {
				return ErrIndexOutOfRange
			}
			node.Append(leaf)
			return nil
		case fieldpath.KindIndex:
			if existing := node.At(seg.Index); existing != nil && isContainer(existing) {
				return ErrInconsistentPathKind
			}
			node.Set(seg.Index, leaf)
			return nil
		default:
			return ErrInconsistentPathKind
		}

	default:
		return ErrInconsistentPathKind
	}
}

// position resolves a sequence segment against list.
func (b *Builder) position(list *List, seg, next fieldpath.Segment) (int, error) {
	var idx int
	switch seg.Kind {
	case fieldpath.KindIndex:
		idx = seg.Index
	case fieldpath.KindAppend:
		idx = list.Len()
		if b.mode == AppendGroup && idx > 0 && !next.IsSequence() {
			if last, ok := list.At(idx - 1).(*Map); ok {
				if _, taken := last.Get(next.Key); !taken {
					idx--
				}
			}
		}
	default:
		return 0, ErrInconsistentPathKind
	}
	if idx > b.maxIndex {
		return 0, ErrIndexOutOfRange
	}
	return idx, nil
}

func newContainer(list bool) Node {
	if list {
		return NewList()
	}
	return NewMap()
}

func matchContainer(existing Node, wantList bool) (Node, error) {
	switch existing.(type) {
	case *List:
		if wantList {
			return existing, nil
		}
	case *Map:
		if !wantList {
			return existing, nil
		}
	}
	return nil, ErrInconsistentPathKind
}
