package generation

import (
	"strconv"
	"strings"
)

// UntitledLabel replaces blank node labels.
const UntitledLabel = "Untitled"

// idAllocator hands out ids of the form n<k> that never collide with ids
// already reserved in the tree.
type idAllocator struct {
	reserved map[string]bool
	next     int
}

func newIDAllocator(reserved map[string]bool) *idAllocator {
	return &idAllocator{reserved: reserved, next: 1}
}

func (a *idAllocator) allocate() string {
	for {
		id := "n" + strconv.Itoa(a.next)
		a.next++
		if !a.reserved[id] {
			a.reserved[id] = true
			return id
		}
	}
}

// NormalizeTree converts a raw decoded mind-map root into a canonical tree.
//
// The walk is iterative and pre-order, so arbitrarily deep input cannot
// exhaust the stack. The root id is always RootID. Other nodes keep their
// id when it is non-empty and unique; missing or duplicate ids are replaced
// by synthesized n<k> ids that never collide with any id present in the
// input. Blank labels become UntitledLabel, non-array children become empty
// and non-object children become empty nodes.
func NormalizeTree(raw map[string]any) *Node {
	provided := collectProvidedIDs(raw)
	provided[RootID] = true
	alloc := newIDAllocator(provided)
	used := map[string]bool{RootID: true}

	root := &Node{
		ID:       RootID,
		Label:    nodeLabel(raw),
		Children: []*Node{},
	}

	type frame struct {
		raw    any
		parent *Node
	}

	stack := make([]frame, 0, 16)
	pushChildren := func(rawNode map[string]any, parent *Node) {
		children, _ := rawNode["children"].([]any)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{raw: children[i], parent: parent})
		}
	}
	pushChildren(raw, root)

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		obj, _ := f.raw.(map[string]any)

		id := asString(obj["id"])
		if id == "" || used[id] {
			id = alloc.allocate()
		}
		used[id] = true

		node := &Node{
			ID:       id,
			Label:    nodeLabel(obj),
			Children: []*Node{},
		}
		f.parent.Children = append(f.parent.Children, node)

		if obj != nil {
			pushChildren(obj, node)
		}
	}

	return root
}

// collectProvidedIDs returns every non-empty id present anywhere in raw.
func collectProvidedIDs(raw map[string]any) map[string]bool {
	ids := make(map[string]bool)
	stack := []map[string]any{raw}
	for len(stack) > 0 {
		obj := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if id := asString(obj["id"]); id != "" {
			ids[id] = true
		}
		children, _ := obj["children"].([]any)
		for _, child := range children {
			if childObj, ok := child.(map[string]any); ok {
				stack = append(stack, childObj)
			}
		}
	}
	return ids
}

func nodeLabel(obj map[string]any) string {
	label := asString(obj["label"])
	if label == "" {
		return UntitledLabel
	}
	return label
}

// PruneDepth removes the children of every node at depth maxDepth or
// deeper. The root has depth 1.
func PruneDepth(root *Node, maxDepth int) {
	if root == nil {
		return
	}

	type frame struct {
		node  *Node
		depth int
	}

	stack := []frame{{node: root, depth: 1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.depth >= maxDepth {
			f.node.Children = []*Node{}
			continue
		}
		for _, child := range f.node.Children {
			stack = append(stack, frame{node: child, depth: f.depth + 1})
		}
	}
}

// PruneNodes truncates children breadth-first so the tree holds at most
// maxNodes nodes. Sibling order is preserved and shallower nodes win over
// deeper ones.
func PruneNodes(root *Node, maxNodes int) {
	if root == nil {
		return
	}

	admitted := 1
	queue := []*Node{root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		remaining := maxNodes - admitted
		if remaining < 0 {
			remaining = 0
		}
		if len(node.Children) > remaining {
			node.Children = node.Children[:remaining]
		}
		admitted += len(node.Children)
		queue = append(queue, node.Children...)
	}
}

// TreeStats returns the depth and node count of a tree. An empty tree has
// depth 0.
func TreeStats(root *Node) (depth, count int) {
	if root == nil {
		return 0, 0
	}

	type frame struct {
		node  *Node
		depth int
	}

	queue := []frame{{node: root, depth: 1}}
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]

		count++
		if f.depth > depth {
			depth = f.depth
		}
		for _, child := range f.node.Children {
			queue = append(queue, frame{node: child, depth: f.depth + 1})
		}
	}
	return depth, count
}

// needsRefinement reports whether a tree is shallow enough and small enough
// to be worth one refinement pass.
func needsRefinement(root *Node, maxDepth, maxNodes int) bool {
	depth, count := TreeStats(root)
	return depth < min(maxDepth, refineDepthTarget) && count < maxNodes
}

// cloneTree returns a deep copy of root.
func cloneTree(root *Node) *Node {
	if root == nil {
		return nil
	}

	out := &Node{ID: root.ID, Label: root.Label, Children: make([]*Node, 0, len(root.Children))}
	type pair struct {
		src, dst *Node
	}
	stack := []pair{{src: root, dst: out}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, child := range p.src.Children {
			copied := &Node{ID: child.ID, Label: child.Label, Children: make([]*Node, 0, len(child.Children))}
			p.dst.Children = append(p.dst.Children, copied)
			stack = append(stack, pair{src: child, dst: copied})
		}
	}
	return out
}

// MergeRefinement grafts the nodes that refined adds onto a copy of base
// and returns the copy. Existing nodes are never modified, reordered or
// removed.
//
// A refined node is treated as existing when base holds a node with the
// same id and the same label (case-insensitive), or, failing that, when its
// matched parent already has a child with that label. Everything else is new:
// new nodes are appended breadth-first under their nearest existing or
// grafted ancestor while the result stays within maxDepth and maxNodes.
// A new node whose id is already taken receives a fresh id.
func MergeRefinement(base, refined *Node, maxDepth, maxNodes int) *Node {
	merged := cloneTree(base)
	if merged == nil || refined == nil {
		return merged
	}

	byID := make(map[string]*Node)
	depthOf := make(map[*Node]int)
	reserved := make(map[string]bool)

	type frame struct {
		node  *Node
		depth int
	}
	walk := []frame{{node: merged, depth: 1}}
	for len(walk) > 0 {
		f := walk[0]
		walk = walk[1:]
		byID[f.node.ID] = f.node
		depthOf[f.node] = f.depth
		reserved[f.node.ID] = true
		for _, child := range f.node.Children {
			walk = append(walk, frame{node: child, depth: f.depth + 1})
		}
	}
	count := len(depthOf)
	alloc := newIDAllocator(reserved)

	type pair struct {
		src    *Node
		target *Node
	}
	queue := []pair{{src: refined, target: merged}}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		for _, child := range p.src.Children {
			if existing, ok := byID[child.ID]; ok && sameLabel(existing.Label, child.Label) {
				queue = append(queue, pair{src: child, target: existing})
				continue
			}
			// Renumbered ids: a sibling with the same label is the same node.
			if existing := childByLabel(p.target, child.Label); existing != nil {
				queue = append(queue, pair{src: child, target: existing})
				continue
			}

			if p.target == nil || count >= maxNodes || depthOf[p.target] >= maxDepth {
				queue = append(queue, pair{src: child, target: nil})
				continue
			}

			id := child.ID
			if id == "" || reserved[id] {
				id = alloc.allocate()
			}
			reserved[id] = true

			grafted := &Node{ID: id, Label: child.Label, Children: []*Node{}}
			p.target.Children = append(p.target.Children, grafted)
			depthOf[grafted] = depthOf[p.target] + 1
			count++

			queue = append(queue, pair{src: child, target: grafted})
		}
	}

	return merged
}

func childByLabel(parent *Node, label string) *Node {
	if parent == nil {
		return nil
	}
	for _, c := range parent.Children {
		if sameLabel(c.Label, label) {
			return c
		}
	}
	return nil
}

func sameLabel(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
