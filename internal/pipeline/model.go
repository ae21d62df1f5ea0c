package pipeline

import "github.com/nao1215/chartbook/internal/visual"

// RenderModel is the fully derived form of one document: every
// template evaluated, every dataset normalized, every visual reduced
// to plain display values. Rendering backends consume this model and
// never touch raw document bytes.
type RenderModel struct {
	// Title, Description, Author and LastUpdated are display-only
	// document metadata passed through from the shell that loaded the
	// document. The pipeline does not parse or validate them.
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Author      string `json:"author,omitempty"`
	LastUpdated string `json:"lastUpdated,omitempty"`

	// Pages holds the derived pages in document order.
	Pages []PageModel `json:"pages"`
}

// PageModel is one derived report page.
type PageModel struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	LastUpdated string `json:"lastUpdated,omitempty"`

	// Rows is the page's layout tree with every leaf visual built.
	Rows []NodeModel `json:"rows"`
}

// NodeModel mirrors the document's layout tree: a container arranging
// children, or a leaf carrying one built visual.
type NodeModel struct {
	// Direction is row or column for containers, empty for leaves.
	Direction string `json:"direction,omitempty"`

	// Children holds the contained nodes when this node is a container.
	Children []NodeModel `json:"children,omitempty"`

	// Visual is the built visual for leaves, nil for containers.
	Visual *visual.Model `json:"visual,omitempty"`
}

// VisualCount counts the built visuals across every page.
func (r *RenderModel) VisualCount() int {
	total := 0
	for i := range r.Pages {
		for j := range r.Pages[i].Rows {
			total += r.Pages[i].Rows[j].visualCount()
		}
	}
	return total
}

// EmptyCount counts the visuals that rendered an empty state.
func (r *RenderModel) EmptyCount() int {
	total := 0
	for i := range r.Pages {
		for j := range r.Pages[i].Rows {
			total += r.Pages[i].Rows[j].emptyCount()
		}
	}
	return total
}

// visualCount counts the visuals in this subtree.
func (n *NodeModel) visualCount() int {
	if n.Visual != nil {
		return 1
	}
	total := 0
	for i := range n.Children {
		total += n.Children[i].visualCount()
	}
	return total
}

// emptyCount counts the empty-state visuals in this subtree.
func (n *NodeModel) emptyCount() int {
	if n.Visual != nil {
		if n.Visual.Empty != nil {
			return 1
		}
		return 0
	}
	total := 0
	for i := range n.Children {
		total += n.Children[i].emptyCount()
	}
	return total
}
