package model

import (
	"encoding/json"
	"fmt"
)

// Direction controls how a layout container arranges its children.
type Direction string

// Supported layout directions.
const (
	DirectionRow    Direction = "row"
	DirectionColumn Direction = "column"
)

// Visual type tags. Each selects one visual family with its own
// configuration fields and derived model.
const (
	VisualCard         = "card"
	VisualKPI          = "kpi"
	VisualGauge        = "gauge"
	VisualPie          = "pie"
	VisualStackedBar   = "stackedBar"
	VisualClusteredBar = "clusteredBar"
	VisualScatter      = "scatter"
	VisualTable        = "table"
	VisualChecklist    = "checklist"
	VisualLineChart    = "lineChart"
	VisualAreaChart    = "areaChart"
	VisualHistogram    = "histogram"
	VisualBoxPlot      = "boxPlot"
)

// KnownVisualType reports whether t is one of the supported visual families.
func KnownVisualType(t string) bool {
	switch t {
	case VisualCard, VisualKPI, VisualGauge, VisualPie, VisualStackedBar,
		VisualClusteredBar, VisualScatter, VisualTable, VisualChecklist,
		VisualLineChart, VisualAreaChart, VisualHistogram, VisualBoxPlot:
		return true
	}
	return false
}

// presentationKeys are the common presentation fields every layout node and
// visual may carry. They pass through untouched to the rendering layer.
var presentationKeys = []string{"padding", "margin", "border", "shadow", "flex"}

// Node is one entry in a page's rows tree: either a layout container with
// children, or a leaf visual.
//
// Design decision: The document format is polymorphic here (a node is a
// container when it has children or declares type "layout", otherwise a
// visual), so Node implements json.Unmarshaler instead of relying on two
// separate struct shapes. A flat struct with an optional Visual pointer
// avoids an interface hierarchy while keeping dispatch trivial.
type Node struct {
	// Direction arranges children horizontally (row) or vertically (column).
	// Only meaningful for containers; defaults to row.
	Direction Direction

	// Children holds the contained nodes when this node is a container.
	Children []Node

	// Visual is set when this node is a leaf visual, nil for containers.
	Visual *Visual
}

// IsContainer reports whether the node is a layout container.
func (n *Node) IsContainer() bool { return n.Visual == nil }

// visualCount counts the visuals in this subtree.
func (n *Node) visualCount() int {
	if n.Visual != nil {
		return 1
	}
	total := 0
	for i := range n.Children {
		total += n.Children[i].visualCount()
	}
	return total
}

// UnmarshalJSON decodes a layout node from its document form.
func (n *Node) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type      string            `json:"type"`
		Direction Direction         `json:"direction"`
		Children  []json.RawMessage `json:"children"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("invalid layout node: %w", err)
	}

	// Containers either declare type "layout" or carry children.
	if probe.Type == "" || probe.Type == "layout" || len(probe.Children) > 0 {
		n.Direction = probe.Direction
		if n.Direction == "" {
			n.Direction = DirectionRow
		}
		n.Children = make([]Node, 0, len(probe.Children))
		for i, raw := range probe.Children {
			var child Node
			if err := json.Unmarshal(raw, &child); err != nil {
				return fmt.Errorf("invalid layout child %d: %w", i, err)
			}
			n.Children = append(n.Children, child)
		}
		return nil
	}

	var v Visual
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Visual = &v
	return nil
}

// Visual is a leaf node selecting one visual family.
//
// Family-specific configuration stays in Config as the raw document bytes;
// each family decodes its own configuration struct from it at build time.
// This keeps the variant set flat: adding a family means adding one config
// struct and one builder, not touching this type.
type Visual struct {
	// Type is the visual family discriminant (see the Visual* constants).
	Type string

	// DatasetID references a key in ApplicationData.Datasets.
	// A dangling reference is recoverable: the visual renders an explicit
	// empty state instead of failing the document.
	DatasetID string

	// Common holds the shared presentation fields (padding, margin, border,
	// shadow, flex) passed through untouched to the rendering layer.
	Common map[string]any

	// Config is the complete original JSON object for this visual, kept so
	// family builders can decode their own configuration fields.
	Config json.RawMessage
}

// UnmarshalJSON decodes a visual, retaining the raw object for the family
// builder and splitting out the discriminant and shared fields.
func (v *Visual) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type      string `json:"type"`
		DatasetID string `json:"datasetId"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("invalid visual: %w", err)
	}
	v.Type = probe.Type
	v.DatasetID = probe.DatasetID
	v.Config = append(json.RawMessage(nil), data...)

	var full map[string]json.RawMessage
	if err := json.Unmarshal(data, &full); err != nil {
		return fmt.Errorf("invalid visual: %w", err)
	}
	for _, key := range presentationKeys {
		raw, ok := full[key]
		if !ok {
			continue
		}
		var val any
		if err := json.Unmarshal(raw, &val); err != nil {
			continue // malformed presentation values are dropped, not fatal
		}
		if v.Common == nil {
			v.Common = make(map[string]any)
		}
		v.Common[key] = val
	}
	return nil
}
