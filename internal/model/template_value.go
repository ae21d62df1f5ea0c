package model

import (
	"encoding/json"
	"fmt"
)

// TemplateKind distinguishes the four template value variants.
//
// Design decision: The variants are kept as an explicit tag rather than an
// interface so the unsafe form stays visible at the data-model level.
// Hosts rendering untrusted documents must be able to refuse unsafe values
// before any evaluation happens, which requires the distinction to survive
// decoding (see the template package).
type TemplateKind int

// Template value variants.
const (
	// KindPlain is a bare string value. It may still contain {{ ... }}
	// placeholder spans and is evaluated exactly like KindTemplate.
	KindPlain TemplateKind = iota

	// KindTemplate is a structured value carrying a template string with
	// zero or more {{ ... }} placeholder spans.
	KindTemplate

	// KindExpr is a structured value whose entire content is one safe-mode
	// expression, with no surrounding braces.
	KindExpr

	// KindUnsafe is a structured value carrying an arbitrary script
	// expression. It is only evaluated when the host explicitly opted in;
	// otherwise it renders empty with a diagnostic.
	KindUnsafe
)

// String returns the variant name for diagnostics.
func (k TemplateKind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindTemplate:
		return "template"
	case KindExpr:
		return "expr"
	case KindUnsafe:
		return "unsafeJs"
	default:
		return "unknown"
	}
}

// TemplateValue is a text field of the document: either a plain string
// (possibly containing {{ ... }} placeholders) or a structured value
// carrying exactly one of template, expr, or unsafeJs.
type TemplateValue struct {
	// Kind selects the variant.
	Kind TemplateKind

	// Source is the variant's string payload: the literal/template text for
	// KindPlain and KindTemplate, or the expression source for KindExpr and
	// KindUnsafe.
	Source string
}

// Plain returns a plain-string template value.
func Plain(s string) TemplateValue { return TemplateValue{Kind: KindPlain, Source: s} }

// IsZero reports whether the value is an empty plain string.
func (t TemplateValue) IsZero() bool {
	return t.Kind == KindPlain && t.Source == ""
}

// UnmarshalJSON decodes either a bare string or the structured
// {"template" | "expr" | "unsafeJs": "..."} form.
func (t *TemplateValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t.Kind = KindPlain
		t.Source = s
		return nil
	}

	var obj struct {
		Template *string `json:"template"`
		Expr     *string `json:"expr"`
		UnsafeJS *string `json:"unsafeJs"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("invalid template value: %w", err)
	}

	// Exactly one form applies per value. When a malformed document sets
	// several, the first in this order wins rather than failing the load.
	switch {
	case obj.Template != nil:
		t.Kind = KindTemplate
		t.Source = *obj.Template
	case obj.Expr != nil:
		t.Kind = KindExpr
		t.Source = *obj.Expr
	case obj.UnsafeJS != nil:
		t.Kind = KindUnsafe
		t.Source = *obj.UnsafeJS
	default:
		return fmt.Errorf("invalid template value: expected string or one of template/expr/unsafeJs")
	}
	return nil
}

// MarshalJSON encodes the value back into its document form.
func (t TemplateValue) MarshalJSON() ([]byte, error) {
	switch t.Kind {
	case KindPlain:
		return json.Marshal(t.Source)
	case KindTemplate:
		return json.Marshal(map[string]string{"template": t.Source})
	case KindExpr:
		return json.Marshal(map[string]string{"expr": t.Source})
	case KindUnsafe:
		return json.Marshal(map[string]string{"unsafeJs": t.Source})
	default:
		return nil, fmt.Errorf("invalid template value kind %d", t.Kind)
	}
}
