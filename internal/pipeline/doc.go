// Package pipeline orchestrates the document render: dataset
// normalization, template evaluation and visual derivation, producing
// a backend-neutral render model that writers serialize to HTML,
// Markdown or JSON.
package pipeline
