// Package model defines the data structures for chartbook report documents.
// It contains the document root, report pages, layout nodes, visual
// configurations, datasets, and template values shared by all other packages.
package model
