// Package config provides configuration structures and utilities for chartbook.
// It defines the rendering options populated from CLI flags, the YAML
// config file with per-document trust entries, and XDG directory paths.
package config
