package config

import "path/filepath"

// DocumentConfig holds per-document settings from the config file.
// The trust entry is the gate for unsafeJs template values: documents
// come from outside the tool, so executing their embedded scripts is
// opt-in per document rather than a global switch.
type DocumentConfig struct {
	// AllowUnsafe marks the document as trusted to execute unsafeJs
	// template values. Untrusted documents render those values as empty
	// strings with a diagnostic.
	AllowUnsafe bool `yaml:"allowUnsafe,omitempty"`

	// Props are extra template properties for this document, merged over
	// the metadata extracted from the document itself. Values are
	// exposed to templates as props.<key>.
	Props map[string]any `yaml:"props,omitempty"`
}

// File represents the structure of the .chartbook configuration file.
type File struct {
	// Documents maps document paths to their settings. Keys match the
	// path as passed on the command line; cleaned spellings of the same
	// path also match.
	Documents map[string]DocumentConfig `yaml:"documents,omitempty"`

	// Defaults contains default document configuration applied to all
	// documents unless overridden in the per-document configuration.
	Defaults DocumentConfig `yaml:"defaults,omitempty"`
}

// GetDocumentConfig returns the configuration for a specific document.
// It merges the per-document configuration with defaults: trust only
// widens (a per-document allowUnsafe true wins over the default), and
// per-document props overlay default props key by key. The returned
// entry never aliases the file's maps, so callers may mutate it.
func (cf *File) GetDocumentConfig(path string) DocumentConfig {
	result := DocumentConfig{AllowUnsafe: cf.Defaults.AllowUnsafe}

	dc, ok := cf.Documents[path]
	if !ok {
		dc, ok = cf.Documents[filepath.Clean(path)]
	}
	if ok && dc.AllowUnsafe {
		result.AllowUnsafe = true
	}

	if len(cf.Defaults.Props) > 0 || (ok && len(dc.Props) > 0) {
		merged := make(map[string]any, len(cf.Defaults.Props)+len(dc.Props))
		for k, v := range cf.Defaults.Props {
			merged[k] = v
		}
		if ok {
			for k, v := range dc.Props {
				merged[k] = v
			}
		}
		result.Props = merged
	}

	return result
}
