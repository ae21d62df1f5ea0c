package model

// ApplicationData is the root of a chartbook report document.
// It holds the ordered report pages and the datasets they draw from.
//
// Design decision: We keep the document immutable after load except for
// dataset normalization performed in place (expanding compressedData into
// data). Everything derived from the document lives in separate render
// structures so the same document can be rendered repeatedly.
type ApplicationData struct {
	// Pages is the ordered sequence of report pages.
	// A document must carry this key, even if the sequence is empty.
	Pages []ReportPage `json:"pages"`

	// Datasets maps dataset identifiers to their definitions.
	// Keys are globally unique within one document, and each Dataset's
	// ID must equal its mapping key.
	Datasets map[string]*Dataset `json:"datasets"`
}

// Dataset returns the dataset with the given identifier.
// Returns nil if the identifier is unknown.
func (a *ApplicationData) Dataset(id string) *Dataset {
	if a.Datasets == nil {
		return nil
	}
	return a.Datasets[id]
}

// VisualCount returns the total number of visuals across all pages.
// Used by inspect output and render history records.
func (a *ApplicationData) VisualCount() int {
	total := 0
	for _, page := range a.Pages {
		for i := range page.Rows {
			total += page.Rows[i].visualCount()
		}
	}
	return total
}

// ReportPage is one page of the report.
type ReportPage struct {
	// Title is the page heading.
	Title string `json:"title"`

	// Description is an optional paragraph shown under the title.
	Description string `json:"description,omitempty"`

	// LastUpdated is an optional ISO-8601 date string shown as-is.
	// The core does not validate or reformat it.
	LastUpdated string `json:"lastUpdated,omitempty"`

	// Rows is the ordered sequence of layout nodes making up the page body.
	Rows []Node `json:"rows"`
}
