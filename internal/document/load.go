package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/nao1215/chartbook/internal/model"
	"golang.org/x/net/html"
)

// PayloadElementID identifies the script element carrying the report
// body inside an HTML page.
const PayloadElementID = "chartbook-data"

// metaProps maps the HTML head meta names to their prop keys.
var metaProps = map[string]string{
	"description":  "description",
	"author":       "author",
	"last-updated": "lastUpdated",
}

// Document is one loaded report document: the decoded body plus the
// display metadata of its carrier page.
type Document struct {
	// Data is the decoded report body.
	Data *model.ApplicationData

	// Props carries the display metadata extracted from the HTML head
	// (title, description, author, lastUpdated). Empty for raw JSON
	// input.
	Props map[string]any

	// Warnings records recoverable irregularities found during loading,
	// such as dataset IDs that disagree with their mapping key.
	Warnings []string
}

// MergedProps overlays extra on the document's own props. Extra wins
// on conflicts. Neither map is mutated.
func (d *Document) MergedProps(extra map[string]any) map[string]any {
	merged := make(map[string]any, len(d.Props)+len(extra))
	for k, v := range d.Props {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

// LoadFile loads a document from disk.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads a complete document from r and parses it.
func Load(r io.Reader) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a document from its raw bytes, sniffing the carrier
// form from the first significant byte: a JSON object is consumed
// directly, an HTML page is searched for the designated payload
// element and its head metadata.
func Parse(raw []byte) (*Document, error) {
	trimmed := bytes.TrimLeft(bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF}), " \t\r\n")
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidDocument)
	}
	switch trimmed[0] {
	case '{':
		return parseJSON(trimmed, nil)
	case '<':
		return parseHTML(raw)
	default:
		return nil, fmt.Errorf("%w: input is neither a JSON object nor an HTML page", ErrInvalidDocument)
	}
}

// parseJSON decodes the report body and attaches the carrier props.
func parseJSON(payload []byte, props map[string]any) (*Document, error) {
	var data model.ApplicationData
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	doc := &Document{Data: &data, Props: props}
	if doc.Props == nil {
		doc.Props = map[string]any{}
	}
	doc.reconcileDatasetIDs()
	return doc, nil
}

// parseHTML extracts the embedded payload and the head metadata from a
// carrier page.
func parseHTML(raw []byte) (*Document, error) {
	root, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	var payload []byte
	props := map[string]any{}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script":
				if payload == nil && getAttr(n, "id") == PayloadElementID {
					payload = []byte(textContent(n))
				}
			case "title":
				if _, ok := props["title"]; !ok {
					if title := strings.TrimSpace(textContent(n)); title != "" {
						props["title"] = title
					}
				}
			case "meta":
				key, ok := metaProps[getAttr(n, "name")]
				content := getAttr(n, "content")
				if ok && content != "" {
					props[key] = content
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, fmt.Errorf("%w: no %q script element", ErrInvalidDocument, PayloadElementID)
	}
	return parseJSON(bytes.TrimSpace(payload), props)
}

// reconcileDatasetIDs aligns each dataset's declared ID with its
// mapping key. The key is authoritative: visuals resolve datasets
// through the mapping, so a disagreeing declared ID is corrected and
// recorded rather than left to dangle.
func (d *Document) reconcileDatasetIDs() {
	keys := make([]string, 0, len(d.Data.Datasets))
	for key := range d.Data.Datasets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		ds := d.Data.Datasets[key]
		if ds == nil {
			continue
		}
		switch {
		case ds.ID == "":
			ds.ID = key
		case ds.ID != key:
			d.Warnings = append(d.Warnings,
				fmt.Sprintf("dataset %q declares id %q; the mapping key wins", key, ds.ID))
			ds.ID = key
		}
	}
}

// textContent concatenates the direct text children of a node.
func textContent(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
