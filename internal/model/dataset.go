package model

import "encoding/json"

// Format identifies the encoding of a dataset's data field.
type Format string

// Supported dataset formats.
const (
	// FormatTable holds data as an array of row arrays, column-ordered.
	FormatTable Format = "table"

	// FormatRecords holds data as an array of objects keyed by column name.
	FormatRecords Format = "records"

	// FormatList holds data as a flat array; each element becomes one row
	// of a single synthesized column.
	FormatList Format = "list"

	// FormatRecord holds data as a single object; each key-value pair
	// becomes one column of a single synthesized row.
	FormatRecord Format = "record"
)

// Valid reports whether f is one of the supported formats.
func (f Format) Valid() bool {
	switch f {
	case FormatTable, FormatRecords, FormatList, FormatRecord:
		return true
	}
	return false
}

// DType is a per-column type tag controlling cell coercion.
type DType string

// Supported column type tags. An empty tag means the column type is
// inferred per cell from the JSON-native value.
const (
	DTypeAuto   DType = ""
	DTypeString DType = "string"
	DTypeNumber DType = "number"
	DTypeBool   DType = "bool"
	DTypeDate   DType = "date"
)

// Dataset is one named dataset embedded in the document.
//
// Exactly one of Data and CompressedData is expected to be populated on
// load. When CompressedData is present it must be expanded into Data
// before any consumer reads the dataset; see the dataset package.
//
// Design decision: Data is kept as json.RawMessage rather than a decoded
// value because its shape depends on Format. Decoding is deferred to the
// normalizer, which is the single place that understands all four formats.
type Dataset struct {
	// ID is the dataset identifier. It must equal the key under which the
	// dataset is stored in ApplicationData.Datasets.
	ID string `json:"id,omitempty"`

	// Format declares how Data is encoded.
	Format Format `json:"format"`

	// Columns is the ordered sequence of column names.
	// May be absent for list/record formats, in which case column names
	// are synthesized during normalization.
	Columns []string `json:"columns,omitempty"`

	// DTypes is the ordered sequence of per-column type tags.
	// When shorter than Columns, the remaining columns use inferred typing.
	DTypes []DType `json:"dtypes,omitempty"`

	// Data is the format-dependent payload.
	Data json.RawMessage `json:"data,omitempty"`

	// CompressedData is an optional base64-encoded, gzip-compressed UTF-8
	// JSON payload that expands into Data. See dataset.DecompressPayload.
	CompressedData string `json:"compressedData,omitempty"`
}

// HasCompressedPayload reports whether the dataset still carries an
// unexpanded compressed payload.
func (d *Dataset) HasCompressedPayload() bool {
	return d.CompressedData != ""
}

// ReleaseCompressed discards the compressed payload to free memory.
// This is irreversible; callers must not assume re-compression.
func (d *Dataset) ReleaseCompressed() {
	d.CompressedData = ""
}
