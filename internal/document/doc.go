// Package document loads report documents from their two carrier
// forms: a raw JSON object, or an HTML page embedding the JSON in a
// designated script element alongside display metadata in its head.
package document
