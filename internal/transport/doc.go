// Package transport moves responses between devices.
//
// A snapshot is a UTF-8 JSON array of complete response records, the only
// format that is read back in. A report is a one-way CSV projection for
// spreadsheets, prefixed with a byte-order mark so that spreadsheet tools
// detect UTF-8.
package transport
