package transport

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/roach88/boothsync/internal/survey"
)

// ReportHeader is the fixed column set of the CSV report.
var ReportHeader = []string{
	"ID", "Fecha", "Nombre", "Apellido", "Email", "Rol", "NPS",
	"Interesado", "Productos", "Dispositivo", "Sector",
}

// Localized yes/no tokens for the Interesado column.
const (
	ReportYes = "Sí"
	ReportNo  = "No"
)

// ProductSeparator joins multiple selected products in one report cell.
const ProductSeparator = "; "

// EncodeReport renders rs as a BOM-prefixed CSV report, one row per
// response. The Productos cell is always quoted; other cells are quoted only
// when they contain a comma, quote or line break.
func EncodeReport(rs []survey.Response) []byte {
	var buf bytes.Buffer
	buf.Write(utf8BOM)
	writeRow(&buf, ReportHeader, -1)

	for _, r := range rs {
		interested := ReportNo
		if r.InterestedInInfo {
			interested = ReportYes
		}
		writeRow(&buf, []string{
			r.ID,
			r.Timestamp,
			r.FirstName,
			r.LastName,
			r.Email,
			string(r.Role),
			strconv.Itoa(r.NPS),
			interested,
			strings.Join(r.SelectedProducts, ProductSeparator),
			r.DeviceID,
			r.SectorName,
		}, productsColumn)
	}
	return buf.Bytes()
}

const productsColumn = 8

// writeRow writes one CSV record. The cell at forceQuote (if >= 0) is
// quoted unconditionally.
func writeRow(buf *bytes.Buffer, cells []string, forceQuote int) {
	for i, cell := range cells {
		if i > 0 {
			buf.WriteByte(',')
		}
		if i == forceQuote || strings.ContainsAny(cell, ",\"\r\n") {
			buf.WriteByte('"')
			buf.WriteString(strings.ReplaceAll(cell, `"`, `""`))
			buf.WriteByte('"')
			continue
		}
		buf.WriteString(cell)
	}
	buf.WriteByte('\n')
}
