package printing

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// ESC/POS control sequences. The byte values are a hardware contract; the
// printers only understand these exact sequences.
const (
	escInit     = "\x1B\x40"
	alignCenter = "\x1B\x61\x01"
	alignLeft   = "\x1B\x61\x00"
	boldOn      = "\x1B\x45\x01"
	boldOff     = "\x1B\x45\x00"

	// PartialCut leaves the ticket hanging by a paper bridge. The
	// transport appends it after the payload.
	PartialCut = "\x1D\x56\x00"
)

const defaultWidth = 32

// ColumnsForPaperWidth maps a paper width in millimeters onto a character
// width: 80mm paper prints 48 columns, 58mm (and anything unknown) prints 32.
func ColumnsForPaperWidth(mm int) int {
	if mm >= 80 {
		return 48
	}
	return defaultWidth
}

type TicketItem struct {
	Name     string
	Quantity int
	Notes    string
}

// TicketDocument is everything a printed KOT/BOT carries. Rendering is a
// pure function of the document: identical input gives byte-identical
// output, with time entering only through CreatedAt.
type TicketDocument struct {
	Kind         string // "kitchen" or "bar"
	TicketNumber string
	OrderNumber  string
	CustomerName string
	Location     string
	OrderNotes   string
	CreatedAt    time.Time
	Items        []TicketItem

	// Width is the character width of the paper (32 for 58mm, 48 for
	// 80mm). Zero means the 58mm default.
	Width int
}

type line struct {
	text   string
	bold   bool
	center bool
}

func (d TicketDocument) title() string {
	if d.Kind == "bar" {
		return "BAR ORDER"
	}
	return "KITCHEN ORDER"
}

func (d TicketDocument) width() int {
	if d.Width > 0 {
		return d.Width
	}
	return defaultWidth
}

func (d TicketDocument) lines() []line {
	w := d.width()
	sep := strings.Repeat("=", w)
	rule := strings.Repeat("-", w)

	out := []line{
		{text: sep},
		{text: d.title(), bold: true, center: true},
		{text: sep},
		{text: "Ticket: " + d.TicketNumber},
		{text: "Order:  " + d.OrderNumber},
		{text: "Time:   " + d.CreatedAt.Format("2006-01-02 15:04:05")},
	}
	if d.Location != "" {
		out = append(out, line{text: d.Location, bold: true, center: true})
	}
	if d.CustomerName != "" {
		out = append(out, line{text: "Customer: " + d.CustomerName})
	}
	out = append(out, line{text: rule})

	totalQty := 0
	for i, item := range d.Items {
		totalQty += item.Quantity
		out = append(out, line{text: fmt.Sprintf("%d. %dx %s", i+1, item.Quantity, item.Name), bold: true})
		if item.Notes != "" {
			out = append(out, line{text: "   >> " + item.Notes})
		}
	}
	out = append(out, line{text: rule})

	if d.OrderNotes != "" {
		out = append(out, line{text: "NOTES:", bold: true})
		out = append(out, line{text: d.OrderNotes})
		out = append(out, line{text: rule})
	}

	out = append(out, line{text: fmt.Sprintf("Items: %d   Total qty: %d", len(d.Items), totalQty)})
	out = append(out, line{text: sep})
	return out
}

// Preview renders the ticket as plain monospace text for browser reprint
// views.
func (d TicketDocument) Preview() string {
	w := d.width()
	var b strings.Builder
	for _, ln := range d.lines() {
		text := ln.text
		if ln.center {
			text = centerText(text, w)
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	return b.String()
}

// ESCPOS renders the ticket as thermal-printer bytes: init sequence, then
// each line with its alignment and emphasis codes, then trailing feeds. The
// cut sequence is the transport's job.
func (d TicketDocument) ESCPOS() []byte {
	var buf bytes.Buffer
	buf.WriteString(escInit)
	for _, ln := range d.lines() {
		if ln.center {
			buf.WriteString(alignCenter)
		}
		if ln.bold {
			buf.WriteString(boldOn)
		}
		buf.WriteString(ln.text)
		buf.WriteByte('\n')
		if ln.bold {
			buf.WriteString(boldOff)
		}
		if ln.center {
			buf.WriteString(alignLeft)
		}
	}
	buf.WriteString("\n\n")
	return buf.Bytes()
}

func centerText(text string, width int) string {
	pad := (width - utf8.RuneCountInString(text)) / 2
	if pad <= 0 {
		return text
	}
	return strings.Repeat(" ", pad) + text
}
