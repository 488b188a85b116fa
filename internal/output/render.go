package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/term"
)

// terminalInfo returns the terminal width and whether the writer is a TTY.
func terminalInfo(w io.Writer) (width int, isTTY bool) {
	width = 80 // default

	if f, ok := w.(*os.File); ok {
		if w, _, err := term.GetSize(f.Fd()); err == nil && w >= 40 {
			width = w
		}
		fi, err := f.Stat()
		if err == nil && (fi.Mode()&os.ModeCharDevice) != 0 {
			isTTY = true
		}
	}

	return width, isTTY
}

// MarkdownRenderer renders responses as literal Markdown.
type MarkdownRenderer struct {
	width int
}

// NewMarkdownRenderer creates a renderer for literal Markdown output.
func NewMarkdownRenderer(w io.Writer) *MarkdownRenderer {
	width, _ := terminalInfo(w)
	return &MarkdownRenderer{width: width}
}

// RenderResponse renders a success response as literal Markdown.
func (r *MarkdownRenderer) RenderResponse(w io.Writer, resp *Response) error {
	_, err := io.WriteString(w, r.markdown(resp))
	return err
}

// RenderError renders an error response as literal Markdown.
func (r *MarkdownRenderer) RenderError(w io.Writer, resp *ErrorResponse) error {
	_, err := io.WriteString(w, errorMarkdown(resp))
	return err
}

func (r *MarkdownRenderer) markdown(resp *Response) string {
	var b strings.Builder

	if resp.Summary != "" {
		b.WriteString("## " + resp.Summary + "\n\n")
	}

	renderData(&b, NormalizeData(resp.Data))

	if len(resp.Breadcrumbs) > 0 {
		b.WriteString("\n### Next\n\n")
		for _, bc := range resp.Breadcrumbs {
			line := "- `" + bc.Cmd + "`"
			if bc.Description != "" {
				line += ": " + bc.Description
			}
			b.WriteString(line + "\n")
		}
	}

	if stats := extractStats(resp.Meta); stats != nil {
		b.WriteString("\n")
		renderStats(&b, stats)
	}

	return b.String()
}

func errorMarkdown(resp *ErrorResponse) string {
	var b strings.Builder
	b.WriteString("**Error:** " + resp.Error + "\n")
	if resp.Hint != "" {
		b.WriteString("\n*Hint: " + resp.Hint + "*\n")
	}
	return b.String()
}

// StyledRenderer renders the Markdown form through glamour.
type StyledRenderer struct {
	md    *MarkdownRenderer
	width int
	tty   bool
}

// NewStyledRenderer creates a renderer for ANSI styled output.
func NewStyledRenderer(w io.Writer) *StyledRenderer {
	width, tty := terminalInfo(w)
	return &StyledRenderer{md: &MarkdownRenderer{width: width}, width: width, tty: tty}
}

// RenderResponse renders a success response with terminal styling.
func (r *StyledRenderer) RenderResponse(w io.Writer, resp *Response) error {
	return r.render(w, r.md.markdown(resp))
}

// RenderError renders an error response with terminal styling.
func (r *StyledRenderer) RenderError(w io.Writer, resp *ErrorResponse) error {
	return r.render(w, errorMarkdown(resp))
}

func (r *StyledRenderer) render(w io.Writer, md string) error {
	style := glamour.WithAutoStyle()
	if !r.tty {
		// Forced styling on a pipe: auto-detection would pick the plain style.
		style = glamour.WithStandardStyle("dark")
	}
	tr, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(r.width))
	if err != nil {
		return err
	}
	out, err := tr.Render(md)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func renderData(b *strings.Builder, data any) {
	switch d := data.(type) {
	case []map[string]any:
		if len(d) == 0 {
			b.WriteString("*No results*\n")
			return
		}
		renderTable(b, d)
	case map[string]any:
		renderObject(b, d)
	case []any:
		if len(d) == 0 {
			b.WriteString("*No results*\n")
			return
		}
		for _, item := range d {
			b.WriteString("- " + formatCell(item) + "\n")
		}
	case string:
		b.WriteString(d + "\n")
	case nil:
		b.WriteString("*No data*\n")
	default:
		fmt.Fprintf(b, "%v\n", data)
	}
}

func renderTable(b *strings.Builder, data []map[string]any) {
	cols := detectColumns(data)
	if len(cols) == 0 {
		return
	}

	headers := make([]string, 0, len(cols))
	seps := make([]string, 0, len(cols))
	for _, col := range cols {
		headers = append(headers, formatHeader(col))
		seps = append(seps, "---")
	}
	b.WriteString("| " + strings.Join(headers, " | ") + " |\n")
	b.WriteString("| " + strings.Join(seps, " | ") + " |\n")

	for _, item := range data {
		cells := make([]string, 0, len(cols))
		for _, col := range cols {
			cell := formatValue(col, item[col])
			cells = append(cells, strings.ReplaceAll(cell, "|", "\\|"))
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
}

func renderObject(b *strings.Builder, data map[string]any) {
	for _, key := range orderedKeys(data) {
		b.WriteString("- **" + formatHeader(key) + ":** " + formatValue(key, data[key]) + "\n")
	}
}

func renderStats(b *strings.Builder, stats map[string]any) {
	var parts []string
	for _, key := range orderedKeys(stats) {
		parts = append(parts, key+" "+formatCell(stats[key]))
	}
	if len(parts) > 0 {
		b.WriteString("*Stats: " + strings.Join(parts, " | ") + "*\n")
	}
}

// preferredColumns lead every table in this order; other keys follow alphabetically.
var preferredColumns = []string{"id", "completed", "name", "createdAt"}

func detectColumns(data []map[string]any) []string {
	seen := make(map[string]any)
	for _, item := range data {
		for k := range item {
			seen[k] = nil
		}
	}
	return orderedKeys(seen)
}

func orderedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for _, p := range preferredColumns {
		if _, ok := m[p]; ok {
			keys = append(keys, p)
		}
	}
	var rest []string
	for k := range m {
		if !isPreferred(k) {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func isPreferred(k string) bool {
	for _, p := range preferredColumns {
		if p == k {
			return true
		}
	}
	return false
}

// formatHeader turns a camelCase key into a title: createdAt -> Created At.
func formatHeader(key string) string {
	var b strings.Builder
	for i, r := range key {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteRune(' ')
			b.WriteRune(r)
		case r == '_':
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func formatValue(key string, val any) string {
	if strings.HasSuffix(key, "At") {
		if f, ok := val.(float64); ok && f > 0 {
			return time.Unix(int64(f), 0).Local().Format("2006-01-02 15:04")
		}
	}
	if key == "completed" {
		if done, ok := val.(bool); ok {
			if done {
				return "[x]"
			}
			return "[ ]"
		}
	}
	return formatCell(val)
}

func formatCell(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "yes"
		}
		return "no"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// extractStats pulls stats from response meta if present.
func extractStats(meta map[string]any) map[string]any {
	if meta == nil {
		return nil
	}
	stats, _ := meta["stats"].(map[string]any)
	return stats
}
