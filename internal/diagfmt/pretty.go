package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"wgsmaster/internal/diag"
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
//
//	<path>#<record>: <SEV> <CODE>: <Message>
//
// затем, при ShowNotes, заметки с отступом.
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) {
	p := newPrinter(opts)
	for _, d := range bag.Items() {
		p.diagnostic(w, d)
	}
}

type printer struct {
	opts  PrettyOpts
	sev   map[diag.Severity]*color.Color
	where *color.Color
	code  *color.Color
	note  *color.Color
}

func newPrinter(opts PrettyOpts) *printer {
	p := &printer{
		opts: opts,
		sev: map[diag.Severity]*color.Color{
			diag.SevInfo:     color.New(color.FgCyan),
			diag.SevWarning:  color.New(color.FgYellow, color.Bold),
			diag.SevError:    color.New(color.FgRed, color.Bold),
			diag.SevCritical: color.New(color.FgRed, color.Bold, color.Underline),
			diag.SevFatal:    color.New(color.FgHiWhite, color.BgRed, color.Bold),
		},
		where: color.New(color.Bold),
		code:  color.New(color.FgMagenta),
		note:  color.New(color.FgBlue),
	}
	all := []*color.Color{p.where, p.code, p.note}
	for _, c := range p.sev {
		all = append(all, c)
	}
	for _, c := range all {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *printer) location(loc diag.Location) string {
	path := formatPath(loc.File, p.opts.PathMode, p.opts.BaseDir)
	return diag.Location{File: path, Record: loc.Record}.String()
}

func (p *printer) diagnostic(w io.Writer, d *diag.Diagnostic) {
	if d == nil {
		return
	}
	sev, ok := p.sev[d.Severity]
	if !ok {
		sev = p.sev[diag.SevError]
	}
	head := fmt.Sprintf("%s: %s %s: ",
		p.where.Sprint(p.location(d.Where)),
		sev.Sprint(d.Severity.String()),
		p.code.Sprint(d.Code.ID()))
	plainHead := fmt.Sprintf("%s: %s %s: ", p.location(d.Where), d.Severity, d.Code.ID())

	lines := wrap(d.Message, p.opts.Width, runewidth.StringWidth(plainHead))
	fmt.Fprintf(w, "%s%s\n", head, lines[0])
	indent := strings.Repeat(" ", min(runewidth.StringWidth(plainHead), 8))
	for _, l := range lines[1:] {
		fmt.Fprintf(w, "%s%s\n", indent, l)
	}
	if p.opts.ShowTitle {
		fmt.Fprintf(w, "    = %s\n", d.Code.Title())
	}
	if !p.opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		where := ""
		if !n.Where.IsZero() {
			where = p.location(n.Where) + ": "
		}
		fmt.Fprintf(w, "    %s %s%s\n", p.note.Sprint("note:"), where, n.Msg)
	}
}

// wrap splits msg into lines that fit width columns, the first of which
// already has used columns taken. width <= 0 disables wrapping.
func wrap(msg string, width, used int) []string {
	msg = strings.TrimSpace(msg)
	if width <= 0 || runewidth.StringWidth(msg)+used <= width {
		return []string{msg}
	}
	var lines []string
	var cur strings.Builder
	avail := max(width-used, 10)
	for _, word := range strings.Fields(msg) {
		ww := runewidth.StringWidth(word)
		cw := runewidth.StringWidth(cur.String())
		if cw > 0 && cw+1+ww > avail {
			lines = append(lines, cur.String())
			cur.Reset()
			avail = max(width-8, 10)
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(word)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

// Counts tallies diagnostics by severity, skipping infos.
func Counts(bag *diag.Bag) string {
	var parts []string
	for _, sev := range []diag.Severity{diag.SevFatal, diag.SevCritical, diag.SevError, diag.SevWarning} {
		n := bag.Count(sev)
		if n == 0 {
			continue
		}
		label := sev.Label()
		if n > 1 {
			label += "s"
		}
		parts = append(parts, fmt.Sprintf("%d %s", n, label))
	}
	if len(parts) == 0 {
		return "no problems"
	}
	return strings.Join(parts, ", ")
}
