// Package render draws the dashboard view as terminal tables.
package render

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"

	"github.com/hakichain/haki-analytics/internal/analytics"
	"github.com/hakichain/haki-analytics/internal/hakilens"
)

const maxCell = 48

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	cell    lipgloss.Style
	muted   lipgloss.Style
	errText lipgloss.Style
	initial lipgloss.Style
	border  lipgloss.Style
}

// Printer writes tables to one output. Colours follow the output's capabilities,
// the table width follows the terminal when there is one.
type Printer struct {
	w     io.Writer
	width int
	s     styles
}

func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	p := &Printer{
		w: w,
		s: styles{
			title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
			header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("62")).Padding(0, 1),
			cell:    r.NewStyle().Padding(0, 1),
			muted:   r.NewStyle().Foreground(lipgloss.Color("243")),
			errText: r.NewStyle().Foreground(lipgloss.Color("196")),
			initial: r.NewStyle().Bold(true).Foreground(lipgloss.Color("135")).Padding(0, 1),
			border:  r.NewStyle().Foreground(lipgloss.Color("240")),
		},
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			p.width = width
		}
	}
	return p
}

// View prints the wallet line and the three sections.
func (p *Printer) View(v analytics.View) {
	wallet := v.Wallet
	if wallet == "" {
		wallet = "not connected"
	}
	fmt.Fprintln(p.w, p.s.title.Render("Chain Analytics"))
	fmt.Fprintln(p.w, p.s.muted.Render("wallet: "+wallet))
	if v.Query != "" {
		fmt.Fprintln(p.w, p.s.muted.Render("filter: "+v.Query))
	}
	if v.WalletError != "" {
		fmt.Fprintln(p.w, p.s.errText.Render(v.WalletError))
	}
	fmt.Fprintln(p.w)

	p.Assets(v.Organization)
	p.Assets(v.User)
	p.Records(v.Records)
}

func (p *Printer) Assets(s analytics.Section[analytics.AssetRow]) {
	rows := make([][]string, 0, len(s.Rows))
	for _, r := range s.Rows {
		rows = append(rows, []string{r.Initial, strconv.FormatUint(r.ID, 10), clip(r.Title), clip(r.Hash), r.Registered})
	}
	p.section(s.Title, s.Empty, s.Error, []string{"", "ID", "Title", "Content Hash", "Registered"}, rows, 0)
}

func (p *Printer) Records(s analytics.Section[analytics.RecordRow]) {
	rows := make([][]string, 0, len(s.Rows))
	for _, r := range s.Rows {
		rows = append(rows, []string{strconv.FormatInt(r.ID, 10), clip(r.MetadataHash), clip(r.Owner), r.RegisteredAt})
	}
	p.section(s.Title, s.Empty, s.Error, []string{"ID", "Metadata Hash", "Owner", "Registered At"}, rows, -1)
}

// Cases prints a case listing.
func (p *Printer) Cases(cases []hakilens.Case) {
	rows := make([][]string, 0, len(cases))
	for _, c := range cases {
		rows = append(rows, []string{c.CaseID, clip(c.Title), clip(c.Court), c.DateCreated})
	}
	p.section("Cases", "No cases found.", "", []string{"ID", "Title", "Court", "Date"}, rows, -1)
}

// Case prints one case with its summary, if any.
func (p *Printer) Case(c hakilens.Case) {
	fmt.Fprintln(p.w, p.s.title.Render(c.Title))
	for _, kv := range [][2]string{
		{"id", c.CaseID},
		{"court", c.Court},
		{"case number", c.CaseNumber},
		{"parties", c.Parties},
		{"judges", c.Judges},
		{"date", c.DateCreated},
	} {
		if kv[1] != "" {
			fmt.Fprintf(p.w, "%s %s\n", p.s.muted.Render(kv[0]+":"), kv[1])
		}
	}
	if c.Summary != "" {
		fmt.Fprintln(p.w)
		fmt.Fprintln(p.w, c.Summary)
	}
}

// Text prints a titled block of free text such as an AI answer.
func (p *Printer) Text(title, body string) {
	fmt.Fprintln(p.w, p.s.title.Render(title))
	if strings.TrimSpace(body) == "" {
		fmt.Fprintln(p.w, p.s.muted.Render("(empty)"))
		return
	}
	fmt.Fprintln(p.w, body)
}

// section draws one table. badgeCol is the column rendered with the initial style, or -1.
func (p *Printer) section(title, empty, errMsg string, headers []string, rows [][]string, badgeCol int) {
	fmt.Fprintln(p.w, p.s.title.Render(title))
	if errMsg != "" {
		fmt.Fprintln(p.w, p.s.errText.Render(errMsg))
	}
	if len(rows) == 0 {
		fmt.Fprintln(p.w, p.s.muted.Render(empty))
		fmt.Fprintln(p.w)
		return
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(p.s.border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return p.s.header
			case col == badgeCol:
				return p.s.initial
			default:
				return p.s.cell
			}
		})
	if p.width > 0 {
		t = t.Width(p.width)
	}

	fmt.Fprintln(p.w, t.String())
	fmt.Fprintln(p.w)
}

func clip(s string) string {
	r := []rune(s)
	if len(r) <= maxCell {
		return s
	}
	return string(r[:maxCell-3]) + "..."
}
