package console

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/k2wGG/Check-bot/internal/logbus"
)

var (
	bannerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	timeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	sepStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	fieldStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	countdownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))

	levelStyles = map[string]lipgloss.Style{
		"debug": lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		"info":  lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
		"warn":  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		"error": lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
)

// Printer renders bus records as timestamped colored lines. Timestamps
// use Moscow time when the zone database has it, local time otherwise.
type Printer struct {
	out io.Writer
	loc *time.Location
}

func NewPrinter(out io.Writer) *Printer {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		loc = time.Local
	}
	return &Printer{out: out, loc: loc}
}

// Attach subscribes to the bus and prints every record until the
// returned stop function is called or the bus closes. Debug records are
// kept off the console; they stay available via the status API.
func (p *Printer) Attach(bus *logbus.Bus) (stop func()) {
	ch, cancel := bus.Subscribe(256)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for rec := range ch {
			if rec.Level == "debug" {
				continue
			}
			fmt.Fprintln(p.out, p.render(rec))
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

func (p *Printer) Banner(title string) {
	pad := strings.Repeat(" ", 15)
	line := pad + strings.Repeat("=", len(title)+4)
	fmt.Fprintln(p.out, bannerStyle.Render(line))
	fmt.Fprintln(p.out, bannerStyle.Render(pad+"  "+title))
	fmt.Fprintln(p.out, bannerStyle.Render(line))
}

// Countdown redraws a single in-place waiting line.
func (p *Printer) Countdown(remaining time.Duration) {
	fmt.Fprintf(p.out, "%s\r", countdownStyle.Render("[ waiting "+FormatDuration(remaining)+" ] next cycle pending"))
}

func (p *Printer) render(rec logbus.Record) string {
	at := time.UnixMilli(rec.Time).In(p.loc)
	ts := timeStyle.Render("[ " + at.Format("02-01-2006 15:04:05 MST") + " ]")
	style, ok := levelStyles[rec.Level]
	if !ok {
		style = levelStyles["info"]
	}
	line := ts + sepStyle.Render(" | ") + style.Render(rec.Msg)
	if len(rec.Fields) > 0 {
		line += " " + fieldStyle.Render(formatFields(rec.Fields))
	}
	return line
}

func formatFields(fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return strings.Join(parts, " ")
}

// FormatDuration renders a duration as HH:MM:SS.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	h := total / 3600
	m := total % 3600 / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
