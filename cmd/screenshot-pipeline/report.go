package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theimaginaryfoundation/store-assets/screenshots"
)

// reporter prints the human-facing summary; structured progress goes through slog.
type reporter struct {
	w       io.Writer
	heading lipgloss.Style
	hero    lipgloss.Style
	dim     lipgloss.Style
	warn    lipgloss.Style
}

func newReporter(w io.Writer) reporter {
	r := lipgloss.NewRenderer(w)
	return reporter{
		w:       w,
		heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")),
		hero:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("#F5C542")),
		dim:     r.NewStyle().Foreground(lipgloss.Color("#888888")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
	}
}

func (r reporter) banner(title string) {
	line := strings.Repeat("=", 60)
	fmt.Fprintln(r.w, r.heading.Render(line))
	fmt.Fprintln(r.w, r.heading.Render(strings.ToUpper(title)))
	fmt.Fprintln(r.w, r.heading.Render(line))
}

func (r reporter) analysis(cat screenshots.Catalog, res screenshots.AnalyzeResult) {
	for _, p := range cat.Platforms {
		pc, ok := res.Config.Platforms[p.Key]
		if !ok {
			continue
		}
		fmt.Fprintln(r.w, r.heading.Render(fmt.Sprintf("%s (%d screenshots)", p.Key, len(pc.Screenshots))))
		for _, ss := range pc.Screenshots {
			label := "-"
			if ss.Rank > 0 {
				label = fmt.Sprintf("#%d", ss.Rank)
			}
			if ss.HeroShot {
				label = r.hero.Render(label + " HERO")
			}
			fmt.Fprintf(r.w, "  %s  %s\n", label, ss.File)
			fmt.Fprintf(r.w, "      %q / %q\n", ss.Title, ss.Subtitle)
			if ss.RankReason != "" {
				fmt.Fprintln(r.w, r.dim.Render("      "+ss.RankReason))
			}
		}
	}
	fmt.Fprintf(r.w, "Analyzed %d screenshots, renamed %d.\n", res.Analyzed, res.Renamed)
}

func (r reporter) generation(res screenshots.GenerateResult) {
	fmt.Fprintf(r.w, "Generated %d images.\n", res.Generated)
	if res.Failed > 0 || res.Missing > 0 {
		fmt.Fprintln(r.w, r.warn.Render(fmt.Sprintf("Skipped: %d failed, %d missing sources.", res.Failed, res.Missing)))
	}
	for _, m := range res.Manifests {
		fmt.Fprintln(r.w, r.dim.Render("Manifest: "+m))
	}
}
