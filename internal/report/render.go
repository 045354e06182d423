package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// Render writes the report to w in the requested format. Top truncates the
// row list when positive; the summary always reflects what was shown.
func Render(w io.Writer, rep Report, opts Options) error {
	if opts.Top > 0 && len(rep.Rows) > opts.Top {
		rep.Rows = rep.Rows[:opts.Top]
	}
	rep.Summary.Shown = len(rep.Rows)

	switch resolveFormat(w, opts.Format) {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case FormatTable:
		return renderTable(w, rep, opts.Verbose)
	default:
		return renderPlain(w, rep, opts.Verbose)
	}
}

func resolveFormat(w io.Writer, format Format) Format {
	if format != FormatAuto && format != "" {
		return format
	}
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return FormatTable
	}
	return FormatPlain
}

func renderTable(w io.Writer, rep Report, verbose bool) error {
	if len(rep.Rows) == 0 {
		if _, err := fmt.Fprintln(w, "No unrated albums found."); err != nil {
			return err
		}
		return writeSummary(w, rep.Summary)
	}

	enriched := false
	for _, row := range rep.Rows {
		if row.Kind != "" {
			enriched = true
			break
		}
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := table.Row{"#", "PLAYS", "ARTIST", "ALBUM"}
	if enriched {
		header = append(header, "KIND")
	}
	if verbose {
		header = append(header, "CLOSEST RATED", "SCORES")
	}
	tw.AppendHeader(header)

	for _, row := range rep.Rows {
		r := table.Row{row.Rank, humanize.Comma(int64(row.PlayCount)), row.Artist, row.Title}
		if enriched {
			r = append(r, row.Kind)
		}
		if verbose {
			closest, scores := "", ""
			if row.Closest != nil {
				closest = fmt.Sprintf("%s - %s", row.Closest.Artist, row.Closest.Title)
				scores = fmt.Sprintf("%d/%d/%.1f", row.Closest.ArtistScore, row.Closest.TitleScore, row.Closest.Combined)
			}
			r = append(r, closest, scores)
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, len(header))
	for i := range header {
		align := text.AlignLeft
		if i < 2 {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	if _, err := fmt.Fprintln(w, tw.Render()); err != nil {
		return err
	}
	return writeSummary(w, rep.Summary)
}

func renderPlain(w io.Writer, rep Report, verbose bool) error {
	if len(rep.Rows) == 0 {
		if _, err := fmt.Fprintln(w, "No unrated albums found."); err != nil {
			return err
		}
		return writeSummary(w, rep.Summary)
	}

	playsWidth, artistWidth := 0, 0
	for _, row := range rep.Rows {
		if l := utf8.RuneCountInString(humanize.Comma(int64(row.PlayCount))); l > playsWidth {
			playsWidth = l
		}
		if l := utf8.RuneCountInString(row.Artist); l > artistWidth {
			artistWidth = l
		}
	}

	for _, row := range rep.Rows {
		title := row.Title
		if row.Kind != "" {
			title = fmt.Sprintf("%s [%s]", title, row.Kind)
		}
		if _, err := fmt.Fprintf(w, "%3d. %*s  %-*s  %s\n",
			row.Rank, playsWidth, humanize.Comma(int64(row.PlayCount)),
			artistWidth, row.Artist, title); err != nil {
			return err
		}
		if verbose && row.Closest != nil {
			if _, err := fmt.Fprintf(w, "     closest rated: %s - %s (artist %d, title %d, combined %.1f)\n",
				row.Closest.Artist, row.Closest.Title,
				row.Closest.ArtistScore, row.Closest.TitleScore, row.Closest.Combined); err != nil {
				return err
			}
		}
	}
	return writeSummary(w, rep.Summary)
}

func writeSummary(w io.Writer, s Summary) error {
	_, err := fmt.Fprintf(w, "\n%d listening records, %d rated albums, %d matched, %d blacklisted; showing %d of %d unrated\n",
		s.ListeningRecords, s.RatedAlbums, s.Matched, s.Blacklisted, s.Shown, s.Unrated)
	return err
}
