package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Renanntj/autho-archive/internal/maintenance"
	"github.com/Renanntj/autho-archive/internal/ui/styles"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatTable   OutputFormat = "table"
	FormatJSON    OutputFormat = "json"
	FormatYAML    OutputFormat = "yaml"
	FormatSummary OutputFormat = "summary"
)

// ParseFormat validates a format name
func ParseFormat(name string) (OutputFormat, error) {
	switch format := OutputFormat(name); format {
	case FormatTable, FormatJSON, FormatYAML, FormatSummary:
		return format, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", name)
	}
}

// Reporter handles report generation
type Reporter struct {
	writer io.Writer
	format OutputFormat
}

// New creates a new Reporter
func New(writer io.Writer, format OutputFormat) *Reporter {
	return &Reporter{
		writer: writer,
		format: format,
	}
}

// Report renders a run report
func (r *Reporter) Report(report *maintenance.Report) error {
	switch r.format {
	case FormatTable:
		return r.reportTable(report)
	case FormatJSON:
		return r.reportJSON(report)
	case FormatYAML:
		return r.reportYAML(report)
	case FormatSummary:
		return r.reportSummary(report)
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

// reportSummary generates a summary report
func (r *Reporter) reportSummary(report *maintenance.Report) error {
	theme := styles.NewTheme(r.writer)
	w := r.writer

	fmt.Fprintln(w, theme.Title.Render("=== Maintenance Summary ==="))
	fmt.Fprintf(w, "Run: %s\n", theme.Dim.Render(report.RunID))
	fmt.Fprintf(w, "Root: %s\n", theme.Path.Render(report.RootDir))
	fmt.Fprintf(w, "Duration: %s\n", report.Duration().Round(time.Millisecond))

	if len(report.Tasks) == 0 {
		fmt.Fprintln(w, theme.Dim.Render("No tasks selected."))
		return nil
	}

	if res := report.Organized; res != nil {
		fmt.Fprintf(w, "\n%s %s files moved (%s)\n", theme.Section.Render("Organize:"),
			humanize.Comma(int64(len(res.Moves))), theme.Size.Render(humanize.IBytes(uint64(res.MovedSize))))
		for _, move := range res.Moves {
			fmt.Fprintf(w, "  %s → %s\n", filepath.Base(move.From), theme.Category.Render(move.Category))
		}
	}

	if res := report.Duplicates; res != nil {
		fmt.Fprintf(w, "\n%s %s removed, %s freed\n", theme.Section.Render("Duplicates:"),
			humanize.Comma(int64(len(res.DeletedFiles))), theme.Size.Render(humanize.IBytes(uint64(res.DeletedSize))))
		for _, path := range res.DeletedFiles {
			fmt.Fprintf(w, "  %s\n", theme.Path.Render(path))
		}
	}

	if res := report.Backup; res != nil {
		fmt.Fprintf(w, "\n%s %s files, %s copied to %s\n", theme.Section.Render("Backup:"),
			humanize.Comma(int64(res.Files)), theme.Size.Render(humanize.IBytes(uint64(res.Bytes))), theme.Path.Render(res.Dest))
		for _, path := range res.Skipped {
			fmt.Fprintf(w, "  %s %s\n", theme.Warning.Render("skipped"), path)
		}
	}

	if res := report.OldFiles; res != nil {
		fmt.Fprintf(w, "\n%s %s removed, %s freed", theme.Section.Render("Old files:"),
			humanize.Comma(int64(len(res.DeletedFiles))), theme.Size.Render(humanize.IBytes(uint64(res.DeletedSize))))
		if report.Cutoff != nil {
			fmt.Fprintf(w, " (modified before %s)", report.Cutoff.Format("2006-01-02 15:04"))
		}
		fmt.Fprintln(w)
		for _, path := range res.DeletedFiles {
			fmt.Fprintf(w, "  %s\n", theme.Path.Render(path))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, theme.Rule())
	if report.Failed != "" {
		fmt.Fprintln(w, theme.Error.Render(fmt.Sprintf("✗ %s failed: %s", report.Failed, report.Error)))
	} else {
		fmt.Fprintln(w, theme.Success.Render("✓ All tasks completed"))
	}

	return nil
}

// reportTable generates a table with one row per file acted on
func (r *Reporter) reportTable(report *maintenance.Report) error {
	var rows [][]string

	if res := report.Organized; res != nil {
		for _, move := range res.Moves {
			rows = append(rows, []string{maintenance.TaskOrganize, move.From, humanize.IBytes(uint64(move.Size)), "→ " + move.Category})
		}
	}
	if res := report.Duplicates; res != nil {
		for _, path := range res.DeletedFiles {
			rows = append(rows, []string{maintenance.TaskDuplicates, path, "", "removed"})
		}
	}
	if res := report.Backup; res != nil {
		rows = append(rows, []string{maintenance.TaskBackup, res.Dest, humanize.IBytes(uint64(res.Bytes)), strconv.Itoa(res.Files) + " files"})
	}
	if res := report.OldFiles; res != nil {
		for _, path := range res.DeletedFiles {
			rows = append(rows, []string{maintenance.TaskClean, path, "", "removed"})
		}
	}
	if report.Failed != "" {
		rows = append(rows, []string{report.Failed, "", "", "failed: " + report.Error})
	}

	table := tablewriter.NewWriter(r.writer)
	table.Header("Task", "Path", "Size", "Detail")
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("adding %s row: %w", row[0], err)
		}
	}

	return table.Render()
}

// reportJSON generates a JSON report
func (r *Reporter) reportJSON(report *maintenance.Report) error {
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// reportYAML generates a YAML report
func (r *Reporter) reportYAML(report *maintenance.Report) error {
	encoder := yaml.NewEncoder(r.writer)
	defer encoder.Close()
	return encoder.Encode(report)
}

// SaveToFile saves the report to a file
func SaveToFile(fs afero.Fs, report *maintenance.Report, path string, format OutputFormat) error {
	file, err := fs.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	reporter := New(file, format)
	return reporter.Report(report)
}
