package reporter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/Renanntj/autho-archive/internal/backup"
	"github.com/Renanntj/autho-archive/internal/cleaner"
	"github.com/Renanntj/autho-archive/internal/maintenance"
	"github.com/Renanntj/autho-archive/internal/organizer"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleReport() *maintenance.Report {
	started := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	cutoff := started.Add(-30 * 24 * time.Hour)

	return &maintenance.Report{
		RunID:      "2f1c7a3e-1111-4c4c-8e8e-000000000001",
		RootDir:    "/home/tester/Downloads",
		StartedAt:  started,
		FinishedAt: started.Add(1250 * time.Millisecond),
		Tasks:      maintenance.AllTasks().Names(),
		Completed:  maintenance.AllTasks().Names(),
		Organized: &organizer.Result{
			Moves: []organizer.Move{{
				From:     "/home/tester/Downloads/a.pdf",
				To:       "/home/tester/Downloads/PDF/a.pdf",
				Category: "PDF",
				Size:     2048,
			}},
			MovedSize: 2048,
		},
		Duplicates: &cleaner.CleanResult{
			DeletedFiles: []string{"/home/tester/Downloads/IMAGES/copy.jpg"},
			DeletedSize:  1536,
		},
		Backup: &backup.Result{
			Dest:  "/home/tester/Downloads_Backup",
			Files: 12,
			Dirs:  3,
			Bytes: 3 * 1024 * 1024,
		},
		OldFiles: &cleaner.CleanResult{
			DeletedFiles: []string{"/home/tester/Downloads/stale.zip"},
			DeletedSize:  10,
		},
		Cutoff: &cutoff,
	}
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"summary", "table", "json", "yaml"} {
		format, err := ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, OutputFormat(name), format)
	}

	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestReport_Summary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatSummary).Report(sampleReport()))
	out := buf.String()

	for _, want := range []string{
		"Maintenance Summary",
		"Run: 2f1c7a3e-1111-4c4c-8e8e-000000000001",
		"Duration: 1.25s",
		"Organize: 1 files moved (2.0 KiB)",
		"a.pdf → PDF",
		"Duplicates: 1 removed, 1.5 KiB freed",
		"Backup: 12 files, 3.0 MiB copied to /home/tester/Downloads_Backup",
		"Old files: 1 removed, 10 B freed (modified before 2026-09-18 09:00)",
		"/home/tester/Downloads/stale.zip",
		"All tasks completed",
	} {
		assert.Contains(t, out, want)
	}

	// Not a terminal, so no escape sequences.
	assert.NotContains(t, out, "\x1b[")
}

func TestReport_SummaryFailure(t *testing.T) {
	report := sampleReport()
	report.Completed = []string{maintenance.TaskOrganize}
	report.Failed = maintenance.TaskDuplicates
	report.Error = "hashing /x: permission denied"
	report.Backup, report.OldFiles = nil, nil

	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatSummary).Report(report))
	out := buf.String()

	assert.Contains(t, out, "duplicates failed: hashing /x: permission denied")
	assert.NotContains(t, out, "Backup:")
	assert.NotContains(t, out, "All tasks completed")
}

func TestReport_SummaryNoTasks(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatSummary).Report(&maintenance.Report{RunID: "r"}))
	assert.Contains(t, buf.String(), "No tasks selected.")
}

func TestReport_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatTable).Report(sampleReport()))
	out := buf.String()

	for _, want := range []string{
		"/home/tester/Downloads/a.pdf",
		"/home/tester/Downloads/IMAGES/copy.jpg",
		"/home/tester/Downloads_Backup",
		"12 files",
		"/home/tester/Downloads/stale.zip",
	} {
		assert.Contains(t, out, want)
	}
	assert.Equal(t, 1, strings.Count(out, "stale.zip"))

	header := strings.ToUpper(out)
	for _, column := range []string{"TASK", "PATH", "SIZE", "DETAIL"} {
		assert.Contains(t, header, column)
	}
}

func TestReport_TableFailure(t *testing.T) {
	report := sampleReport()
	report.Failed = maintenance.TaskClean
	report.Error = "disk full"
	report.OldFiles = nil

	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatTable).Report(report))
	assert.Contains(t, buf.String(), "failed: disk full")
	assert.NotContains(t, buf.String(), "stale.zip")
}

func TestReport_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatJSON).Report(sampleReport()))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "2f1c7a3e-1111-4c4c-8e8e-000000000001", decoded["run_id"])
	assert.Contains(t, decoded, "organized")
	assert.Contains(t, decoded, "cutoff")
	assert.NotContains(t, decoded, "failed")
	assert.NotContains(t, decoded, "Manifest")
}

func TestReport_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatYAML).Report(sampleReport()))

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "/home/tester/Downloads", decoded["root_dir"])
	assert.Equal(t, []interface{}{"organize", "duplicates", "backup", "clean"}, decoded["completed"])
}

func TestReport_UnsupportedFormat(t *testing.T) {
	err := New(&bytes.Buffer{}, OutputFormat("xml")).Report(sampleReport())
	assert.Error(t, err)
}

func TestSaveToFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, SaveToFile(fs, sampleReport(), "/report.json", FormatJSON))

	data, err := afero.ReadFile(fs, "/report.json")
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}
