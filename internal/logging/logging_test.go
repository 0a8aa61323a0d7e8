package logging

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestFormatterLayout(t *testing.T) {
	var f = &Formatter{}
	var entry = &logrus.Entry{
		Time:    time.Date(2026, 10, 18, 10, 4, 5, 123_000_000, time.UTC),
		Level:   logrus.InfoLevel,
		Message: "Moved: a.pdf → PDF",
	}

	out, err := f.Format(entry)
	require.NoError(t, err)
	require.Equal(t, "2026-10-18 10:04:05,123 - INFO - Moved: a.pdf → PDF\n", string(out))
}

func TestFormatterLevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	var log = New(&buf, logrus.DebugLevel)

	log.Warn("disk almost full")
	log.WithFields(logrus.Fields{"path": "/d/x.txt", "err": "boom"}).Error("delete failed")
	log.Debug("hashing")

	var lines = strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	var layout = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2},\d{3} - `)
	for _, line := range lines {
		require.Regexp(t, layout, line)
	}
	require.True(t, strings.HasSuffix(lines[0], " - WARNING - disk almost full"))
	require.True(t, strings.HasSuffix(lines[1], " - ERROR - delete failed err=boom path=/d/x.txt"))
	require.True(t, strings.HasSuffix(lines[2], " - DEBUG - hashing"))
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	require.NoError(t, err)
	require.Equal(t, logrus.InfoLevel, lvl)

	lvl, err = ParseLevel("warning")
	require.NoError(t, err)
	require.Equal(t, logrus.WarnLevel, lvl)

	_, err = ParseLevel("chatty")
	require.Error(t, err)
}

func TestOpenAppends(t *testing.T) {
	var fs = afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/home/alice/auto_manager.log", []byte("previous line\n"), 0644))

	log, closer, err := Open(fs, "/home/alice/auto_manager.log", "info")
	require.NoError(t, err)
	log.Info("Starting backup.")
	log.Debug("not written at info level")
	require.NoError(t, closer.Close())

	data, err := afero.ReadFile(fs, "/home/alice/auto_manager.log")
	require.NoError(t, err)

	var lines = strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "previous line", lines[0])
	require.True(t, strings.HasSuffix(lines[1], " - INFO - Starting backup."))
}

func TestOpenRejectsBadLevel(t *testing.T) {
	_, _, err := Open(afero.NewMemMapFs(), "/log", "loud")
	require.Error(t, err)
}
