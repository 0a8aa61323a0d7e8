// Package logging builds the append-only activity log shared by every
// maintenance operation.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// DefaultTimestampFormat renders millisecond timestamps, e.g. "2026-10-18 10:04:05,123".
const DefaultTimestampFormat = "2006-01-02 15:04:05,000"

// Formatter renders entries as "<timestamp> - <LEVEL> - <message>", followed by
// any structured fields as sorted key=value pairs.
type Formatter struct {
	TimestampFormat string
}

// Format implements logrus.Formatter.
func (f *Formatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b = entry.Buffer
	if b == nil {
		b = &bytes.Buffer{}
	}

	var layout = f.TimestampFormat
	if layout == "" {
		layout = DefaultTimestampFormat
	}

	fmt.Fprintf(b, "%s - %s - %s",
		entry.Time.Format(layout),
		strings.ToUpper(entry.Level.String()),
		entry.Message)

	var keys = make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(b, " %s=%v", k, entry.Data[k])
	}
	b.WriteByte('\n')

	return b.Bytes(), nil
}

// ParseLevel maps a configured level name to a logrus.Level. Empty means info.
func ParseLevel(level string) (logrus.Level, error) {
	if level == "" {
		return logrus.InfoLevel, nil
	}
	return logrus.ParseLevel(level)
}

// Open opens (creating if needed) the log file at path in append mode and
// returns a Logger writing to it. The returned Closer releases the file.
func Open(fs afero.Fs, path, level string) (*logrus.Logger, io.Closer, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "parsing log level %q", level)
	}

	file, err := fs.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening log file %s", path)
	}

	return New(file, lvl), file, nil
}

// New returns a Logger writing formatted lines to w.
func New(w io.Writer, level logrus.Level) *logrus.Logger {
	var logger = logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&Formatter{TimestampFormat: DefaultTimestampFormat})
	logger.SetLevel(level)
	return logger
}
