package stats

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
)

// SnapshotWriter persists a published snapshot.
type SnapshotWriter interface {
	Persist(s Snapshot) error
}

// PersistError reports a failed open, write or close of the snapshot file.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return "stats: persist " + e.Path + ": " + e.Err.Error()
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// FileWriter writes snapshots as tab-separated text to a fixed path,
// replacing the previous content on every call.
type FileWriter struct {
	path string
}

func NewFileWriter(path string) *FileWriter {
	return &FileWriter{path: path}
}

// Persist truncates the file and writes the header row followed by one row
// per snapshot entry. The file is closed on every path; a close failure is
// reported even when the write succeeded.
func (w *FileWriter) Persist(s Snapshot) (err error) {
	f, err := os.Create(w.path)
	if err != nil {
		return &PersistError{Path: w.path, Err: err}
	}
	defer func() {
		cerr := f.Close()
		if err != nil || cerr != nil {
			err = &PersistError{Path: w.path, Err: errors.Join(err, cerr)}
		}
	}()

	return writeTable(f, s)
}

// writeTable renders s as "Name\tValue\n" followed by "name\tvalue\n" rows.
func writeTable(w io.Writer, s Snapshot) error {
	bw := bufio.NewWriter(w)

	bw.WriteString(strings.Join(columnNames[:], "\t"))
	bw.WriteByte('\n')
	for i := range s.names {
		bw.WriteString(s.names[i])
		bw.WriteByte('\t')
		bw.WriteString(s.values[i])
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
