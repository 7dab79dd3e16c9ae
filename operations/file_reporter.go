package operations

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/movedeploy/aptos-resource-publish/internal/jsonutils"
)

var _ Reporter = (*FileReporter)(nil)

// FileReporter stores reports in a JSON file. Every AddReport rewrites the file, so the
// reports of all completed operations survive a crash of the process.
type FileReporter struct {
	path string

	mem *MemoryReporter
	mu  sync.Mutex
}

// NewFileReporter creates a FileReporter backed by the file at path. Existing reports are
// loaded; a missing file starts an empty report store.
func NewFileReporter(path string) (*FileReporter, error) {
	if path == "" {
		return nil, errors.New("report file path is required")
	}

	reports, err := readReports(path)
	if err != nil {
		return nil, err
	}

	return &FileReporter{
		path: path,
		mem:  NewMemoryReporter(WithReports(reports)),
	}, nil
}

// Path returns the path of the backing file.
func (r *FileReporter) Path() string {
	return r.path
}

// AddReport adds the report and persists all reports to disk.
func (r *FileReporter) AddReport(report Report[any, any]) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.mem.AddReport(report); err != nil {
		return err
	}

	reports, err := r.mem.GetReports()
	if err != nil {
		return err
	}

	if err := jsonutils.WriteFile(r.path, reports); err != nil {
		return fmt.Errorf("failed to write reports to %s: %w", r.path, err)
	}

	return nil
}

// GetReports returns all reports.
func (r *FileReporter) GetReports() ([]Report[any, any], error) {
	return r.mem.GetReports()
}

// GetReport returns a report by ID.
// Returns ErrReportNotFound if the report is not found.
func (r *FileReporter) GetReport(id string) (Report[any, any], error) {
	return r.mem.GetReport(id)
}

func readReports(path string) ([]Report[any, any], error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read reports from %s: %w", path, err)
	}

	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}

	// numbers are kept in their literal form so that large integers survive the round trip
	// through Report[any, any]
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var reports []Report[any, any]
	if err := dec.Decode(&reports); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reports from %s: %w", path, err)
	}

	return reports, nil
}
