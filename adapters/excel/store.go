package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"neuropipe/domain/core"
	"neuropipe/domain/recording"
	"neuropipe/internal/errors"

	"github.com/xuri/excelize/v2"
)

// TableStore loads and saves the recording table at one file path,
// writing a timestamped backup of the previous contents before each save.
type TableStore struct {
	path string

	// now is swappable so tests can pin the backup timestamp
	now func() time.Time
}

// NewTableStore creates a store for the given xlsx or csv path.
func NewTableStore(path string) *TableStore {
	return &TableStore{path: path, now: time.Now}
}

// Load reads and decodes the table. Failure here is the one fatal error of
// the pipeline.
func (s *TableStore) Load(ctx context.Context) (*recording.Dataset, error) {
	data, err := NewDataReader(s.path).ReadData()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load dataset")
	}
	ds, err := Decode(data, s.path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode dataset")
	}
	return ds, nil
}

// Save writes the dataset back to its original path. A backup of the
// pre-save file is attempted first; backup failure is logged and the save
// proceeds anyway. That ordering is a documented quirk of this pipeline:
// if the primary save then also fails, no safety copy exists.
func (s *TableStore) Save(ctx context.Context, ds *recording.Dataset) error {
	if backupPath, err := s.writeBackup(); err != nil {
		log.Printf("WARNING: backup failed, saving anyway: %v", err)
	} else {
		log.Printf("[TableStore] Backup written: %s", backupPath)
	}

	data := Encode(ds)

	ext := strings.ToLower(filepath.Ext(s.path))
	if ext == ".csv" {
		return s.writeCSV(data)
	}
	return s.writeExcel(data)
}

// BackupPath returns the backup filename for the given moment:
// <basename>_backup_<timestamp><ext> in the same directory.
func (s *TableStore) BackupPath(at time.Time) string {
	dir := filepath.Dir(s.path)
	ext := filepath.Ext(s.path)
	base := strings.TrimSuffix(filepath.Base(s.path), ext)
	stamp := at.Format(core.BackupStamp)
	return filepath.Join(dir, fmt.Sprintf("%s_backup_%s%s", base, stamp, ext))
}

func (s *TableStore) writeBackup() (string, error) {
	src, err := os.Open(s.path)
	if err != nil {
		return "", fmt.Errorf("failed to open source for backup: %w", err)
	}
	defer src.Close()

	backupPath := s.BackupPath(s.now())
	dst, err := os.Create(backupPath)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to copy backup contents: %w", err)
	}
	return backupPath, nil
}

func (s *TableStore) writeCSV(data *TableData) error {
	file, err := os.Create(s.path)
	if err != nil {
		return errors.Wrap(err, "failed to create CSV file")
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(data.Headers); err != nil {
		return errors.Wrap(err, "failed to write CSV header")
	}
	for _, row := range data.Rows {
		cells := make([]string, len(data.Headers))
		for i, h := range data.Headers {
			cells[i] = row[h]
		}
		if err := w.Write(cells); err != nil {
			return errors.Wrap(err, "failed to write CSV row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrap(err, "failed to flush CSV file")
	}

	log.Printf("[TableStore] Saved %d rows to %s", len(data.Rows), s.path)
	return nil
}

func (s *TableStore) writeExcel(data *TableData) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(data.Headers))
	for i, h := range data.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		return errors.Wrap(err, "failed to write header row")
	}

	for i, row := range data.Rows {
		cells := make([]interface{}, len(data.Headers))
		for j, h := range data.Headers {
			cells[j] = row[h]
		}
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "failed to compute cell reference")
		}
		if err := f.SetSheetRow("Sheet1", cellRef, &cells); err != nil {
			return errors.Wrapf(err, "failed to write row %d", i+2)
		}
	}

	if err := f.SaveAs(s.path); err != nil {
		return errors.Wrap(err, "failed to save Excel file")
	}

	log.Printf("[TableStore] Saved %d rows to %s", len(data.Rows), s.path)
	return nil
}
