package jobs

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/user/swordfinder/internal/adapters/repository"
	"github.com/user/swordfinder/internal/domain/model"
)

// BulkSource streams patch records in caller-sized batches.
type BulkSource interface {
	// Open prepares the source for a fresh pass and reports the expected
	// record count when it is known cheaply, otherwise zero.
	Open() (int, error)

	// Next returns up to limit records. io.EOF signals exhaustion; a short
	// batch may accompany it.
	Next(limit int) ([]repository.PatchRecord, error)

	// Close releases the source.
	Close() error
}

// CSVSource reads patch records from a headered CSV export. Columns are
// located by header name, so column order in the export does not matter.
// Empty cells become nil fields and never overwrite stored values.
type CSVSource struct {
	path string

	file   *os.File
	reader *csv.Reader
	cols   map[string]int
}

// NewCSVSource creates a source over the CSV file at path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Open opens the file and indexes the header row.
func (s *CSVSource) Open() (int, error) {
	if s.path == "" {
		return 0, ErrNoSource
	}
	f, err := os.Open(s.path)
	if err != nil {
		return 0, fmt.Errorf("open bulk source: %w", err)
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		f.Close()
		return 0, fmt.Errorf("read bulk source header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, required := range []string{"game_pk", "at_bat_number", "pitch_number"} {
		if _, ok := cols[required]; !ok {
			f.Close()
			return 0, fmt.Errorf("bulk source missing column %q", required)
		}
	}

	s.file = f
	s.reader = r
	s.cols = cols
	return 0, nil
}

// Next reads up to limit rows. Rows with an unparsable natural key are
// skipped rather than failing the whole run.
func (s *CSVSource) Next(limit int) ([]repository.PatchRecord, error) {
	batch := make([]repository.PatchRecord, 0, limit)
	for len(batch) < limit {
		row, err := s.reader.Read()
		if err == io.EOF {
			if len(batch) > 0 {
				return batch, io.EOF
			}
			return nil, io.EOF
		}
		if err != nil {
			return batch, fmt.Errorf("read bulk source row: %w", err)
		}

		rec, ok := s.parse(row)
		if !ok {
			continue
		}
		batch = append(batch, rec)
	}
	return batch, nil
}

// Close closes the underlying file.
func (s *CSVSource) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	s.reader = nil
	return err
}

func (s *CSVSource) parse(row []string) (repository.PatchRecord, bool) {
	gamePK, ok1 := s.intCell(row, "game_pk")
	atBat, ok2 := s.intCell(row, "at_bat_number")
	pitch, ok3 := s.intCell(row, "pitch_number")
	if !ok1 || !ok2 || !ok3 {
		return repository.PatchRecord{}, false
	}

	return repository.PatchRecord{
		Key: model.PitchKey{
			GamePK:      int64(gamePK),
			AtBatNumber: atBat,
			PitchNumber: pitch,
		},
		PlateX:      s.floatCell(row, "plate_x"),
		PlateZ:      s.floatCell(row, "plate_z"),
		ZoneTop:     s.floatCell(row, "sz_top"),
		ZoneBottom:  s.floatCell(row, "sz_bot"),
		PitchType:   s.stringCell(row, "pitch_type"),
		PitcherName: s.stringCell(row, "player_name"),
		BatterName:  s.stringCell(row, "batter_name"),
		PlayID:      s.stringCell(row, "play_id"),
	}, true
}

func (s *CSVSource) cell(row []string, name string) (string, bool) {
	i, ok := s.cols[name]
	if !ok || i >= len(row) {
		return "", false
	}
	return row[i], true
}

func (s *CSVSource) intCell(row []string, name string) (int, bool) {
	v, ok := s.cell(row, name)
	if !ok || v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (s *CSVSource) floatCell(row []string, name string) *float64 {
	v, ok := s.cell(row, name)
	if !ok || v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

func (s *CSVSource) stringCell(row []string, name string) *string {
	v, ok := s.cell(row, name)
	if !ok || v == "" {
		return nil
	}
	return &v
}
