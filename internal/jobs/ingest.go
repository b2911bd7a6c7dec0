package jobs

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/user/swordfinder/internal/adapters/repository"
	"github.com/user/swordfinder/internal/domain/model"
	"github.com/user/swordfinder/pkg/logger"
	"github.com/user/swordfinder/pkg/metrics"
)

// IngestJobType names the full pitch-event load job.
const IngestJobType = "ingest"

// EventSource streams complete pitch events in caller-sized batches.
type EventSource interface {
	Open() (int, error)
	Next(limit int) ([]*model.PitchEvent, error)
	Close() error
}

// CSVEventSource reads pitch events from a statcast-style CSV export. Columns
// are located by header name; empty swing-metric cells become nil pointers.
type CSVEventSource struct {
	path string

	file   *os.File
	reader *csv.Reader
	cols   map[string]int
}

// NewCSVEventSource creates a source over the export at path.
func NewCSVEventSource(path string) *CSVEventSource {
	return &CSVEventSource{path: path}
}

// Open opens the file and indexes the header row.
func (s *CSVEventSource) Open() (int, error) {
	if s.path == "" {
		return 0, ErrNoSource
	}
	f, err := os.Open(s.path)
	if err != nil {
		return 0, fmt.Errorf("open event source: %w", err)
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		f.Close()
		return 0, fmt.Errorf("read event source header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, required := range []string{"game_date", "game_pk", "at_bat_number", "pitch_number"} {
		if _, ok := cols[required]; !ok {
			f.Close()
			return 0, fmt.Errorf("event source missing column %q", required)
		}
	}

	s.file = f
	s.reader = r
	s.cols = cols
	return 0, nil
}

// Next reads up to limit rows, skipping any with an unparsable natural key.
func (s *CSVEventSource) Next(limit int) ([]*model.PitchEvent, error) {
	batch := make([]*model.PitchEvent, 0, limit)
	for len(batch) < limit {
		row, err := s.reader.Read()
		if err == io.EOF {
			if len(batch) > 0 {
				return batch, io.EOF
			}
			return nil, io.EOF
		}
		if err != nil {
			return batch, fmt.Errorf("read event source row: %w", err)
		}

		p, ok := s.parse(row)
		if !ok {
			continue
		}
		batch = append(batch, p)
	}
	return batch, nil
}

// Close closes the underlying file.
func (s *CSVEventSource) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	s.reader = nil
	return err
}

func (s *CSVEventSource) parse(row []string) (*model.PitchEvent, bool) {
	gamePK, ok1 := s.intCell(row, "game_pk")
	atBat, ok2 := s.intCell(row, "at_bat_number")
	pitch, ok3 := s.intCell(row, "pitch_number")
	date, ok4 := s.cell(row, "game_date")
	if !ok1 || !ok2 || !ok3 || !ok4 || date == "" {
		return nil, false
	}

	inning, _ := s.intCell(row, "inning")
	p := &model.PitchEvent{
		GameDate:        date,
		GamePK:          int64(gamePK),
		AtBatNumber:     atBat,
		PitchNumber:     pitch,
		Inning:          inning,
		Outcome:         s.text(row, "description"),
		AtBatEnd:        s.text(row, "events"),
		BatSpeed:        s.floatCell(row, "bat_speed"),
		SwingPathTilt:   s.floatCell(row, "swing_path_tilt"),
		InterceptOffset: s.floatCell(row, "intercept_ball_minus_batter_pos_y_inches"),
		PlateX:          s.floatCell(row, "plate_x"),
		PlateZ:          s.floatCell(row, "plate_z"),
		ZoneTop:         s.floatCell(row, "sz_top"),
		ZoneBottom:      s.floatCell(row, "sz_bot"),
		PlayID:          s.text(row, "play_id"),
		PitcherName:     s.text(row, "player_name"),
		BatterName:      s.text(row, "batter_name"),
		PitchType:       s.text(row, "pitch_type"),
	}
	return p, true
}

func (s *CSVEventSource) cell(row []string, name string) (string, bool) {
	i, ok := s.cols[name]
	if !ok || i >= len(row) {
		return "", false
	}
	return row[i], true
}

func (s *CSVEventSource) text(row []string, name string) string {
	v, _ := s.cell(row, name)
	return v
}

func (s *CSVEventSource) intCell(row []string, name string) (int, bool) {
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

func (s *CSVEventSource) floatCell(row []string, name string) *float64 {
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

// IngestJobOption applies a configuration option to the IngestJob.
type IngestJobOption func(*IngestJob)

// WithIngestBatchSize sets how many events are committed per batch.
func WithIngestBatchSize(n int) IngestJobOption {
	return func(j *IngestJob) {
		if n > 0 {
			j.batchSize = n
		}
	}
}

// WithIngestLogger sets a custom logger.
func WithIngestLogger(l logger.Logger) IngestJobOption {
	return func(j *IngestJob) {
		if l != nil {
			j.logger = l
		}
	}
}

// IngestJob loads complete pitch events from the event source in batches,
// replacing stored rows by natural key. Rerunning the same export is safe.
type IngestJob struct {
	store     repository.Store
	source    EventSource
	batchSize int
	logger    logger.Logger
}

// NewIngestJob creates the ingest job over store and source.
func NewIngestJob(store repository.Store, source EventSource, opts ...IngestJobOption) *IngestJob {
	j := &IngestJob{
		store:     store,
		source:    source,
		batchSize: defaultBatchSize,
		logger:    logger.Get().Named("ingest-job"),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Type implements Runner.
func (j *IngestJob) Type() string { return IngestJobType }

// Run implements Runner.
func (j *IngestJob) Run(ctx context.Context, t *Tracker) error {
	t.SetStep("opening source")
	total, err := j.source.Open()
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer j.source.Close()
	if total > 0 {
		t.SetExpectedTotal(total)
	}

	t.SetStep("loading batches")
	for {
		if t.Cancelled() {
			t.SetStep("cancelled")
			j.logger.Info(ctx, "ingest job cancelled between batches")
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		batch, err := j.source.Next(j.batchSize)
		done := errors.Is(err, io.EOF)
		if err != nil && !done {
			return fmt.Errorf("read batch: %w", err)
		}

		if len(batch) > 0 {
			written, err := j.store.UpsertPitchEvents(ctx, batch)
			if err != nil {
				return fmt.Errorf("upsert batch: %w", err)
			}
			metrics.RecordJobBatch(IngestJobType)
			metrics.RecordJobRowsUpdated(IngestJobType, written)
			t.AddProgress(len(batch), written)
		}

		if done {
			break
		}
	}

	t.SetStep("done")
	return nil
}
