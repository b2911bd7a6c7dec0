package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/user/swordfinder/internal/domain/model"
	"github.com/user/swordfinder/pkg/metrics"
)

// SQLiteStore implements Store on a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath and runs schema
// migration. The parent directory is created when missing.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pitch_events (
		game_pk INTEGER NOT NULL,
		at_bat_number INTEGER NOT NULL,
		pitch_number INTEGER NOT NULL,
		game_date TEXT NOT NULL,
		inning INTEGER,
		outcome TEXT,
		at_bat_end TEXT,
		bat_speed REAL,
		swing_path_tilt REAL,
		intercept_offset REAL,
		plate_x REAL,
		plate_z REAL,
		zone_top REAL,
		zone_bottom REAL,
		play_id TEXT,
		pitcher_name TEXT,
		batter_name TEXT,
		pitch_type TEXT,
		PRIMARY KEY (game_pk, at_bat_number, pitch_number)
	);

	CREATE TABLE IF NOT EXISTS scored_swings (
		game_pk INTEGER NOT NULL,
		at_bat_number INTEGER NOT NULL,
		pitch_number INTEGER NOT NULL,
		game_date TEXT NOT NULL,
		raw_metric REAL NOT NULL,
		universal_score REAL NOT NULL,
		daily_score REAL NOT NULL,
		rank INTEGER NOT NULL,
		PRIMARY KEY (game_pk, at_bat_number, pitch_number)
	);

	CREATE TABLE IF NOT EXISTS query_results (
		game_date TEXT PRIMARY KEY,
		completed BOOLEAN NOT NULL,
		total_pitches INTEGER NOT NULL,
		computed_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS video_assets (
		identifier TEXT PRIMARY KEY,
		page_url TEXT,
		media_url TEXT,
		local_path TEXT,
		byte_size INTEGER,
		state TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_pitch_events_date ON pitch_events(game_date);
	CREATE INDEX IF NOT EXISTS idx_scored_swings_date ON scored_swings(game_date, raw_metric);
	`
	_, err := s.db.Exec(schema)
	return err
}

// PitchEventsForDate returns every pitch event recorded for a date.
func (s *SQLiteStore) PitchEventsForDate(ctx context.Context, date string) ([]*model.PitchEvent, error) {
	defer trackLatency(time.Now())

	rows, err := s.db.QueryContext(ctx, `
		SELECT game_pk, at_bat_number, pitch_number, game_date, inning,
			outcome, at_bat_end, bat_speed, swing_path_tilt, intercept_offset,
			plate_x, plate_z, zone_top, zone_bottom, play_id,
			pitcher_name, batter_name, pitch_type
		FROM pitch_events
		WHERE game_date = ?
	`, date)
	if err != nil {
		return nil, fmt.Errorf("query pitch events: %w", err)
	}
	defer rows.Close()

	return scanPitchEvents(rows)
}

// UpsertPitchEvents writes events by natural key, replacing existing rows,
// and reports how many rows it wrote.
func (s *SQLiteStore) UpsertPitchEvents(ctx context.Context, events []*model.PitchEvent) (int, error) {
	defer trackLatency(time.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pitch_events (game_pk, at_bat_number, pitch_number, game_date,
			inning, outcome, at_bat_end, bat_speed, swing_path_tilt, intercept_offset,
			plate_x, plate_z, zone_top, zone_bottom, play_id,
			pitcher_name, batter_name, pitch_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(game_pk, at_bat_number, pitch_number) DO UPDATE SET
			game_date = excluded.game_date,
			inning = excluded.inning,
			outcome = excluded.outcome,
			at_bat_end = excluded.at_bat_end,
			bat_speed = excluded.bat_speed,
			swing_path_tilt = excluded.swing_path_tilt,
			intercept_offset = excluded.intercept_offset,
			plate_x = excluded.plate_x,
			plate_z = excluded.plate_z,
			zone_top = excluded.zone_top,
			zone_bottom = excluded.zone_bottom,
			play_id = excluded.play_id,
			pitcher_name = excluded.pitcher_name,
			batter_name = excluded.batter_name,
			pitch_type = excluded.pitch_type
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	written := 0
	for _, p := range events {
		res, err := stmt.ExecContext(ctx,
			p.GamePK, p.AtBatNumber, p.PitchNumber, p.GameDate, p.Inning,
			p.Outcome, p.AtBatEnd, p.BatSpeed, p.SwingPathTilt, p.InterceptOffset,
			p.PlateX, p.PlateZ, p.ZoneTop, p.ZoneBottom, nullableString(p.PlayID),
			p.PitcherName, p.BatterName, p.PitchType)
		if err != nil {
			return 0, fmt.Errorf("upsert pitch event: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			written += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert: %w", err)
	}
	return written, nil
}

// SetPlayID backfills the external video identifier on a pitch event.
func (s *SQLiteStore) SetPlayID(ctx context.Context, key model.PitchKey, playID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE pitch_events SET play_id = ?
		WHERE game_pk = ? AND at_bat_number = ? AND pitch_number = ?
	`, playID, key.GamePK, key.AtBatNumber, key.PitchNumber)
	if err != nil {
		return fmt.Errorf("set play id: %w", err)
	}
	return nil
}

// SaveResultSet persists a computed ranking and its completion marker.
func (s *SQLiteStore) SaveResultSet(ctx context.Context, set *model.QueryResultSet) error {
	defer trackLatency(time.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	for i := range set.Swings {
		sw := &set.Swings[i]
		key := sw.Pitch.Key()
		_, err := tx.ExecContext(ctx, `
			INSERT INTO scored_swings (game_pk, at_bat_number, pitch_number,
				game_date, raw_metric, universal_score, daily_score, rank)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(game_pk, at_bat_number, pitch_number) DO UPDATE SET
				game_date = excluded.game_date,
				raw_metric = excluded.raw_metric,
				universal_score = excluded.universal_score,
				daily_score = excluded.daily_score,
				rank = excluded.rank
		`, key.GamePK, key.AtBatNumber, key.PitchNumber,
			set.Date, sw.RawMetric, sw.UniversalScore, sw.DailyScore, sw.Rank)
		if err != nil {
			return fmt.Errorf("upsert scored swing: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO query_results (game_date, completed, total_pitches, computed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(game_date) DO UPDATE SET
			completed = excluded.completed,
			total_pitches = excluded.total_pitches,
			computed_at = excluded.computed_at
	`, set.Date, set.Completed, set.TotalPitches, set.ComputedAt.UTC())
	if err != nil {
		return fmt.Errorf("upsert query result: %w", err)
	}
	return tx.Commit()
}

// ResultSet loads the cached ranking for a date.
func (s *SQLiteStore) ResultSet(ctx context.Context, date string) (*model.QueryResultSet, error) {
	defer trackLatency(time.Now())

	set := &model.QueryResultSet{Date: date}
	err := s.db.QueryRowContext(ctx, `
		SELECT completed, total_pitches, computed_at
		FROM query_results WHERE game_date = ?
	`, date).Scan(&set.Completed, &set.TotalPitches, &set.ComputedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query result set: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT s.raw_metric, s.universal_score, s.daily_score, s.rank,
			p.game_pk, p.at_bat_number, p.pitch_number, p.game_date, p.inning,
			p.outcome, p.at_bat_end, p.bat_speed, p.swing_path_tilt, p.intercept_offset,
			p.plate_x, p.plate_z, p.zone_top, p.zone_bottom, p.play_id,
			p.pitcher_name, p.batter_name, p.pitch_type
		FROM scored_swings s
		JOIN pitch_events p ON p.game_pk = s.game_pk
			AND p.at_bat_number = s.at_bat_number
			AND p.pitch_number = s.pitch_number
		WHERE s.game_date = ?
		ORDER BY s.rank ASC
	`, date)
	if err != nil {
		return nil, fmt.Errorf("query scored swings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sw model.ScoredSwing
		p := &model.PitchEvent{}
		var playID sql.NullString
		err := rows.Scan(&sw.RawMetric, &sw.UniversalScore, &sw.DailyScore, &sw.Rank,
			&p.GamePK, &p.AtBatNumber, &p.PitchNumber, &p.GameDate, &p.Inning,
			&p.Outcome, &p.AtBatEnd, &p.BatSpeed, &p.SwingPathTilt, &p.InterceptOffset,
			&p.PlateX, &p.PlateZ, &p.ZoneTop, &p.ZoneBottom, &playID,
			&p.PitcherName, &p.BatterName, &p.PitchType)
		if err != nil {
			return nil, fmt.Errorf("scan scored swing: %w", err)
		}
		p.PlayID = playID.String
		sw.Pitch = p
		set.Swings = append(set.Swings, sw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scored swings: %w", err)
	}
	return set, nil
}

// InvalidateResultSet removes a date's cached ranking and swings.
func (s *SQLiteStore) InvalidateResultSet(ctx context.Context, date string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin invalidate: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, `DELETE FROM scored_swings WHERE game_date = ?`, date); err != nil {
		return fmt.Errorf("delete scored swings: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM query_results WHERE game_date = ?`, date); err != nil {
		return fmt.Errorf("delete query result: %w", err)
	}
	return tx.Commit()
}

// UpsertVideoAsset writes a video asset keyed by identifier.
func (s *SQLiteStore) UpsertVideoAsset(ctx context.Context, asset *model.VideoAsset) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO video_assets (identifier, page_url, media_url, local_path, byte_size, state)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(identifier) DO UPDATE SET
			page_url = excluded.page_url,
			media_url = excluded.media_url,
			local_path = excluded.local_path,
			byte_size = excluded.byte_size,
			state = excluded.state
	`, asset.Identifier, asset.PageURL, asset.MediaURL, asset.LocalPath, asset.ByteSize, string(asset.State))
	if err != nil {
		return fmt.Errorf("upsert video asset: %w", err)
	}
	return nil
}

// VideoAsset loads a video asset by identifier.
func (s *SQLiteStore) VideoAsset(ctx context.Context, identifier string) (*model.VideoAsset, error) {
	a := &model.VideoAsset{Identifier: identifier}
	var state string
	err := s.db.QueryRowContext(ctx, `
		SELECT page_url, media_url, local_path, byte_size, state
		FROM video_assets WHERE identifier = ?
	`, identifier).Scan(&a.PageURL, &a.MediaURL, &a.LocalPath, &a.ByteSize, &state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query video asset: %w", err)
	}
	a.State = model.VideoAssetState(state)
	return a, nil
}

// ApplyPatch applies fill-if-null updates for a batch inside one transaction.
func (s *SQLiteStore) ApplyPatch(ctx context.Context, batch []PatchRecord) (int, error) {
	defer trackLatency(time.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin patch: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE pitch_events SET
			plate_x = COALESCE(plate_x, ?),
			plate_z = COALESCE(plate_z, ?),
			zone_top = COALESCE(zone_top, ?),
			zone_bottom = COALESCE(zone_bottom, ?),
			pitch_type = COALESCE(NULLIF(pitch_type, ''), ?),
			pitcher_name = COALESCE(NULLIF(pitcher_name, ''), ?),
			batter_name = COALESCE(NULLIF(batter_name, ''), ?),
			play_id = COALESCE(play_id, ?)
		WHERE game_pk = ? AND at_bat_number = ? AND pitch_number = ?
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare patch: %w", err)
	}
	defer stmt.Close()

	updated := 0
	for _, r := range batch {
		res, err := stmt.ExecContext(ctx,
			r.PlateX, r.PlateZ, r.ZoneTop, r.ZoneBottom,
			r.PitchType, r.PitcherName, r.BatterName, r.PlayID,
			r.Key.GamePK, r.Key.AtBatNumber, r.Key.PitchNumber)
		if err != nil {
			return 0, fmt.Errorf("apply patch row: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			updated += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit patch: %w", err)
	}
	return updated, nil
}

// Stats returns row counts for monitoring.
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	row := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM pitch_events),
			(SELECT COUNT(*) FROM scored_swings),
			(SELECT COUNT(*) FROM query_results WHERE completed),
			(SELECT COUNT(*) FROM video_assets WHERE state IN ('resolved', 'downloaded')),
			(SELECT COUNT(*) FROM video_assets WHERE state = 'downloaded'),
			(SELECT COALESCE(SUM(byte_size), 0) FROM video_assets WHERE state = 'downloaded')
	`)
	if err := row.Scan(&st.PitchEvents, &st.ScoredSwings, &st.CompletedDates,
		&st.VideosResolved, &st.VideosDownloaded, &st.VideoBytes); err != nil {
		return Stats{}, fmt.Errorf("query stats: %w", err)
	}
	return st, nil
}

func scanPitchEvents(rows *sql.Rows) ([]*model.PitchEvent, error) {
	var events []*model.PitchEvent
	for rows.Next() {
		p := &model.PitchEvent{}
		var playID sql.NullString
		err := rows.Scan(&p.GamePK, &p.AtBatNumber, &p.PitchNumber, &p.GameDate, &p.Inning,
			&p.Outcome, &p.AtBatEnd, &p.BatSpeed, &p.SwingPathTilt, &p.InterceptOffset,
			&p.PlateX, &p.PlateZ, &p.ZoneTop, &p.ZoneBottom, &playID,
			&p.PitcherName, &p.BatterName, &p.PitchType)
		if err != nil {
			return nil, fmt.Errorf("scan pitch event: %w", err)
		}
		p.PlayID = playID.String
		events = append(events, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pitch events: %w", err)
	}
	return events, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func trackLatency(start time.Time) {
	metrics.RecordRepositoryLatency(float64(time.Since(start).Milliseconds()))
}
