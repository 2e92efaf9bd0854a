package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zephyrlab/weatherhub/internal/models"
)

// Store wraps database access helpers on a shared connection pool. The
// pool lives for the process lifetime; no operation opens its own
// connection.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store backed by a pgx pool.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS temperature_readings (
		id BIGSERIAL PRIMARY KEY,
		station_id TEXT NOT NULL,
		sensor_id TEXT NOT NULL,
		value DOUBLE PRECISION NOT NULL,
		ts TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS humidity_readings (
		id BIGSERIAL PRIMARY KEY,
		station_id TEXT NOT NULL,
		sensor_id TEXT NOT NULL,
		value DOUBLE PRECISION NOT NULL,
		ts TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS temperature_readings_station_ts_idx
		ON temperature_readings (station_id, ts)`,
	`CREATE INDEX IF NOT EXISTS humidity_readings_station_ts_idx
		ON humidity_readings (station_id, ts)`,
}

// EnsureSchema creates the series tables and indexes if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// tableFor maps a metric kind to its series table. Kinds are stored
// separately so bulk writes stay independent failure units.
func tableFor(kind models.MetricKind) (string, error) {
	switch kind {
	case models.KindTemperature:
		return "temperature_readings", nil
	case models.KindHumidity:
		return "humidity_readings", nil
	default:
		return "", fmt.Errorf("unknown metric kind %q", kind)
	}
}

// InsertReadings bulk-loads one kind's rows and reports how many were
// stored. The load is all-or-nothing per call. Every row receives its
// own synthetic id, so a re-delivered reading inserts as a new row.
func (s *Store) InsertReadings(ctx context.Context, kind models.MetricKind, rows []models.Reading) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	table, err := tableFor(kind)
	if err != nil {
		return 0, err
	}

	copied, err := s.pool.CopyFrom(
		ctx,
		pgx.Identifier{table},
		[]string{"station_id", "sensor_id", "value", "ts"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			ts, err := models.ParseTime(rows[i].Timestamp)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			return []any{rows[i].StationID, rows[i].SensorID, rows[i].Value, ts}, nil
		}),
	)
	if err != nil {
		return 0, err
	}
	return int(copied), nil
}

// Row is one stored measurement.
type Row struct {
	StationID string
	SensorID  string
	Value     float64
	Timestamp time.Time
}

// Filter narrows a series query. An empty Station matches every
// station; nil bounds leave that side of the range open. Bounds are
// inclusive.
type Filter struct {
	Station string
	From    *time.Time
	To      *time.Time
}

// buildSeriesQuery assembles the SQL and args for one kind's series
// scan, ordered ascending by timestamp.
func buildSeriesQuery(table string, f Filter) (string, []any) {
	sql := "SELECT station_id, sensor_id, value, ts FROM " + table
	var conds []string
	var args []any
	if f.Station != "" {
		args = append(args, f.Station)
		conds = append(conds, "station_id = $"+strconv.Itoa(len(args)))
	}
	if f.From != nil {
		args = append(args, *f.From)
		conds = append(conds, "ts >= $"+strconv.Itoa(len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		conds = append(conds, "ts <= $"+strconv.Itoa(len(args)))
	}
	if len(conds) > 0 {
		sql += " WHERE " + strings.Join(conds, " AND ")
	}
	sql += " ORDER BY ts, id"
	return sql, args
}

// QueryReadings returns one kind's rows matching the filter.
func (s *Store) QueryReadings(ctx context.Context, kind models.MetricKind, f Filter) ([]Row, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	sql, args := buildSeriesQuery(table, f)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Row, 0)
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.StationID, &r.SensorID, &r.Value, &r.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const stationsSQL = `
    SELECT station_id FROM temperature_readings
    UNION
    SELECT station_id FROM humidity_readings
    ORDER BY station_id
`

// Stations lists every station id present in either series.
func (s *Store) Stations(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, stationsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stations := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		stations = append(stations, id)
	}
	return stations, rows.Err()
}

// DeleteOlderThan prunes rows timestamped before the cutoff from both
// series and returns per-kind deleted counts.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (map[models.MetricKind]int64, error) {
	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM temperature_readings WHERE ts < $1`, cutoff)
	batch.Queue(`DELETE FROM humidity_readings WHERE ts < $1`, cutoff)

	res := s.pool.SendBatch(ctx, batch)
	defer res.Close()

	deleted := make(map[models.MetricKind]int64, 2)
	for _, kind := range models.Kinds() {
		tag, err := res.Exec()
		if err != nil {
			return deleted, err
		}
		deleted[kind] = tag.RowsAffected()
	}
	return deleted, nil
}
