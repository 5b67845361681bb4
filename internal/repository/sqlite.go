package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	_ "modernc.org/sqlite"

	"github.com/vaibhavx77/rover-app/internal/geo"
	"github.com/vaibhavx77/rover-app/internal/models"
)

type SQLiteDB struct {
	db    *sql.DB
	clock clockwork.Clock
}

func NewSQLiteDB(path string, clock clockwork.Clock) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db:    db,
		clock: clock,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS hazards (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			reporter_id TEXT NOT NULL,
			verifiers TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS journal (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			hazard_id TEXT NOT NULL,
			actor_id TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_hazards_location ON hazards(latitude, longitude);
		CREATE INDEX IF NOT EXISTS idx_journal_hazard_id ON journal(hazard_id);
  	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

func (s *SQLiteDB) Create(ctx context.Context, typ models.HazardType, lat, lng float64, reporterID string) (*models.Hazard, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHazardType, typ)
	}
	if err := geo.ValidateCoordinates(lat, lng); err != nil {
		return nil, fmt.Errorf("%w: (%v, %v)", ErrInvalidLocation, lat, lng)
	}
	if reporterID == "" {
		reporterID = models.AnonymousReporter
	}

	h := &models.Hazard{
		ID:         uuid.NewString(),
		Type:       typ,
		Latitude:   lat,
		Longitude:  lng,
		ReporterID: reporterID,
		Verifiers:  []string{},
		CreatedAt:  s.clock.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO hazards (id, type, latitude, longitude, reporter_id, verifiers, created_at)
		VALUES (?, ?, ?, ?, ?, '[]', ?)`,
		h.ID, string(h.Type), h.Latitude, h.Longitude, h.ReporterID, h.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("error inserting hazard: %w", err)
	}

	return h, nil
}

func (s *SQLiteDB) FindWithinRadius(ctx context.Context, q RadiusQuery) ([]models.Hazard, error) {
	radius := q.RadiusMeters
	if radius <= 0 {
		radius = DefaultRadiusMeters
	}
	limit := q.Limit
	if limit <= 0 || limit > MaxResults {
		limit = MaxResults
	}

	// Bounding-box prefilter in SQL, exact haversine check in Go. The box
	// is derived from the angular radius; longitude widens toward the poles.
	latDelta := radius / geo.EarthRadiusMeters * 180 / math.Pi
	lngDelta := 180.0
	if cosLat := math.Cos(q.Latitude * math.Pi / 180); cosLat > 1e-6 {
		lngDelta = math.Min(180, latDelta/cosLat)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, latitude, longitude, reporter_id, verifiers, created_at
		FROM hazards
		WHERE latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?`,
		q.Latitude-latDelta, q.Latitude+latDelta,
		q.Longitude-lngDelta, q.Longitude+lngDelta,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying hazards: %w", err)
	}
	defer rows.Close()

	var hazards []models.Hazard
	for rows.Next() {
		h, err := scanHazard(rows)
		if err != nil {
			return nil, err
		}
		if geo.DistanceMeters(q.Latitude, q.Longitude, h.Latitude, h.Longitude) > radius {
			continue
		}
		hazards = append(hazards, *h)
		if len(hazards) == limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hazards: %w", err)
	}

	return hazards, nil
}

func (s *SQLiteDB) AddVerifier(ctx context.Context, hazardID, userID string) (*models.Hazard, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT id, type, latitude, longitude, reporter_id, verifiers, created_at
		FROM hazards WHERE id = ?`, hazardID)

	h, err := scanHazard(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, hazardID)
	}
	if err != nil {
		return nil, err
	}

	if !h.VerifiedBy(userID) {
		h.Verifiers = append(h.Verifiers, userID)
		verifiers, err := json.Marshal(h.Verifiers)
		if err != nil {
			return nil, fmt.Errorf("error encoding verifiers: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE hazards SET verifiers = ? WHERE id = ?`, string(verifiers), hazardID); err != nil {
			return nil, fmt.Errorf("error updating verifiers: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing transaction: %w", err)
	}

	return h, nil
}

func (s *SQLiteDB) Delete(ctx context.Context, hazardID, requesterID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var reporterID string
	err = tx.QueryRowContext(ctx, `SELECT reporter_id FROM hazards WHERE id = ?`, hazardID).Scan(&reporterID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: %s", ErrNotFound, hazardID)
	}
	if err != nil {
		return fmt.Errorf("error loading hazard: %w", err)
	}

	if requesterID != reporterID {
		return fmt.Errorf("%w: %s", ErrUnauthorized, requesterID)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM hazards WHERE id = ?`, hazardID); err != nil {
		return fmt.Errorf("error deleting hazard: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteDB) AppendEvent(ctx context.Context, e *models.JournalEntry) error {
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.clock.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO journal (kind, hazard_id, actor_id, created_at)
		VALUES (?, ?, ?, ?)`,
		string(e.Kind), e.HazardID, e.ActorID, createdAt,
	)
	if err != nil {
		return fmt.Errorf("error appending journal entry: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHazard(row rowScanner) (*models.Hazard, error) {
	var (
		h         models.Hazard
		typ       string
		verifiers string
	)
	if err := row.Scan(&h.ID, &typ, &h.Latitude, &h.Longitude, &h.ReporterID, &verifiers, &h.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("error scanning hazard: %w", err)
	}
	h.Type = models.HazardType(typ)

	h.Verifiers = []string{}
	if verifiers != "" {
		if err := json.Unmarshal([]byte(verifiers), &h.Verifiers); err != nil {
			return nil, fmt.Errorf("error decoding verifiers: %w", err)
		}
	}
	if h.Verifiers == nil {
		h.Verifiers = []string{}
	}

	return &h, nil
}
