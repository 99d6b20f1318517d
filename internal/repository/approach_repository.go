package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"neo-platform/internal/dates"
	"neo-platform/internal/filters"
	"neo-platform/internal/models"
	"neo-platform/pkg/database"
	"neo-platform/pkg/logging"
	"neo-platform/pkg/metrics"
)

// ApproachRepository provides data access for the linked NEO catalog
type ApproachRepository interface {
	// Write operations
	SaveCatalog(ctx context.Context, catalog *models.Catalog) (*SaveResult, error)

	// Read operations
	ListApproaches(ctx context.Context, filter ApproachFilter) (*ApproachPage, error)
	GetNEO(ctx context.Context, designation string) (*NEOView, error)

	// Utility operations
	HealthCheck(ctx context.Context) error
}

// ApproachFilter defines filters for querying close approaches
type ApproachFilter struct {
	filters.Criteria
	Limit  int
	Offset int
}

// SaveResult reports how many rows a catalog save touched
type SaveResult struct {
	NEOs       int
	Approaches int
	Duration   time.Duration
}

// ApproachPage is one page of approaches, linked into a catalog built from the returned rows
type ApproachPage struct {
	Catalog    *models.Catalog
	Approaches []*models.CloseApproach
	Total      int
}

// NEOView is a stored object with every approach recorded for it
type NEOView struct {
	Catalog    *models.Catalog
	NEO        *models.NearEarthObject
	Approaches []*models.CloseApproach
}

// neoRow maps the neos table; unknown values are NULL
type neoRow struct {
	Designation string   `db:"designation"`
	Name        *string  `db:"name"`
	DiameterKm  *float64 `db:"diameter_km"`
	Hazardous   bool     `db:"hazardous"`
}

// approachRow is a close approach joined with its object
type approachRow struct {
	ID           int64     `db:"id"`
	Designation  string    `db:"designation"`
	ApproachTime time.Time `db:"approach_time"`
	DistanceAU   *float64  `db:"distance_au"`
	VelocityKmS  *float64  `db:"velocity_km_s"`
	Name         *string   `db:"name"`
	DiameterKm   *float64  `db:"diameter_km"`
	Hazardous    bool      `db:"hazardous"`
}

const upsertNEO = `
	INSERT INTO neos (designation, name, diameter_km, hazardous, updated_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (designation) DO UPDATE SET
		name = EXCLUDED.name,
		diameter_km = EXCLUDED.diameter_km,
		hazardous = EXCLUDED.hazardous,
		updated_at = EXCLUDED.updated_at
`

const upsertApproach = `
	INSERT INTO close_approaches (designation, approach_time, distance_au, velocity_km_s)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (designation, approach_time) DO UPDATE SET
		distance_au = EXCLUDED.distance_au,
		velocity_km_s = EXCLUDED.velocity_km_s
`

const selectApproaches = `
	SELECT ca.id, ca.designation, ca.approach_time, ca.distance_au, ca.velocity_km_s,
	       n.name, n.diameter_km, n.hazardous
	FROM close_approaches ca
	JOIN neos n ON n.designation = ca.designation
	WHERE 1=1
`

// approachRepository implements ApproachRepository
type approachRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewApproachRepository creates a new approach repository
func NewApproachRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) ApproachRepository {
	return &approachRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// SaveCatalog upserts every object and close approach of a linked catalog in a single transaction
func (r *approachRepository) SaveCatalog(ctx context.Context, catalog *models.Catalog) (*SaveResult, error) {
	neos := catalog.NEOs()
	approaches := catalog.Approaches()
	start := time.Now()

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	neoStmt, err := tx.PrepareContext(ctx, upsertNEO)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare neo statement: %w", err)
	}
	defer neoStmt.Close()

	now := time.Now().UTC()
	for _, neo := range neos {
		row := toNEORow(neo)
		if _, err := neoStmt.ExecContext(ctx, row.Designation, row.Name, row.DiameterKm, row.Hazardous, now); err != nil {
			r.metrics.RecordDBError("insert_neo")
			return nil, fmt.Errorf("failed to insert neo %s: %w", row.Designation, err)
		}
	}

	approachStmt, err := tx.PrepareContext(ctx, upsertApproach)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare approach statement: %w", err)
	}
	defer approachStmt.Close()

	for _, ca := range approaches {
		_, err := approachStmt.ExecContext(ctx,
			ca.Designation(),
			ca.Time(),
			models.Float(ca.Distance()).Ptr(),
			models.Float(ca.Velocity()).Ptr(),
		)
		if err != nil {
			r.metrics.RecordDBError("insert_approach")
			return nil, fmt.Errorf("failed to insert approach of %s at %s: %w", ca.Designation(), ca.TimeStr(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	result := &SaveResult{
		NEOs:       len(neos),
		Approaches: len(approaches),
		Duration:   time.Since(start),
	}
	r.metrics.IngestBatchSize.Observe(float64(len(neos) + len(approaches)))

	r.logger.Debug(ctx, "[REPO_SAVE_CATALOG] Catalog saved", logging.Fields{
		"neos":        result.NEOs,
		"approaches":  result.Approaches,
		"duration_ms": result.Duration.Milliseconds(),
	})

	return result, nil
}

// ListApproaches retrieves close approaches in load order with filtering and pagination
func (r *approachRepository) ListApproaches(ctx context.Context, filter ApproachFilter) (*ApproachPage, error) {
	query, args := buildApproachQuery(filter.Criteria)

	countQuery := "SELECT COUNT(*) FROM (" + query + ") AS count_query"
	var total int
	if err := r.db.GetContext(ctx, "count_approaches", &total, countQuery, args...); err != nil {
		return nil, fmt.Errorf("failed to count approaches: %w", err)
	}

	query += " ORDER BY ca.id"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", len(args)+1)
		args = append(args, filter.Offset)
	}

	var rows []approachRow
	if err := r.db.SelectContext(ctx, "list_approaches", &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list approaches: %w", err)
	}

	catalog, err := assembleCatalog(nil, rows)
	if err != nil {
		return nil, err
	}

	return &ApproachPage{
		Catalog:    catalog,
		Approaches: catalog.Approaches(),
		Total:      total,
	}, nil
}

// GetNEO retrieves an object by designation together with all of its approaches
func (r *approachRepository) GetNEO(ctx context.Context, designation string) (*NEOView, error) {
	var row neoRow
	err := r.db.GetContext(ctx, "get_neo", &row,
		`SELECT designation, name, diameter_km, hazardous FROM neos WHERE designation = $1`, designation)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{
			Resource: "neo",
			ID:       designation,
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get neo: %w", err)
	}

	var rows []approachRow
	err = r.db.SelectContext(ctx, "get_neo_approaches", &rows,
		selectApproaches+" AND ca.designation = $1 ORDER BY ca.id", designation)
	if err != nil {
		return nil, fmt.Errorf("failed to get approaches of %s: %w", designation, err)
	}

	catalog, err := assembleCatalog([]neoRow{row}, rows)
	if err != nil {
		return nil, err
	}
	neo, _ := catalog.NEOByDesignation(row.Designation)

	return &NEOView{
		Catalog:    catalog,
		NEO:        neo,
		Approaches: catalog.ApproachesOf(neo),
	}, nil
}

// HealthCheck performs a repository health check
func (r *approachRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// buildApproachQuery translates query criteria into SQL predicates over selectApproaches
// NULL columns never satisfy a bound, the same as unknown values in memory
func buildApproachQuery(c filters.Criteria) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString(selectApproaches)
	args := []interface{}{}

	add := func(predicate string, v interface{}) {
		args = append(args, v)
		fmt.Fprintf(&sb, " AND "+predicate, len(args))
	}

	if c.Date != nil {
		day := dates.Day(*c.Date)
		add("ca.approach_time >= $%d", day)
		add("ca.approach_time < $%d", day.AddDate(0, 0, 1))
	}
	if c.StartDate != nil {
		add("ca.approach_time >= $%d", dates.Day(*c.StartDate))
	}
	if c.EndDate != nil {
		add("ca.approach_time < $%d", dates.Day(*c.EndDate).AddDate(0, 0, 1))
	}
	if c.DistanceMin != nil {
		add("ca.distance_au >= $%d", *c.DistanceMin)
	}
	if c.DistanceMax != nil {
		add("ca.distance_au <= $%d", *c.DistanceMax)
	}
	if c.VelocityMin != nil {
		add("ca.velocity_km_s >= $%d", *c.VelocityMin)
	}
	if c.VelocityMax != nil {
		add("ca.velocity_km_s <= $%d", *c.VelocityMax)
	}
	if c.DiameterMin != nil {
		add("n.diameter_km >= $%d", *c.DiameterMin)
	}
	if c.DiameterMax != nil {
		add("n.diameter_km <= $%d", *c.DiameterMax)
	}
	if c.Hazardous != nil {
		add("n.hazardous = $%d", *c.Hazardous)
	}

	return sb.String(), args
}

// assembleCatalog rebuilds and links entities from stored rows
// Objects come from neos first, then from the joined approach rows in order of first appearance
func assembleCatalog(neos []neoRow, rows []approachRow) (*models.Catalog, error) {
	seen := make(map[string]bool, len(neos)+len(rows))
	objects := make([]*models.NearEarthObject, 0, len(neos)+len(rows))

	addNEO := func(row neoRow) error {
		if seen[row.Designation] {
			return nil
		}
		seen[row.Designation] = true
		neo, err := models.RestoreNearEarthObject(row.Designation, row.Name, row.DiameterKm, row.Hazardous)
		if err != nil {
			return fmt.Errorf("invalid stored neo: %w", err)
		}
		objects = append(objects, neo)
		return nil
	}

	for _, row := range neos {
		if err := addNEO(row); err != nil {
			return nil, err
		}
	}

	approaches := make([]*models.CloseApproach, 0, len(rows))
	for _, row := range rows {
		err := addNEO(neoRow{
			Designation: row.Designation,
			Name:        row.Name,
			DiameterKm:  row.DiameterKm,
			Hazardous:   row.Hazardous,
		})
		if err != nil {
			return nil, err
		}
		ca, err := models.RestoreCloseApproach(row.Designation, row.ApproachTime, row.DistanceAU, row.VelocityKmS)
		if err != nil {
			return nil, fmt.Errorf("invalid stored approach %d: %w", row.ID, err)
		}
		approaches = append(approaches, ca)
	}

	catalog, err := models.NewCatalog(objects, approaches)
	if err != nil {
		return nil, fmt.Errorf("failed to link stored approaches: %w", err)
	}
	return catalog, nil
}

func toNEORow(neo *models.NearEarthObject) neoRow {
	row := neoRow{
		Designation: neo.Designation(),
		DiameterKm:  models.Float(neo.Diameter()).Ptr(),
		Hazardous:   neo.Hazardous(),
	}
	if name, ok := neo.Name(); ok {
		row.Name = &name
	}
	return row
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) IsTransient() bool {
	return false
}
