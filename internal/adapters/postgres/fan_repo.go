package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/samirrijal/safetyfan/internal/core/domain"
)

// FanRepo implements ports.FanRepository with pgx.
type FanRepo struct {
	db *DB
}

// NewFanRepo creates a new FanRepo.
func NewFanRepo(db *DB) *FanRepo {
	return &FanRepo{db: db}
}

const fanColumns = `id::text, label, mode, solution, ring, d_range_m, d_bearing_deg,
	inner_radius_m, outer_radius_m, left_bearing, right_bearing,
	arc_steps, radial_steps, reach_m, policy, created_at`

// Insert stores a computed fan. The solution and ring are kept as jsonb.
func (r *FanRepo) Insert(ctx context.Context, f *domain.Fan) error {
	solution, err := json.Marshal(f.Solution)
	if err != nil {
		return fmt.Errorf("marshal solution: %w", err)
	}
	ring, err := json.Marshal(f.Polygon.Ring)
	if err != nil {
		return fmt.Errorf("marshal ring: %w", err)
	}

	p := f.Polygon
	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO fans (id, label, mode, solution, ring, d_range_m, d_bearing_deg,
		                  inner_radius_m, outer_radius_m, left_bearing, right_bearing,
		                  arc_steps, radial_steps, point_count, reach_m, policy, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`, f.ID, p.Label, string(p.Mode), solution, ring, p.Correction.DRangeM, p.Correction.DBearingDeg,
		p.InnerRadiusM, p.OuterRadiusM, p.LeftBearingDeg, p.RightBearingDeg,
		p.ArcSteps, p.RadialSteps, len(p.Ring), f.ReachM, f.Policy, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert fan: %w", err)
	}
	return nil
}

// GetByID returns a fan by UUID, or domain.ErrNotFound.
func (r *FanRepo) GetByID(ctx context.Context, id string) (*domain.Fan, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+fanColumns+` FROM fans WHERE id = $1`, id)
	f, err := scanFan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// List returns fans newest first.
func (r *FanRepo) List(ctx context.Context, offset, limit int) ([]domain.Fan, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+fanColumns+`
		FROM fans
		ORDER BY created_at DESC, id
		OFFSET $1 LIMIT $2
	`, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fans []domain.Fan
	for rows.Next() {
		f, err := scanFan(rows)
		if err != nil {
			return nil, err
		}
		fans = append(fans, *f)
	}
	return fans, rows.Err()
}

func (r *FanRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM fans`).Scan(&n)
	return n, err
}

// Delete removes a fan. Deleting a missing fan yields domain.ErrNotFound.
func (r *FanRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM fans WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanFan(row pgx.Row) (*domain.Fan, error) {
	var (
		f        domain.Fan
		mode     string
		solution []byte
		ring     []byte
	)
	p := &f.Polygon
	err := row.Scan(
		&f.ID, &p.Label, &mode, &solution, &ring,
		&p.Correction.DRangeM, &p.Correction.DBearingDeg,
		&p.InnerRadiusM, &p.OuterRadiusM, &p.LeftBearingDeg, &p.RightBearingDeg,
		&p.ArcSteps, &p.RadialSteps, &f.ReachM, &f.Policy, &f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(solution, &f.Solution); err != nil {
		return nil, fmt.Errorf("decode solution of fan %s: %w", f.ID, err)
	}
	if err := json.Unmarshal(ring, &p.Ring); err != nil {
		return nil, fmt.Errorf("decode ring of fan %s: %w", f.ID, err)
	}
	p.Mode = domain.TrajectoryMode(mode)
	f.Bounds = domain.BoundsOf(p.Ring)
	return &f, nil
}
