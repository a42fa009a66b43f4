package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scamguard/support-service/internal/domain"
)

// StaffRepository reads staff records owned by the user directory.
type StaffRepository interface {
	GetByID(ctx context.Context, id string) (*domain.StaffMember, error)
	GetByEmail(ctx context.Context, email string) (*domain.StaffMember, error)
	FindLeastLoaded(ctx context.Context) (*domain.StaffMember, error)
}

type staffRepository struct {
	pool *pgxpool.Pool
}

// NewStaffRepository instantiates the repository.
func NewStaffRepository(pool *pgxpool.Pool) StaffRepository {
	return &staffRepository{pool: pool}
}

func (r *staffRepository) GetByID(ctx context.Context, id string) (*domain.StaffMember, error) {
	const query = `
        SELECT id, name, email, password_hash, department, active_flag, created_at, updated_at
        FROM staff_members WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *staffRepository) GetByEmail(ctx context.Context, email string) (*domain.StaffMember, error) {
	const query = `
        SELECT id, name, email, password_hash, department, active_flag, created_at, updated_at
        FROM staff_members WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

// FindLeastLoaded returns the active support staff member with the fewest
// open or in-progress tickets. Unassigned staff count as zero via the left
// join. Nil (no error) means no support staff exist; callers leave the
// ticket unassigned.
func (r *staffRepository) FindLeastLoaded(ctx context.Context) (*domain.StaffMember, error) {
	if r.pool == nil {
		return nil, ErrUnavailable
	}
	const query = `
        SELECT s.id, s.name, s.email, s.password_hash, s.department, s.active_flag, s.created_at, s.updated_at
        FROM staff_members s
        LEFT JOIN tickets t ON t.assigned_to = s.id AND t.status IN ($1,$2)
        WHERE s.department=$3 AND s.active_flag
        GROUP BY s.id
        ORDER BY COUNT(t.id) ASC, s.created_at ASC
        LIMIT 1`

	var staff domain.StaffMember
	err := r.pool.QueryRow(ctx, query,
		domain.TicketStatusOpen,
		domain.TicketStatusInProgress,
		domain.DepartmentSupport,
	).Scan(staffScanTargets(&staff)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.StaffMember, error) {
	if r.pool == nil {
		return nil, ErrUnavailable
	}
	var staff domain.StaffMember
	if err := r.pool.QueryRow(ctx, query, arg).Scan(staffScanTargets(&staff)...); err != nil {
		return nil, err
	}
	return &staff, nil
}

func staffScanTargets(staff *domain.StaffMember) []any {
	return []any{
		&staff.ID,
		&staff.Name,
		&staff.Email,
		&staff.PasswordHash,
		&staff.Department,
		&staff.Active,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	}
}
