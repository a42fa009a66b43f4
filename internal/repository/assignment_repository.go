package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scamguard/support-service/internal/domain"
)

// AssignmentRepository persists the append-only assignment audit log.
// Entries are never updated or deleted; each reassignment appends a row.
type AssignmentRepository interface {
	Append(ctx context.Context, assignment *domain.TicketAssignment) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketAssignment, error)
}

type assignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository builds the repository.
func NewAssignmentRepository(pool *pgxpool.Pool) AssignmentRepository {
	return &assignmentRepository{pool: pool}
}

func (r *assignmentRepository) Append(ctx context.Context, assignment *domain.TicketAssignment) error {
	if r.pool == nil {
		return ErrUnavailable
	}
	const query = `
        INSERT INTO ticket_assignments (ticket_id, assigned_to, assigned_by, reason)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		assignment.TicketID,
		assignment.AssignedTo,
		assignment.AssignedBy,
		assignment.Reason,
	).Scan(&assignment.ID, &assignment.CreatedAt)
}

func (r *assignmentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketAssignment, error) {
	if r.pool == nil {
		return nil, ErrUnavailable
	}
	const query = `
        SELECT id, ticket_id, assigned_to, assigned_by, reason, created_at
        FROM ticket_assignments WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketAssignment
	for rows.Next() {
		var entry domain.TicketAssignment
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.AssignedTo,
			&entry.AssignedBy,
			&entry.Reason,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
