package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scamguard/support-service/internal/domain"
)

// EscalationLevel selects which one-way escalation flag a sweep promotes.
type EscalationLevel string

const (
	EscalationLevelAdmin      EscalationLevel = "admin"
	EscalationLevelSuperAdmin EscalationLevel = "super_admin"
)

// EscalatedTicket identifies a ticket promoted by an escalation sweep.
type EscalatedTicket struct {
	ID            string
	TicketNumber  string
	CustomerEmail string
}

// TicketFilter captures listing parameters.
type TicketFilter struct {
	Statuses    []domain.TicketStatus
	Source      *domain.TicketSource
	AssignedTo  *string
	Escalated   *bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByNumber(ctx context.Context, ticketNumber string) (*domain.Ticket, error)
	FindLatestOpenByPhone(ctx context.Context, phone string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	EscalateOverdue(ctx context.Context, level EscalationLevel, cutoff time.Time, reason string) ([]EscalatedTicket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, ticket_number, customer_email, customer_name, customer_phone,
               subject, body, source, status, priority, category, assigned_to,
               auto_response_used, auto_response_template_id,
               escalated_to_admin, escalated_to_super_admin, escalation_reason,
               created_at, updated_at, first_response_at, resolved_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	if r.pool == nil {
		return ErrUnavailable
	}
	const query = `
        INSERT INTO tickets (ticket_number, customer_email, customer_name, customer_phone,
            subject, body, source, status, priority, category, assigned_to)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.TicketNumber,
		ticket.CustomerEmail,
		ticket.CustomerName,
		ticket.CustomerPhone,
		ticket.Subject,
		ticket.Body,
		ticket.Source,
		ticket.Status,
		ticket.Priority,
		ticket.Category,
		ticket.AssignedTo,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	if r.pool == nil {
		return ErrUnavailable
	}
	const query = `
        UPDATE tickets SET status=$1, priority=$2, category=$3, assigned_to=$4,
            auto_response_used=$5, auto_response_template_id=$6,
            first_response_at=$7, resolved_at=$8, updated_at=NOW()
        WHERE id=$9`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Status,
		ticket.Priority,
		ticket.Category,
		ticket.AssignedTo,
		ticket.AutoResponseUsed,
		ticket.AutoResponseTemplateID,
		ticket.FirstResponseAt,
		ticket.ResolvedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByNumber(ctx context.Context, ticketNumber string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE ticket_number=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, ticketNumber)
}

// FindLatestOpenByPhone returns the most recently created non-closed ticket
// for a phone number, used to thread inbound WhatsApp messages.
func (r *ticketRepository) FindLatestOpenByPhone(ctx context.Context, phone string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM tickets
        WHERE customer_phone=$1 AND status <> $2
        ORDER BY created_at DESC
        LIMIT 1`, ticketColumns)
	return r.fetchSingle(ctx, query, phone, domain.TicketStatusClosed)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Ticket, error) {
	if r.pool == nil {
		return nil, ErrUnavailable
	}
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, args...).Scan(scanTargets(&ticket)...); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	if r.pool == nil {
		return nil, ErrUnavailable
	}
	base := fmt.Sprintf(`SELECT %s FROM tickets`, ticketColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Source != nil {
		args = append(args, *filter.Source)
		clauses = append(clauses, fmt.Sprintf("source=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if filter.Escalated != nil {
		if *filter.Escalated {
			clauses = append(clauses, "(escalated_to_admin OR escalated_to_super_admin)")
		} else {
			clauses = append(clauses, "NOT escalated_to_admin AND NOT escalated_to_super_admin")
		}
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// EscalateOverdue promotes unresolved tickets created before cutoff through
// one escalation tier. It only touches the escalation flag, reason and
// updated_at; flags are one-way and never reset.
func (r *ticketRepository) EscalateOverdue(ctx context.Context, level EscalationLevel, cutoff time.Time, reason string) ([]EscalatedTicket, error) {
	if r.pool == nil {
		return nil, ErrUnavailable
	}
	flag := "escalated_to_admin"
	if level == EscalationLevelSuperAdmin {
		flag = "escalated_to_super_admin"
	}
	query := fmt.Sprintf(`
        UPDATE tickets
        SET %s=TRUE, escalation_reason=$1, updated_at=NOW()
        WHERE status IN ($2,$3) AND created_at < $4 AND NOT %s
        RETURNING id, ticket_number, customer_email`, flag, flag)

	rows, err := r.pool.Query(ctx, query, reason, domain.TicketStatusOpen, domain.TicketStatusInProgress, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []EscalatedTicket
	for rows.Next() {
		var t EscalatedTicket
		if err := rows.Scan(&t.ID, &t.TicketNumber, &t.CustomerEmail); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func scanTargets(ticket *domain.Ticket) []any {
	return []any{
		&ticket.ID,
		&ticket.TicketNumber,
		&ticket.CustomerEmail,
		&ticket.CustomerName,
		&ticket.CustomerPhone,
		&ticket.Subject,
		&ticket.Body,
		&ticket.Source,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Category,
		&ticket.AssignedTo,
		&ticket.AutoResponseUsed,
		&ticket.AutoResponseTemplateID,
		&ticket.EscalatedToAdmin,
		&ticket.EscalatedToSuperAdmin,
		&ticket.EscalationReason,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.FirstResponseAt,
		&ticket.ResolvedAt,
	}
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(scanTargets(&ticket)...); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
