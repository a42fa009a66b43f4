package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scamguard/support-service/internal/domain"
)

// ResponseRepository manages ticket thread responses.
type ResponseRepository interface {
	Create(ctx context.Context, response *domain.TicketResponse) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketResponse, error)
}

type responseRepository struct {
	pool *pgxpool.Pool
}

// NewResponseRepository builds the repository.
func NewResponseRepository(pool *pgxpool.Pool) ResponseRepository {
	return &responseRepository{pool: pool}
}

func (r *responseRepository) Create(ctx context.Context, response *domain.TicketResponse) error {
	if r.pool == nil {
		return ErrUnavailable
	}
	const query = `
        INSERT INTO ticket_responses (ticket_id, sender_type, sender_id, sender_email, sender_phone,
            message, internal_note, channel)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`
	if err := r.pool.QueryRow(ctx, query,
		response.TicketID,
		response.SenderType,
		response.SenderID,
		response.SenderEmail,
		response.SenderPhone,
		response.Message,
		response.InternalNote,
		response.Channel,
	).Scan(&response.ID, &response.CreatedAt); err != nil {
		return err
	}

	for i := range response.Attachments {
		att := &response.Attachments[i]
		att.ResponseID = response.ID
		const attQuery = `
            INSERT INTO ticket_response_attachments (response_id, url, file_name, mime_type)
            VALUES ($1,$2,$3,$4)
            RETURNING id, created_at`
		if err := r.pool.QueryRow(ctx, attQuery,
			att.ResponseID,
			att.URL,
			att.FileName,
			att.MimeType,
		).Scan(&att.ID, &att.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

func (r *responseRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketResponse, error) {
	if r.pool == nil {
		return nil, ErrUnavailable
	}
	const query = `
        SELECT id, ticket_id, sender_type, sender_id, sender_email, sender_phone,
               message, internal_note, channel, created_at
        FROM ticket_responses WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketResponse
	for rows.Next() {
		var resp domain.TicketResponse
		if err := rows.Scan(
			&resp.ID,
			&resp.TicketID,
			&resp.SenderType,
			&resp.SenderID,
			&resp.SenderEmail,
			&resp.SenderPhone,
			&resp.Message,
			&resp.InternalNote,
			&resp.Channel,
			&resp.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, resp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		attachments, err := r.listAttachments(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Attachments = attachments
	}
	return result, nil
}

func (r *responseRepository) listAttachments(ctx context.Context, responseID string) ([]domain.AttachmentReference, error) {
	const query = `
        SELECT id, response_id, url, file_name, mime_type, created_at
        FROM ticket_response_attachments WHERE response_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, responseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AttachmentReference
	for rows.Next() {
		var att domain.AttachmentReference
		if err := rows.Scan(
			&att.ID,
			&att.ResponseID,
			&att.URL,
			&att.FileName,
			&att.MimeType,
			&att.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, att)
	}
	return result, rows.Err()
}
