package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scamguard/support-service/internal/domain"
)

// TemplateRepository manages auto-response templates.
type TemplateRepository interface {
	Create(ctx context.Context, template *domain.AutoResponseTemplate) error
	Update(ctx context.Context, template *domain.AutoResponseTemplate) error
	GetByID(ctx context.Context, id string) (*domain.AutoResponseTemplate, error)
	List(ctx context.Context, enabledOnly bool) ([]domain.AutoResponseTemplate, error)
	FindEnabledByKeywords(ctx context.Context, tags []string) (*domain.AutoResponseTemplate, error)
	IncrementUsage(ctx context.Context, id string) error
}

type templateRepository struct {
	pool *pgxpool.Pool
}

// NewTemplateRepository builds the repository.
func NewTemplateRepository(pool *pgxpool.Pool) TemplateRepository {
	return &templateRepository{pool: pool}
}

const templateColumns = `id, keyword, body, category, enabled, priority, usage_count, success_rate, created_at, updated_at`

func (r *templateRepository) Create(ctx context.Context, template *domain.AutoResponseTemplate) error {
	if r.pool == nil {
		return ErrUnavailable
	}
	const query = `
        INSERT INTO auto_response_templates (keyword, body, category, enabled, priority)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, usage_count, success_rate, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		template.Keyword,
		template.Body,
		template.Category,
		template.Enabled,
		template.Priority,
	).Scan(&template.ID, &template.UsageCount, &template.SuccessRate, &template.CreatedAt, &template.UpdatedAt)
}

func (r *templateRepository) Update(ctx context.Context, template *domain.AutoResponseTemplate) error {
	if r.pool == nil {
		return ErrUnavailable
	}
	const query = `
        UPDATE auto_response_templates
        SET keyword=$1, body=$2, category=$3, enabled=$4, priority=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		template.Keyword,
		template.Body,
		template.Category,
		template.Enabled,
		template.Priority,
		template.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *templateRepository) GetByID(ctx context.Context, id string) (*domain.AutoResponseTemplate, error) {
	if r.pool == nil {
		return nil, ErrUnavailable
	}
	query := fmt.Sprintf(`SELECT %s FROM auto_response_templates WHERE id=$1`, templateColumns)
	var tpl domain.AutoResponseTemplate
	if err := r.pool.QueryRow(ctx, query, id).Scan(templateScanTargets(&tpl)...); err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *templateRepository) List(ctx context.Context, enabledOnly bool) ([]domain.AutoResponseTemplate, error) {
	if r.pool == nil {
		return nil, ErrUnavailable
	}
	query := fmt.Sprintf(`SELECT %s FROM auto_response_templates`, templateColumns)
	if enabledOnly {
		query += ` WHERE enabled`
	}
	query += ` ORDER BY priority ASC, created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AutoResponseTemplate
	for rows.Next() {
		var tpl domain.AutoResponseTemplate
		if err := rows.Scan(templateScanTargets(&tpl)...); err != nil {
			return nil, err
		}
		result = append(result, tpl)
	}
	return result, rows.Err()
}

// FindEnabledByKeywords returns the best enabled template whose keyword is
// among the extracted tags. Explicit priority then creation time break ties,
// keeping selection deterministic when several templates match.
func (r *templateRepository) FindEnabledByKeywords(ctx context.Context, tags []string) (*domain.AutoResponseTemplate, error) {
	if r.pool == nil {
		return nil, ErrUnavailable
	}
	if len(tags) == 0 {
		return nil, pgx.ErrNoRows
	}
	placeholders := make([]string, len(tags))
	args := make([]any, len(tags))
	for i, tag := range tags {
		args[i] = tag
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(`
        SELECT %s FROM auto_response_templates
        WHERE enabled AND keyword IN (%s)
        ORDER BY priority ASC, created_at ASC
        LIMIT 1`, templateColumns, strings.Join(placeholders, ","))

	var tpl domain.AutoResponseTemplate
	if err := r.pool.QueryRow(ctx, query, args...).Scan(templateScanTargets(&tpl)...); err != nil {
		return nil, err
	}
	return &tpl, nil
}

// IncrementUsage bumps the monotonic usage counter atomically in the store.
func (r *templateRepository) IncrementUsage(ctx context.Context, id string) error {
	if r.pool == nil {
		return ErrUnavailable
	}
	const query = `
        UPDATE auto_response_templates
        SET usage_count = usage_count + 1, updated_at=NOW()
        WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func templateScanTargets(tpl *domain.AutoResponseTemplate) []any {
	return []any{
		&tpl.ID,
		&tpl.Keyword,
		&tpl.Body,
		&tpl.Category,
		&tpl.Enabled,
		&tpl.Priority,
		&tpl.UsageCount,
		&tpl.SuccessRate,
		&tpl.CreatedAt,
		&tpl.UpdatedAt,
	}
}
