package database

import (
	"context"
	"database/sql"

	"github.com/xavierca1/leadstream/internal/entity"
)

// Tolerância de orçamento no matching: lead com budget 2.3M ainda
// casa com projeto de faixa 2.4M–3M.
const budgetTolerance = 200_000

type ProjectRepository struct {
	DB *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{DB: db}
}

func (r *ProjectRepository) FindMatching(ctx context.Context, lead *entity.Lead) ([]*entity.Project, error) {
	query := `
		SELECT id, name, location, property_type, min_price, max_price,
		       min_bedrooms, max_bedrooms, created_at
		FROM projects
		WHERE location ILIKE '%' || $1 || '%'
		  AND property_type ILIKE '%' || $2 || '%'
		  AND min_price <= $3 + $5
		  AND max_price >= $3 - $5
		  AND min_bedrooms <= $4
		  AND max_bedrooms >= $4
	`
	rows, err := r.DB.QueryContext(
		ctx,
		query,
		lead.Location,
		lead.PropertyType,
		lead.Budget,
		lead.Bedrooms,
		budgetTolerance,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*entity.Project
	for rows.Next() {
		p := &entity.Project{}
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Location,
			&p.PropertyType,
			&p.MinPrice,
			&p.MaxPrice,
			&p.MinBedrooms,
			&p.MaxBedrooms,
			&p.CreatedAt,
		); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}
