package database

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/xavierca1/leadstream/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}

	query := `
		INSERT INTO leads (id, first_name, last_name, phone, location,
		                   property_type, bedrooms, budget, matched_projects, team_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`
	return r.DB.QueryRowContext(
		ctx,
		query,
		lead.ID,
		nullString(lead.FirstName),
		nullString(lead.LastName),
		nullString(lead.Phone),
		nullString(lead.Location),
		nullString(lead.PropertyType),
		lead.Bedrooms,
		lead.Budget,
		pq.Array(lead.MatchedProjects),
		nullString(lead.TeamID),
	).Scan(&lead.CreatedAt)
}
