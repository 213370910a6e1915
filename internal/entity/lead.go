package entity

import (
	"context"
	"time"
)

// Lead é o resultado da extração pelo LLM, enriquecido com os projetos
// compatíveis do catálogo.
type Lead struct {
	ID              string    `json:"id,omitempty"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Phone           string    `json:"phone"`
	Location        string    `json:"location"`
	PropertyType    string    `json:"property_type"`
	Bedrooms        int       `json:"bedrooms"`
	Budget          int64     `json:"budget"`
	MatchedProjects []string  `json:"matched_projects,omitempty"`
	TeamID          string    `json:"team_id"`
	CreatedAt       time.Time `json:"created_at"`
}

func (l *Lead) FullName() string {
	if l.FirstName == "" {
		return l.LastName
	}
	if l.LastName == "" {
		return l.FirstName
	}
	return l.FirstName + " " + l.LastName
}

// Project é um item do catálogo de imóveis usado no matching.
type Project struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Location     string    `json:"location"`
	PropertyType string    `json:"property_type"`
	MinPrice     int64     `json:"min_price"`
	MaxPrice     int64     `json:"max_price"`
	MinBedrooms  int       `json:"min_bedrooms"`
	MaxBedrooms  int       `json:"max_bedrooms"`
	CreatedAt    time.Time `json:"created_at"`
}

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) error
}

type ProjectRepositoryInterface interface {

	// FindMatching cruza o lead com o catálogo: localização e tipo por
	// ILIKE, orçamento com tolerância de 200k, quartos dentro da faixa.
	FindMatching(ctx context.Context, lead *Lead) ([]*Project, error)
}
