package domain

import "time"

// TypeProduit is a product category managed from the back office.
type TypeProduit struct {
	ID             string     `json:"_id,omitempty"`
	NomTypeProduit string     `json:"nomTypeProduit"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
}
