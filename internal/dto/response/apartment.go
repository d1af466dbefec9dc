package response

import (
	"time"

	"agrly/internal/data/entity"
	"agrly/pkg/money"
)

type ApartmentResponse struct {
	ID            string      `json:"id"`
	OwnerID       string      `json:"owner_id"`
	Title         string      `json:"title"`
	Description   *string     `json:"description,omitempty"`
	Location      *string     `json:"location,omitempty"`
	PricePerNight money.Money `json:"price_per_night"`
	Rating        float64     `json:"rating"`
	IsActive      bool        `json:"is_active"`
	CreatedAt     time.Time   `json:"created_at"`
}

func ApartmentToResponse(a *entity.Apartment) ApartmentResponse {
	return ApartmentResponse{
		ID:            a.ID.String(),
		OwnerID:       a.OwnerID.String(),
		Title:         a.Title,
		Description:   a.Description,
		Location:      a.Location,
		PricePerNight: a.PricePerNight,
		Rating:        a.Rating,
		IsActive:      a.IsActive,
		CreatedAt:     a.CreatedAt,
	}
}
