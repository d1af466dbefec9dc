package response

import (
	"time"

	"agrly/internal/data/entity"
)

type RentHistoryResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ApartmentID string    `json:"apartment_id"`
	BookingID   string    `json:"booking_id"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func RentHistoryToResponse(h *entity.RentHistory) RentHistoryResponse {
	return RentHistoryResponse{
		ID:          h.ID.String(),
		UserID:      h.UserID.String(),
		ApartmentID: h.ApartmentID.String(),
		BookingID:   h.BookingID.String(),
		StartDate:   h.StartDate.Format(dateLayout),
		EndDate:     h.EndDate.Format(dateLayout),
		Status:      h.Status,
		CreatedAt:   h.CreatedAt,
	}
}
