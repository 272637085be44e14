package domain

import "time"

// Estados de un import masivo de productos.
const (
	ImportStatusCompleted = "completed"
	ImportStatusPartial   = "partial"
	ImportStatusFailed    = "failed"
)

type BulkImport struct {
	ID           string    `json:"id"`
	MerchantID   string    `json:"merchant_id"`
	ObjectKey    string    `json:"object_key,omitempty"`
	RowCount     int       `json:"row_count"`
	CreatedCount int       `json:"created_count"`
	ErrorCount   int       `json:"error_count"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}
