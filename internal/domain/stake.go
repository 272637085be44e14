package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un stake. La única transición válida es active -> unstaked.
const (
	StakeStatusActive   = "active"
	StakeStatusUnstaked = "unstaked"
)

type Stake struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UnstakedAt *time.Time      `json:"unstaked_at,omitempty"`
}
