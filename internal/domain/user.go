package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletOnlyPassword es el valor centinela de password_hash para cuentas
// que solo autentican con firma de wallet.
const WalletOnlyPassword = "wallet_auth"

// Roles de usuario.
const (
	RoleShopper  = "shopper"
	RoleMerchant = "merchant"
	RoleAdmin    = "admin"
)

type User struct {
	ID              string          `json:"id"`
	Email           string          `json:"email,omitempty"`
	DisplayName     string          `json:"display_name,omitempty"`
	PasswordHash    string          `json:"-"`
	WalletAddress   string          `json:"wallet_address,omitempty"`
	AuthNonce       *string         `json:"-"`
	Role            string          `json:"role"`
	Balance         decimal.Decimal `json:"balance"`
	StakedBalance   decimal.Decimal `json:"staked_balance"`
	CashbackBalance decimal.Decimal `json:"cashback_balance"`
	CreatedAt       time.Time       `json:"created_at"`
}

// IsWalletOnly indica si la cuenta no tiene password utilizable.
func (u User) IsWalletOnly() bool {
	return u.PasswordHash == WalletOnlyPassword
}
