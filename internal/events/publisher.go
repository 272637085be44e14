package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// Tópicos publicados por el servicio.
const (
	TopicLogin      = "taic.auth.login"
	TopicUnstaked   = "taic.staking.unstaked"
	TopicBulkImport = "taic.catalog.bulk_import"
)

// Publisher publica eventos de dominio para consumidores externos.
type Publisher interface {
	PublishLogin(ctx context.Context, userID, walletAddress, method string) error
	PublishUnstaked(ctx context.Context, userID, stakeID, amount string) error
	PublishBulkImport(ctx context.Context, merchantID, importID string, created, failed int) error
}

// LoginEvent se emite en cada autenticación exitosa.
type LoginEvent struct {
	UserID        string    `json:"user_id"`
	WalletAddress string    `json:"wallet_address,omitempty"`
	Method        string    `json:"method"`
	At            time.Time `json:"at"`
}

// UnstakedEvent se emite al completar un unstake.
type UnstakedEvent struct {
	UserID  string    `json:"user_id"`
	StakeID string    `json:"stake_id"`
	Amount  string    `json:"amount"`
	At      time.Time `json:"at"`
}

// BulkImportEvent se emite al finalizar un import masivo de productos.
type BulkImportEvent struct {
	MerchantID string    `json:"merchant_id"`
	ImportID   string    `json:"import_id"`
	Created    int       `json:"created"`
	Failed     int       `json:"failed"`
	At         time.Time `json:"at"`
}

// WatermillPublisher implementa Publisher sobre un message.Publisher.
type WatermillPublisher struct {
	publisher message.Publisher
}

func NewWatermillPublisher(publisher message.Publisher) *WatermillPublisher {
	return &WatermillPublisher{publisher: publisher}
}

func (p *WatermillPublisher) PublishLogin(_ context.Context, userID, walletAddress, method string) error {
	return p.publish(TopicLogin, LoginEvent{
		UserID:        userID,
		WalletAddress: walletAddress,
		Method:        method,
		At:            time.Now().UTC(),
	})
}

func (p *WatermillPublisher) PublishUnstaked(_ context.Context, userID, stakeID, amount string) error {
	return p.publish(TopicUnstaked, UnstakedEvent{
		UserID:  userID,
		StakeID: stakeID,
		Amount:  amount,
		At:      time.Now().UTC(),
	})
}

func (p *WatermillPublisher) PublishBulkImport(_ context.Context, merchantID, importID string, created, failed int) error {
	return p.publish(TopicBulkImport, BulkImportEvent{
		MerchantID: merchantID,
		ImportID:   importID,
		Created:    created,
		Failed:     failed,
		At:         time.Now().UTC(),
	})
}

func (p *WatermillPublisher) publish(topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	return nil
}

// DisabledPublisher descarta eventos cuando no hay broker configurado.
type DisabledPublisher struct{}

func NewDisabledPublisher() *DisabledPublisher {
	return &DisabledPublisher{}
}

func (*DisabledPublisher) PublishLogin(context.Context, string, string, string) error { return nil }

func (*DisabledPublisher) PublishUnstaked(context.Context, string, string, string) error {
	return nil
}

func (*DisabledPublisher) PublishBulkImport(context.Context, string, string, int, int) error {
	return nil
}
