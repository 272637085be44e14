package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"taic-market/internal/domain"
	"taic-market/internal/events"
	"taic-market/internal/repository"
	"taic-market/internal/wallet"
)

// loginMessagePrefix es la plantilla exacta que firma el cliente. Cambiarla
// invalida todas las firmas en vuelo.
const loginMessagePrefix = "Logging in to TAIC: "

// LoginMessage arma el mensaje a firmar para un nonce dado.
func LoginMessage(nonce string) string {
	return loginMessagePrefix + nonce
}

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrInvalidEmail          = errors.New("invalid email")
	ErrEmailTaken            = errors.New("email already registered")
	ErrInvalidWalletAddress  = errors.New("invalid wallet address")
	ErrChallengeNotRequested = errors.New("no challenge pending")
	ErrSignatureInvalid      = errors.New("signature verification failed")
)

// AuthService coordina autenticación por password y por firma de wallet.
// Política de nonce: un solo uso; se limpia siempre, también cuando la
// verificación falla, forzando un challenge nuevo por intento.
type AuthService struct {
	logger *zap.Logger
	users  repository.UserRepository
	events events.Publisher
}

func NewAuthService(logger *zap.Logger, users repository.UserRepository, publisher events.Publisher) *AuthService {
	if publisher == nil {
		publisher = events.NewDisabledPublisher()
	}
	return &AuthService{
		logger: logger,
		users:  users,
		events: publisher,
	}
}

// Challenge es la respuesta a una solicitud de login con wallet.
type Challenge struct {
	Message string `json:"message"`
	Nonce   string `json:"nonce"`
}

// RequestChallenge genera y persiste un nonce nuevo para la dirección.
// Direcciones desconocidas provisionan una cuenta wallet-only en el acto.
// Un challenge repetido sobreescribe el nonce anterior.
func (s *AuthService) RequestChallenge(ctx context.Context, address string) (Challenge, error) {
	normalized, err := wallet.NormalizeAddress(address)
	if err != nil {
		return Challenge{}, ErrInvalidWalletAddress
	}

	user, err := s.users.GetByWallet(ctx, normalized)
	if errors.Is(err, pgx.ErrNoRows) {
		user, err = s.provisionWalletUser(ctx, normalized)
	}
	if err != nil {
		return Challenge{}, err
	}

	nonce, err := generateNonce()
	if err != nil {
		return Challenge{}, err
	}

	if err := s.users.SetNonce(ctx, user.ID, nonce); err != nil {
		return Challenge{}, err
	}

	return Challenge{
		Message: LoginMessage(nonce),
		Nonce:   nonce,
	}, nil
}

// VerifyWallet comprueba la firma contra el nonce almacenado. El nonce se
// consume antes de emitir el veredicto: una firma válida autentica
// exactamente una vez y un reintento necesita challenge nuevo.
func (s *AuthService) VerifyWallet(ctx context.Context, address, signature string) (domain.User, error) {
	normalized, err := wallet.NormalizeAddress(address)
	if err != nil {
		return domain.User{}, ErrInvalidWalletAddress
	}

	user, err := s.users.GetByWallet(ctx, normalized)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}

	if user.AuthNonce == nil || *user.AuthNonce == "" {
		return domain.User{}, ErrChallengeNotRequested
	}
	message := LoginMessage(*user.AuthNonce)

	if err := s.users.ClearNonce(ctx, user.ID); err != nil {
		return domain.User{}, fmt.Errorf("clear nonce: %w", err)
	}
	user.AuthNonce = nil

	if err := wallet.VerifySignature(message, signature, normalized); err != nil {
		return domain.User{}, ErrSignatureInvalid
	}

	if err := s.events.PublishLogin(ctx, user.ID, normalized, "wallet"); err != nil {
		s.logger.Warn("publish login event failed", zap.Error(err))
	}

	return user, nil
}

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

// Register crea una cuenta con credenciales de email y password.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		return domain.User{}, ErrInvalidEmail
	}
	password := strings.TrimSpace(input.Password)
	if len(password) < 8 {
		return domain.User{}, ErrInvalidCredentials
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.User{}, ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:              uuid.NewString(),
		Email:           email,
		DisplayName:     strings.TrimSpace(input.DisplayName),
		PasswordHash:    string(hashBytes),
		Role:            domain.RoleShopper,
		Balance:         decimal.Zero,
		StakedBalance:   decimal.Zero,
		CashbackBalance: decimal.Zero,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}

	return user, nil
}

// LoginPassword valida credenciales de email y password. Todas las fallas
// devuelven el mismo error genérico para no revelar si la cuenta existe o
// si es wallet-only.
func (s *AuthService) LoginPassword(ctx context.Context, emailAddr, password string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	// Las cuentas wallet-only nunca autentican por password, ni siquiera
	// si el plaintext coincide con el centinela.
	if user.PasswordHash == "" || user.IsWalletOnly() {
		return domain.User{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}

	if err := s.events.PublishLogin(ctx, user.ID, "", "password"); err != nil {
		s.logger.Warn("publish login event failed", zap.Error(err))
	}

	return user, nil
}

// GetUser devuelve el usuario para el id del token.
func (s *AuthService) GetUser(ctx context.Context, id string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, ErrUserNotFound
	}
	return user, err
}

func (s *AuthService) provisionWalletUser(ctx context.Context, address string) (domain.User, error) {
	user := domain.User{
		ID:              uuid.NewString(),
		PasswordHash:    domain.WalletOnlyPassword,
		WalletAddress:   address,
		Role:            domain.RoleShopper,
		Balance:         decimal.Zero,
		StakedBalance:   decimal.Zero,
		CashbackBalance: decimal.Zero,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}
	s.logger.Info("wallet user provisioned", zap.String("address", address))
	return user, nil
}

func generateNonce() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func normalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return ""
	}
	return email
}
