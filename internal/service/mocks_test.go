package service

import (
	"context"
	"errors"
	"sync"

	"github.com/RLP0AI/roleplay-ai-app/internal/model"
	"github.com/RLP0AI/roleplay-ai-app/internal/repository"
)

// Common test errors
var (
	errMockDB       = errors.New("mock database error")
	errMockProvider = errors.New("mock provider error")
)

type mockUserRepo struct {
	CreateUserFunc  func(ctx context.Context, u *model.User) error
	GetUserByIDFunc func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserRepo) CreateUser(ctx context.Context, u *model.User) error {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(ctx, u)
	}
	return nil
}

func (m *mockUserRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if m.GetUserByIDFunc != nil {
		return m.GetUserByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}

type mockCharacterRepo struct {
	CreateCharacterFunc      func(ctx context.Context, c *model.Character) error
	GetCharacterByIDFunc     func(ctx context.Context, id string) (*model.Character, error)
	ListCharactersByUserFunc func(ctx context.Context, userID string) ([]model.Character, error)
	UpdateCharacterFunc      func(ctx context.Context, id string, upd repository.CharacterUpdate) (*model.Character, error)
	DeleteCharacterFunc      func(ctx context.Context, id string) error

	CreateCalls int
}

func (m *mockCharacterRepo) CreateCharacter(ctx context.Context, c *model.Character) error {
	m.CreateCalls++
	if m.CreateCharacterFunc != nil {
		return m.CreateCharacterFunc(ctx, c)
	}
	return nil
}

func (m *mockCharacterRepo) GetCharacterByID(ctx context.Context, id string) (*model.Character, error) {
	if m.GetCharacterByIDFunc != nil {
		return m.GetCharacterByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockCharacterRepo) ListCharactersByUser(ctx context.Context, userID string) ([]model.Character, error) {
	if m.ListCharactersByUserFunc != nil {
		return m.ListCharactersByUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockCharacterRepo) UpdateCharacter(ctx context.Context, id string, upd repository.CharacterUpdate) (*model.Character, error) {
	if m.UpdateCharacterFunc != nil {
		return m.UpdateCharacterFunc(ctx, id, upd)
	}
	return nil, repository.ErrNotFound
}

func (m *mockCharacterRepo) DeleteCharacter(ctx context.Context, id string) error {
	if m.DeleteCharacterFunc != nil {
		return m.DeleteCharacterFunc(ctx, id)
	}
	return nil
}

type mockChatRepo struct {
	CreateChatFunc           func(ctx context.Context, c *model.Chat) error
	GetChatByIDFunc          func(ctx context.Context, chatID string) (*model.Chat, error)
	ListChatsByCharacterFunc func(ctx context.Context, userID, characterID string, limit int) ([]model.Chat, error)
	DeleteChatFunc           func(ctx context.Context, chatID string) error
	ListMessagesFunc         func(ctx context.Context, chatID string) ([]model.Message, error)
	AppendExchangeFunc       func(ctx context.Context, chatID string, userMsg, assistantMsg *model.Message) error

	CreateCalls int
	AppendCalls int
}

func (m *mockChatRepo) CreateChat(ctx context.Context, c *model.Chat) error {
	m.CreateCalls++
	if m.CreateChatFunc != nil {
		return m.CreateChatFunc(ctx, c)
	}
	return nil
}

func (m *mockChatRepo) GetChatByID(ctx context.Context, chatID string) (*model.Chat, error) {
	if m.GetChatByIDFunc != nil {
		return m.GetChatByIDFunc(ctx, chatID)
	}
	return nil, repository.ErrNotFound
}

func (m *mockChatRepo) ListChatsByCharacter(ctx context.Context, userID, characterID string, limit int) ([]model.Chat, error) {
	if m.ListChatsByCharacterFunc != nil {
		return m.ListChatsByCharacterFunc(ctx, userID, characterID, limit)
	}
	return nil, nil
}

func (m *mockChatRepo) DeleteChat(ctx context.Context, chatID string) error {
	if m.DeleteChatFunc != nil {
		return m.DeleteChatFunc(ctx, chatID)
	}
	return nil
}

func (m *mockChatRepo) ListMessages(ctx context.Context, chatID string) ([]model.Message, error) {
	if m.ListMessagesFunc != nil {
		return m.ListMessagesFunc(ctx, chatID)
	}
	return nil, nil
}

func (m *mockChatRepo) AppendExchange(ctx context.Context, chatID string, userMsg, assistantMsg *model.Message) error {
	m.AppendCalls++
	if m.AppendExchangeFunc != nil {
		return m.AppendExchangeFunc(ctx, chatID, userMsg, assistantMsg)
	}
	return nil
}

type mockLedgerRepo struct {
	DebitForMessageFunc  func(ctx context.Context, userID string, amount int64, characterID, chatID string) (int64, error)
	ListTransactionsFunc func(ctx context.Context, userID string, limit int) ([]model.Transaction, error)

	DebitCalls int
}

func (m *mockLedgerRepo) DebitForMessage(ctx context.Context, userID string, amount int64, characterID, chatID string) (int64, error) {
	m.DebitCalls++
	if m.DebitForMessageFunc != nil {
		return m.DebitForMessageFunc(ctx, userID, amount, characterID, chatID)
	}
	return 0, nil
}

func (m *mockLedgerRepo) ListTransactions(ctx context.Context, userID string, limit int) ([]model.Transaction, error) {
	if m.ListTransactionsFunc != nil {
		return m.ListTransactionsFunc(ctx, userID, limit)
	}
	return nil, nil
}

type mockPaymentRepo struct {
	CreatePendingFunc     func(ctx context.Context, p *model.Payment) error
	GetByOrderAndUserFunc func(ctx context.Context, orderID, userID string) (*model.Payment, error)
	CompleteAndCreditFunc func(ctx context.Context, payment *model.Payment, gatewayPaymentID, signature string) (int64, error)
	ListByUserFunc        func(ctx context.Context, userID string, limit int) ([]model.Payment, error)

	CompleteCalls int
}

func (m *mockPaymentRepo) CreatePending(ctx context.Context, p *model.Payment) error {
	if m.CreatePendingFunc != nil {
		return m.CreatePendingFunc(ctx, p)
	}
	return nil
}

func (m *mockPaymentRepo) GetByOrderAndUser(ctx context.Context, orderID, userID string) (*model.Payment, error) {
	if m.GetByOrderAndUserFunc != nil {
		return m.GetByOrderAndUserFunc(ctx, orderID, userID)
	}
	return nil, repository.ErrNotFound
}

func (m *mockPaymentRepo) CompleteAndCredit(ctx context.Context, payment *model.Payment, gatewayPaymentID, signature string) (int64, error) {
	m.CompleteCalls++
	if m.CompleteAndCreditFunc != nil {
		return m.CompleteAndCreditFunc(ctx, payment, gatewayPaymentID, signature)
	}
	return 0, nil
}

func (m *mockPaymentRepo) ListByUser(ctx context.Context, userID string, limit int) ([]model.Payment, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID, limit)
	}
	return nil, nil
}

type mockProvider struct {
	CompleteFunc func(ctx context.Context, transcript []ChatMessage, character *model.Character) (string, error)
	StreamFunc   func(ctx context.Context, transcript []ChatMessage, character *model.Character, onDelta func(string) error) (string, error)

	CompleteCalls int
	StreamCalls   int
}

func (m *mockProvider) Complete(ctx context.Context, transcript []ChatMessage, character *model.Character) (string, error) {
	m.CompleteCalls++
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, transcript, character)
	}
	return "mock reply", nil
}

func (m *mockProvider) Stream(ctx context.Context, transcript []ChatMessage, character *model.Character, onDelta func(string) error) (string, error) {
	m.StreamCalls++
	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, transcript, character, onDelta)
	}
	return "mock reply", nil
}

type mockGateway struct {
	CreateOrderFunc func(ctx context.Context, amount float64) (*GatewayOrder, error)

	CreateCalls int
}

func (m *mockGateway) CreateOrder(ctx context.Context, amount float64) (*GatewayOrder, error) {
	m.CreateCalls++
	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(ctx, amount)
	}
	return &GatewayOrder{ID: "order_mock", Amount: int64(amount * 100), Currency: "INR"}, nil
}

// testAccount is a tiny in-memory balance used by the exhaustion tests:
// the admission read and the conditional debit both go through it, so
// sequential sends see the balance shrink exactly as they would against
// the real tables.
type testAccount struct {
	mu      sync.Mutex
	credits int64
}

func (a *testAccount) user(id string) *model.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	return &model.User{UserID: id, Email: id + "@example.com", Credits: a.credits}
}

func (a *testAccount) debit(amount int64) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.credits < amount {
		return 0, repository.ErrInsufficientCredits
	}
	a.credits -= amount
	return a.credits, nil
}
