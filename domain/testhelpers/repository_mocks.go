package testhelpers

import (
	"context"
	"time"

	"betbook/domain/entities"
	"betbook/domain/events"
	"betbook/domain/interfaces"

	"github.com/stretchr/testify/mock"
)

// MockBetRepository is a mock implementation of BetRepository
type MockBetRepository struct {
	mock.Mock
}

func (m *MockBetRepository) Create(ctx context.Context, bet *entities.Bet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockBetRepository) GetByID(ctx context.Context, id int64) (*entities.Bet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Bet), args.Error(1)
}

func (m *MockBetRepository) GetDetailByID(ctx context.Context, id int64) (*entities.BetDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BetDetail), args.Error(1)
}

func (m *MockBetRepository) UpdateAcceptance(ctx context.Context, betID int64, from, to entities.AcceptanceState) (bool, error) {
	args := m.Called(ctx, betID, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockBetRepository) SettleFromOpen(ctx context.Context, bet *entities.Bet) (bool, error) {
	args := m.Called(ctx, bet)
	return args.Bool(0), args.Error(1)
}

func (m *MockBetRepository) ListOpenByGroup(ctx context.Context, groupID int64) ([]*entities.Bet, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Bet), args.Error(1)
}

func (m *MockBetRepository) ListByParticipant(ctx context.Context, userID int64) ([]*entities.Bet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Bet), args.Error(1)
}

func (m *MockBetRepository) GetExpiredPendingChallenges(ctx context.Context, now time.Time) ([]*entities.Bet, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Bet), args.Error(1)
}

// MockPickRepository is a mock implementation of PickRepository
type MockPickRepository struct {
	mock.Mock
}

func (m *MockPickRepository) Create(ctx context.Context, pick *entities.Pick) error {
	args := m.Called(ctx, pick)
	return args.Error(0)
}

func (m *MockPickRepository) GetByBet(ctx context.Context, betID int64) ([]*entities.Pick, error) {
	args := m.Called(ctx, betID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Pick), args.Error(1)
}

func (m *MockPickRepository) UpdateResults(ctx context.Context, picks []*entities.Pick) error {
	args := m.Called(ctx, picks)
	return args.Error(0)
}

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Get(ctx context.Context, groupID, userID int64) (*entities.LedgerEntry, error) {
	args := m.Called(ctx, groupID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) ApplyDelta(ctx context.Context, groupID, userID int64, delta entities.LedgerDelta) (*entities.LedgerEntry, error) {
	args := m.Called(ctx, groupID, userID, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) ListByGroup(ctx context.Context, groupID int64) ([]*entities.LedgerEntry, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LedgerEntry), args.Error(1)
}

// MockLedgerChangeRepository is a mock implementation of LedgerChangeRepository
type MockLedgerChangeRepository struct {
	mock.Mock
}

func (m *MockLedgerChangeRepository) Record(ctx context.Context, change *entities.LedgerChange) error {
	args := m.Called(ctx, change)
	return args.Error(0)
}

func (m *MockLedgerChangeRepository) GetRecentByUser(ctx context.Context, groupID, userID int64, limit int) ([]*entities.LedgerChange, error) {
	args := m.Called(ctx, groupID, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LedgerChange), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// FakeUnitOfWork exposes the mock repositories through the UnitOfWork
// interface. Begin, Commit and Rollback only track call counts.
type FakeUnitOfWork struct {
	BetRepo          *MockBetRepository
	PickRepo         *MockPickRepository
	LedgerRepo       *MockLedgerRepository
	LedgerChangeRepo *MockLedgerChangeRepository
	Publisher        *MockEventPublisher

	BeginCount    int
	CommitCount   int
	RollbackCount int

	BeginErr  error
	CommitErr error
}

var _ interfaces.UnitOfWork = (*FakeUnitOfWork)(nil)

// NewFakeUnitOfWork creates a fake unit of work with fresh mocks
func NewFakeUnitOfWork() *FakeUnitOfWork {
	return &FakeUnitOfWork{
		BetRepo:          &MockBetRepository{},
		PickRepo:         &MockPickRepository{},
		LedgerRepo:       &MockLedgerRepository{},
		LedgerChangeRepo: &MockLedgerChangeRepository{},
		Publisher:        &MockEventPublisher{},
	}
}

func (u *FakeUnitOfWork) Begin(ctx context.Context) error {
	u.BeginCount++
	return u.BeginErr
}

func (u *FakeUnitOfWork) Commit() error {
	u.CommitCount++
	return u.CommitErr
}

func (u *FakeUnitOfWork) Rollback() error {
	u.RollbackCount++
	return nil
}

func (u *FakeUnitOfWork) BetRepository() interfaces.BetRepository {
	return u.BetRepo
}

func (u *FakeUnitOfWork) PickRepository() interfaces.PickRepository {
	return u.PickRepo
}

func (u *FakeUnitOfWork) LedgerRepository() interfaces.LedgerRepository {
	return u.LedgerRepo
}

func (u *FakeUnitOfWork) LedgerChangeRepository() interfaces.LedgerChangeRepository {
	return u.LedgerChangeRepo
}

func (u *FakeUnitOfWork) EventBus() interfaces.EventPublisher {
	return u.Publisher
}

// FakeUnitOfWorkFactory returns the same fake unit of work on every
// Create call so tests can set expectations up front
type FakeUnitOfWorkFactory struct {
	UoW *FakeUnitOfWork
}

var _ interfaces.UnitOfWorkFactory = (*FakeUnitOfWorkFactory)(nil)

// NewFakeUnitOfWorkFactory creates a factory around a fresh fake unit of work
func NewFakeUnitOfWorkFactory() *FakeUnitOfWorkFactory {
	return &FakeUnitOfWorkFactory{UoW: NewFakeUnitOfWork()}
}

func (f *FakeUnitOfWorkFactory) Create() interfaces.UnitOfWork {
	return f.UoW
}
