package service

import (
	"context"

	"bookline/models"

	"github.com/stretchr/testify/mock"
)

// MockBackendClient is a mock implementation of BackendClient
type MockBackendClient struct {
	mock.Mock
}

func (m *MockBackendClient) GetCurrentMatches(ctx context.Context) ([]*models.Match, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Match), args.Error(1)
}

func (m *MockBackendClient) GetInstanceMarkets(ctx context.Context, matchID string, statuses []models.MarketStatus) ([]models.Market, error) {
	args := m.Called(ctx, matchID, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Market), args.Error(1)
}

func (m *MockBackendClient) PlaceWager(ctx context.Context, ticket models.WagerTicket) (*models.Wager, error) {
	args := m.Called(ctx, ticket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wager), args.Error(1)
}

func (m *MockBackendClient) GetCurrentUser(ctx context.Context) (*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockBettingService is a mock implementation of BettingService
type MockBettingService struct {
	mock.Mock
}

func (m *MockBettingService) PlaceWager(ctx context.Context, ticket models.WagerTicket) (*models.Wager, error) {
	args := m.Called(ctx, ticket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wager), args.Error(1)
}

func (m *MockBettingService) Submitting(ticket models.WagerTicket) bool {
	args := m.Called(ticket)
	return args.Bool(0)
}

func (m *MockBettingService) RefreshWallet(ctx context.Context) (*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
