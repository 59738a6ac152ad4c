// Package testutil provides mocks of the privileged agent's collaborators.
package testutil

import (
	"context"
	"testing"

	"github.com/GriffinCanCode/ChatRelay/backend/internal/shared/types"
	"github.com/stretchr/testify/mock"
)

// MockCRM is a mock of the CRM backend surface used by the router.
type MockCRM struct {
	mock.Mock
}

func (m *MockCRM) LookupPerson(ctx context.Context, phone string) (*types.Person, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Person), args.Error(1)
}

func (m *MockCRM) SearchPersons(ctx context.Context, query string) ([]types.Person, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Person), args.Error(1)
}

func (m *MockCRM) CreatePerson(ctx context.Context, in types.PersonInput) (types.Person, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(types.Person), args.Error(1)
}

func (m *MockCRM) AttachPhone(ctx context.Context, personID int64, phone, label string) (types.Person, error) {
	args := m.Called(ctx, personID, phone, label)
	return args.Get(0).(types.Person), args.Error(1)
}

func (m *MockCRM) CreateNote(ctx context.Context, personID, dealID int64, contactName string, msgs []types.Message) (types.Note, error) {
	args := m.Called(ctx, personID, dealID, contactName, msgs)
	return args.Get(0).(types.Note), args.Error(1)
}

func (m *MockCRM) CreateDeal(ctx context.Context, in types.DealInput) (types.Deal, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(types.Deal), args.Error(1)
}

func (m *MockCRM) UpdateDeal(ctx context.Context, dealID int64, patch types.DealPatch) (types.Deal, error) {
	args := m.Called(ctx, dealID, patch)
	return args.Get(0).(types.Deal), args.Error(1)
}

func (m *MockCRM) SubmitFeedback(ctx context.Context, fb types.Feedback) error {
	return m.Called(ctx, fb).Error(0)
}

func (m *MockCRM) Config(ctx context.Context) (types.ClientConfig, error) {
	args := m.Called(ctx)
	return args.Get(0).(types.ClientConfig), args.Error(1)
}

// MockLauncher is a mock interactive authorization flow.
type MockLauncher struct {
	mock.Mock
}

func (m *MockLauncher) LaunchAuthFlow(ctx context.Context, authURL string) (string, error) {
	args := m.Called(ctx, authURL)
	return args.String(0), args.Error(1)
}

// MockTabOpener is a mock tab opener.
type MockTabOpener struct {
	mock.Mock
}

func (m *MockTabOpener) OpenTab(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

// NewMockCRM creates a CRM mock whose every call succeeds with empty values.
func NewMockCRM(t *testing.T) *MockCRM {
	t.Helper()
	m := new(MockCRM)
	anyArg := mock.Anything

	m.On("LookupPerson", anyArg, anyArg).Return(nil, nil).Maybe()
	m.On("SearchPersons", anyArg, anyArg).Return([]types.Person{}, nil).Maybe()
	m.On("CreatePerson", anyArg, anyArg).Return(types.Person{ID: 1}, nil).Maybe()
	m.On("AttachPhone", anyArg, anyArg, anyArg, anyArg).Return(types.Person{ID: 1}, nil).Maybe()
	m.On("CreateNote", anyArg, anyArg, anyArg, anyArg, anyArg).Return(types.Note{ID: 1}, nil).Maybe()
	m.On("CreateDeal", anyArg, anyArg).Return(types.Deal{ID: 1}, nil).Maybe()
	m.On("UpdateDeal", anyArg, anyArg, anyArg).Return(types.Deal{ID: 1}, nil).Maybe()
	m.On("SubmitFeedback", anyArg, anyArg).Return(nil).Maybe()
	m.On("Config", anyArg).Return(types.ClientConfig{}, nil).Maybe()
	return m
}
