package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"toothless_dashboard/internal/entities"
	"toothless_dashboard/internal/infrastructure"
	"toothless_dashboard/internal/repository"
)

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event entities.SettingsUpdatedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type countingUpdates struct {
	categories []string
}

func (c *countingUpdates) ObserveSettingsUpdate(category string) {
	c.categories = append(c.categories, category)
}

func newStore(t *testing.T) *repository.SettingsStore {
	t.Helper()
	store, err := repository.Open(context.Background(), infrastructure.NewMemoryBackend(), repository.Options{})
	require.NoError(t, err)
	return store
}

func TestUpdateSettingsPublishesEvent(t *testing.T) {
	publisher := new(MockEventPublisher)
	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e entities.SettingsUpdatedEvent) bool {
		doc, ok := e.Document.(*entities.LogSettings)
		return ok && e.GuildID == "g1" && e.Category == entities.CategoryLog && doc.ChannelID == "5"
	})).Return(nil).Once()
	updates := &countingUpdates{}

	uc := NewDashboardUsecase(newStore(t), infrastructure.DemoDirectory{}, publisher, updates)
	doc, err := uc.UpdateSettings(context.Background(), entities.CategoryLog, "g1", []byte(`{"channelId":"5"}`))
	require.NoError(t, err)
	assert.Equal(t, &entities.LogSettings{Enabled: true, ChannelID: "5"}, doc)
	assert.Equal(t, []string{"log"}, updates.categories)
	publisher.AssertExpectations(t)
}

func TestUpdateSettingsSucceedsWhenPublishFails(t *testing.T) {
	publisher := new(MockEventPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("nats: no responders"))

	uc := NewDashboardUsecase(newStore(t), infrastructure.DemoDirectory{}, publisher, nil)
	_, err := uc.UpdateSettings(context.Background(), entities.CategoryTickets, "g1", []byte(`{}`))
	require.NoError(t, err)

	doc, err := uc.GetSettings(entities.CategoryTickets, "g1")
	require.NoError(t, err)
	assert.Equal(t, &entities.TicketSettings{Enabled: true}, doc)
}

func TestUpdateSettingsValidationSkipsPublish(t *testing.T) {
	publisher := new(MockEventPublisher)
	uc := NewDashboardUsecase(newStore(t), infrastructure.DemoDirectory{}, publisher, nil)

	_, err := uc.UpdateSettings(context.Background(), entities.CategoryLevels, "g1", []byte(`{"xpPerMessage":{"min":500}}`))
	var ve *repository.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "xpPerMessage[min]", ve.Field)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestGetSettingsAbsent(t *testing.T) {
	uc := NewDashboardUsecase(newStore(t), infrastructure.DemoDirectory{}, nil, nil)

	doc, err := uc.GetSettings(entities.CategoryWelcome, "never")
	require.NoError(t, err)
	assert.Nil(t, doc)

	_, err = uc.GetSettings("music", "never")
	assert.ErrorIs(t, err, repository.ErrUnknownCategory)
}

func TestGuildOverview(t *testing.T) {
	store := newStore(t)
	uc := NewDashboardUsecase(store, infrastructure.DemoDirectory{}, nil, nil)
	_, err := uc.UpdateSettings(context.Background(), entities.CategoryWelcome, "g1", []byte(`{"channelId":"2"}`))
	require.NoError(t, err)

	overview, err := uc.GuildOverview(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, "g1", overview.ID)
	assert.Equal(t, "Server Demo", overview.Name)
	require.NotNil(t, overview.Settings.Welcome)
	assert.Equal(t, "2", overview.Settings.Welcome.ChannelID)
	assert.Nil(t, overview.Settings.Levels)
}

func TestGuildOverviewDirectoryError(t *testing.T) {
	directory := new(MockDirectory)
	directory.On("GuildInfo", mock.Anything, "g1").Return(nil, errors.New("missing access"))

	uc := NewDashboardUsecase(newStore(t), directory, nil, nil)
	_, err := uc.GuildOverview(context.Background(), "g1")
	assert.ErrorContains(t, err, "missing access")
}
