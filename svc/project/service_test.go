package project_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/obralabs/sentinela/pkg/geocoder"
	"github.com/obralabs/sentinela/svc/project"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Create(ctx context.Context, p *project.Project) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockStore) Update(ctx context.Context, p *project.Project) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) Get(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*project.Project), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]project.Project, error) {
	args := m.Called(ctx, userID)
	if p := args.Get(0); p != nil {
		return p.([]project.Project), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) ListMissingCoordinates(ctx context.Context, limit int) ([]project.Project, error) {
	args := m.Called(ctx, limit)
	if p := args.Get(0); p != nil {
		return p.([]project.Project), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) UpdateCoordinates(ctx context.Context, id uuid.UUID, lat, lng float64) error {
	return m.Called(ctx, id, lat, lng).Error(0)
}

func (m *mockStore) ListLocations(ctx context.Context, limit int) ([]project.Location, error) {
	args := m.Called(ctx, limit)
	if l := args.Get(0); l != nil {
		return l.([]project.Location), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockGeocoder struct {
	mock.Mock
}

func (m *mockGeocoder) Geocode(ctx context.Context, address string) (*geocoder.Coordinates, error) {
	args := m.Called(ctx, address)
	if c := args.Get(0); c != nil {
		return c.(*geocoder.Coordinates), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestService_Create(t *testing.T) {
	t.Parallel()

	t.Run("requires name and owner", func(t *testing.T) {
		t.Parallel()

		svc := project.NewService(new(mockStore), nil, nil)

		err := svc.Create(context.Background(), &project.Project{UserID: uuid.New()})
		assert.ErrorIs(t, err, project.ErrMissingName)

		err = svc.Create(context.Background(), &project.Project{Name: "Obra Norte"})
		assert.ErrorIs(t, err, project.ErrMissingUser)
	})

	t.Run("defaults status to active", func(t *testing.T) {
		t.Parallel()

		store := new(mockStore)
		store.On("Create", mock.Anything, mock.MatchedBy(func(p *project.Project) bool {
			return p.Status == project.StatusActive
		})).Return(nil)

		svc := project.NewService(store, nil, nil)
		err := svc.Create(context.Background(), &project.Project{Name: "Obra Norte", UserID: uuid.New()})
		require.NoError(t, err)
		store.AssertExpectations(t)
	})
}

func TestService_SyncCoordinates(t *testing.T) {
	t.Parallel()

	t.Run("unavailable without geocoder", func(t *testing.T) {
		t.Parallel()

		svc := project.NewService(new(mockStore), nil, nil)
		_, err := svc.SyncCoordinates(context.Background())
		assert.ErrorIs(t, err, project.ErrGeocoderUnavailable)
	})

	t.Run("nothing to do", func(t *testing.T) {
		t.Parallel()

		store := new(mockStore)
		store.On("ListMissingCoordinates", mock.Anything, mock.Anything).Return([]project.Project{}, nil)

		svc := project.NewService(store, new(mockGeocoder), nil)
		report, err := svc.SyncCoordinates(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "No projects to geocode.", report.Message)
		assert.Empty(t, report.Details)
	})

	t.Run("mixes updates misses and failures", func(t *testing.T) {
		t.Parallel()

		idOK := uuid.New()
		idMiss := uuid.New()
		idFail := uuid.New()

		store := new(mockStore)
		store.On("ListMissingCoordinates", mock.Anything, mock.Anything).Return([]project.Project{
			{ID: idOK, Address: "Av. Paulista 1000, São Paulo"},
			{ID: idMiss, Address: "endereço inexistente"},
			{ID: idFail, Address: "Rua Augusta 500"},
		}, nil)
		store.On("UpdateCoordinates", mock.Anything, idOK, -23.56, -46.65).Return(nil)

		gc := new(mockGeocoder)
		gc.On("Geocode", mock.Anything, "Av. Paulista 1000, São Paulo").
			Return(&geocoder.Coordinates{Lat: -23.56, Lng: -46.65}, nil)
		gc.On("Geocode", mock.Anything, "endereço inexistente").
			Return(nil, geocoder.ErrNoResult)
		gc.On("Geocode", mock.Anything, "Rua Augusta 500").
			Return(nil, errors.Join(geocoder.ErrRequestFailed, errors.New("timeout")))

		svc := project.NewService(store, gc, nil)
		report, err := svc.SyncCoordinates(context.Background())
		require.NoError(t, err)

		assert.Equal(t, "Processed 3 projects. Updated 1.", report.Message)
		require.Len(t, report.Details, 3)
		assert.Equal(t, "updated", report.Details[0].Status)
		require.NotNil(t, report.Details[0].Lat)
		assert.InDelta(t, -23.56, *report.Details[0].Lat, 0.001)
		assert.Equal(t, "not_found", report.Details[1].Status)
		assert.Equal(t, "error", report.Details[2].Status)
		store.AssertExpectations(t)
		gc.AssertExpectations(t)
	})

	t.Run("write failure is recorded not fatal", func(t *testing.T) {
		t.Parallel()

		id := uuid.New()
		store := new(mockStore)
		store.On("ListMissingCoordinates", mock.Anything, mock.Anything).Return([]project.Project{
			{ID: id, Address: "Av. Brasil 1"},
		}, nil)
		store.On("UpdateCoordinates", mock.Anything, id, 1.0, 2.0).Return(project.ErrStoreFailure)

		gc := new(mockGeocoder)
		gc.On("Geocode", mock.Anything, "Av. Brasil 1").Return(&geocoder.Coordinates{Lat: 1, Lng: 2}, nil)

		svc := project.NewService(store, gc, nil)
		report, err := svc.SyncCoordinates(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Processed 1 projects. Updated 0.", report.Message)
		assert.Equal(t, "error", report.Details[0].Status)
	})

	t.Run("canceled context aborts the run", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		id := uuid.New()
		store := new(mockStore)
		store.On("ListMissingCoordinates", mock.Anything, mock.Anything).Return([]project.Project{
			{ID: id, Address: "Av. Brasil 1"},
		}, nil)
		store.On("UpdateCoordinates", mock.Anything, id, 1.0, 2.0).Return(nil)

		gc := new(mockGeocoder)
		gc.On("Geocode", mock.Anything, "Av. Brasil 1").Return(&geocoder.Coordinates{Lat: 1, Lng: 2}, nil)

		svc := project.NewService(store, gc, nil)
		_, err := svc.SyncCoordinates(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
