package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carcare-backend/internal/domain"
)

func f(v float64) *float64 { return &v }

func testLocation() domain.Location {
	return domain.Location{
		ID:           1,
		LocationName: "Airport",
		LocationType: domain.LocationWithTransfer,
		CarTypes: []domain.CarTypePrices{
			{
				Name: "sedan",
				Wash: domain.WashPrices{
					Outside:   f(25),
					OutInside: f(45),
				},
				Transfer: domain.TransferPrices{
					HZP:   f(30),
					Base:  f(10),
					PerKm: f(15),
				},
			},
			{
				Name: "suv",
				Wash: domain.WashPrices{Outside: f(35)},
			},
		},
	}
}

func TestResolveWashPriceFromTable(t *testing.T) {
	price, err := ResolveWashPrice(testLocation(), "sedan", domain.WashOutside, nil)
	require.NoError(t, err)
	assert.Equal(t, 25.0, price)

	price, err = ResolveWashPrice(testLocation(), "sedan", domain.WashOutInside, nil)
	require.NoError(t, err)
	assert.Equal(t, 45.0, price)
}

func TestResolveWashPriceSpecialTrustsOverride(t *testing.T) {
	// special ignores the table entirely, even when entries exist
	price, err := ResolveWashPrice(testLocation(), "sedan", domain.WashSpecial, f(99.5))
	require.NoError(t, err)
	assert.Equal(t, 99.5, price)

	_, err = ResolveWashPrice(testLocation(), "sedan", domain.WashSpecial, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestResolveWashPriceMissingEntries(t *testing.T) {
	_, err := ResolveWashPrice(testLocation(), "limousine", domain.WashOutside, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// suv has no inside price configured; must not default to zero
	_, err = ResolveWashPrice(testLocation(), "suv", domain.WashInside, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestResolveTransferPriceFlat(t *testing.T) {
	price, err := ResolveTransferPrice(testLocation(), "sedan", domain.TransferHZP, nil)
	require.NoError(t, err)
	assert.Equal(t, 30.0, price)

	_, err = ResolveTransferPrice(testLocation(), "sedan", domain.TransferHBP, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestResolveTransferPricePresumptive(t *testing.T) {
	price, err := ResolveTransferPrice(testLocation(), "sedan", domain.TransferPresumptive, f(2))
	require.NoError(t, err)
	assert.Equal(t, 40.0, price)

	_, err = ResolveTransferPrice(testLocation(), "sedan", domain.TransferPresumptive, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	// suv table has no base/perKm
	_, err = ResolveTransferPrice(testLocation(), "suv", domain.TransferPresumptive, f(2))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

type fakePriceTable struct{ loc domain.Location }

func (s fakePriceTable) Get(ctx context.Context, id int64) (*domain.Location, error) {
	l := s.loc
	return &l, nil
}

type fakeWashStore struct {
	duplicate bool
	created   []domain.CarWash
}

func (s *fakeWashStore) Create(ctx context.Context, w domain.CarWash) (*domain.CarWash, error) {
	w.ID = int64(len(s.created) + 1)
	w.CreatedAt = time.Now()
	s.created = append(s.created, w)
	return &w, nil
}

func (s *fakeWashStore) Get(ctx context.Context, id int64) (*domain.CarWash, error) {
	for i := range s.created {
		if s.created[i].ID == id {
			c := s.created[i]
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *fakeWashStore) Update(ctx context.Context, w domain.CarWash) (*domain.CarWash, error) {
	return &w, nil
}

func (s *fakeWashStore) HasPlateWithin(ctx context.Context, plate string, from, to time.Time, excludeID int64) (bool, error) {
	return s.duplicate, nil
}

type fakeTransferStore struct {
	duplicate bool
	created   []domain.CarTransfer
}

func (s *fakeTransferStore) Create(ctx context.Context, t domain.CarTransfer) (*domain.CarTransfer, error) {
	t.ID = int64(len(s.created) + 1)
	t.CreatedAt = time.Now()
	s.created = append(s.created, t)
	return &t, nil
}

func (s *fakeTransferStore) Get(ctx context.Context, id int64) (*domain.CarTransfer, error) {
	for i := range s.created {
		if s.created[i].ID == id {
			c := s.created[i]
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *fakeTransferStore) Update(ctx context.Context, t domain.CarTransfer) (*domain.CarTransfer, error) {
	return &t, nil
}

func (s *fakeTransferStore) HasPlateWithin(ctx context.Context, plate string, from, to time.Time, excludeID int64) (bool, error) {
	return s.duplicate, nil
}

func TestCreateWashDuplicateReturnsSuspectedAndKeepsNothing(t *testing.T) {
	store := &fakeWashStore{duplicate: true}
	svc := PricingService{Locations: fakePriceTable{loc: testLocation()}, Washes: store}

	wash, suspected, err := svc.CreateWash(context.Background(), WashInput{
		UserID: 7, LicensePlate: "ZH 1234", LocationID: 1,
		CarType: "sedan", WashType: domain.WashOutside,
	})

	require.NoError(t, err)
	assert.True(t, suspected)
	assert.Nil(t, wash)
	assert.Empty(t, store.created)
}

func TestCreateWashDuplicateConfirmedPersistsFlagged(t *testing.T) {
	store := &fakeWashStore{duplicate: true}
	svc := PricingService{Locations: fakePriceTable{loc: testLocation()}, Washes: store}

	wash, suspected, err := svc.CreateWash(context.Background(), WashInput{
		UserID: 7, LicensePlate: "ZH 1234", LocationID: 1,
		CarType: "sedan", WashType: domain.WashOutside, AcceptSuspect: true,
	})

	require.NoError(t, err)
	assert.False(t, suspected)
	require.Len(t, store.created, 1)
	assert.True(t, wash.Suspect)
	assert.Equal(t, 25.0, wash.FinalPrice)
}

func TestCreateWashFreshPlateNotSuspect(t *testing.T) {
	store := &fakeWashStore{}
	svc := PricingService{Locations: fakePriceTable{loc: testLocation()}, Washes: store}

	wash, suspected, err := svc.CreateWash(context.Background(), WashInput{
		UserID: 7, LicensePlate: "ZH 9999", LocationID: 1,
		CarType: "sedan", WashType: domain.WashOutside,
	})

	require.NoError(t, err)
	assert.False(t, suspected)
	assert.False(t, wash.Suspect)
	assert.Equal(t, 25.0, wash.FinalPrice)
}

func TestCreateTransferDuplicateReturnsSuspectedAndKeepsNothing(t *testing.T) {
	store := &fakeTransferStore{duplicate: true}
	svc := PricingService{Locations: fakePriceTable{loc: testLocation()}, Transfers: store}

	transfer, suspected, err := svc.CreateTransfer(context.Background(), TransferInput{
		UserID: 7, LicensePlate: "ZH 1234", LocationID: 1, CarType: "sedan",
		TransferType: domain.TransferHZP, TransferMethod: domain.MethodCollection,
	})

	require.NoError(t, err)
	assert.True(t, suspected)
	assert.Nil(t, transfer)
	assert.Empty(t, store.created)
}
