package service

import (
	"context"
	"time"

	"carcare-backend/internal/domain"
	"carcare-backend/internal/ports"
)

// duplicateWindow is the lookback for same-plate submissions: a second record
// for one plate within six hours is suspicious.
const duplicateWindow = 6 * time.Hour

// PricingService resolves service prices from location price tables and runs
// the duplicate-plate confirmation handshake.
type PricingService struct {
	Locations ports.PriceTableSource
	Washes    ports.WashStore
	Transfers ports.TransferStore
}

type WashInput struct {
	UserID        int64
	LicensePlate  string
	LocationID    int64
	CarType       string
	WashType      domain.WashType
	SpecialPrice  *float64
	AcceptSuspect bool
	CreatedBy     int64
}

type TransferInput struct {
	UserID           int64
	LicensePlate     string
	LocationID       int64
	CarType          string
	TransferType     domain.TransferType
	TransferMethod   domain.TransferMethod
	TransferDistance *float64
	TransferPlace    string
	AcceptSuspect    bool
	CreatedBy        int64
}

// ResolveWashPrice returns the authoritative price for a wash. The "special"
// subtype trusts the caller's override; everything else comes from the
// location's table and missing entries are errors, never zero.
func ResolveWashPrice(loc domain.Location, carType string, washType domain.WashType, specialPrice *float64) (float64, error) {
	if washType == domain.WashSpecial {
		if specialPrice == nil {
			return 0, domain.ErrValidation
		}
		return *specialPrice, nil
	}
	ct, ok := loc.CarType(carType)
	if !ok {
		return 0, domain.ErrNotFound
	}
	price, ok := ct.Wash.Price(washType)
	if !ok {
		return 0, domain.ErrValidation
	}
	return price, nil
}

// ResolveTransferPrice returns the price for a transfer. Presumptive pricing
// is base + distance * perKm from the location's table.
func ResolveTransferPrice(loc domain.Location, carType string, transferType domain.TransferType, distance *float64) (float64, error) {
	ct, ok := loc.CarType(carType)
	if !ok {
		return 0, domain.ErrNotFound
	}
	if transferType == domain.TransferPresumptive {
		if distance == nil {
			return 0, domain.ErrValidation
		}
		base, perKm, ok := ct.Transfer.Presumptive()
		if !ok {
			return 0, domain.ErrValidation
		}
		return base + *distance*perKm, nil
	}
	price, ok := ct.Transfer.Price(transferType)
	if !ok {
		return 0, domain.ErrValidation
	}
	return price, nil
}

// CreateWash records a wash. When the plate was seen within the duplicate
// window and the caller has not confirmed, it returns suspected=true and
// persists nothing; a confirmed resubmission persists with Suspect set.
func (s PricingService) CreateWash(ctx context.Context, in WashInput) (*domain.CarWash, bool, error) {
	if in.UserID == 0 || in.LicensePlate == "" || in.LocationID == 0 || in.CarType == "" ||
		!domain.ValidWashType(in.WashType) {
		return nil, false, domain.ErrValidation
	}

	now := time.Now()
	duplicate, err := s.Washes.HasPlateWithin(ctx, in.LicensePlate, now.Add(-duplicateWindow), now, 0)
	if err != nil {
		return nil, false, err
	}
	if duplicate && !in.AcceptSuspect {
		return nil, true, nil
	}

	loc, err := s.Locations.Get(ctx, in.LocationID)
	if err != nil {
		return nil, false, err
	}
	price, err := ResolveWashPrice(*loc, in.CarType, in.WashType, in.SpecialPrice)
	if err != nil {
		return nil, false, err
	}

	wash, err := s.Washes.Create(ctx, domain.CarWash{
		UserID:       in.UserID,
		LicensePlate: in.LicensePlate,
		LocationID:   in.LocationID,
		CarType:      in.CarType,
		WashType:     in.WashType,
		SpecialPrice: in.SpecialPrice,
		FinalPrice:   price,
		Suspect:      duplicate,
		CreatedBy:    in.CreatedBy,
	})
	return wash, false, err
}

// UpdateWash re-runs price resolution and the duplicate check windowed around
// the record's own creation time rather than "now".
func (s PricingService) UpdateWash(ctx context.Context, id int64, in WashInput) (*domain.CarWash, bool, error) {
	if in.LicensePlate == "" || in.LocationID == 0 || in.CarType == "" ||
		!domain.ValidWashType(in.WashType) {
		return nil, false, domain.ErrValidation
	}

	wash, err := s.Washes.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}

	from := wash.CreatedAt.Add(-duplicateWindow)
	to := wash.CreatedAt.Add(duplicateWindow)
	duplicate, err := s.Washes.HasPlateWithin(ctx, in.LicensePlate, from, to, wash.ID)
	if err != nil {
		return nil, false, err
	}
	if duplicate && !in.AcceptSuspect {
		return nil, true, nil
	}

	loc, err := s.Locations.Get(ctx, in.LocationID)
	if err != nil {
		return nil, false, err
	}
	price, err := ResolveWashPrice(*loc, in.CarType, in.WashType, in.SpecialPrice)
	if err != nil {
		return nil, false, err
	}

	wash.LicensePlate = in.LicensePlate
	wash.LocationID = in.LocationID
	wash.CarType = in.CarType
	wash.WashType = in.WashType
	wash.SpecialPrice = in.SpecialPrice
	wash.FinalPrice = price
	wash.Suspect = duplicate

	updated, err := s.Washes.Update(ctx, *wash)
	return updated, false, err
}

// CreateTransfer mirrors CreateWash for transfer records.
func (s PricingService) CreateTransfer(ctx context.Context, in TransferInput) (*domain.CarTransfer, bool, error) {
	if in.UserID == 0 || in.LicensePlate == "" || in.LocationID == 0 || in.CarType == "" ||
		!domain.ValidTransferType(in.TransferType) || !domain.ValidTransferMethod(in.TransferMethod) {
		return nil, false, domain.ErrValidation
	}

	now := time.Now()
	duplicate, err := s.Transfers.HasPlateWithin(ctx, in.LicensePlate, now.Add(-duplicateWindow), now, 0)
	if err != nil {
		return nil, false, err
	}
	if duplicate && !in.AcceptSuspect {
		return nil, true, nil
	}

	loc, err := s.Locations.Get(ctx, in.LocationID)
	if err != nil {
		return nil, false, err
	}
	price, err := ResolveTransferPrice(*loc, in.CarType, in.TransferType, in.TransferDistance)
	if err != nil {
		return nil, false, err
	}

	transfer, err := s.Transfers.Create(ctx, domain.CarTransfer{
		UserID:           in.UserID,
		LicensePlate:     in.LicensePlate,
		LocationID:       in.LocationID,
		CarType:          in.CarType,
		TransferType:     in.TransferType,
		TransferMethod:   in.TransferMethod,
		TransferDistance: in.TransferDistance,
		TransferPlace:    in.TransferPlace,
		FinalPrice:       price,
		Suspect:          duplicate,
		CreatedBy:        in.CreatedBy,
	})
	return transfer, false, err
}

// UpdateTransfer mirrors UpdateWash for transfer records.
func (s PricingService) UpdateTransfer(ctx context.Context, id int64, in TransferInput) (*domain.CarTransfer, bool, error) {
	if in.LicensePlate == "" || in.LocationID == 0 || in.CarType == "" ||
		!domain.ValidTransferType(in.TransferType) || !domain.ValidTransferMethod(in.TransferMethod) {
		return nil, false, domain.ErrValidation
	}

	transfer, err := s.Transfers.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}

	from := transfer.CreatedAt.Add(-duplicateWindow)
	to := transfer.CreatedAt.Add(duplicateWindow)
	duplicate, err := s.Transfers.HasPlateWithin(ctx, in.LicensePlate, from, to, transfer.ID)
	if err != nil {
		return nil, false, err
	}
	if duplicate && !in.AcceptSuspect {
		return nil, true, nil
	}

	loc, err := s.Locations.Get(ctx, in.LocationID)
	if err != nil {
		return nil, false, err
	}
	price, err := ResolveTransferPrice(*loc, in.CarType, in.TransferType, in.TransferDistance)
	if err != nil {
		return nil, false, err
	}

	transfer.LicensePlate = in.LicensePlate
	transfer.LocationID = in.LocationID
	transfer.CarType = in.CarType
	transfer.TransferType = in.TransferType
	transfer.TransferMethod = in.TransferMethod
	transfer.TransferDistance = in.TransferDistance
	transfer.TransferPlace = in.TransferPlace
	transfer.FinalPrice = price
	transfer.Suspect = duplicate

	updated, err := s.Transfers.Update(ctx, *transfer)
	return updated, false, err
}
