package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func price(v float64) *float64 { return &v }

func TestWashPrices_Price(t *testing.T) {
	w := WashPrices{Outside: price(25), Motorrad: price(18)}

	p, ok := w.Price(WashOutside)
	assert.True(t, ok)
	assert.Equal(t, 25.0, p)

	_, ok = w.Price(WashInside)
	assert.False(t, ok, "unset subtype must not default to zero")

	// special is resolved from the caller override, never from the table
	_, ok = w.Price(WashSpecial)
	assert.False(t, ok)
}

func TestTransferPrices_Presumptive(t *testing.T) {
	tp := TransferPrices{Base: price(10), PerKm: price(2)}

	base, perKm, ok := tp.Presumptive()
	assert.True(t, ok)
	assert.Equal(t, 10.0, base)
	assert.Equal(t, 2.0, perKm)

	_, _, ok = TransferPrices{Base: price(10)}.Presumptive()
	assert.False(t, ok)
}

func TestLocation_CarType(t *testing.T) {
	loc := Location{CarTypes: []CarTypePrices{
		{Name: "sedan", Wash: WashPrices{Outside: price(25)}},
		{Name: "suv"},
	}}

	ct, ok := loc.CarType("sedan")
	assert.True(t, ok)
	assert.Equal(t, "sedan", ct.Name)

	_, ok = loc.CarType("truck")
	assert.False(t, ok)
}

func TestValidators(t *testing.T) {
	assert.True(t, ValidRole(RoleAccountant))
	assert.False(t, ValidRole("owner"))
	assert.True(t, ValidWashType(WashQuickTurnaround))
	assert.False(t, ValidWashType("polish"))
	assert.True(t, ValidTransferType(TransferPresumptive))
	assert.False(t, ValidTransferType("special"))
	assert.True(t, ValidTransferMethod(MethodDelivery))
	assert.False(t, ValidTransferMethod("pickup"))
}

func TestUser_FullName(t *testing.T) {
	assert.Equal(t, "Ana Meier", User{FirstName: "Ana", LastName: "Meier"}.FullName())
	assert.Equal(t, "User Deleted", User{}.FullName())
}

func TestWorkSession_OpenBreak(t *testing.T) {
	s := WorkSession{Breaks: []Break{{ID: 1, Active: false}, {ID: 2, Active: true}}}
	b, ok := s.OpenBreak()
	assert.True(t, ok)
	assert.Equal(t, int64(2), b.ID)

	_, ok = WorkSession{}.OpenBreak()
	assert.False(t, ok)
}
