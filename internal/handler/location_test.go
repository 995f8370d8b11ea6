package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"carcare-backend/internal/domain"
)

func priceTableRequest() locationRequest {
	outside := 25.0
	return locationRequest{
		LocationName: "Airport",
		LocationType: string(domain.LocationWithTransfer),
		CarTypes: []domain.CarTypePrices{
			{Name: "sedan", Wash: domain.WashPrices{Outside: &outside}},
		},
	}
}

func TestLocationRequestValidate(t *testing.T) {
	assert.True(t, priceTableRequest().validate())

	req := priceTableRequest()
	req.LocationName = ""
	assert.False(t, req.validate())

	req = priceTableRequest()
	req.LocationType = "airport"
	assert.False(t, req.validate())

	req = priceTableRequest()
	req.CarTypes = append(req.CarTypes, domain.CarTypePrices{Name: "sedan"})
	assert.False(t, req.validate(), "duplicate car type names rejected")

	req = priceTableRequest()
	negative := -5.0
	req.CarTypes[0].Transfer.PerKm = &negative
	assert.False(t, req.validate(), "negative prices rejected")

	req = priceTableRequest()
	req.CarTypes[0].Name = ""
	assert.False(t, req.validate())
}
