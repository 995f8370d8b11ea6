package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"carcare-backend/internal/domain"
)

func TestLabels(t *testing.T) {
	assert.Equal(t, "Kombipaket", washTypeLabel(domain.WashOutInside))
	assert.Equal(t, "Spezial", washTypeLabel(domain.WashSpecial))
	assert.Equal(t, "HZP", transferTypeLabel(domain.TransferHZP))
	assert.Equal(t, "Transfer KM", transferTypeLabel(domain.TransferPresumptive))
	assert.Equal(t, "Collection", transferMethodLabel(domain.MethodCollection))

	// unknown values fall through unchanged
	assert.Equal(t, "vacuum", washTypeLabel(domain.WashType("vacuum")))
}

func TestRecordUserNameFallback(t *testing.T) {
	assert.Equal(t, "Anna Keller", recordUserName("Anna", "Keller"))
	assert.Equal(t, "User Deleted", recordUserName("", ""))
}
