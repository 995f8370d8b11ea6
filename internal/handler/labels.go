package handler

import "carcare-backend/internal/domain"

// Display labels shown in listings and exports. Keys are the stored enum
// values, values are what the back office expects to read.
var washTypeLabels = map[domain.WashType]string{
	domain.WashOutside:         "Aussenreinigung",
	domain.WashInside:          "Innenreinigung",
	domain.WashOutInside:       "Kombipaket",
	domain.WashMotorrad:        "Motorrad wäsche",
	domain.WashTurnaround:      "Turnaround",
	domain.WashQuickTurnaround: "Quick Turnaround",
	domain.WashSpecial:         "Spezial",
}

var transferTypeLabels = map[domain.TransferType]string{
	domain.TransferHZP:         "HZP",
	domain.TransferHBP:         "HBP",
	domain.TransferAPDT:        "AP-DT",
	domain.TransferPresumptive: "Transfer KM",
}

var transferMethodLabels = map[domain.TransferMethod]string{
	domain.MethodCollection: "Collection",
	domain.MethodDelivery:   "Delivery",
}

func washTypeLabel(t domain.WashType) string {
	if label, ok := washTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

func transferTypeLabel(t domain.TransferType) string {
	if label, ok := transferTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

func transferMethodLabel(m domain.TransferMethod) string {
	if label, ok := transferMethodLabels[m]; ok {
		return label
	}
	return string(m)
}
