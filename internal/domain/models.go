package domain

import "time"

// Enumerations
const (
	RoleUser       UserRole = "user"
	RoleAccountant UserRole = "accountant"
	RoleManager    UserRole = "manager"
	RoleAdmin      UserRole = "admin"

	LocationNoTransfer   LocationType = "noTransfer"
	LocationWithTransfer LocationType = "withTransfer"

	WashOutside         WashType = "outside"
	WashInside          WashType = "inside"
	WashOutInside       WashType = "outInside"
	WashMotorrad        WashType = "motorrad"
	WashTurnaround      WashType = "turnaround"
	WashQuickTurnaround WashType = "quickTurnaround"
	WashSpecial         WashType = "special"

	TransferHZP         TransferType = "hzp"
	TransferHBP         TransferType = "hbp"
	TransferAPDT        TransferType = "apdt"
	TransferPresumptive TransferType = "presumptive"

	MethodCollection TransferMethod = "collection"
	MethodDelivery   TransferMethod = "delivery"
)

type UserRole string
type LocationType string
type WashType string
type TransferType string
type TransferMethod string

// ValidRole reports whether r is one of the known roles.
func ValidRole(r UserRole) bool {
	switch r {
	case RoleUser, RoleAccountant, RoleManager, RoleAdmin:
		return true
	}
	return false
}

func ValidLocationType(t LocationType) bool {
	return t == LocationNoTransfer || t == LocationWithTransfer
}

func ValidWashType(t WashType) bool {
	switch t {
	case WashOutside, WashInside, WashOutInside, WashMotorrad,
		WashTurnaround, WashQuickTurnaround, WashSpecial:
		return true
	}
	return false
}

func ValidTransferType(t TransferType) bool {
	switch t {
	case TransferHZP, TransferHBP, TransferAPDT, TransferPresumptive:
		return true
	}
	return false
}

func ValidTransferMethod(m TransferMethod) bool {
	return m == MethodCollection || m == MethodDelivery
}

type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Street       string
	PostalCode   string
	Place        string
	AHV          string
	Description  string
	Role         UserRole
	HourlyPay    float64
	LocationID   *int64
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// FullName is the display form used in joined listings and exports.
func (u User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return "User Deleted"
	}
	return u.FirstName + " " + u.LastName
}

// WashPrices holds the flat price per wash subtype. A nil entry means the
// location does not offer that subtype for the car type.
type WashPrices struct {
	Outside         *float64 `json:"outside,omitempty"`
	Inside          *float64 `json:"inside,omitempty"`
	OutInside       *float64 `json:"outInside,omitempty"`
	Motorrad        *float64 `json:"motorrad,omitempty"`
	Turnaround      *float64 `json:"turnaround,omitempty"`
	QuickTurnaround *float64 `json:"quickTurnaround,omitempty"`
}

// Price looks up the flat price for a wash subtype.
func (w WashPrices) Price(t WashType) (float64, bool) {
	var p *float64
	switch t {
	case WashOutside:
		p = w.Outside
	case WashInside:
		p = w.Inside
	case WashOutInside:
		p = w.OutInside
	case WashMotorrad:
		p = w.Motorrad
	case WashTurnaround:
		p = w.Turnaround
	case WashQuickTurnaround:
		p = w.QuickTurnaround
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// TransferPrices holds flat transfer prices plus the base + per-km pair used
// for presumptive pricing.
type TransferPrices struct {
	HZP   *float64 `json:"hzp,omitempty"`
	HBP   *float64 `json:"hbp,omitempty"`
	APDT  *float64 `json:"apdt,omitempty"`
	Base  *float64 `json:"base,omitempty"`
	PerKm *float64 `json:"perKm,omitempty"`
}

func (t TransferPrices) Price(tt TransferType) (float64, bool) {
	var p *float64
	switch tt {
	case TransferHZP:
		p = t.HZP
	case TransferHBP:
		p = t.HBP
	case TransferAPDT:
		p = t.APDT
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Presumptive returns the base fee and per-km rate, false when the location
// has no distance pricing for the car type.
func (t TransferPrices) Presumptive() (base, perKm float64, ok bool) {
	if t.Base == nil || t.PerKm == nil {
		return 0, 0, false
	}
	return *t.Base, *t.PerKm, true
}

// CarTypePrices is one row of a location's price table.
type CarTypePrices struct {
	Name     string         `json:"name"`
	Wash     WashPrices     `json:"wash"`
	Transfer TransferPrices `json:"transfer"`
}

type Location struct {
	ID           int64
	LocationName string
	LocationType LocationType
	CarTypes     []CarTypePrices
	CreatedBy    int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// CarType finds the price-table row for a car type name.
func (l Location) CarType(name string) (CarTypePrices, bool) {
	for _, ct := range l.CarTypes {
		if ct.Name == name {
			return ct, true
		}
	}
	return CarTypePrices{}, false
}

// Break is one pause inside a work session. At most one break per session is
// open at a time.
type Break struct {
	ID         int64      `json:"id"`
	SessionID  int64      `json:"-"`
	StartBreak time.Time  `json:"startBreak"`
	EndBreak   *time.Time `json:"endBreak"`
	Active     bool       `json:"active"`
}

// WorkSession is one employee's check-in-to-check-out period for a calendar
// day. EndTime stays nil while the session is active; WorkMinutes,
// DailySalary, Hours and Suspect are derived at checkout or admin edit.
type WorkSession struct {
	ID          int64
	UserID      int64
	StartTime   time.Time
	EndTime     *time.Time
	Breaks      []Break
	Active      bool
	Attempt     int
	Description string
	Hours       string
	WorkMinutes int
	DailySalary float64
	Paid        bool
	Suspect     bool
	CreatedBy   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OpenBreak returns the currently active break, if any.
func (s WorkSession) OpenBreak() (Break, bool) {
	for _, b := range s.Breaks {
		if b.Active {
			return b, true
		}
	}
	return Break{}, false
}

// CarWash is one recorded wash service.
type CarWash struct {
	ID           int64
	UserID       int64
	LicensePlate string
	LocationID   int64
	CarType      string
	WashType     WashType
	SpecialPrice *float64
	FinalPrice   float64
	Suspect      bool
	CreatedBy    int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CarTransfer is one recorded vehicle transfer.
type CarTransfer struct {
	ID               int64
	UserID           int64
	LicensePlate     string
	LocationID       int64
	CarType          string
	TransferType     TransferType
	TransferMethod   TransferMethod
	TransferDistance *float64
	TransferPlace    string
	FinalPrice       float64
	Suspect          bool
	CreatedBy        int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PayrollParty identifies employer or worker on a payroll record.
type PayrollParty struct {
	Name   string `json:"name"`
	Street string `json:"street"`
	PLZ    string `json:"plz"`
	AHV    string `json:"ahv,omitempty"`
}

type Payroll struct {
	ID               int64
	UserID           int64
	Employer         PayrollParty
	Worker           PayrollParty
	MonthYear        string
	PlaceDate        string
	Canton           string
	BillingProcedure string
	TotalHours       float64
	HourlyPay        float64
	HolidayBonus     float64
	HourlyPayGross   float64
	GrossSalary      float64
	HourlyDeduction  float64
	MonthlyDeduction float64
	MonthlyPay       float64
	Taxes            map[string]float64
	CreatedBy        int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TodayPlan is the single shared daily assignment sheet.
type TodayPlan struct {
	ID         int64
	Users      map[string]any
	CreatedBy  int64
	AuthorName string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type PasswordReset struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}
