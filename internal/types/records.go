package types

import (
	"strconv"
	"time"
)

// =============================================================================
// RECORD INTERFACE
// =============================================================================

// Field is one named value of a flattened record.
type Field struct {
	Name  string
	Value any
}

// Record is a canonical entity ready for a generic insert-or-update call.
type Record interface {
	// Table names the logical table the record belongs to.
	Table() string

	// NaturalKey is the stable identifier the record is upserted by.
	NaturalKey() string

	// Fields flattens the record into ordered key-value pairs.
	Fields() []Field
}

// Table names.
const (
	TableInstallments = "bfko_installments"
	TableSPPD         = "sppd_transactions"
	TableCC           = "cc_transactions"
	TableServiceFees  = "service_fee_transactions"
	TableSummaries    = "cc_sheet_summaries"
)

// DateValue renders an optional date for storage: ISO text, or nil.
func DateValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format("2006-01-02")
}

// =============================================================================
// BFKO INSTALLMENTS
// =============================================================================

// Installment payment states.
const (
	StatusPaid   = "Lunas"
	StatusUnpaid = "Belum Bayar"
)

// InstallmentRecord is one employee's payment for one month.
type InstallmentRecord struct {
	EmployeeID   string
	EmployeeName string
	Position     string
	OrgUnit      string
	MonthName    string
	Month        time.Month
	Year         int
	Amount       int64
	PaidOn       *time.Time
	Status       string
	Stage        string
	SourceSheet  string
}

func (r InstallmentRecord) Table() string { return TableInstallments }

func (r InstallmentRecord) NaturalKey() string {
	return r.EmployeeID + "|" + strconv.Itoa(r.Year) + "|" + strconv.Itoa(int(r.Month))
}

func (r InstallmentRecord) Fields() []Field {
	return []Field{
		{"employee_id", r.EmployeeID},
		{"employee_name", r.EmployeeName},
		{"position", r.Position},
		{"org_unit", r.OrgUnit},
		{"month_name", r.MonthName},
		{"year", r.Year},
		{"amount", r.Amount},
		{"paid_on_date", DateValue(r.PaidOn)},
		{"status", r.Status},
		{"stage", r.Stage},
		{"source_sheet", r.SourceSheet},
	}
}

// =============================================================================
// TRAVEL TRANSACTIONS (SPPD / CC)
// =============================================================================

// TravelSource tells SPPD rows from CC rows.
type TravelSource string

const (
	SourceSPPD TravelSource = "sppd"
	SourceCC   TravelSource = "cc"
)

// TransactionKind is payment or refund.
type TransactionKind string

const (
	KindPayment TransactionKind = "payment"
	KindRefund  TransactionKind = "refund"
)

// TravelTransaction is one SPPD trip or one CC settlement line.
type TravelTransaction struct {
	Source          TravelSource
	SequenceNo      int
	TransactionID   string
	TravelerName    string
	Origin          string
	Destination     string
	FullDestination string
	StartDate       *time.Time
	EndDate         *time.Time
	Amount          int64
	Kind            TransactionKind
	Status          string
	SourceSheet     string

	PersonnelNumber    string
	TripNumber         string
	Reason             string
	PlannedPaymentDate *time.Time
	BeneficiaryBank    string
}

// DurationDays is derived from the trip dates, clamped at zero.
func (t TravelTransaction) DurationDays() int {
	return DurationDays(t.StartDate, t.EndDate)
}

// DurationDays returns whole days between start and end, never negative.
func DurationDays(start, end *time.Time) int {
	if start == nil || end == nil {
		return 0
	}
	days := int(end.Sub(*start).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func (t TravelTransaction) Table() string {
	if t.Source == SourceCC {
		return TableCC
	}
	return TableSPPD
}

func (t TravelTransaction) NaturalKey() string {
	if t.Source == SourceCC {
		return t.SourceSheet + "|" + t.TransactionID
	}
	return t.TransactionID
}

func (t TravelTransaction) Fields() []Field {
	fields := []Field{
		{"sequence_no", t.SequenceNo},
		{"transaction_id", t.TransactionID},
		{"traveler_name", t.TravelerName},
		{"origin", t.Origin},
		{"destination", t.Destination},
		{"full_destination", t.FullDestination},
		{"start_date", DateValue(t.StartDate)},
		{"end_date", DateValue(t.EndDate)},
		{"duration_days", t.DurationDays()},
		{"amount", t.Amount},
		{"transaction_kind", string(t.Kind)},
		{"status", t.Status},
		{"source_sheet", t.SourceSheet},
	}
	if t.Source == SourceCC {
		return append(fields,
			Field{"personnel_number", t.PersonnelNumber},
			Field{"trip_number", t.TripNumber},
		)
	}
	return append(fields,
		Field{"reason", t.Reason},
		Field{"planned_payment_date", DateValue(t.PlannedPaymentDate)},
		Field{"beneficiary_bank", t.BeneficiaryBank},
	)
}

// =============================================================================
// SERVICE FEE TRANSACTIONS
// =============================================================================

// ServiceType is the discriminant for the category-specific fields.
type ServiceType string

const (
	ServiceHotel  ServiceType = "hotel"
	ServiceFlight ServiceType = "flight"
)

// HotelFields are set only for hotel bookings.
type HotelFields struct {
	HotelName string
	RoomType  string
}

// FlightFields are set only for flight bookings.
type FlightFields struct {
	Route       string
	TripType    string
	Pax         int
	AirlineID   string
	BookerEmail string
}

// ServiceFeeTransaction is one merchant booking fee line.
type ServiceFeeTransaction struct {
	BookingID         string
	ServiceType       ServiceType
	TransactionTime   *time.Time
	Status            string
	TransactionAmount int64
	ServiceFee        int64
	VAT               int64
	TotalBilled       int64
	Currency          string
	SettlementMethod  string
	Description       string
	TravelerName      string
	Hotel             *HotelFields
	Flight            *FlightFields
	NeedsReview       bool
	SourceSheet       string
}

func (s ServiceFeeTransaction) Table() string { return TableServiceFees }

func (s ServiceFeeTransaction) NaturalKey() string {
	return s.SourceSheet + "|" + s.BookingID
}

func (s ServiceFeeTransaction) Fields() []Field {
	var txTime any
	if s.TransactionTime != nil {
		txTime = s.TransactionTime.Format("2006-01-02 15:04:05")
	}
	fields := []Field{
		{"booking_id", s.BookingID},
		{"service_type", string(s.ServiceType)},
		{"transaction_time", txTime},
		{"status", s.Status},
		{"transaction_amount", s.TransactionAmount},
		{"service_fee", s.ServiceFee},
		{"vat", s.VAT},
		{"total_billed", s.TotalBilled},
		{"currency", s.Currency},
		{"settlement_method", s.SettlementMethod},
		{"description", s.Description},
		{"traveler_name", s.TravelerName},
	}
	switch {
	case s.Hotel != nil:
		fields = append(fields,
			Field{"hotel_name", s.Hotel.HotelName},
			Field{"room_type", s.Hotel.RoomType},
		)
	case s.Flight != nil:
		fields = append(fields,
			Field{"route", s.Flight.Route},
			Field{"trip_type", s.Flight.TripType},
			Field{"pax", s.Flight.Pax},
			Field{"airline_id", s.Flight.AirlineID},
			Field{"booker_email", s.Flight.BookerEmail},
		)
	}
	return append(fields,
		Field{"needs_review", s.NeedsReview},
		Field{"source_sheet", s.SourceSheet},
	)
}

// =============================================================================
// SHEET SUMMARY
// =============================================================================

// RefundItem is one line of a CC refund listing, kept for audit display.
type RefundItem struct {
	Row       int
	BookingID string
	Name      string
	Amount    int64
}

// SheetSummary holds the reconciliation buckets of one CC sheet.
//
// DocumentGrandTotal is the figure printed in the sheet. It is compared
// against Computed and never overwritten by it.
type SheetSummary struct {
	SourceSheet        string
	GrossPaymentTotal  int64
	RefundTotal        int64
	TransferFee        int64
	AnnualFee          int64
	AdminInterestFee   int64
	DocumentGrandTotal int64
	HasGrandTotal      bool
	RefundItems        []RefundItem
}

// Computed is gross - refund + fees.
func (s SheetSummary) Computed() int64 {
	return s.GrossPaymentTotal - s.RefundTotal + s.TransferFee + s.AnnualFee + s.AdminInterestFee
}

// Difference is Computed minus the printed grand total.
func (s SheetSummary) Difference() int64 {
	return s.Computed() - s.DocumentGrandTotal
}

// Matches reports whether the printed grand total agrees with Computed.
func (s SheetSummary) Matches() bool {
	return s.HasGrandTotal && s.Difference() == 0
}

// RefundItemsTotal sums the refund listing, to be cross-checked against
// RefundTotal.
func (s SheetSummary) RefundItemsTotal() int64 {
	var total int64
	for _, item := range s.RefundItems {
		total += item.Amount
	}
	return total
}

func (s SheetSummary) Table() string { return TableSummaries }

func (s SheetSummary) NaturalKey() string { return s.SourceSheet }

func (s SheetSummary) Fields() []Field {
	return []Field{
		{"source_sheet", s.SourceSheet},
		{"gross_payment_total", s.GrossPaymentTotal},
		{"refund_total", s.RefundTotal},
		{"transfer_fee", s.TransferFee},
		{"annual_fee", s.AnnualFee},
		{"admin_interest_fee", s.AdminInterestFee},
		{"document_grand_total", s.DocumentGrandTotal},
		{"computed_total", s.Computed()},
		{"refund_items", len(s.RefundItems)},
	}
}
