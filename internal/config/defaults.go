package config

import (
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/normalize"
)

// Column roles shared by the built-in profiles and the extractor.
const (
	RoleEmployeeID        = "employee_id"
	RoleEmployeeName      = "employee_name"
	RolePosition          = "position"
	RoleOrgUnit           = "org_unit"
	RoleStage             = "stage"
	RoleSequence          = "sequence"
	RoleTripNumber        = "trip_number"
	RoleBookingID         = "booking_id"
	RoleTravelerName      = "traveler_name"
	RolePersonnelNumber   = "personnel_number"
	RoleDestination       = "destination"
	RoleReason            = "reason"
	RoleStartDate         = "start_date"
	RoleEndDate           = "end_date"
	RoleTripDate          = "trip_date"
	RolePlannedPayment    = "planned_payment_date"
	RoleAmount            = "amount"
	RoleBank              = "beneficiary_bank"
	RoleTransactionKind   = "transaction_kind"
	RoleTransactionTime   = "transaction_time"
	RoleStatus            = "status"
	RoleDescription       = "description"
	RoleTransactionAmount = "transaction_amount"
	RoleServiceFee        = "service_fee"
	RoleCurrency          = "currency"
	RoleSettlementMethod  = "settlement_method"
)

// DefaultProfiles returns fresh copies of the built-in profiles for the four
// report templates.
func DefaultProfiles() Profiles {
	return Profiles{
		KindBFKO:       bfkoProfile(),
		KindSPPD:       sppdProfile(),
		KindCC:         ccProfile(),
		KindServiceFee: serviceFeeProfile(),
	}
}

func bfkoProfile() *SourceProfile {
	return &SourceProfile{
		Name:                   "BFKO",
		Kind:                   KindBFKO,
		FilePatterns:           []string{"*BFKO*", "*bfko*", "*Bfko*"},
		SheetPatterns:          []string{`(?i)\bUID\b`},
		HeaderLabels:           []string{"NIP"},
		HeaderWindow:           5,
		SectionLabel:           "Angsuran Bulanan",
		SectionEndMinLength:    15,
		MonthNames:             normalize.IndonesianMonths.Names(),
		AllowLegacyMonthLayout: true,
		Columns: map[string][]string{
			RoleEmployeeID:   {"NIP"},
			RoleEmployeeName: {"Nama", "Nama Pegawai", "Nama Karyawan"},
			RolePosition:     {"Jabatan"},
			RoleOrgUnit:      {"Unit", "Unit Kerja", "Unit Induk"},
			RoleStage:        {"Status", "Status Angsuran", "Keterangan"},
		},
		PrimaryKey: RoleEmployeeID,
	}
}

func sppdProfile() *SourceProfile {
	return &SourceProfile{
		Name:         "SPPD",
		Kind:         KindSPPD,
		FilePatterns: []string{"*SPPD*", "*sppd*", "*Sppd*"},
		HeaderLabels: []string{"Trip Number"},
		HeaderWindow: 10,
		Columns: map[string][]string{
			RoleTripNumber:     {"Trip Number"},
			RoleTravelerName:   {"Customer Name"},
			RoleDestination:    {"Trip Destination"},
			RoleReason:         {"Reason for Trip"},
			RoleStartDate:      {"Trip Begins On"},
			RoleEndDate:        {"Trip Ends On"},
			RolePlannedPayment: {"Tanggal Rencana Bayar", "Tanggal Bayar"},
			RoleAmount:         {"Paid Amount"},
			RoleBank:           {"Beneficiary Bank Name"},
		},
		PrimaryKey:     RoleTripNumber,
		RequiredFields: []string{RoleStartDate, RoleEndDate},
		RejectMarkers:  []string{"Grand Total", "Total", "Trip Number"},
		Cleanup: []CleanupRule{
			{Role: RoleTripNumber, Actions: []CleanupAction{
				{Type: "regex_replace", Find: `\.0+$`, Value: ""},
				{Type: "extract_digits"},
				{Type: "max_length", Value: "10"},
			}},
		},
		DefaultStatus: "Complete",
	}
}

func ccProfile() *SourceProfile {
	return &SourceProfile{
		Name:         "CC",
		Kind:         KindCC,
		FilePatterns: []string{"*CC*", "*cc*", "*Credit Card*", "*Kartu Kredit*"},
		HeaderLabels: []string{"Booking ID"},
		HeaderWindow: 10,
		Columns: map[string][]string{
			RoleSequence:        {"No.", "No"},
			RoleBookingID:       {"Booking ID"},
			RoleTravelerName:    {"Name", "Nama"},
			RolePersonnelNumber: {"Personel Number", "Personnel Number"},
			RoleTripNumber:      {"Trip Number"},
			RoleDestination:     {"Trip Destination"},
			RoleTripDate:        {"Trip Date"},
			RoleAmount:          {"Payment", "Amount"},
			RoleTransactionKind: {"Transaction Type"},
		},
		PrimaryKey:    RoleBookingID,
		RejectMarkers: []string{"TOTAL", "NOMINAL REFUND", "BIAYA", "IURAN", "Booking ID"},
		Cleanup: []CleanupRule{
			{Role: RoleTransactionKind, Actions: []CleanupAction{
				{Type: "trim"},
				{Type: "lookup", LookupTable: map[string]string{
					"Refund": "refund", "REFUND": "refund",
					"Payment": "payment", "PAYMENT": "payment",
				}},
			}},
		},
		DefaultStatus: "Complete",
		Summary: SummaryLayout{
			ValueColumn: 8,
			SearchFrom:  7,
			SearchTo:    10,
			MinValue:    1000,
		},
	}
}

func serviceFeeProfile() *SourceProfile {
	return &SourceProfile{
		Name:          "Service Fee",
		Kind:          KindServiceFee,
		FilePatterns:  []string{"*Service Fee*", "*SERVICE FEE*", "*service_fee*", "*ServiceFee*"},
		SheetPatterns: []string{`(?i)-\s*(FL|HL)\s*$`},
		HeaderLabels:  []string{"Transaction Time", "Booking ID"},
		HeaderWindow:  10,
		Columns: map[string][]string{
			RoleTransactionTime:   {"Transaction Time"},
			RoleBookingID:         {"Booking ID"},
			RoleStatus:            {"Status"},
			RoleDescription:       {"Description"},
			RoleTransactionAmount: {"Transaction Amount"},
			RoleServiceFee:        {"Base Amount", "Service Fee"},
			RoleCurrency:          {"Currency"},
			RoleSettlementMethod:  {"Transaction Settlement Method", "Settlement Method"},
		},
		PrimaryKey:    RoleBookingID,
		RejectMarkers: []string{"SUBTOTAL", "VAT", "TOTAL", "Pembayaran", "No."},
		Cleanup: []CleanupRule{
			{Role: RoleStatus, Actions: []CleanupAction{
				{Type: "trim"},
				{Type: "if_empty_use_default", Value: "ISSUED"},
			}},
			{Role: RoleCurrency, Actions: []CleanupAction{
				{Type: "trim"},
				{Type: "uppercase"},
				{Type: "if_empty_use_default", Value: "IDR"},
			}},
		},
		DefaultStatus: "ISSUED",
		VATRate:       "0.11",
	}
}
