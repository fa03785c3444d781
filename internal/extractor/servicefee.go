package extractor

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/finance-sheet-normalizer/internal/config"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/normalize"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/scanner"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/textparse"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/types"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/validation"
)

// flightHintPattern spots flight descriptions on sheets whose name does not
// say HL or FL.
var flightHintPattern = regexp.MustCompile(`\b(ONE_WAY|TWO_WAY|ROUND_TRIP|[A-Z]{3}_[A-Z]{3})\b|\b(?i:pax)\s*:`)

// ServiceFee extracts one merchant booking line and decodes its
// description into hotel or flight fields.
//
// VAT is floor(fee x rate) computed in decimal, and the total billed is fee
// plus VAT. A description the hotel parser cannot fully decompose still
// yields a record, flagged for review and reported as a warning.
func (e *Extractor) ServiceFee(row types.Row, cm scanner.ColumnMap, ctx Context) (*types.ServiceFeeTransaction, []*validation.RowError) {
	var errs []*validation.RowError

	tx := &types.ServiceFeeTransaction{
		BookingID:         strings.TrimSuffix(e.text(row, cm, config.RoleBookingID), ".0"),
		Status:            e.text(row, cm, config.RoleStatus),
		TransactionAmount: normalize.Amount(cm.Cell(row, config.RoleTransactionAmount)),
		ServiceFee:        normalize.Amount(cm.Cell(row, config.RoleServiceFee)),
		Currency:          e.text(row, cm, config.RoleCurrency),
		SettlementMethod:  e.text(row, cm, config.RoleSettlementMethod),
		Description:       cm.Text(row, config.RoleDescription),
		SourceSheet:       ctx.Sheet,
	}
	if tx.Status == "" {
		tx.Status = e.profile.DefaultStatus
	}
	if tx.Currency == "" {
		tx.Currency = "IDR"
	}

	if c := cm.Cell(row, config.RoleTransactionTime); !c.IsEmpty() {
		if t, ok := normalize.DateTime(c); ok {
			tx.TransactionTime = &t
		} else {
			errs = append(errs, validation.NewUnparseable(ctx.Sheet, ctx.Row, config.RoleTransactionTime, c.Text(), e.required(config.RoleTransactionTime)))
			if e.required(config.RoleTransactionTime) {
				return nil, errs
			}
		}
	}

	tx.VAT = decimal.NewFromInt(tx.ServiceFee).Mul(e.vatRate).Floor().IntPart()
	tx.TotalBilled = tx.ServiceFee + tx.VAT

	tx.ServiceType = ctx.ServiceType
	if tx.ServiceType == "" {
		tx.ServiceType = guessServiceType(tx.Description)
	}

	switch tx.ServiceType {
	case types.ServiceFlight:
		f := textparse.ParseFlightDescription(tx.Description)
		tx.TravelerName = f.TravelerName
		tx.Flight = &types.FlightFields{
			Route:       f.Route,
			TripType:    f.TripType,
			Pax:         f.PaxCount,
			AirlineID:   f.AirlineCode,
			BookerEmail: f.BookerEmail,
		}
		tx.NeedsReview = f.Route == ""
	default:
		h := e.hotels.Parse(tx.Description)
		tx.TravelerName = h.TravelerName
		tx.Hotel = &types.HotelFields{HotelName: h.MerchantName, RoomType: h.Category}
		tx.NeedsReview = h.NeedsReview()
	}

	if tx.NeedsReview {
		errs = append(errs, validation.NewUnparseable(ctx.Sheet, ctx.Row, config.RoleDescription, tx.Description, false))
	}
	return tx, errs
}

func guessServiceType(description string) types.ServiceType {
	if flightHintPattern.MatchString(description) {
		return types.ServiceFlight
	}
	return types.ServiceHotel
}

// ExtractServiceFee extracts a Service Fee sheet. The "- HL"/"- FL" sheet
// name suffix decides hotel or flight; other names fall back to inspecting
// each description.
func (e *Extractor) ExtractServiceFee(g types.Grid) *SheetResult {
	res := newSheetResult(g.Name)
	if !e.locateHeader(g, 0, res) {
		return res
	}

	meta, _ := ParseServiceFeeSheetName(g.Name)
	ids := NewIDSet()

	res.DataStart, res.DataEnd = res.HeaderRow+1, len(g.Rows)
	for i := res.DataStart; i < res.DataEnd; i++ {
		row := g.Rows[i]
		if row.IsBlank() {
			continue
		}
		if _, reject := e.Reject(row, res.Columns); reject {
			res.Report.Skip()
			continue
		}

		ctx := Context{Sheet: g.Name, Row: i + 1, ServiceType: meta.ServiceType}
		tx, errs := e.ServiceFee(row, res.Columns, ctx)
		res.Report.Add(errs...)
		if tx == nil {
			continue
		}
		if !ids.Claim(tx.BookingID) {
			res.Report.Add(validation.NewDuplicate(g.Name, ctx.Row, config.RoleBookingID, tx.BookingID))
			continue
		}
		res.emit(*tx, ctx.Row)
	}
	return res
}
