package textparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseHotelDescriptionAmaris(t *testing.T) {
	got := ParseHotelDescription("Amaris Hotel Hertasning Makassar Smart Queen 2 ANDI FADLI")

	assert.Equal(t, "ANDI FADLI", got.TravelerName)
	assert.Contains(t, got.Category, "Smart Queen")
	assert.Equal(t, "Amaris Hotel Hertasning Makassar", got.MerchantName)
	assert.NotContains(t, got.MerchantName, "Smart Queen")
	assert.NotContains(t, got.MerchantName, "ANDI FADLI")
	assert.Equal(t, Decomposed, got.Outcome)
	assert.False(t, got.NeedsReview())
}

func TestParseHotelDescription(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		merchant string
		category string
		traveler string
		outcome  Outcome
	}{
		{
			name:     "booking prefix stripped",
			text:     "SERVICE FEE BID: 1265543332 | Swiss-Belhotel Makassar Deluxe King Bed MUHAMMAD RIZAL",
			merchant: "Swiss-Belhotel Makassar",
			category: "Deluxe King Bed",
			traveler: "MUHAMMAD RIZAL",
			outcome:  Decomposed,
		},
		{
			name:     "longest phrase wins",
			text:     "Hotel Santika Palu Superior Twin Bed 3 ANDI",
			merchant: "Hotel Santika Palu",
			category: "Superior Twin Bed 3",
			traveler: "ANDI",
			outcome:  Decomposed,
		},
		{
			name:     "caps tail stops at room vocabulary",
			text:     "HOTEL ASTON KENDARI DELUXE KING ANDI FADLI",
			merchant: "HOTEL ASTON KENDARI",
			category: "DELUXE KING",
			traveler: "ANDI FADLI",
			outcome:  Decomposed,
		},
		{
			name:     "mixed case traveler after room count",
			text:     "Grand Clarion Makassar Superior Queen 2 Arie Pratama",
			merchant: "Grand Clarion Makassar",
			category: "Superior Queen 2",
			traveler: "Arie Pratama",
			outcome:  Decomposed,
		},
		{
			name:     "long caps traveler name",
			text:     "Swiss-Belhotel Makassar Deluxe King Bed ANDI MUHAMMAD FADLI RAHMAN PUTRA SETIAWAN",
			merchant: "Swiss-Belhotel Makassar",
			category: "Deluxe King Bed",
			traveler: "ANDI MUHAMMAD FADLI RAHMAN PUTRA SETIAWAN",
			outcome:  Decomposed,
		},
		{
			name:     "structural bed count",
			text:     "Ibis Styles Deluxe 1 King Bed BUDI",
			merchant: "Ibis Styles",
			category: "Deluxe 1 King Bed",
			traveler: "BUDI",
			outcome:  Decomposed,
		},
		{
			name:     "truncated family room",
			text:     "Hotel Dalton Family Ro SITI AMINAH",
			merchant: "Hotel Dalton",
			category: "Family Room",
			traveler: "SITI AMINAH",
			outcome:  Decomposed,
		},
		{
			name:     "room number",
			text:     "Wisma Kartika 205 RINA",
			merchant: "Wisma Kartika",
			category: "Room 205",
			traveler: "RINA",
			outcome:  Decomposed,
		},
		{
			name:     "no traveler",
			text:     "Amaris Hotel Pettarani Smart King",
			merchant: "Amaris Hotel Pettarani",
			category: "Smart King",
			outcome:  PartialMerchantOnly,
		},
		{
			name:     "caps hotel name is not a traveler",
			text:     "GRAND HOTEL",
			merchant: "GRAND HOTEL",
			outcome:  PartialMerchantOnly,
		},
		{
			name:     "nothing recognisable",
			text:     "Penginapan Sederhana",
			merchant: "Penginapan Sederhana",
			outcome:  PartialMerchantOnly,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseHotelDescription(tt.text)
			assert.Equal(t, tt.merchant, got.MerchantName)
			assert.Equal(t, tt.category, got.Category)
			assert.Equal(t, tt.traveler, got.TravelerName)
			assert.Equal(t, tt.outcome, got.Outcome)
		})
	}
}

func TestParseHotelDescriptionNeverEmptiesMerchant(t *testing.T) {
	got := ParseHotelDescription("Deluxe King ANDI")
	assert.Equal(t, "Deluxe King ANDI", got.MerchantName)
	assert.Empty(t, got.Category)
	assert.Empty(t, got.TravelerName)
	assert.True(t, got.NeedsReview())

	empty := ParseHotelDescription("   ")
	assert.Equal(t, PartialMerchantOnly, empty.Outcome)
}

func TestHotelParserOverrides(t *testing.T) {
	p := NewHotelParser(map[string]HotelOverride{
		"SERVICE FEE BID: 1 | Hotel Claro Kendari Kamar 2 Dewi": {
			HotelName:    "Hotel Claro Kendari",
			RoomType:     "Kamar",
			TravelerName: "DEWI",
		},
	})

	got := p.Parse("SERVICE FEE BID: 99 |  hotel claro kendari kamar 2 dewi")
	assert.Equal(t, "Hotel Claro Kendari", got.MerchantName)
	assert.Equal(t, "DEWI", got.TravelerName)
	assert.Equal(t, Decomposed, got.Outcome)
}

func TestParseFlightDescription(t *testing.T) {
	text := "ONE_WAY | UPG_CGK | Pax : 2 | Airline ID : GA\nBooker: travel.desk@example.co.id | Passengers: \"ANDI FADLI\""
	got := ParseFlightDescription(text)

	assert.Equal(t, FlightResult{
		Route:        "UPG-CGK",
		TripType:     "One Way",
		PaxCount:     2,
		AirlineCode:  "GA",
		BookerEmail:  "travel.desk@example.co.id",
		TravelerName: "ANDI FADLI",
	}, got)
}

func TestParseFlightDescriptionDefaults(t *testing.T) {
	got := ParseFlightDescription("ROUND_TRIP CGK_KDI\nPassenger: 'SITI'")
	assert.Equal(t, "Round Trip", got.TripType)
	assert.Equal(t, "CGK-KDI", got.Route)
	assert.Equal(t, 1, got.PaxCount)
	assert.Equal(t, "SITI", got.TravelerName)
	assert.Empty(t, got.AirlineCode)
	assert.Empty(t, got.BookerEmail)
}

func TestParseFlightDescriptionOrderInsensitive(t *testing.T) {
	a := ParseFlightDescription("Pax : 3|JT|CGK_DPS|TWO_WAY")
	b := ParseFlightDescription("TWO_WAY|CGK_DPS|Pax : 3")
	assert.Equal(t, b.Route, a.Route)
	assert.Equal(t, b.TripType, a.TripType)
	assert.Equal(t, 3, a.PaxCount)
}
