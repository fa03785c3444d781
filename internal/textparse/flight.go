package textparse

import (
	"regexp"
	"strconv"
	"strings"
)

// FlightResult holds the sub-fields of a flight booking description.
type FlightResult struct {
	Route        string
	TripType     string
	PaxCount     int
	AirlineCode  string
	BookerEmail  string
	TravelerName string
}

var (
	partSeparator = regexp.MustCompile(`[\n|]+`)

	tripTypePattern  = regexp.MustCompile(`^(ONE_WAY|TWO_WAY|ROUND_TRIP)`)
	routePattern     = regexp.MustCompile(`\b([A-Z]{3})_([A-Z]{3})\b`)
	paxPattern       = regexp.MustCompile(`(?i)\bPax\s*:\s*(\d+)`)
	airlinePattern   = regexp.MustCompile(`(?i)\bAirline\s+ID\s*:\s*([A-Z0-9]{2})\b`)
	bookerPattern    = regexp.MustCompile(`(?i)\bBooker\s*:\s*([A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,})`)
	passengerPattern = regexp.MustCompile(`(?i)\bPassengers?\s*:\s*(.+)`)
)

var tripTypeNames = map[string]string{
	"ONE_WAY":    "One Way",
	"TWO_WAY":    "Round Trip",
	"ROUND_TRIP": "Round Trip",
}

// ParseFlightDescription splits text on newlines and pipes and runs one
// independent pattern per sub-field over the parts. The first part matching
// a pattern wins; a missing sub-field stays empty, except the passenger
// count which defaults to 1.
func ParseFlightDescription(text string) FlightResult {
	result := FlightResult{PaxCount: 1}
	paxSeen := false

	for _, part := range partSeparator.Split(text, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if result.TripType == "" {
			if m := tripTypePattern.FindStringSubmatch(part); m != nil {
				result.TripType = tripTypeNames[m[1]]
			}
		}
		if result.Route == "" {
			result.Route = findRoute(part)
		}
		if !paxSeen {
			if m := paxPattern.FindStringSubmatch(part); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
					result.PaxCount = n
					paxSeen = true
				}
			}
		}
		if result.AirlineCode == "" {
			if m := airlinePattern.FindStringSubmatch(part); m != nil {
				result.AirlineCode = strings.ToUpper(m[1])
			}
		}
		if result.BookerEmail == "" {
			if m := bookerPattern.FindStringSubmatch(part); m != nil {
				result.BookerEmail = m[1]
			}
		}
		if result.TravelerName == "" {
			if m := passengerPattern.FindStringSubmatch(part); m != nil {
				result.TravelerName = strings.TrimSpace(strings.Trim(strings.TrimSpace(m[1]), `"'`))
			}
		}
	}
	return result
}

// findRoute returns the first XXX_YYY airport pair that is not itself a
// trip-type token such as ONE_WAY.
func findRoute(part string) string {
	for _, m := range routePattern.FindAllStringSubmatch(part, -1) {
		if _, isTripType := tripTypeNames[m[0]]; isTripType {
			continue
		}
		return m[1] + "-" + m[2]
	}
	return ""
}
