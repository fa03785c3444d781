// Package textparse pulls named sub-fields out of the free-text description
// column of Service Fee reports.
//
// Flight descriptions are delimiter-separated and parse reliably. Hotel
// descriptions are one run-on phrase ("Amaris Hotel Hertasning Makassar
// Smart Queen 2 ANDI FADLI") and are decomposed right to left: traveler
// tail, then room category, then whatever is left is the hotel. Partial
// decomposition is a normal outcome, reported through HotelResult.Outcome.
package textparse

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ginjaninja78/finance-sheet-normalizer/internal/normalize"
)

// Outcome tags how far a hotel description could be decomposed.
type Outcome int

const (
	// Decomposed means merchant, category and traveler were all found.
	Decomposed Outcome = iota + 1

	// PartialMerchantOnly means at least one sub-field is missing and the
	// record needs a manual look.
	PartialMerchantOnly
)

func (o Outcome) String() string {
	switch o {
	case Decomposed:
		return "Decomposed"
	case PartialMerchantOnly:
		return "PartialMerchantOnly"
	default:
		return "Unknown"
	}
}

// HotelResult is the decomposition of one hotel description.
type HotelResult struct {
	MerchantName string
	Category     string
	TravelerName string
	Outcome      Outcome
}

// NeedsReview reports whether the result should be surfaced for review.
func (r HotelResult) NeedsReview() bool {
	return r.Outcome != Decomposed
}

// HotelOverride pins the decomposition of a description the heuristics are
// known to get wrong.
type HotelOverride struct {
	HotelName    string `yaml:"hotel_name"`
	RoomType     string `yaml:"room_type"`
	TravelerName string `yaml:"traveler_name"`
}

// =============================================================================
// PATTERNS
// =============================================================================

var (
	bookingPrefixPattern = regexp.MustCompile(`(?i)^\s*SERVICE FEE BID:\s*\d+\s*\|\s*`)

	capsWordPattern = regexp.MustCompile(`^[A-Z][A-Z'.]+$`)

	// "... Smart Queen 2 Arie Pratama": mixed-case name after the room count.
	mixedCaseTravelerPattern = regexp.MustCompile(`^(.*\s\d+)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,3})$`)
)

// roomPhrases are matched at the end of the description, optionally followed
// by a room/night count. Longer phrases are tried first.
var roomPhrases = []string{
	"Deluxe King Bed", "Deluxe Queen Bed", "Deluxe Twin Bed",
	"Superior King Bed", "Superior Queen Bed", "Superior Twin Bed",
	"Standard King Bed", "Standard Queen Bed", "Standard Twin Bed",
	"Superior King", "Smart Queen", "Smart Twin", "Smart King",
	"Superior Queen", "Superior Twin", "Superior Double", "Superior Single",
	"Deluxe Queen", "Deluxe King", "Deluxe Twin",
	"Standard Queen", "Standard King", "Standard Twin",
	"Executive Queen", "Executive King", "Executive Suite",
	"Suite King", "Suite Queen", "Family Room",
	"Suite", "Family", "Queen", "King", "Twin", "Single", "Double", "Triple",
}

// roomVocabulary is the closed set of words that can never be part of a
// traveler name.
var roomVocabulary = map[string]bool{
	"KING": true, "QUEEN": true, "TWIN": true, "SINGLE": true, "DOUBLE": true,
	"TRIPLE": true, "BED": true, "BEDS": true, "ROOM": true, "SUITE": true,
	"DELUXE": true, "SUPERIOR": true, "STANDARD": true, "EXECUTIVE": true,
	"SMART": true, "FAMILY": true, "KAMAR": true, "WITH": true,
}

// merchantVocabulary marks an ALL-CAPS tail as part of the hotel name.
var merchantVocabulary = map[string]bool{
	"HOTEL": true, "INN": true, "RESORT": true, "RESIDENCE": true,
	"SUITES": true, "GUESTHOUSE": true, "HOMESTAY": true,
}

type categoryRule struct {
	pattern *regexp.Regexp
	render  func(m []string) string
}

func phraseRule(phrase string) categoryRule {
	return categoryRule{
		pattern: regexp.MustCompile(`(?i)(?:^|\s)(` + regexp.QuoteMeta(phrase) + `)(?:\s+(\d+))?\s*$`),
		render: func(m []string) string {
			if m[2] != "" {
				return m[1] + " " + m[2]
			}
			return m[1]
		},
	}
}

func whole(m []string) string { return m[1] }

// structuralRules catch layouts the phrase list cannot enumerate.
var structuralRules = []categoryRule{
	{regexp.MustCompile(`(?i)(?:^|\s)((?:(?:deluxe|superior|standard|executive)\s+)?\d+\s+(?:king|queen|twin|single|double)\s+beds?)\s*$`), whole},
	{regexp.MustCompile(`(?i)(?:^|\s)((?:deluxe|superior|standard)\s+with\s+\d+\s+\w+\s+beds?)\s*$`), whole},
	{regexp.MustCompile(`(?i)(?:^|\s)(kamar\s+[a-z]+(?:\s+\d+)?)\s*$`), whole},
	{regexp.MustCompile(`(?i)(?:^|\s)(family\s+ro)\s*$`), func([]string) string { return "Family Room" }},
	{regexp.MustCompile(`(?:^|\s)(\d{3})\s*$`), func(m []string) string { return "Room " + m[1] }},
}

var defaultCategoryRules = buildCategoryRules()

func buildCategoryRules() []categoryRule {
	phrases := append([]string(nil), roomPhrases...)
	sort.SliceStable(phrases, func(i, j int) bool {
		return len(phrases[i]) > len(phrases[j])
	})
	rules := make([]categoryRule, 0, len(phrases)+len(structuralRules))
	for _, p := range phrases {
		rules = append(rules, phraseRule(p))
	}
	return append(rules, structuralRules...)
}

// =============================================================================
// PARSER
// =============================================================================

// HotelParser decomposes hotel descriptions.
type HotelParser struct {
	overrides map[string]HotelOverride
	rules     []categoryRule
}

// NewHotelParser builds a parser with known-description overrides. Override
// keys are compared after label folding and booking prefix removal.
func NewHotelParser(overrides map[string]HotelOverride) *HotelParser {
	folded := make(map[string]HotelOverride, len(overrides))
	for desc, o := range overrides {
		folded[normalize.Label(StripBookingPrefix(desc))] = o
	}
	return &HotelParser{overrides: folded, rules: defaultCategoryRules}
}

var defaultHotelParser = NewHotelParser(nil)

// ParseHotelDescription decomposes text with the default parser.
func ParseHotelDescription(text string) HotelResult {
	return defaultHotelParser.Parse(text)
}

// StripBookingPrefix removes the "SERVICE FEE BID: 123 |" lead-in.
func StripBookingPrefix(text string) string {
	return strings.TrimSpace(bookingPrefixPattern.ReplaceAllString(text, ""))
}

// Parse decomposes text. It never fails: when nothing can be stripped the
// whole description comes back as the merchant name.
func (p *HotelParser) Parse(text string) HotelResult {
	desc := strings.Join(strings.Fields(StripBookingPrefix(text)), " ")
	if desc == "" {
		return HotelResult{Outcome: PartialMerchantOnly}
	}

	if o, ok := p.overrides[normalize.Label(desc)]; ok {
		return HotelResult{
			MerchantName: o.HotelName,
			Category:     o.RoomType,
			TravelerName: o.TravelerName,
			Outcome:      Decomposed,
		}
	}

	rest, traveler := stripTraveler(desc)
	rest, category := p.stripCategory(rest)
	merchant := strings.Trim(rest, " -,|")

	if merchant == "" {
		return HotelResult{MerchantName: desc, Outcome: PartialMerchantOnly}
	}

	result := HotelResult{
		MerchantName: merchant,
		Category:     category,
		TravelerName: traveler,
		Outcome:      PartialMerchantOnly,
	}
	if category != "" && traveler != "" {
		result.Outcome = Decomposed
	}
	return result
}

// stripTraveler removes a trailing traveler name. The ALL-CAPS tail is
// preferred and runs back to the first mixed-case or numeric word; words
// from the room vocabulary end the name.
func stripTraveler(desc string) (string, string) {
	words := strings.Fields(desc)

	start := len(words)
	for start > 0 && capsWordPattern.MatchString(words[start-1]) {
		start--
	}
	for i := len(words) - 1; i >= start; i-- {
		w := strings.Trim(words[i], "'.")
		if merchantVocabulary[w] {
			start = len(words)
			break
		}
		if roomVocabulary[w] {
			start = i + 1
			break
		}
	}
	if start < len(words) && start > 0 {
		return strings.Join(words[:start], " "), strings.Join(words[start:], " ")
	}

	if m := mixedCaseTravelerPattern.FindStringSubmatch(desc); m != nil {
		for _, w := range strings.Fields(m[2]) {
			if roomVocabulary[strings.ToUpper(w)] || merchantVocabulary[strings.ToUpper(w)] {
				return desc, ""
			}
		}
		return m[1], m[2]
	}
	return desc, ""
}

func (p *HotelParser) stripCategory(rest string) (string, string) {
	for _, rule := range p.rules {
		loc := rule.pattern.FindStringSubmatchIndex(rest)
		if loc == nil {
			continue
		}
		m := make([]string, len(loc)/2)
		for i := range m {
			if loc[2*i] >= 0 {
				m[i] = rest[loc[2*i]:loc[2*i+1]]
			}
		}
		return strings.TrimSpace(rest[:loc[0]]), rule.render(m)
	}
	return rest, ""
}
