package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/finance-sheet-normalizer/internal/textparse"
)

// =============================================================================
// SOURCE PROFILE STRUCTURE
// =============================================================================

// SourceKind names a recurring report template.
type SourceKind string

const (
	KindBFKO       SourceKind = "bfko"
	KindSPPD       SourceKind = "sppd"
	KindCC         SourceKind = "cc"
	KindServiceFee SourceKind = "service_fee"
)

// Kinds lists every source kind in matching order.
var Kinds = []SourceKind{KindServiceFee, KindBFKO, KindSPPD, KindCC}

// SourceProfile is the per-source-type configuration the extractor runs on:
// where the table is, what its columns are called, and which rows are noise.
type SourceProfile struct {
	// Name is used in logs and output names.
	Name string `yaml:"name"`

	// Kind selects the extraction routine.
	Kind SourceKind `yaml:"kind"`

	// =========================================================================
	// MATCHING RULES
	// =========================================================================

	// FilePatterns are glob patterns on the document file name.
	FilePatterns []string `yaml:"file_patterns"`

	// SheetPatterns are regular expressions on the sheet name. Empty matches
	// every sheet.
	SheetPatterns []string `yaml:"sheet_patterns"`

	// =========================================================================
	// STRUCTURE
	// =========================================================================

	// HeaderLabels must all appear as cells of the header row.
	HeaderLabels []string `yaml:"header_labels"`

	// HeaderWindow is how many rows are searched for the header.
	HeaderWindow int `yaml:"header_window"`

	// SectionLabel starts the table for sectioned sheets (BFKO).
	SectionLabel string `yaml:"section_label"`

	// SectionEndMinLength is the title-length threshold ending a section.
	SectionEndMinLength int `yaml:"section_end_min_length"`

	// MonthNames is the month-name table for repeating month blocks.
	MonthNames []string `yaml:"month_names"`

	// AllowLegacyMonthLayout enables the fixed 2024 BFKO month columns when no
	// month header is found.
	AllowLegacyMonthLayout bool `yaml:"allow_legacy_month_layout"`

	// =========================================================================
	// COLUMNS AND ROWS
	// =========================================================================

	// Columns maps each logical role to its accepted header labels.
	Columns map[string][]string `yaml:"columns"`

	// PrimaryKey is the role whose emptiness rejects a row.
	PrimaryKey string `yaml:"primary_key"`

	// RequiredFields are roles whose unparseable value drops the row.
	RequiredFields []string `yaml:"required_fields"`

	// RejectMarkers reject a row whose first populated cell contains one.
	RejectMarkers []string `yaml:"reject_markers"`

	// Cleanup rules run on cell text before extraction.
	Cleanup []CleanupRule `yaml:"cleanup"`

	// =========================================================================
	// VALUES
	// =========================================================================

	// DefaultStatus is written when the source carries no status.
	DefaultStatus string `yaml:"default_status"`

	// VATRate is the decimal VAT rate applied to service fees.
	VATRate string `yaml:"vat_rate"`

	// HotelOverrides pin known hotel descriptions.
	HotelOverrides map[string]textparse.HotelOverride `yaml:"hotel_overrides"`

	// Summary locates reconciliation values (CC).
	Summary SummaryLayout `yaml:"summary"`
}

// CleanupRule is an action chain applied to one column role.
type CleanupRule struct {
	Role    string          `yaml:"role"`
	Actions []CleanupAction `yaml:"actions"`
}

// CleanupAction is a single cleanup step.
//
// SUPPORTED TYPES:
//   trim, uppercase, normalize_whitespace, extract_digits,
//   replace (find -> value), regex_replace (find -> value),
//   max_length (value = n), if_empty_use_default (value),
//   lookup (lookup_table, unmatched values pass through)
type CleanupAction struct {
	Type        string            `yaml:"type"`
	Value       string            `yaml:"value"`
	Find        string            `yaml:"find,omitempty"`
	LookupTable map[string]string `yaml:"lookup_table,omitempty"`
}

// SummaryLayout tells the aggregator where printed values sit when the
// header does not say.
type SummaryLayout struct {
	// ValueColumn is the fallback value column (0-based).
	ValueColumn int `yaml:"value_column"`

	// SearchFrom and SearchTo bound the scan for the first numeric cell
	// above MinValue.
	SearchFrom int   `yaml:"search_from"`
	SearchTo   int   `yaml:"search_to"`
	MinValue   int64 `yaml:"min_value"`
}

// Matches reports whether the profile applies to a sheet of a document.
// Invalid patterns never match.
func (p *SourceProfile) Matches(fileName, sheetName string) bool {
	return p.MatchesFile(fileName) && p.MatchesSheet(sheetName)
}

// MatchesFile checks the file name globs. No patterns means any file.
func (p *SourceProfile) MatchesFile(fileName string) bool {
	if len(p.FilePatterns) == 0 {
		return true
	}
	for _, pattern := range p.FilePatterns {
		if ok, err := filepath.Match(pattern, fileName); err == nil && ok {
			return true
		}
	}
	return false
}

// MatchesSheet checks the sheet name patterns. No patterns means any sheet.
func (p *SourceProfile) MatchesSheet(sheetName string) bool {
	if len(p.SheetPatterns) == 0 {
		return true
	}
	for _, pattern := range p.SheetPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			continue
		}
		if re.MatchString(sheetName) {
			return true
		}
	}
	return false
}

// =============================================================================
// PROFILE SET
// =============================================================================

// Profiles is the active profile per source kind.
type Profiles map[SourceKind]*SourceProfile

// Get returns the profile of a kind.
func (ps Profiles) Get(kind SourceKind) (*SourceProfile, bool) {
	p, ok := ps[kind]
	return p, ok
}

// Match returns the first profile, in Kinds order, whose file and sheet
// patterns both match.
func (ps Profiles) Match(fileName, sheetName string) *SourceProfile {
	for _, kind := range Kinds {
		if p, ok := ps[kind]; ok && p.Matches(fileName, sheetName) {
			return p
		}
	}
	return nil
}

// LoadSourceProfiles returns the built-in profiles overlaid with every
// *.yaml/*.yml file in dir. Each file names the kind it overrides; fields it
// leaves out keep their built-in values. A missing directory yields the
// built-in profiles.
func LoadSourceProfiles(dir string) (Profiles, error) {
	profiles := DefaultProfiles()

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return profiles, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list profile files: %w", err)
	}
	ymlFiles, err := filepath.Glob(filepath.Join(dir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list profile files: %w", err)
	}
	files = append(files, ymlFiles...)
	sort.Strings(files)

	for _, file := range files {
		profile, err := loadSourceProfile(file, profiles)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
		profiles[profile.Kind] = profile
	}

	return profiles, nil
}

func loadSourceProfile(filePath string, base Profiles) (*SourceProfile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var head struct {
		Kind SourceKind `yaml:"kind"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}
	defaults, ok := base[head.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown source kind %q", head.Kind)
	}

	profile := defaults.Clone()
	if err := yaml.Unmarshal(data, profile); err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}

	if err := validateProfile(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func validateProfile(p *SourceProfile) error {
	if p.PrimaryKey == "" {
		return fmt.Errorf("profile %s: primary_key is required", p.Name)
	}
	if _, ok := p.Columns[p.PrimaryKey]; !ok {
		return fmt.Errorf("profile %s: primary_key %q has no column aliases", p.Name, p.PrimaryKey)
	}
	for _, pattern := range p.SheetPatterns {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("profile %s: invalid sheet pattern %q: %w", p.Name, pattern, err)
		}
	}
	if p.Kind == KindBFKO && len(p.MonthNames) != 12 {
		return fmt.Errorf("profile %s: month_names must list 12 months", p.Name)
	}
	return nil
}

// Clone deep-copies a profile.
func (p *SourceProfile) Clone() *SourceProfile {
	c := *p
	c.FilePatterns = append([]string(nil), p.FilePatterns...)
	c.SheetPatterns = append([]string(nil), p.SheetPatterns...)
	c.HeaderLabels = append([]string(nil), p.HeaderLabels...)
	c.MonthNames = append([]string(nil), p.MonthNames...)
	c.RequiredFields = append([]string(nil), p.RequiredFields...)
	c.RejectMarkers = append([]string(nil), p.RejectMarkers...)

	c.Columns = make(map[string][]string, len(p.Columns))
	for role, aliases := range p.Columns {
		c.Columns[role] = append([]string(nil), aliases...)
	}

	c.Cleanup = make([]CleanupRule, len(p.Cleanup))
	for i, rule := range p.Cleanup {
		c.Cleanup[i] = CleanupRule{Role: rule.Role, Actions: append([]CleanupAction(nil), rule.Actions...)}
	}

	if p.HotelOverrides != nil {
		c.HotelOverrides = make(map[string]textparse.HotelOverride, len(p.HotelOverrides))
		for k, v := range p.HotelOverrides {
			c.HotelOverrides[k] = v
		}
	}
	return &c
}
