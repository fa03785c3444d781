package ingest

import (
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/config"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/scanner"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/types"
)

// SheetStructure is what the scanner found in one sheet, for the inspect
// command. Row numbers are 1-based as shown by spreadsheet tools; 0 means
// not found.
type SheetStructure struct {
	Name    string
	Rows    int
	Profile string
	Kind    config.SourceKind

	SectionStart int
	SectionEnd   int
	HeaderRow    int

	// Columns maps each resolved role to its 1-based column.
	Columns map[string]int

	// MissingColumns are profile roles the header does not carry.
	MissingColumns []string

	Blocks       []scanner.Block
	LegacyLayout bool

	DataStart int
	DataEnd   int
	Records   int
	Problems  int
}

// Inspect classifies and extracts every sheet without storing anything.
func (in *Ingester) Inspect(wb types.Workbook, fileName string, forced config.SourceKind) ([]SheetStructure, error) {
	out := make([]SheetStructure, 0, len(wb.Sheets))
	for _, g := range wb.Sheets {
		s := SheetStructure{Name: g.Name, Rows: len(g.Rows)}

		profile := in.Classify(fileName, g, forced)
		if profile == nil {
			out = append(out, s)
			continue
		}
		s.Profile, s.Kind = profile.Name, profile.Kind

		if profile.SectionLabel != "" {
			if start, err := scanner.FindSectionStart(g, profile.SectionLabel); err == nil {
				s.SectionStart = start + 1
			}
		}

		res, err := in.extractors[profile.Kind].ExtractSheet(g)
		if err != nil {
			return nil, err
		}
		if res.HeaderRow >= 0 {
			s.HeaderRow = res.HeaderRow + 1
			s.Columns = make(map[string]int)
			roles := make([]string, 0, len(profile.Columns))
			for role := range profile.Columns {
				roles = append(roles, role)
				if idx, ok := res.Columns.Index(role); ok {
					s.Columns[role] = idx + 1
				}
			}
			s.MissingColumns = res.Columns.Missing(roles...)
			s.DataStart, s.DataEnd = res.DataStart+1, res.DataEnd
			if s.SectionStart > 0 {
				s.SectionEnd = res.DataEnd
			}
		}
		s.Blocks = res.Blocks
		s.LegacyLayout = res.LegacyLayout
		s.Records = res.Emitted()
		s.Problems = len(res.Report.Errors)
		out = append(out, s)
	}
	return out, nil
}
