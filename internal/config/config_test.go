package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadMainConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "input_dir: "+filepath.Join(dir, "in")+"\noutput_dir: "+filepath.Join(dir, "out")+"\n")

	cfg, err := LoadMainConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "./profiles", cfg.ProfilesDir)
	assert.Equal(t, "{table}_{timestamp}.csv", cfg.OutputNameFormat)
	assert.Equal(t, ",", cfg.CSV.Delimiter)
	assert.True(t, cfg.ShouldUpdateExisting())
	assert.DirExists(t, filepath.Join(dir, "in"))
	assert.DirExists(t, filepath.Join(dir, "out"))
}

func TestLoadMainConfigRejectsLogLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "log_level: chatty\ninput_dir: "+dir+"\noutput_dir: "+dir+"\n")

	_, err := LoadMainConfig(path)
	assert.ErrorContains(t, err, "unknown log_level")
}

func TestLoadMainConfigUpdateExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "update_existing: false\ninput_dir: "+dir+"\noutput_dir: "+dir+"\n")

	cfg, err := LoadMainConfig(path)
	require.NoError(t, err)
	assert.False(t, cfg.ShouldUpdateExisting())
}

func TestLoadMainConfigMissingFile(t *testing.T) {
	_, err := LoadMainConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestDefaultProfilesMatch(t *testing.T) {
	profiles := DefaultProfiles()

	tests := []struct {
		file  string
		sheet string
		want  SourceKind
	}{
		{"Laporan BFKO 2024.xlsx", "34 UID SULSELRABAR_2024", KindBFKO},
		{"Data SPPD Juli.xlsx", "Sheet1", KindSPPD},
		{"Rekap CC Juli 2025.xlsx", "Juli 25 5657", KindCC},
		{"Service Fee Juli 2025.xlsx", "Juli 2025 - HL", KindServiceFee},
		{"Service Fee Juli 2025.xlsx", "Juli 2025 - FL", KindServiceFee},
	}
	for _, tt := range tests {
		p := profiles.Match(tt.file, tt.sheet)
		require.NotNil(t, p, "%s / %s", tt.file, tt.sheet)
		assert.Equal(t, tt.want, p.Kind)
	}

	assert.Nil(t, profiles.Match("notes.xlsx", "Sheet1"))
	assert.Nil(t, profiles.Match("Laporan BFKO.xlsx", "Ringkasan"))
}

func TestLoadSourceProfilesOverlay(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "sppd.yaml"), `
kind: sppd
header_window: 15
columns:
  traveler_name: ["Employee Name", "Customer Name"]
`)

	profiles, err := LoadSourceProfiles(dir)
	require.NoError(t, err)

	sppd, ok := profiles.Get(KindSPPD)
	require.True(t, ok)
	assert.Equal(t, 15, sppd.HeaderWindow)
	assert.Equal(t, []string{"Employee Name", "Customer Name"}, sppd.Columns[RoleTravelerName])
	assert.Equal(t, []string{"Trip Number"}, sppd.Columns[RoleTripNumber])
	assert.Equal(t, "Complete", sppd.DefaultStatus)

	assert.Equal(t, []string{"Customer Name"}, DefaultProfiles()[KindSPPD].Columns[RoleTravelerName])
}

func TestLoadSourceProfilesErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "x.yml"), "kind: payroll\n")
	_, err := LoadSourceProfiles(dir)
	assert.ErrorContains(t, err, "unknown source kind")

	dir = t.TempDir()
	writeFile(t, filepath.Join(dir, "cc.yaml"), "kind: cc\nsheet_patterns: ['(']\n")
	_, err = LoadSourceProfiles(dir)
	assert.ErrorContains(t, err, "invalid sheet pattern")
}

func TestLoadSourceProfilesMissingDir(t *testing.T) {
	profiles, err := LoadSourceProfiles(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Len(t, profiles, 4)
}

func TestCloneIsDeep(t *testing.T) {
	orig := DefaultProfiles()[KindCC]
	clone := orig.Clone()
	clone.Columns[RoleBookingID][0] = "changed"
	clone.RejectMarkers[0] = "changed"
	assert.Equal(t, "Booking ID", orig.Columns[RoleBookingID][0])
	assert.Equal(t, "TOTAL", orig.RejectMarkers[0])
}
