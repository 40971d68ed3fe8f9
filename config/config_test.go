package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 20*time.Second, cfg.Fetch.Timeout)
	assert.True(t, cfg.Demo.Enabled)
	assert.True(t, cfg.Notify.WhatsAppEnabled)
	assert.Equal(t, "statuswatch.status.changed", cfg.Notify.NATSSubject)
	require.Len(t, cfg.Sites, 1)
	assert.Equal(t, "gndu", cfg.Sites[0].Name)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("WATCH_FETCH_TIMEOUT", "5s")
	t.Setenv("WATCH_DEMO_MODE", "false")
	t.Setenv("WATCH_API_KEYS", "k1:alice, k2 ,k3:")
	t.Setenv("WATCH_GNDU_YEAR", "2026")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Fetch.Timeout)
	assert.False(t, cfg.Demo.Enabled)
	assert.Equal(t, map[string]string{"k1": "alice", "k2": "k2", "k3": "k3"}, cfg.Auth.APIKeys)
	assert.Equal(t, FormField{Name: "ddlYear", Value: "2026"}, cfg.Sites[0].FormFields[0])
}

func TestDefaultGNDUProfile_FieldOrder(t *testing.T) {
	p := DefaultGNDUProfile()

	var names []string
	for _, f := range p.FormFields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"ddlYear", "ddlMonth", "ddlSem", "ddlCourseType", "ddlCourse"}, names)
	assert.Equal(t, "txtRollNo", p.SearchField)
	assert.Equal(t, FormField{Name: "btnSubmit", Value: "Submit"}, p.Submit)
}

func TestLoad_SitesFilePrecedesBuiltIn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sites.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sites:
  - name: pu
    match: puchd.ac.in
    search_field: roll
    result_selector: "#result"
`), 0o600))
	t.Setenv("WATCH_SITES_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Len(t, cfg.Sites, 2)
	assert.Equal(t, "pu", cfg.Sites[0].Name)
	assert.Equal(t, "PU", cfg.Sites[0].ErrorTag)
	assert.Equal(t, "No result found on PU page", cfg.Sites[0].NotFoundMessage)
	assert.Equal(t, "gndu", cfg.Sites[1].Name)
}

func TestParseSites_Validation(t *testing.T) {
	_, err := ParseSites([]byte("sites:\n  - name: x\n    search_field: a\n    result_selector: b\n"))
	assert.ErrorContains(t, err, "match is required")

	_, err = ParseSites([]byte("sites: [oops"))
	assert.Error(t, err)
}
