package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivefin/internal/backend"
)

func TestLoadProfileMissingFileGivesDefaults(t *testing.T) {
	p, err := LoadProfile(filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultProfile(), p)
}

func TestProfileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "drivefinctl.toml")
	want := Profile{
		Storage: StorageProfile{Backend: "postgres", DatabaseURL: "postgres://localhost/drivefin"},
		Output:  OutputProfile{Format: "json"},
	}
	require.NoError(t, SaveProfile(path, want))

	got, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	cfg, err := got.BackendConfig()
	require.NoError(t, err)
	assert.Equal(t, backend.PostgresBackend, cfg.Type)
}

func TestLoadProfileRejectsBadInput(t *testing.T) {
	tests := map[string]string{
		"unknown key": "[storage]\nbackend = \"memory\"\ncolour = \"red\"\n",
		"bad format":  "[output]\nformat = \"xml\"\n",
		"bad syntax":  "[storage\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "p.toml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
			_, err := LoadProfile(path)
			assert.Error(t, err)
		})
	}
}

func TestBackendConfigValidates(t *testing.T) {
	p := DefaultProfile()
	p.Storage.SQLitePath = ""
	_, err := p.BackendConfig()
	assert.Error(t, err)
}

func TestProfilePathHonoursXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, "/tmp/xdg/drivefin/drivefinctl.toml", ProfilePath())
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Title:   "Goals",
		Headers: []string{"Title", "Progress"},
		Rows:    [][]string{{"Laptop", "90%"}, {"Course", "10%"}},
	})
	assert.Contains(t, out, "Goals")
	assert.Contains(t, out, "Laptop")
	assert.Contains(t, out, "Course")

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 1+1+1+1+2+1, "title, top rule, header, separator, rows, bottom rule")
	assert.Empty(t, RenderTable(Table{}))
}

func TestProgressBarWidth(t *testing.T) {
	for _, pct := range []float64{-5, 0, 42, 100, 250} {
		assert.Equal(t, 20, len([]rune(stripANSI(ProgressBar(pct, 20)))), "pct %v", pct)
	}
}

// stripANSI removes SGR escape sequences.
func stripANSI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b {
			for i < len(s) && s[i] != 'm' {
				i++
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
