package billfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bills.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCSV_WithHeader(t *testing.T) {
	path := writeTempCSV(t,
		"policy_id,region,provider,date_of_service,total,services\n"+
			"POL-1,Ontario,Toronto General,2026-03-14,1250.75,MRI Scan; Consultation\n"+
			"POL-2,Canada,Walk-in Clinic,2026-04-02,80,X-Ray\n")

	entries, err := ReadCSV(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "POL-1", entries[0].PolicyID)
	assert.Equal(t, "Ontario", entries[0].Region)
	assert.Equal(t, "Toronto General", entries[0].Bill.Provider)
	assert.Equal(t, "2026-03-14", entries[0].Bill.DateOfService)
	assert.Equal(t, 1250.75, entries[0].Bill.Total)
	assert.Equal(t, []string{"MRI Scan", "Consultation"}, entries[0].Bill.Services)

	assert.Equal(t, 80.0, entries[1].Bill.Total)
	assert.Equal(t, []string{"X-Ray"}, entries[1].Bill.Services)
}

func TestReadCSV_NoHeader(t *testing.T) {
	path := writeTempCSV(t, "POL-1,Ontario,Clinic,2026-01-01,100,Visit\n")

	entries, err := ReadCSV(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 100.0, entries[0].Bill.Total)
}

func TestReadCSV_BadTotalMidFile(t *testing.T) {
	path := writeTempCSV(t,
		"POL-1,Ontario,Clinic,2026-01-01,100,Visit\n"+
			"POL-2,Ontario,Clinic,2026-01-02,not-a-number,Visit\n")

	_, err := ReadCSV(path)
	assert.Error(t, err)
}

func TestReadCSV_EmptyServices(t *testing.T) {
	path := writeTempCSV(t, "POL-1,Ontario,Clinic,2026-01-01,100,\n")

	entries, err := ReadCSV(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].Bill.Services)
}

func TestRead_UnsupportedExtension(t *testing.T) {
	_, err := Read("bills.txt")
	assert.Error(t, err)
}

func TestRead_DispatchesCSV(t *testing.T) {
	path := writeTempCSV(t, "POL-1,Ontario,Clinic,2026-01-01,100,Visit\n")

	entries, err := Read(path)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
