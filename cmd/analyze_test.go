package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBill_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bill.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"total":1250.75,"provider":"Toronto General","services":["MRI Scan"]}`), 0o644))

	analyzeBillFile = path
	defer func() { analyzeBillFile = "" }()

	bill, err := loadBill()
	require.NoError(t, err)
	assert.Equal(t, 1250.75, bill.Total)
	assert.Equal(t, "Toronto General", bill.Provider)
	assert.Equal(t, []string{"MRI Scan"}, bill.Services)
}

func TestLoadBill_FromFlags(t *testing.T) {
	analyzeBillFile = ""
	analyzeTotal = 200
	analyzeProvider = "Clinic"
	analyzeServices = []string{"Visit"}
	defer func() {
		analyzeTotal = 0
		analyzeProvider = ""
		analyzeServices = nil
	}()

	bill, err := loadBill()
	require.NoError(t, err)
	assert.Equal(t, 200.0, bill.Total)
	assert.Equal(t, "Clinic", bill.Provider)
}

func TestLoadBill_BadFile(t *testing.T) {
	analyzeBillFile = filepath.Join(t.TempDir(), "missing.json")
	defer func() { analyzeBillFile = "" }()

	_, err := loadBill()
	assert.Error(t, err)
}
