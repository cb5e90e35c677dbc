package service

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurifrl/achu/pkg/config"
)

const payroll = `file:
  destination_id: "091000019"
  origin_id: "1234567890"
batches:
  - company_name: ACME CORP
    entry_description: PAYROLL
    institution_id: "09100001"
    entries:
      - name: JANE DOE
        routing: "12345678"
        amount: "10.00"
`

func TestProcessDirectory(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "payroll.yaml"), []byte(payroll), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yml"), []byte("batches: []\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yaml"), 0o755))

	var logs bytes.Buffer
	p := NewProcessor(config.New(out), log.New(&logs))
	written, err := p.ProcessDirectory(dir, time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Equal(t, []string{filepath.Join(out, "payroll.ach")}, written)
	data, err := os.ReadFile(written[0])
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	assert.Len(t, lines, 10)
	assert.Contains(t, lines[0], "2610180930")
	assert.Contains(t, logs.String(), "broken.yml")
}

func TestProcessDirectoryBesideInput(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Payroll.YAML"), []byte(payroll), 0o644))

	p := NewProcessor(config.New(""), log.New(&bytes.Buffer{}))
	written, err := p.ProcessDirectory(dir, time.Now())
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "Payroll.ach")}, written)
}

func TestProcessDirectoryMissing(t *testing.T) {
	p := NewProcessor(config.New(""), log.New(&bytes.Buffer{}))
	_, err := p.ProcessDirectory(filepath.Join(t.TempDir(), "nope"), time.Now())
	assert.ErrorContains(t, err, "error reading directory")
}
