package parser

import (
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/yurifrl/achu/pkg/nacha"
)

func TestProcessBytesCSV(t *testing.T) {
	content := []byte(`name,account,routing,amount,account_type,transaction_type,id
JANE DOE,000123456789,091000019,1500.25,CHK,CR,EMP001
JOHN ROE,987654321,09100001,42,SAV,DR,
,,,,,,
`)

	p := New(log.Default())
	payments, err := p.ProcessBytes(content, "payroll.csv")
	require.NoError(t, err)
	require.Len(t, payments, 2)

	assert.Equal(t, "JANE DOE", payments[0].Name())
	assert.Equal(t, "EMP001", payments[0].ID())
	assert.Equal(t, int64(150025), payments[0].Cents())
	assert.Equal(t, 22, payments[0].TransactionCode())
	assert.Equal(t, 2, payments[0].LineNumber())

	assert.Equal(t, 37, payments[1].TransactionCode())
	assert.Equal(t, int64(42), payments[1].Cents())
	assert.Equal(t, "091000010", payments[1].Routing())
	assert.Len(t, payments[1].ID(), 15)
	assert.Equal(t, generateIndividualID("JOHN ROE", "987654321"), payments[1].ID())
}

func TestProcessBytesSemicolonWithoutHeader(t *testing.T) {
	content := []byte("JANE DOE;000123456789;09100001;9;12,50;SAV;CR\n\n")

	payments, err := New(log.Default()).ProcessBytes(content, "payroll.txt")
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "091000019", payments[0].Routing())
	assert.Equal(t, int64(1250), payments[0].Cents())
	assert.Equal(t, 32, payments[0].TransactionCode())
}

func TestProcessBytesTransactionCodeColumn(t *testing.T) {
	content := []byte("name,routing,amount,transaction_code\nPRENOTE,091000019,0,23\n")

	payments, err := New(log.Default()).ProcessBytes(content, "prenotes.csv")
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, 23, payments[0].TransactionCode())
}

func TestProcessBytesRejectsInvalidRows(t *testing.T) {
	content := []byte(`name,account,routing,amount,account_type,transaction_type,transaction_code
JANE DOE,1,091000019,1.00,CHK,CR,
LOAN ROW,1,091000019,1.00,LOAN,CR,
BAD ROUTING,1,12345678X,1.00,CHK,CR,
BAD AMOUNT,1,091000019,abc,CHK,CR,
BAD CODE,1,091000019,0,,,x
`)

	payments, err := New(log.Default()).ProcessBytes(content, "payroll.csv")
	require.Error(t, err)
	assert.Nil(t, payments)
	assert.ErrorIs(t, err, nacha.ErrUnsupportedCombination)
	for _, line := range []string{"line 3:", "line 4:", "line 5:", "line 6:"} {
		assert.Contains(t, err.Error(), line)
	}
	assert.NotContains(t, err.Error(), "line 2:")
}

func TestProcessBytesXLSX(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"Individual Name", "Account Number", "Routing Number", "Amount", "Account Type", "Transaction Type"},
		{"JANE DOE", "000123456789", "091000019", "10.00", "CHK", "DR"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	payments, err := New(log.Default()).ProcessBytes(buf.Bytes(), "payroll.xlsx")
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "JANE DOE", payments[0].Name())
	assert.Equal(t, 27, payments[0].TransactionCode())
	assert.Equal(t, int64(1000), payments[0].Cents())
}

func TestProcessBytesUnknownType(t *testing.T) {
	_, err := New(log.Default()).ProcessBytes([]byte("x"), "payroll.pdf")
	assert.Error(t, err)
}

func TestDetectType(t *testing.T) {
	assert.Equal(t, PaymentsCSV, DetectType("a.CSV"))
	assert.Equal(t, PaymentsXLS, DetectType("a.xls"))
	assert.Equal(t, PaymentsXLSX, DetectType("dir/a.xlsx"))
	assert.Equal(t, FileType(""), DetectType("a"))
}
