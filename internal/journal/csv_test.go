package journal

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"crt_bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	recs := []models.TradeRecord{
		{
			Ticket:     101,
			At:         time.Date(2025, 3, 10, 13, 30, 0, 0, time.UTC),
			Symbol:     "XAUUSDm",
			Direction:  models.DirectionShort,
			Entry:      1994,
			StopLoss:   2003.5,
			TakeProfit: 1995,
			Lot:        0.05,
			RR1:        0.11,
			RR2:        0.44,
			Status:     models.TradeStatusOpen,
			Comment:    "CRT TP1",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, recs))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, csvHeaders, rows[0])
	assert.Equal(t, []string{
		"101", "2025-03-10 13:30:00", "XAUUSDm", "SELL",
		"1994", "2003.5", "1995", "0.05", "0.11", "0.44",
		"OPEN", "0", "0", "CRT TP1",
	}, rows[1])
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1, "только заголовок")
}
