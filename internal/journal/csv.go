package journal

import (
	"encoding/csv"
	"io"
	"strconv"

	"crt_bot/internal/models"

	"github.com/pkg/errors"
)

// Заголовки — один в один колонки старого Excel-журнала.
var csvHeaders = []string{
	"Ticket", "DateTime", "Symbol", "Direction", "EntryPrice", "SL", "TP",
	"LotSize", "RR1", "RR2", "Status", "ExitPrice", "Profit", "Comment",
}

// WriteCSV выгружает записи журнала в CSV для journalctl.
func WriteCSV(w io.Writer, recs []models.TradeRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeaders); err != nil {
		return errors.Wrap(err, "write headers")
	}

	for _, r := range recs {
		row := []string{
			strconv.FormatInt(r.Ticket, 10),
			r.At.Format("2006-01-02 15:04:05"),
			r.Symbol,
			string(r.Direction),
			formatFloat(r.Entry),
			formatFloat(r.StopLoss),
			formatFloat(r.TakeProfit),
			formatFloat(r.Lot),
			formatFloat(r.RR1),
			formatFloat(r.RR2),
			r.Status,
			formatFloat(r.ExitPrice),
			formatFloat(r.Profit),
			r.Comment,
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "write row")
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
