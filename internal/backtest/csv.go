package backtest

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"dma-backtest/internal/model"
)

// WriteEventsCSV writes the trade log as CSV, one event per row.
func WriteEventsCSV(path string, events []model.TradeEvent) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"date",
		"kind",
		"subtype",
		"units",
		"price_or_rate",
		"amount",
		"cash_after",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, ev := range events {
		var row []string
		switch e := ev.(type) {
		case model.BuyEvent:
			row = []string{
				fmtDate(e.Date), string(e.Kind()), e.Subtype,
				fmtFloat(e.Units), fmtFloat(e.Price), fmtFloat(e.Units * e.Price), fmtFloat(e.CashAfter),
			}
		case model.SellEvent:
			row = []string{
				fmtDate(e.Date), string(e.Kind()), e.Subtype,
				fmtFloat(e.Units), fmtFloat(e.Price), fmtFloat(e.Units * e.Price), fmtFloat(e.CashAfter),
			}
		case model.MaintenanceEvent:
			row = []string{
				fmtDate(e.Date), string(e.Kind()), "Fee",
				"", fmtFloat(e.FeePct), fmtFloat(e.Amount), fmtFloat(e.CashAfter),
			}
		case model.InterestEvent:
			row = []string{
				fmtDate(e.Date), string(e.Kind()), "Accrual",
				"", fmtFloat(e.DailyRate), fmtFloat(e.Amount), fmtFloat(e.CashAfter),
			}
		default:
			continue
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func fmtDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
