package backtest

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// WriteEquityCSV writes the equity curve of res to path.
func WriteEquityCSV(path string, res *Result) error {
	return writeFile(path, func(w io.Writer) error { return EncodeEquityCSV(w, res) })
}

// WriteTradesCSV writes the trade log of res to path.
func WriteTradesCSV(path string, res *Result) error {
	return writeFile(path, func(w io.Writer) error { return EncodeTradesCSV(w, res) })
}

func EncodeEquityCSV(out io.Writer, res *Result) error {
	w := csv.NewWriter(out)

	header := []string{
		"index",
		"date",
		"portfolio_value",
		"buy_and_hold_value",
		"cash",
		"shares",
		"max_drawdown",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, p := range res.EquityCurve {
		row := []string{
			strconv.Itoa(p.Index),
			fmtDate(p.Date),
			fmtMoney(p.PortfolioValue),
			fmtMoney(p.BuyAndHoldValue),
			fmtMoney(p.Cash),
			fmtFloat(p.Shares),
			fmtFloat(p.MaxDrawdown),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func EncodeTradesCSV(out io.Writer, res *Result) error {
	w := csv.NewWriter(out)

	if err := w.Write([]string{"index", "date", "kind", "price", "shares", "value"}); err != nil {
		return err
	}
	for _, t := range res.Trades {
		row := []string{
			strconv.Itoa(t.Index),
			fmtDate(t.Date),
			t.Kind.String(),
			fmtMoney(t.Price),
			fmtFloat(t.Shares),
			fmtMoney(t.Value()),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func writeFile(path string, encode func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fmtDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

func fmtMoney(x float64) string {
	return decimal.NewFromFloat(x).StringFixed(2)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
