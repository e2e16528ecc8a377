package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tss-backtest/internal/model"
)

// SeriesFile is the on-disk JSON shape of a bar series.
//
// Example:
//
//	{
//	  "symbol": "AAPL",
//	  "bars": [ {"date": "2024-01-02", "open": 151.2, ...}, ... ]
//	}
type SeriesFile struct {
	Symbol string      `json:"symbol,omitempty"`
	Bars   []barRecord `json:"bars"`
}

type barRecord struct {
	Date   string  `json:"date"` // YYYY-MM-DD
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// LoadBarsJSON reads a series file and validates the bars it contains.
func LoadBarsJSON(path string) (string, []model.Bar, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	var f SeriesFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return "", nil, fmt.Errorf("failed to parse series file: %w", err)
	}
	bars := make([]model.Bar, 0, len(f.Bars))
	for i, r := range f.Bars {
		d, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			return "", nil, fmt.Errorf("bar %d: invalid date %q (expected YYYY-MM-DD)", i, r.Date)
		}
		bars = append(bars, model.Bar{
			Date:   d,
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		})
	}
	if err := model.ValidateSeries(bars); err != nil {
		return "", nil, err
	}
	return f.Symbol, bars, nil
}

// SaveBarsJSON writes bars to path, creating parent directories.
func SaveBarsJSON(path, symbol string, bars []model.Bar) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f := SeriesFile{Symbol: symbol, Bars: make([]barRecord, len(bars))}
	for i, b := range bars {
		f.Bars[i] = barRecord{
			Date:   b.Date.Format("2006-01-02"),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		}
	}
	raw, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal series: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write series file: %w", err)
	}
	return nil
}
