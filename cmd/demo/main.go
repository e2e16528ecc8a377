package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tss-backtest/internal/backtest"
	"tss-backtest/internal/config"
	"tss-backtest/internal/data"
	"tss-backtest/internal/model"
	"tss-backtest/internal/strategy"
)

// Demo:
// - Generate a short seeded price series (or load one with --data)
// - Run one strategy over it
// - Print every simulated day to show how bars, signals and the ledger fit together
func main() {
	dataPath := flag.String("data", "", "Path to a bars JSON file (optional)")
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	name := flag.String("strategy", "", "Strategy tag or style (default: config strategy.name)")
	n := flag.Int("n", 12, "Number of days to generate")
	seed := flag.Uint64("seed", 42, "Random seed")
	outCSV := flag.String("out", "", "Optional path to write the equity CSV (e.g. results/demo.csv)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		panic(err)
	}

	id := cfg.StrategyID()
	if *name != "" {
		if id, err = model.ParseStrategyID(*name); err != nil {
			panic(err)
		}
	}
	strat, err := strategy.New(id, cfg.StrategyParams(id))
	if err != nil {
		panic(err)
	}

	r := data.NewRand(*seed)
	var bars []model.Bar
	if *dataPath != "" {
		_, bars, err = data.LoadBarsJSON(*dataPath)
	} else {
		bars, err = data.NewGenerator(r).Generate(model.Day(time.Now()).AddDate(0, 0, -*n), *n)
	}
	if err != nil {
		panic(err)
	}

	res, err := backtest.New().Run(context.Background(), bars, strat, backtest.Options{
		InitialCapital: cfg.Backtest.InitialCapital,
		Rand:           r,
	})
	if err != nil {
		panic(err)
	}

	traded := make(map[int]backtest.Trade, len(res.Trades))
	for _, t := range res.Trades {
		traded[t.Index] = t
	}

	d, _ := strategy.Lookup(id)
	fmt.Printf("%s (%s), %d bars, seed=%d\n", d.Name, id, len(bars), *seed)
	fmt.Printf("day 0  %s close=%.2f (reference only)\n", bars[0].Date.Format(time.DateOnly), bars[0].Close)
	for _, p := range res.EquityCurve {
		action := "HOLD"
		if t, ok := traded[p.Index]; ok {
			action = fmt.Sprintf("%s %.4f @ %.2f", t.Kind, t.Shares, t.Price)
		}
		fmt.Printf("day %-2d %s close=%.2f %-26s cash=%.2f shares=%.4f value=%.2f hold=%.2f\n",
			p.Index, p.Date.Format(time.DateOnly), bars[p.Index].Close, action,
			p.Cash, p.Shares, p.PortfolioValue, p.BuyAndHoldValue)
	}

	m := res.Metrics
	fmt.Printf("Final=$%.2f Return=%.2f%% BuyHold=%.2f%% Trades=%d\n",
		m.FinalValue, 100*m.TotalReturn, 100*m.BuyAndHoldReturn, m.TotalTrades)

	if *outCSV != "" {
		if err := os.MkdirAll(filepath.Dir(*outCSV), 0o755); err != nil {
			panic(err)
		}
		if err := backtest.WriteEquityCSV(*outCSV, res); err != nil {
			panic(err)
		}
		fmt.Printf("Wrote equity CSV to %s\n", *outCSV)
	}
}
