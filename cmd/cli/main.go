package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/araddon/dateparse"
	"github.com/sirupsen/logrus"

	"tss-backtest/internal/analysis"
	"tss-backtest/internal/backtest"
	"tss-backtest/internal/config"
	"tss-backtest/internal/data"
	"tss-backtest/internal/logging"
	"tss-backtest/internal/model"
	"tss-backtest/internal/strategy"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "backtest":
		cmdBacktest(os.Args[2:])
	case "series":
		cmdSeries(os.Args[2:])
	case "compare":
		cmdCompare(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli backtest --strategy momentum --start 2024-01-01 --end 2024-07-01 --seed 42")
	fmt.Println("  cli backtest --data results/series.json --config configs/example.yaml")
	fmt.Println("  cli series --days 504 --seed 42 --out results/series.json")
	fmt.Println("  cli compare --days 252 --seed 42")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - without --data, bars are generated; one bar per calendar day")
	fmt.Println("  - seed 0 picks a random seed, which is printed so the run can be replayed")
	fmt.Println("  - backtest writes the equity curve and trade list as CSV")
}

// seriesFlags are shared by every subcommand that needs bars.
type seriesFlags struct {
	cfgPath *string
	data    *string
	start   *string
	end     *string
	days    *int
	seed    *uint64
	capital *float64
}

func addSeriesFlags(fs *flag.FlagSet) *seriesFlags {
	return &seriesFlags{
		cfgPath: fs.String("config", "", "Path to YAML config"),
		data:    fs.String("data", "", "Path to a bars JSON file (skips generation)"),
		start:   fs.String("start", "", "First day of the generated series"),
		end:     fs.String("end", "", "Day after the last generated bar (requires --start)"),
		days:    fs.Int("days", 252, "Generated bars ending yesterday, when --start is not set"),
		seed:    fs.Uint64("seed", 0, "Random seed (0 = config seed, else random)"),
		capital: fs.Float64("capital", 0, "Initial capital (0 = config default)"),
	}
}

// load returns the config, the bars and the random source the run continues with.
func (f *seriesFlags) load() (*config.Config, []model.Bar, uint64, *rand.Rand) {
	cfg, err := config.Load(*f.cfgPath)
	if err != nil {
		panic(err)
	}
	if err := logging.Setup(cfg.Logging); err != nil {
		panic(err)
	}

	seed := *f.seed
	if seed == 0 {
		seed = cfg.Backtest.Seed
	}
	if seed == 0 {
		seed = rand.Uint64() | 1
	}
	r := data.NewRand(seed)

	if *f.data != "" {
		_, bars, err := data.LoadBarsJSON(*f.data)
		if err != nil {
			panic(err)
		}
		return cfg, bars, seed, r
	}

	gen := data.NewGenerator(r)
	var bars []model.Bar
	if *f.start != "" {
		start, end := mustDate(*f.start), mustDate(*f.end)
		if !end.After(start) {
			panic(&model.InvalidRangeError{Start: start, End: end})
		}
		bars, err = gen.Generate(start, model.DaysBetween(start, end))
	} else {
		bars, err = gen.GenerateSeries(*f.days)
	}
	if err != nil {
		panic(err)
	}
	return cfg, bars, seed, r
}

func (f *seriesFlags) initialCapital(cfg *config.Config) float64 {
	if *f.capital != 0 {
		return *f.capital
	}
	return cfg.Backtest.InitialCapital
}

func cmdBacktest(args []string) {
	fs := flag.NewFlagSet("backtest", flag.ExitOnError)
	sf := addSeriesFlags(fs)
	name := fs.String("strategy", "", "Strategy tag or style (default: config strategy.name)")
	equityPath := fs.String("equity-csv", "results/equity.csv", "Output equity curve CSV path")
	tradesPath := fs.String("trades-csv", "results/trades.csv", "Output trades CSV path")
	_ = fs.Parse(args)

	cfg, bars, seed, r := sf.load()
	strat := buildStrategy(cfg, *name)

	res, err := backtest.New().Run(context.Background(), bars, strat, backtest.Options{
		InitialCapital: sf.initialCapital(cfg),
		Rand:           r,
	})
	if err != nil {
		panic(err)
	}

	for _, p := range []string{*equityPath, *tradesPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			panic(err)
		}
	}
	if err := backtest.WriteEquityCSV(*equityPath, res); err != nil {
		panic(err)
	}
	if err := backtest.WriteTradesCSV(*tradesPath, res); err != nil {
		panic(err)
	}

	m := res.Metrics
	fmt.Printf("Strategy %s over %d bars (%s to %s), seed=%d\n",
		res.Strategy, len(bars), res.Start.Format(time.DateOnly), res.End.Format(time.DateOnly), seed)
	fmt.Printf("Wrote %d rows to %s and %d trades to %s\n", len(res.EquityCurve), *equityPath, len(res.Trades), *tradesPath)
	fmt.Printf("Final=$%.2f Return=%.2f%% BuyHold=%.2f%% Sharpe=%.2f MaxDD=%.2f%% WinRate=%.2f%% Trades=%d\n",
		m.FinalValue, 100*m.TotalReturn, 100*m.BuyAndHoldReturn, m.SharpeRatio, 100*m.MaxDrawdown, 100*m.WinRate, m.TotalTrades)
}

func cmdSeries(args []string) {
	fs := flag.NewFlagSet("series", flag.ExitOnError)
	sf := addSeriesFlags(fs)
	symbol := fs.String("symbol", "SYNTH", "Symbol recorded in the output file")
	outPath := fs.String("out", "results/series.json", "Output JSON path")
	_ = fs.Parse(args)

	_, bars, seed, _ := sf.load()
	if err := data.SaveBarsJSON(*outPath, *symbol, bars); err != nil {
		panic(err)
	}

	st := analysis.ComputeSeriesStats(bars)
	fmt.Printf("Wrote %d bars to %s (seed=%d)\n", len(bars), *outPath, seed)
	fmt.Printf("Close first=%.2f last=%.2f min=%.2f max=%.2f vol=%.4f\n",
		st.FirstClose, st.LastClose, st.MinClose, st.MaxClose, st.Volatility)
}

func cmdCompare(args []string) {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	sf := addSeriesFlags(fs)
	_ = fs.Parse(args)

	cfg, bars, seed, _ := sf.load()
	engine := backtest.New()

	results := make(map[model.StrategyID]*backtest.Result, len(model.StrategyIDs))
	for i, id := range model.StrategyIDs {
		strat := buildStrategy(cfg, string(id))
		res, err := engine.Run(context.Background(), bars, strat, backtest.Options{
			InitialCapital: sf.initialCapital(cfg),
			Rand:           data.NewRand(seed + uint64(i) + 1),
		})
		if err != nil {
			panic(err)
		}
		results[id] = res
	}

	fmt.Printf("Compared %d strategies over %d bars, seed=%d\n", len(results), len(bars), seed)
	fmt.Printf("%-4s %-8s %-10s %-10s %-8s %-8s %-8s %-6s\n", "rank", "strategy", "return%", "excess%", "sharpe", "maxdd%", "win%", "trades")
	for _, r := range analysis.RankByTotalReturn(results) {
		m := r.Result.Metrics
		fmt.Printf(
			"%-4d %-8s %-10.2f %-10.2f %-8.2f %-8.2f %-8.2f %-6d\n",
			r.Rank,
			r.Strategy,
			100*m.TotalReturn,
			100*r.ExcessReturn,
			m.SharpeRatio,
			100*m.MaxDrawdown,
			100*m.WinRate,
			m.TotalTrades,
		)
	}
}

// buildStrategy resolves name (or the configured strategy when empty). The
// configured params apply only to the configured strategy.
func buildStrategy(cfg *config.Config, name string) strategy.Strategy {
	id := cfg.StrategyID()
	if name != "" {
		parsed, err := model.ParseStrategyID(name)
		if err != nil {
			panic(err)
		}
		id = parsed
	}
	params := cfg.StrategyParams(id)
	strat, err := strategy.New(id, params)
	if err != nil {
		panic(err)
	}
	logrus.WithFields(logrus.Fields{"strategy": id, "params": params}).Debug("strategy built")
	return strat
}

func mustDate(s string) time.Time {
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		panic(fmt.Errorf("parse date %q: %w", s, err))
	}
	return model.Day(t)
}
