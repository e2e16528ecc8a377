package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"tss-backtest/internal/api"
	"tss-backtest/internal/api/models"
	"tss-backtest/internal/cache"
	"tss-backtest/internal/config"
)

type RouterTestSuite struct {
	suite.Suite
	router  *gin.Engine
	results *cache.ResultCache
}

func (s *RouterTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (s *RouterTestSuite) SetupTest() {
	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := config.Default()
	cfg.Backtest.MaxDays = 400
	s.results = cache.New(time.Minute)
	s.router = api.NewRouter(cfg, s.results, log)
}

func (s *RouterTestSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterTestSuite) decode(w *httptest.ResponseRecorder, out any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func (s *RouterTestSuite) errorCode(w *httptest.ResponseRecorder) string {
	var e models.ErrorResponse
	s.decode(w, &e)
	return e.Error.Code
}

func backtestBody(strategy, start, end string, seed uint64) map[string]any {
	return map[string]any{
		"strategy":   map[string]any{"name": strategy},
		"start_date": start,
		"end_date":   end,
		"seed":       seed,
	}
}

func (s *RouterTestSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"status":"ok"`)
}

func (s *RouterTestSuite) TestListStrategies() {
	w := s.do(http.MethodGet, "/api/v1/strategies", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var body struct {
		Strategies []models.StrategyInfo `json:"strategies"`
	}
	s.decode(w, &body)
	s.Require().Len(body.Strategies, 4)
	s.Equal("BUFFETT", body.Strategies[0].ID)
	s.Equal("Low", body.Strategies[0].Risk)
	s.NotEmpty(body.Strategies[0].Parameters)
}

func (s *RouterTestSuite) TestGetStrategyByAlias() {
	w := s.do(http.MethodGet, "/api/v1/strategies/momentum", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var info models.StrategyInfo
	s.decode(w, &info)
	s.Equal("ACKMAN", info.ID)

	w = s.do(http.MethodGet, "/api/v1/strategies/oracle", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *RouterTestSuite) TestRunBacktestAndFetchByID() {
	body := backtestBody("value", "2024-01-01", "2024-03-01", 7)
	body["options"] = map[string]any{"include_trades": true}
	w := s.do(http.MethodPost, "/api/v1/backtest", body)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp models.BacktestResponse
	s.decode(w, &resp)
	s.NotEmpty(resp.ID)
	s.Equal("completed", resp.Status)
	s.Equal("BUFFETT", resp.Strategy)
	s.Equal(uint64(7), resp.Seed)
	s.Equal("2024-01-01", resp.Window.Start)
	s.Equal("2024-02-29", resp.Window.End)
	s.Equal(60, resp.Summary.TotalDays)
	s.Len(resp.EquityCurve, 59)
	s.Equal(10000.0, resp.Summary.InitialCapital)
	s.Require().Len(resp.Trades, 1)
	s.Equal("BUY", resp.Trades[0].Kind)
	s.Equal(50, resp.Trades[0].Index)
	s.Equal(1, s.results.Len())

	w = s.do(http.MethodGet, "/api/v1/backtest/"+resp.ID, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var fetched models.BacktestResponse
	s.decode(w, &fetched)
	s.Equal(resp.Summary, fetched.Summary)
	s.Equal(resp.EquityCurve, fetched.EquityCurve)
	s.Empty(fetched.Trades)

	w = s.do(http.MethodGet, "/api/v1/backtest/does-not-exist", nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("NOT_FOUND", s.errorCode(w))
}

func (s *RouterTestSuite) TestBacktestIsReproducibleBySeed() {
	run := func() models.BacktestResponse {
		w := s.do(http.MethodPost, "/api/v1/backtest", backtestBody("NEURAL", "2023-01-01", "2023-07-01", 99))
		s.Require().Equal(http.StatusOK, w.Code)
		var resp models.BacktestResponse
		s.decode(w, &resp)
		return resp
	}
	a, b := run(), run()
	s.NotEqual(a.ID, b.ID)
	s.Equal(a.Summary, b.Summary)
	s.Equal(a.EquityCurve, b.EquityCurve)
}

func (s *RouterTestSuite) TestBacktestErrors() {
	cases := []struct {
		name string
		body any
		code string
	}{
		{"end equals start", backtestBody("value", "2024-01-01", "2024-01-01", 1), "INVALID_RANGE"},
		{"end before start", backtestBody("value", "2024-02-01", "2024-01-01", 1), "INVALID_RANGE"},
		{"single day", backtestBody("value", "2024-01-01", "2024-01-02", 1), "INSUFFICIENT_DATA"},
		{"bad date", backtestBody("value", "someday", "2024-01-02", 1), "INVALID_DATE"},
		{"unknown strategy", backtestBody("oracle", "2024-01-01", "2024-02-01", 1), "INVALID_STRATEGY"},
		{"too many days", backtestBody("value", "2020-01-01", "2024-01-01", 1), "RANGE_TOO_LARGE"},
		{"missing dates", map[string]any{"strategy": map[string]any{"name": "value"}}, "INVALID_REQUEST"},
		{"negative capital", map[string]any{
			"strategy": map[string]any{"name": "value"}, "start_date": "2024-01-01", "end_date": "2024-02-01", "initial_capital": -1,
		}, "INVALID_REQUEST"},
		{"bad params", map[string]any{
			"strategy": map[string]any{"name": "value", "params": map[string]any{"period": 0}}, "start_date": "2024-01-01", "end_date": "2024-02-01",
		}, "INVALID_STRATEGY"},
		{"non-numeric params", map[string]any{
			"strategy": map[string]any{"name": "momentum", "params": map[string]any{"buy_above": "0.05"}}, "start_date": "2024-01-01", "end_date": "2024-02-01",
		}, "INVALID_STRATEGY"},
		{"fractional period", map[string]any{
			"strategy": map[string]any{"name": "value", "params": map[string]any{"period": 10.7}}, "start_date": "2024-01-01", "end_date": "2024-02-01",
		}, "INVALID_STRATEGY"},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			w := s.do(http.MethodPost, "/api/v1/backtest", tc.body)
			s.Equal(http.StatusBadRequest, w.Code)
			s.Equal(tc.code, s.errorCode(w))
		})
	}
	s.Zero(s.results.Len())
}

func (s *RouterTestSuite) TestCompareRanksEveryStrategy() {
	w := s.do(http.MethodPost, "/api/v1/backtest/compare", map[string]any{
		"start_date": "2024-01-01",
		"end_date":   "2024-07-01",
		"seed":       5,
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp models.CompareBacktestResponse
	s.decode(w, &resp)
	s.Equal(uint64(5), resp.Seed)
	s.Require().Len(resp.Comparison, 4)
	seen := map[string]bool{}
	for i, r := range resp.Comparison {
		s.Equal(i+1, r.Rank)
		s.NotEmpty(r.Name)
		seen[r.Strategy] = true
		if i > 0 {
			s.GreaterOrEqual(resp.Comparison[i-1].Summary.TotalReturn, r.Summary.TotalReturn)
		}
		// One shared series means one shared benchmark.
		s.Equal(resp.Comparison[0].Summary.BuyAndHoldReturn, r.Summary.BuyAndHoldReturn)
	}
	s.Len(seen, 4)
}

func (s *RouterTestSuite) TestCompareRejectsDuplicates() {
	w := s.do(http.MethodPost, "/api/v1/backtest/compare", map[string]any{
		"start_date": "2024-01-01",
		"end_date":   "2024-02-01",
		"strategies": []map[string]any{{"name": "value"}, {"name": "BUFFETT"}},
	})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("DUPLICATE_STRATEGY", s.errorCode(w))
}

func (s *RouterTestSuite) TestSeries() {
	w := s.do(http.MethodGet, "/api/v1/series?symbol=aapl&days=30&seed=3", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var resp models.SeriesResponse
	s.decode(w, &resp)
	s.Equal("AAPL", resp.Symbol)
	s.Len(resp.Bars, 30)
	s.Equal(30, resp.Stats.Count)
	s.LessOrEqual(resp.Stats.MinClose, resp.Stats.MaxClose)

	w = s.do(http.MethodGet, "/api/v1/series?years=1", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &resp)
	s.Len(resp.Bars, 252)
	s.Equal("SYNTH", resp.Symbol)

	w = s.do(http.MethodGet, "/api/v1/series?days=-4", nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("INVALID_RANGE", s.errorCode(w))
}

func (s *RouterTestSuite) TestPredictions() {
	w := s.do(http.MethodPost, "/api/v1/predictions", map[string]any{"horizon": 10, "seed": 4})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var resp models.PredictionResponse
	s.decode(w, &resp)
	s.Len(resp.History, 90)
	s.Require().Len(resp.Predictions, 10)
	s.Zero(resp.Predictions[0].Volume)

	last, err := time.Parse("2006-01-02", resp.History[len(resp.History)-1].Date)
	s.Require().NoError(err)
	s.Equal(last.AddDate(0, 0, 1).Format("2006-01-02"), resp.Predictions[0].Date)

	w = s.do(http.MethodPost, "/api/v1/predictions", map[string]any{"horizon": 0})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *RouterTestSuite) TestTrainingStream() {
	w := s.do(http.MethodGet, "/api/v1/training/stream?criterion=epoch&value=3&interval_ms=1&seed=2", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("text/event-stream", w.Header().Get("Content-Type"))

	body := w.Body.String()
	s.Equal(3, strings.Count(body, "event:progress"), body)
	s.Equal(1, strings.Count(body, "event:complete"), body)
	s.Contains(body, `"total_epochs":3`)

	w = s.do(http.MethodGet, "/api/v1/training/stream?architecture=perceptron", nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("INVALID_TRAINING_CONFIG", s.errorCode(w))
}

func (s *RouterTestSuite) TestCORSPreflight() {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/backtest", nil)
	req.Header.Set("Origin", "http://dashboard.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusNoContent, w.Code)
	s.Equal("*", w.Header().Get("Access-Control-Allow-Origin"))
}

func (s *RouterTestSuite) TestMetricsEndpoint() {
	s.do(http.MethodGet, "/health", nil)
	w := s.do(http.MethodGet, "/metrics", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "http_requests_total")
}

func (s *RouterTestSuite) TestUnknownRouteAndPanic() {
	w := s.do(http.MethodGet, "/nope", nil)
	s.Equal(http.StatusNotFound, w.Code)

	s.router.GET("/boom", func(*gin.Context) { panic("boom") })
	w = s.do(http.MethodGet, "/boom", nil)
	s.Equal(http.StatusInternalServerError, w.Code)
	s.Equal("INTERNAL_ERROR", s.errorCode(w))
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}
