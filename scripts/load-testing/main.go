// Command load-testing races several cashier stations over one procured lot
// and checks afterwards that no unit was sold twice.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

type LoadTestConfig struct {
	BaseURL         string
	Stations        int
	Units           int
	LinesPerSale    int
	TestDuration    time.Duration
	SerialPrefix    string
	ResultsFilename string
}

type TestResult struct {
	TotalRequests  int64
	LinesAdded     int64
	LinesRejected  int64
	SalesConfirmed int64
	ConfirmFailed  int64
	ResponseTimes  []time.Duration
	Errors         map[string]int64
	mutex          sync.Mutex
}

type PerformanceMetrics struct {
	StartTime       time.Time        `json:"start_time"`
	TotalDuration   time.Duration    `json:"total_duration"`
	ThroughputRPS   float64          `json:"throughput_rps"`
	P50ResponseTime time.Duration    `json:"p50"`
	P95ResponseTime time.Duration    `json:"p95"`
	P99ResponseTime time.Duration    `json:"p99"`
	SalesConfirmed  int64            `json:"sales_confirmed"`
	UnitsSold       int              `json:"units_sold"`
	LinesInSales    int              `json:"lines_in_sales"`
	Errors          map[string]int64 `json:"errors"`
}

type LoadTester struct {
	config  *LoadTestConfig
	result  *TestResult
	client  *http.Client
	serials []string
}

func NewLoadTester(config *LoadTestConfig) *LoadTester {
	return &LoadTester{
		config: config,
		result: &TestResult{Errors: make(map[string]int64)},
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 100,
			},
		},
	}
}

func (lt *LoadTester) call(ctx context.Context, method, path, station string, body, out interface{}) (int, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, lt.config.BaseURL+path, &buf)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if station != "" {
		req.Header.Set("X-Station-ID", station)
	}

	start := time.Now()
	resp, err := lt.client.Do(req)
	lt.recordResponse(time.Since(start))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}

func (lt *LoadTester) recordResponse(d time.Duration) {
	atomic.AddInt64(&lt.result.TotalRequests, 1)

	lt.result.mutex.Lock()
	lt.result.ResponseTimes = append(lt.result.ResponseTimes, d)
	lt.result.mutex.Unlock()
}

func (lt *LoadTester) recordError(operation string, status int, err error) {
	key := fmt.Sprintf("%s: %d", operation, status)
	if err != nil {
		key = fmt.Sprintf("%s: %v", operation, err)
	}

	lt.result.mutex.Lock()
	lt.result.Errors[key]++
	lt.result.mutex.Unlock()
}

// Seed procures the whole lot in one intake.
func (lt *LoadTester) Seed(ctx context.Context) error {
	var items []struct {
		Serial string `json:"serial"`
	}
	status, err := lt.call(ctx, http.MethodPost, "/buy/create", "", map[string]interface{}{
		"serial":       lt.config.SerialPrefix,
		"name":         "Load test handset",
		"release":      "LT-1",
		"price":        100,
		"customerName": "load-testing",
		"quantity":     lt.config.Units,
	}, &items)
	if err != nil {
		return err
	}
	if status != http.StatusCreated {
		return fmt.Errorf("seed returned status %d", status)
	}

	for _, item := range items {
		lt.serials = append(lt.serials, item.Serial)
	}
	return nil
}

func (lt *LoadTester) runStation(ctx context.Context, station string, wg *sync.WaitGroup) {
	defer wg.Done()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for ctx.Err() == nil {
		added := 0
		for i := 0; i < lt.config.LinesPerSale && ctx.Err() == nil; i++ {
			serial := lt.serials[rng.Intn(len(lt.serials))]
			status, err := lt.call(ctx, http.MethodPost, "/sell/create", station, map[string]interface{}{
				"serial": serial,
				"price":  150 + rng.Intn(50),
			}, nil)
			switch {
			case err == nil && status == http.StatusCreated:
				atomic.AddInt64(&lt.result.LinesAdded, 1)
				added++
			case err == nil && status == http.StatusConflict:
				atomic.AddInt64(&lt.result.LinesRejected, 1)
			case ctx.Err() == nil:
				lt.recordError("add", status, err)
			}
		}
		if added == 0 {
			continue
		}

		status, err := lt.call(ctx, http.MethodPost, "/sell/confirm", station, nil, nil)
		if err == nil && status == http.StatusCreated {
			atomic.AddInt64(&lt.result.SalesConfirmed, 1)
			continue
		}
		atomic.AddInt64(&lt.result.ConfirmFailed, 1)
		if ctx.Err() == nil {
			lt.recordError("confirm", status, err)
		}
	}
}

func (lt *LoadTester) Run(ctx context.Context) *PerformanceMetrics {
	ctx, cancel := context.WithTimeout(ctx, lt.config.TestDuration)
	defer cancel()

	startTime := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < lt.config.Stations; i++ {
		wg.Add(1)
		go lt.runStation(ctx, fmt.Sprintf("load-%d", i), &wg)
	}

	go lt.monitorProgress(ctx, startTime)
	wg.Wait()

	return lt.calculateMetrics(startTime, time.Since(startTime))
}

func (lt *LoadTester) monitorProgress(ctx context.Context, startTime time.Time) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fmt.Printf("[%s] requests: %d, lines: %d, rejected: %d, sales: %d\n",
				time.Since(startTime).Round(time.Second),
				atomic.LoadInt64(&lt.result.TotalRequests),
				atomic.LoadInt64(&lt.result.LinesAdded),
				atomic.LoadInt64(&lt.result.LinesRejected),
				atomic.LoadInt64(&lt.result.SalesConfirmed),
			)
		}
	}
}

// Verify compares sold inventory with the lines recorded in sales. Every
// sold unit appears in exactly one sale line.
func (lt *LoadTester) Verify(ctx context.Context, metrics *PerformanceMetrics) error {
	var sold []json.RawMessage
	if _, err := lt.call(ctx, http.MethodGet, "/buy/list?status=sold&limit=500&q="+lt.config.SerialPrefix, "", nil, &sold); err != nil {
		return err
	}
	metrics.UnitsSold = len(sold)

	seen := make(map[string]bool)
	for offset := 0; ; offset += 100 {
		var sales []struct {
			Lines []struct {
				Serial string `json:"serial"`
			} `json:"lines"`
		}
		path := fmt.Sprintf("/sell/history?limit=100&offset=%d", offset)
		if _, err := lt.call(ctx, http.MethodGet, path, "", nil, &sales); err != nil {
			return err
		}
		for _, s := range sales {
			for _, line := range s.Lines {
				if seen[line.Serial] {
					return fmt.Errorf("serial %s sold twice", line.Serial)
				}
				seen[line.Serial] = true
				metrics.LinesInSales++
			}
		}
		if len(sales) < 100 {
			break
		}
	}

	if metrics.UnitsSold > len(lt.serials) {
		return fmt.Errorf("%d units sold from a lot of %d", metrics.UnitsSold, len(lt.serials))
	}
	return nil
}

func (lt *LoadTester) calculateMetrics(startTime time.Time, total time.Duration) *PerformanceMetrics {
	lt.result.mutex.Lock()
	defer lt.result.mutex.Unlock()

	metrics := &PerformanceMetrics{
		StartTime:      startTime,
		TotalDuration:  total,
		SalesConfirmed: atomic.LoadInt64(&lt.result.SalesConfirmed),
		Errors:         lt.result.Errors,
	}
	if total.Seconds() > 0 {
		metrics.ThroughputRPS = float64(atomic.LoadInt64(&lt.result.TotalRequests)) / total.Seconds()
	}
	metrics.P50ResponseTime = calculatePercentile(lt.result.ResponseTimes, 50)
	metrics.P95ResponseTime = calculatePercentile(lt.result.ResponseTimes, 95)
	metrics.P99ResponseTime = calculatePercentile(lt.result.ResponseTimes, 99)
	return metrics
}

func calculatePercentile(durations []time.Duration, percentile int) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	sorted := make([]time.Duration, len(durations))
	copy(sorted, durations)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	index := int(float64(len(sorted)) * float64(percentile) / 100.0)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}

func (pm *PerformanceMetrics) PrintReport() {
	fmt.Printf("SELL RACE RESULTS\n")
	fmt.Printf("Test Duration: %v\n", pm.TotalDuration.Round(time.Second))
	fmt.Printf("- Total RPS: %.2f requests/second\n", pm.ThroughputRPS)
	fmt.Printf("- P50/P95/P99: %v / %v / %v\n",
		pm.P50ResponseTime.Round(time.Millisecond),
		pm.P95ResponseTime.Round(time.Millisecond),
		pm.P99ResponseTime.Round(time.Millisecond),
	)
	fmt.Printf("- Sales confirmed: %d\n", pm.SalesConfirmed)
	fmt.Printf("- Units sold: %d, lines in sales: %d\n", pm.UnitsSold, pm.LinesInSales)
	for k, v := range pm.Errors {
		fmt.Printf("- error %s: %d\n", k, v)
	}
}

func (pm *PerformanceMetrics) SaveToFile(filename string) error {
	data, err := json.MarshalIndent(pm, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

func main() {
	config := &LoadTestConfig{}
	flag.StringVar(&config.BaseURL, "url", "http://localhost:8080", "Service base URL")
	flag.IntVar(&config.Stations, "stations", 8, "Concurrent cashier stations")
	flag.IntVar(&config.Units, "units", 100, "Units procured before the race")
	flag.IntVar(&config.LinesPerSale, "lines", 3, "Lines each station tries to add per sale")
	flag.DurationVar(&config.TestDuration, "duration", 30*time.Second, "Race duration")
	flag.StringVar(&config.SerialPrefix, "prefix", fmt.Sprintf("LT%d", time.Now().Unix()), "Serial prefix of the seeded lot")
	flag.StringVar(&config.ResultsFilename, "out", "", "Optional JSON results file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lt := NewLoadTester(config)
	if err := lt.Seed(ctx); err != nil {
		log.Fatalf("seed: %v", err)
	}

	metrics := lt.Run(ctx)
	if err := lt.Verify(context.Background(), metrics); err != nil {
		metrics.PrintReport()
		log.Fatalf("invariant violated: %v", err)
	}
	metrics.PrintReport()

	if config.ResultsFilename != "" {
		if err := metrics.SaveToFile(config.ResultsFilename); err != nil {
			log.Printf("Failed to save results to file: %v", err)
		}
	}
}
