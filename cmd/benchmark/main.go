// Benchmark tool for testing MediLint against labeled advertisement data.
//
// Usage:
//   go run cmd/benchmark/main.go -csv /path/to/ads.csv -url http://localhost:8080
//
// The CSV needs a "text" column with the advertisement copy and a
// "violating" column (1/0) with the ground-truth label. The tool:
//   1. Reads the labeled advertisement texts
//   2. Sends each text to MediLint for analysis
//   3. Compares MediLint's verdict (적합 or not) with the labels
//   4. Calculates precision, recall, F1-score, and latency stats
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// LabeledAd is a row from the benchmark dataset.
type LabeledAd struct {
	Text       string
	SourceType string
	Violating  bool
}

// AnalyzeRequest is the MediLint API request format.
type AnalyzeRequest struct {
	Text       string `json:"text"`
	SourceType string `json:"sourceType,omitempty"`
}

// AnalyzeResponse is the MediLint API response format.
type AnalyzeResponse struct {
	AnalysisID string `json:"analysisId"`
	Status     string `json:"status"`
	Score      int    `json:"score"`
	RiskLevel  string `json:"riskLevel"`
}

// Metrics tracks benchmark results.
type Metrics struct {
	TruePositives  int64 // Violating ad flagged
	FalsePositives int64 // Clean ad flagged
	TrueNegatives  int64 // Clean ad passed
	FalseNegatives int64 // Violating ad passed (missed!)

	TotalProcessed int64
	TotalViolating int64
	TotalClean     int64
	TotalErrors    int64

	mu         sync.Mutex
	latenciesMs []int64
}

func main() {
	csvPath := flag.String("csv", "", "Path to labeled advertisement CSV file")
	baseURL := flag.String("url", "http://localhost:8080", "MediLint base URL")
	tenantID := flag.String("tenant", "benchmark-test", "Tenant ID for requests")
	limit := flag.Int("limit", 10000, "Maximum texts to process (0 = all)")
	workers := flag.Int("workers", 10, "Number of concurrent workers")
	verbose := flag.Bool("verbose", false, "Print each analysis result")
	flag.Parse()

	if *csvPath == "" {
		fmt.Println("Usage: benchmark -csv /path/to/ads.csv [-url http://localhost:8080]")
		fmt.Println("\nFlags:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Println("===============================================================")
	fmt.Println("        MEDILINT BENCHMARK - Compliance Detection")
	fmt.Println("===============================================================")
	fmt.Printf("\nCSV File:      %s\n", *csvPath)
	fmt.Printf("MediLint URL:  %s\n", *baseURL)
	fmt.Printf("Tenant ID:     %s\n", *tenantID)
	fmt.Printf("Workers:       %d\n", *workers)
	fmt.Printf("Limit:         %d\n", *limit)
	fmt.Println()

	if err := checkHealth(*baseURL); err != nil {
		fmt.Printf("ERROR: MediLint not reachable at %s: %v\n", *baseURL, err)
		fmt.Println("\nMake sure MediLint is running:")
		fmt.Println("  go run cmd/medilint/main.go")
		os.Exit(1)
	}
	fmt.Println("MediLint is healthy")

	fmt.Printf("\nReading labeled ads from %s...\n", *csvPath)
	ads, err := readLabeledCSV(*csvPath, *limit)
	if err != nil {
		fmt.Printf("ERROR: Failed to read CSV: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d texts\n", len(ads))

	violatingCount := 0
	for _, ad := range ads {
		if ad.Violating {
			violatingCount++
		}
	}
	fmt.Printf("  - Violating: %d (%.2f%%)\n", violatingCount, 100*float64(violatingCount)/float64(len(ads)))
	fmt.Printf("  - Clean:     %d (%.2f%%)\n", len(ads)-violatingCount, 100*float64(len(ads)-violatingCount)/float64(len(ads)))

	fmt.Printf("\nRunning benchmark with %d workers...\n", *workers)
	startTime := time.Now()
	metrics := runBenchmark(ads, *baseURL, *tenantID, *workers, *verbose)
	duration := time.Since(startTime)

	printResults(metrics, duration)
}

func checkHealth(baseURL string) error {
	resp, err := http.Get(baseURL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func readLabeledCSV(path string, limit int) ([]LabeledAd, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}

	textCol, ok := colIndex["text"]
	if !ok {
		return nil, fmt.Errorf("CSV is missing a 'text' column")
	}
	labelCol, ok := colIndex["violating"]
	if !ok {
		return nil, fmt.Errorf("CSV is missing a 'violating' column")
	}
	sourceCol, hasSource := colIndex["sourcetype"]

	var ads []LabeledAd

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // Skip malformed rows
		}

		ad := LabeledAd{
			Text:      record[textCol],
			Violating: record[labelCol] == "1",
		}
		if hasSource {
			ad.SourceType = record[sourceCol]
		}

		ads = append(ads, ad)

		if limit > 0 && len(ads) >= limit {
			break
		}
	}

	return ads, nil
}

func runBenchmark(ads []LabeledAd, baseURL, tenantID string, numWorkers int, verbose bool) *Metrics {
	metrics := &Metrics{}

	work := make(chan LabeledAd, 100)
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := &http.Client{Timeout: 10 * time.Second}

			for ad := range work {
				start := time.Now()
				result, err := analyzeText(client, baseURL, tenantID, ad)
				elapsed := time.Since(start).Milliseconds()

				metrics.mu.Lock()
				metrics.latenciesMs = append(metrics.latenciesMs, elapsed)
				metrics.mu.Unlock()
				atomic.AddInt64(&metrics.TotalProcessed, 1)

				if err != nil {
					atomic.AddInt64(&metrics.TotalErrors, 1)
					if verbose {
						fmt.Printf("ERROR: %v\n", err)
					}
					continue
				}

				if ad.Violating {
					atomic.AddInt64(&metrics.TotalViolating, 1)
				} else {
					atomic.AddInt64(&metrics.TotalClean, 1)
				}

				// Anything below full compliance counts as flagged
				predicted := result.Status != "적합"
				actual := ad.Violating

				switch {
				case predicted && actual:
					atomic.AddInt64(&metrics.TruePositives, 1)
				case predicted && !actual:
					atomic.AddInt64(&metrics.FalsePositives, 1)
				case !predicted && !actual:
					atomic.AddInt64(&metrics.TrueNegatives, 1)
				default:
					atomic.AddInt64(&metrics.FalseNegatives, 1)
				}

				if verbose {
					mark := "OK  "
					if predicted != actual {
						mark = "MISS"
					}
					excerpt := []rune(ad.Text)
					if len(excerpt) > 20 {
						excerpt = excerpt[:20]
					}
					fmt.Printf("%s | %-20s... | Violating: %-5v | MediLint: %s (%d)\n",
						mark, string(excerpt), ad.Violating, result.Status, result.Score)
				}
			}
		}()
	}

	for _, ad := range ads {
		work <- ad
	}
	close(work)

	wg.Wait()

	return metrics
}

func analyzeText(client *http.Client, baseURL, tenantID string, ad LabeledAd) (*AnalyzeResponse, error) {
	req := AnalyzeRequest{
		Text:       ad.Text,
		SourceType: ad.SourceType,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequest(http.MethodPost, baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Tenant-ID", tenantID)

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var result AnalyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}

func percentile(sorted []int64, p float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}

func printResults(m *Metrics, duration time.Duration) {
	fmt.Println("\n===============================================================")
	fmt.Println("                     BENCHMARK RESULTS")
	fmt.Println("===============================================================")

	fmt.Printf("\nDATASET STATISTICS\n")
	fmt.Printf("   Total Processed:  %d\n", m.TotalProcessed)
	fmt.Printf("   Total Violating:  %d\n", m.TotalViolating)
	fmt.Printf("   Total Clean:      %d\n", m.TotalClean)
	fmt.Printf("   Errors:           %d\n", m.TotalErrors)

	fmt.Printf("\nCONFUSION MATRIX\n")
	fmt.Println("                          Predicted")
	fmt.Println("                    Flagged     Passed")
	fmt.Printf("   Violating     %8d   %8d   (TP, FN)\n", m.TruePositives, m.FalseNegatives)
	fmt.Printf("   Clean         %8d   %8d   (FP, TN)\n", m.FalsePositives, m.TrueNegatives)

	precision := float64(0)
	if m.TruePositives+m.FalsePositives > 0 {
		precision = float64(m.TruePositives) / float64(m.TruePositives+m.FalsePositives)
	}

	recall := float64(0)
	if m.TruePositives+m.FalseNegatives > 0 {
		recall = float64(m.TruePositives) / float64(m.TruePositives+m.FalseNegatives)
	}

	f1 := float64(0)
	if precision+recall > 0 {
		f1 = 2 * (precision * recall) / (precision + recall)
	}

	accuracy := float64(0)
	total := m.TruePositives + m.TrueNegatives + m.FalsePositives + m.FalseNegatives
	if total > 0 {
		accuracy = float64(m.TruePositives+m.TrueNegatives) / float64(total)
	}

	fmt.Printf("\nDETECTION METRICS\n")
	fmt.Printf("   Precision:  %.4f  (of flagged ads, how many actually violate)\n", precision)
	fmt.Printf("   Recall:     %.4f  (of violating ads, how many were caught)\n", recall)
	fmt.Printf("   F1-Score:   %.4f  (harmonic mean of precision & recall)\n", f1)
	fmt.Printf("   Accuracy:   %.4f  (overall correct predictions)\n", accuracy)

	fmt.Printf("\nPERFORMANCE\n")
	fmt.Printf("   Total Duration:   %v\n", duration.Round(time.Millisecond))
	if m.TotalProcessed > 0 {
		sorted := append([]int64(nil), m.latenciesMs...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, v := range sorted {
			sum += v
		}

		fmt.Printf("   Avg Latency:      %.2f ms\n", float64(sum)/float64(len(sorted)))
		fmt.Printf("   p50 Latency:      %d ms\n", percentile(sorted, 0.50))
		fmt.Printf("   p95 Latency:      %d ms\n", percentile(sorted, 0.95))
		fmt.Printf("   p99 Latency:      %d ms\n", percentile(sorted, 0.99))
		fmt.Printf("   Throughput:       %.2f texts/sec\n", float64(m.TotalProcessed)/duration.Seconds())
	}

	fmt.Printf("\nINTERPRETATION\n")
	switch {
	case recall >= 0.9:
		fmt.Println("   Excellent recall - catching most violations")
	case recall >= 0.7:
		fmt.Println("   Good recall - but missing some violations")
	case recall >= 0.5:
		fmt.Println("   Moderate recall - significant violations being missed")
	default:
		fmt.Println("   Poor recall - most violations are being missed!")
	}

	if precision >= 0.5 {
		fmt.Println("   Good precision - flags are meaningful")
	} else if precision >= 0.2 {
		fmt.Println("   Low precision - many false flags")
	} else {
		fmt.Println("   Very low precision - mostly false flags")
	}

	fmt.Println()
}
