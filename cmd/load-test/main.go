package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

type sendTextRequest struct {
	Texter  string   `json:"texter,omitempty"`
	To      []string `json:"to"`
	Content string   `json:"content"`
}

type sendTextResponse struct {
	Failures []string `json:"failures"`
}

type result struct {
	requests  int
	succeeded int
	failed    int
	partial   int
	duration  time.Duration
	latencies []time.Duration
	errors    map[string]int
}

func (r *result) percentile(p float64) time.Duration {
	if len(r.latencies) == 0 {
		return 0
	}
	idx := int(float64(len(r.latencies)-1) * p)
	return r.latencies[idx]
}

func run(ctx context.Context, url, texter string, requests, concurrency int) *result {
	var (
		mu  sync.Mutex
		res = &result{requests: requests, errors: make(map[string]int)}
	)
	client := &http.Client{Timeout: 30 * time.Second}

	fmt.Printf("\nSending %d texts with concurrency %d to %s\n", requests, concurrency, url)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	start := time.Now()

	for i := 0; i < requests; i++ {
		g.Go(func() error {
			body, _ := json.Marshal(sendTextRequest{
				Texter:  texter,
				To:      []string{fmt.Sprintf("+23350%07d", i%10000000), fmt.Sprintf("+23324%07d", i%10000000)},
				Content: fmt.Sprintf("Load test text #%d", i),
			})

			reqStart := time.Now()
			outcome, partial := send(ctx, client, url, body)
			elapsed := time.Since(reqStart)

			mu.Lock()
			defer mu.Unlock()
			res.latencies = append(res.latencies, elapsed)
			switch {
			case outcome != "":
				res.failed++
				res.errors[outcome]++
			case partial:
				res.partial++
				res.succeeded++
			default:
				res.succeeded++
			}
			return nil
		})
	}
	_ = g.Wait()

	res.duration = time.Since(start)
	sort.Slice(res.latencies, func(i, j int) bool { return res.latencies[i] < res.latencies[j] })
	return res
}

// send returns a non-empty outcome on failure and whether any recipient failed.
func send(ctx context.Context, client *http.Client, url string, body []byte) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err.Error(), false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err.Error(), false
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("HTTP %d: %s", resp.StatusCode, raw), false
	}

	var out sendTextResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "invalid JSON response", false
	}
	return "", len(out.Failures) > 0
}

func report(r *result) {
	fmt.Println("----------------------------------------")
	fmt.Printf("Requests:        %d\n", r.requests)
	fmt.Printf("Succeeded:       %d (%d with failed recipients)\n", r.succeeded, r.partial)
	fmt.Printf("Failed:          %d\n", r.failed)
	fmt.Printf("Duration:        %v\n", r.duration)
	fmt.Printf("Requests/sec:    %.2f\n", float64(r.requests)/r.duration.Seconds())
	fmt.Printf("Latency p50/p95: %v / %v\n", r.percentile(0.50), r.percentile(0.95))
	for msg, n := range r.errors {
		fmt.Printf("  %s: %d times\n", msg, n)
	}
	fmt.Println("----------------------------------------")
}

func main() {
	base := flag.String("base", "http://localhost:8080", "texting-api base URL")
	texter := flag.String("texter", "", "texter name, empty for the default")
	requests := flag.Int("n", 100, "number of requests")
	concurrency := flag.Int("c", 10, "concurrent requests")
	flag.Parse()

	resp, err := http.Get(*base + "/health")
	if err != nil {
		fmt.Printf("Cannot reach texting-api at %s: %v\n", *base, err)
		return
	}
	resp.Body.Close()

	report(run(context.Background(), *base+"/api/texts", *texter, *requests, *concurrency))
}
