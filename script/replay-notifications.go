package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand/v2"
	"net/http"
	"slices"
	"sync"
	"time"
)

// IngestRequest is the body of POST /api/v1/messages/ingest
type IngestRequest struct {
	Message string `json:"message"`
}

// IngestResponse is the part of the pipeline result the replay cares about
type IngestResponse struct {
	MessageID string `json:"messageId"`
	Stage     string `json:"stage"`
	Status    string `json:"status"`
}

// ReplayResult contains metrics for a single request
type ReplayResult struct {
	Template     string
	Status       string
	ResponseTime time.Duration
	StatusCode   int
	Error        error
}

// ReplayStats contains aggregated statistics
type ReplayStats struct {
	TotalRequests   int
	FailedRequests  int
	TotalTime       time.Duration
	ResponseTimes   []time.Duration
	StatusCounts    map[string]int
	TemplateCounts  map[string]int
	ErrorCounts     map[string]int
	UniqueMessages  int
	DeliveredCopies int
	Lock            sync.Mutex
}

// Template produces a bank notification; %d is replaced by a unique reference seed
type Template struct {
	Name   string
	Format string
}

var templates = []Template{
	{"SBI debit", "Dear Customer, Rs.%d.00 debited from your a/c XXXXXXX1234 to UPI ID swiggy@paytm. Ref No. 3345%08d."},
	{"HDFC debit", "Rs.%d debited from A/c **5678 to VPA uber@okaxis on 15-12-23. UPI Ref 4451%08d."},
	{"GPay credit", "You received ₹%d from rahul@okicici via UPI. UPI transaction ID: 5561%08d"},
	{"Paytm payment", "Paid INR %d to Amazon Pay. Txn ID: 6671%08d. UPI payment successful."},
	{"ICICI debit", "Acct XX890 debited with INR %d.50 for UPI/P2M/netflix@ybl. Ref no 7781%08d"},
	{"OTP noise", "Your OTP for transaction of Rs.%d is %06d. Do not share."},
}

func main() {
	concurrency := flag.Int("c", 5, "Number of concurrent goroutines")
	unique := flag.Int("n", 100, "Number of distinct notifications to generate")
	redeliveries := flag.Int("r", 2, "Maximum extra deliveries of each notification")
	baseURL := flag.String("url", "http://localhost:8080", "Base URL for the API")
	delayMs := flag.Int("delay", 0, "Delay between requests in milliseconds")
	flag.Parse()

	// every notification is delivered 1..(r+1) times, shuffled, to exercise deduplication
	var messages []job
	for i := 0; i < *unique; i++ {
		tmpl := templates[rand.IntN(len(templates))]
		amount := 10 + rand.IntN(5000)
		text := fmt.Sprintf(tmpl.Format, amount, i)
		copies := 1 + rand.IntN(*redeliveries+1)
		for c := 0; c < copies; c++ {
			messages = append(messages, job{template: tmpl.Name, message: text})
		}
	}
	rand.Shuffle(len(messages), func(i, j int) { messages[i], messages[j] = messages[j], messages[i] })

	fmt.Printf("Replaying %d notifications (%d distinct) against %s\n", len(messages), *unique, *baseURL)
	fmt.Printf("Concurrency: %d goroutines\n", *concurrency)

	stats := &ReplayStats{
		TotalRequests:   len(messages),
		ResponseTimes:   make([]time.Duration, 0, len(messages)),
		StatusCounts:    make(map[string]int),
		TemplateCounts:  make(map[string]int),
		ErrorCounts:     make(map[string]int),
		UniqueMessages:  *unique,
		DeliveredCopies: len(messages) - *unique,
	}

	jobs := make(chan job, len(messages))
	results := make(chan ReplayResult, len(messages))

	var wg sync.WaitGroup
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(*baseURL, *delayMs, jobs, results)
		}()
	}

	for _, m := range messages {
		jobs <- m
	}
	close(jobs)

	startTime := time.Now()
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for result := range results {
			stats.Lock.Lock()
			stats.TemplateCounts[result.Template]++
			stats.ResponseTimes = append(stats.ResponseTimes, result.ResponseTime)
			if result.Error != nil {
				stats.FailedRequests++
				stats.ErrorCounts[result.Error.Error()]++
			} else {
				stats.StatusCounts[result.Status]++
			}
			stats.Lock.Unlock()
		}
	}()

	wg.Wait()
	close(results)
	<-collected
	stats.TotalTime = time.Since(startTime)

	printResults(stats)
}

type job struct {
	template string
	message  string
}

func worker(baseURL string, delayMs int, jobs <-chan job, results chan<- ReplayResult) {
	client := &http.Client{
		Timeout: 10 * time.Second,
	}
	apiURL := baseURL + "/api/v1/messages/ingest"

	for j := range jobs {
		if delayMs > 0 {
			time.Sleep(time.Duration(delayMs) * time.Millisecond)
		}

		result := ReplayResult{Template: j.template}

		body, err := json.Marshal(IngestRequest{Message: j.message})
		if err != nil {
			result.Error = err
			results <- result
			continue
		}

		start := time.Now()
		resp, err := client.Post(apiURL, "application/json", bytes.NewReader(body))
		result.ResponseTime = time.Since(start)
		if err != nil {
			result.Error = err
			results <- result
			continue
		}

		result.StatusCode = resp.StatusCode
		var decoded IngestResponse
		if resp.StatusCode >= 300 {
			result.Error = fmt.Errorf("HTTP status code %d", resp.StatusCode)
		} else if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			result.Error = fmt.Errorf("decode response: %w", err)
		} else {
			result.Status = decoded.Status
		}
		_ = resp.Body.Close()

		results <- result
	}
}

func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[len(sorted)*p/100]
}

func printResults(stats *ReplayStats) {
	sorted := slices.Clone(stats.ResponseTimes)
	slices.Sort(sorted)

	fmt.Println("\n================= REPLAY RESULTS =================")
	fmt.Printf("Total Requests:      %d\n", stats.TotalRequests)
	fmt.Printf("Distinct Messages:   %d\n", stats.UniqueMessages)
	fmt.Printf("Redelivered Copies:  %d\n", stats.DeliveredCopies)
	fmt.Printf("Failed Requests:     %d\n", stats.FailedRequests)
	fmt.Printf("Total Time:          %.2f seconds\n", stats.TotalTime.Seconds())
	if stats.TotalTime > 0 {
		fmt.Printf("Throughput:          %.2f req/s\n", float64(stats.TotalRequests)/stats.TotalTime.Seconds())
	}

	fmt.Println("\n----------------- OUTCOMES -----------------")
	for _, status := range []string{"persisted", "duplicate", "rejected", "failed"} {
		fmt.Printf("%-10s: %d\n", status, stats.StatusCounts[status])
	}

	fmt.Println("\n----------------- RESPONSE TIMES -----------------")
	if len(sorted) > 0 {
		fmt.Printf("Minimum Response:    %v\n", sorted[0])
		fmt.Printf("Maximum Response:    %v\n", sorted[len(sorted)-1])
	}
	fmt.Printf("P50 Response:        %v\n", percentile(sorted, 50))
	fmt.Printf("P95 Response:        %v\n", percentile(sorted, 95))
	fmt.Printf("P99 Response:        %v\n", percentile(sorted, 99))

	fmt.Println("\n----------------- TEMPLATE DISTRIBUTION -----------------")
	for name, count := range stats.TemplateCounts {
		fmt.Printf("%-15s: %d requests\n", name, count)
	}

	if stats.FailedRequests > 0 {
		fmt.Println("\n----------------- ERROR DISTRIBUTION -----------------")
		for errMsg, count := range stats.ErrorCounts {
			fmt.Printf("%-40s: %d\n", errMsg, count)
		}
	}

	// each distinct parseable message should be persisted exactly once
	fmt.Println("\n================= CONCLUSION =================")
	parseable := stats.StatusCounts["persisted"]
	if stats.FailedRequests == 0 && parseable <= stats.UniqueMessages {
		fmt.Printf("✅ No redelivery was stored twice (%d persisted of %d distinct)\n", parseable, stats.UniqueMessages)
	} else {
		fmt.Printf("❌ Check results: %d persisted of %d distinct, %d failures\n", parseable, stats.UniqueMessages, stats.FailedRequests)
	}
	fmt.Println("================================================")
}
