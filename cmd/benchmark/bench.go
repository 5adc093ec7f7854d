package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	vegeta "github.com/tsenart/vegeta/v12/lib"
)

const (
	mockPort = 9091
	appPort  = 8081
)

// upstreamHits counts catalog calls that reached the mock providers.
var upstreamHits atomic.Int64

func main() {
	duration := flag.Duration("duration", 10*time.Second, "Duration of the test")
	rate := flag.Int("rate", 50, "Requests per second")
	refresh := flag.Int("refresh", 0, "Percentage of requests that force a catalog refresh")
	models := flag.Int("models", 300, "Models served by each mock provider")
	chaos := flag.Bool("chaos", false, "Simulate random client disconnections")
	flag.Parse()

	go startMockServer(*models)

	fmt.Println("Building application...")
	buildCmd := exec.Command("go", "build", "-o", "bin/server", "./cmd/server")
	buildCmd.Stdout = os.Stdout
	buildCmd.Stderr = os.Stderr
	if err := buildCmd.Run(); err != nil {
		log.Fatalf("Failed to build app: %v", err)
	}

	configFile := "bench_config.yaml"
	if err := os.WriteFile(configFile, []byte(benchConfig), 0o644); err != nil {
		log.Fatalf("Failed to write config: %v", err)
	}
	defer os.Remove(configFile)

	fmt.Println("Starting application...")
	cmd := exec.Command("./bin/server")
	cmd.Env = append(os.Environ(),
		"CONFIG_FILE="+configFile,
		fmt.Sprintf("SERVER_PORT=%d", appPort),
		"LOG_LEVEL=error",
		"OPENROUTER_API_KEY=bench-openrouter",
		"GROQ_API_KEY=bench-groq",
	)

	logFile, _ := os.Create("bench_server.log")
	defer logFile.Close()
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	if err := cmd.Start(); err != nil {
		log.Fatalf("Failed to start app: %v", err)
	}
	defer func() {
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
	}()

	waitForApp(fmt.Sprintf("http://localhost:%d/health", appPort))

	done := make(chan struct{})
	go monitorResources(fmt.Sprintf("http://localhost:%d/metrics", appPort), done)

	fmt.Printf("Running catalog benchmark: %s duration, %d req/s, %d%% forced refresh\n", *duration, *rate, *refresh)

	listURL := fmt.Sprintf("http://localhost:%d/v1/models", appPort)
	targeter := func(t *vegeta.Target) error {
		t.Method = http.MethodGet
		t.URL = listURL
		if rand.Intn(100) < *refresh {
			t.URL += "?refresh=true"
		}
		t.Header = http.Header{"Accept": []string{"application/json"}}
		return nil
	}

	if *chaos {
		fmt.Println("CHAOS MODE ENABLED: Starting Chaos Monkey sidecar...")
		concurrency := min(max(*rate/10, 5), 50)
		go startChaosMonkey(listURL+"?refresh=true", concurrency, done)
	}

	attacker := vegeta.NewAttacker(vegeta.KeepAlive(true))
	var metrics vegeta.Metrics
	for res := range attacker.Attack(targeter, vegeta.Rate{Freq: *rate, Per: time.Second}, *duration, "Catalog") {
		metrics.Add(res)
	}
	metrics.Close()
	close(done)

	fmt.Println("--------------------------------------------------")
	fmt.Println("99th percentile: ", metrics.Latencies.P99)
	fmt.Println("Mean:            ", metrics.Latencies.Mean)
	fmt.Println("Max:             ", metrics.Latencies.Max)
	fmt.Printf("Success:         %.2f%%\n", metrics.Success*100)
	fmt.Printf("Throughput:      %.2f req/s\n", metrics.Throughput)
	fmt.Printf("Upstream calls:  %d\n", upstreamHits.Load())
	fmt.Println("--------------------------------------------------")

	if len(metrics.Errors) > 0 {
		fmt.Println("Error Set (first 5 unique):")
		seen := make(map[string]bool)
		for _, msg := range metrics.Errors {
			if len(seen) == 5 {
				break
			}
			if !seen[msg] {
				fmt.Println(msg)
				seen[msg] = true
			}
		}
	}
}

func startChaosMonkey(url string, concurrency int, done chan struct{}) {
	fmt.Printf("Starting Chaos Monkey with %d concurrent disrupters (random disconnects 1-200ms)\n", concurrency)
	var wg sync.WaitGroup
	wg.Add(concurrency)

	for i := 0; i < concurrency; i++ {
		go func() {
			defer wg.Done()
			client := &http.Client{Transport: &http.Transport{MaxIdleConnsPerHost: 100}}

			for {
				select {
				case <-done:
					return
				default:
					timeout := time.Duration(rand.Intn(200)+1) * time.Millisecond
					ctx, cancel := context.WithTimeout(context.Background(), timeout)
					req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)

					resp, err := client.Do(req)
					if err == nil {
						resp.Body.Close()
					}
					cancel()

					time.Sleep(time.Duration(rand.Intn(50)) * time.Millisecond)
				}
			}
		}()
	}
	wg.Wait()
}

// startMockServer serves an OpenRouter-shaped and an OpenAI-shaped catalog
// of n models each, with a small artificial latency.
func startMockServer(n int) {
	openrouter := make([]map[string]any, 0, n)
	compat := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		openrouter = append(openrouter, map[string]any{
			"id":             fmt.Sprintf("vendor/model-%d", i),
			"name":           fmt.Sprintf("Model %d", i),
			"context_length": 8192 * (i%16 + 1),
			"pricing": map[string]string{
				"prompt":     strconv.FormatFloat(float64(i%20)*0.000001, 'f', -1, 64),
				"completion": strconv.FormatFloat(float64(i%20)*0.000002, 'f', -1, 64),
			},
			"architecture": map[string]any{"input_modalities": []string{"text", "image"}[:1+i%2]},
		})
		compat = append(compat, map[string]any{
			"id": fmt.Sprintf("model-%d", i), "object": "model", "created": 1687882411, "owned_by": "bench",
		})
	}
	openrouterBody, _ := json.Marshal(map[string]any{"data": openrouter})
	compatBody, _ := json.Marshal(map[string]any{"object": "list", "data": compat})

	serve := func(body []byte) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			upstreamHits.Add(1)
			time.Sleep(20 * time.Millisecond)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(body)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/models", serve(openrouterBody))
	mux.HandleFunc("/openai/v1/models", serve(compatBody))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	_ = http.ListenAndServe(fmt.Sprintf(":%d", mockPort), mux)
}

// monitorResources samples the server's own process collectors.
func monitorResources(metricsURL string, done chan struct{}) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	fmt.Println("\n--- Resource Usage (/metrics) ---")
	fmt.Printf("%-10s %-10s %-10s %-12s\n", "Time", "Heap(MB)", "RSS(MB)", "Goroutines")

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			samples, err := scrape(metricsURL, "go_memstats_heap_inuse_bytes", "process_resident_memory_bytes", "go_goroutines")
			if err != nil {
				fmt.Printf("DEBUG: monitorResources failed to scrape metrics: %v\n", err)
				continue
			}
			fmt.Printf("%-10s %-10.2f %-10.2f %-12.0f\n",
				time.Now().Format("15:04:05"),
				samples["go_memstats_heap_inuse_bytes"]/1024/1024,
				samples["process_resident_memory_bytes"]/1024/1024,
				samples["go_goroutines"],
			)
		}
	}
}

// scrape reads unlabelled gauges from a Prometheus text exposition.
func scrape(url string, names ...string) (map[string]float64, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	out := make(map[string]float64, len(names))
	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		name, value, ok := strings.Cut(sc.Text(), " ")
		if !ok || !want[name] {
			continue
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			out[name] = v
		}
	}
	return out, sc.Err()
}

func waitForApp(url string) {
	for i := 0; i < 20; i++ {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	log.Fatal("App timed out")
}

var benchConfig = fmt.Sprintf(`
server:
  port: "%d"
  env: development
rate_limit:
  requests_per_second: 0
log:
  level: error
  format: json
catalog:
  cache_ttl: 30s
providers:
  - key: openrouter
    name: OpenRouter
    type: openrouter
    endpoint: "http://localhost:%[2]d/api/v1/models"
    credential_key: OPENROUTER_API_KEY
    enabled: true
  - key: groq
    name: Groq
    type: openaicompat
    endpoint: "http://localhost:%[2]d/openai/v1/models"
    credential_key: GROQ_API_KEY
    health_check: "http://localhost:%[2]d/health"
    enabled: true
`, appPort, mockPort)
