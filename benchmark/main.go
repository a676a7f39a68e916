// Package main benchmarks the greenplate CLI against a live suggestion service.
// It runs each description several times without a cache and with the SQLite
// cache, treating the first cached run as cold and averaging the rest as warm,
// and writes the timings to a CSV file.
//
// Prerequisites:
// - greenplate binary installed and available in PATH
// - GREENPLATE_SUGGEST_ENDPOINT (and GREENPLATE_SUGGEST_TOKEN if needed) exported
//
// Usage: go run benchmark/main.go [catalog-file]
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// BenchmarkResult holds the result of one description (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Description string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	Catalog      string
	Timeout      time.Duration
	NoCacheRuns  int
	CacheRuns    int
	Descriptions []string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [catalog-file]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		Catalog:     os.Args[1],
		Timeout:     2 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Descriptions: []string{
			"a warm vegetarian soup",
			"quick pasta for two",
			"high protein breakfast",
			"something light with fish",
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("greenplate", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the binary, the catalog and the endpoint exist.
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("greenplate"); err != nil {
		return errors.New("greenplate binary not found in PATH")
	}
	if _, err := os.Stat(config.Catalog); err != nil {
		return fmt.Errorf("catalog not found at %s: %w", config.Catalog, err)
	}
	if os.Getenv("GREENPLATE_SUGGEST_ENDPOINT") == "" {
		return errors.New("GREENPLATE_SUGGEST_ENDPOINT is not set")
	}
	return nil
}

// runBenchmarks executes the no-cache and cache phases for every description.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	fmt.Printf("Starting benchmark: %d descriptions, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.Descriptions), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	results := make([]BenchmarkResult, 0, len(config.Descriptions))
	for _, description := range config.Descriptions {
		fmt.Printf("Benchmarking %q\n", description)

		_, noCacheAvg := runPhase(config, description, "none", config.NoCacheRuns)
		cold, warmAvg := runPhase(config, description, "sqlite", config.CacheRuns)

		coldTime := "TIMEOUT"
		if cold > 0 {
			coldTime = fmt.Sprintf("%.3fs", cold)
		}
		fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTime, warmAvg)

		results = append(results, BenchmarkResult{
			Description: description,
			NoCacheTime: noCacheAvg,
			ColdTime:    coldTime,
			WarmTime:    warmAvg,
		})
	}
	return results
}

// runPhase runs one description numRuns times and returns the first time and the average of the others.
// Without a cache every run is a cold run, so its average covers all runs.
func runPhase(config BenchmarkConfig, description, cacheBackend string, numRuns int) (coldTime float64, avgTime string) {
	fmt.Printf("  %s phase (%d runs)\n", cacheBackend, numRuns)
	times := runBenchmark(config, description, cacheBackend, numRuns)
	if len(times) == 0 {
		return 0, "TIMEOUT"
	}

	coldTime = times[0]
	averaged := times
	if cacheBackend != "none" {
		averaged = times[1:]
	}
	if len(averaged) == 0 {
		return coldTime, "n/a"
	}
	var sum float64
	for _, t := range averaged {
		sum += t
	}
	return coldTime, fmt.Sprintf("%.3fs", sum/float64(len(averaged)))
}

// runBenchmark executes greenplate rank numRuns times and returns the successful run times.
func runBenchmark(config BenchmarkConfig, description, cacheBackend string, numRuns int) []float64 {
	args := []string{"rank", "--catalog", config.Catalog, "--cache-backend", cacheBackend, "--color", "no", description}

	var times []float64
	for range numRuns {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		output, err := exec.CommandContext(ctx, "greenplate", args...).CombinedOutput()
		elapsed := time.Since(start).Seconds()
		cancel()
		if err == nil && isSuccess(output) {
			times = append(times, elapsed)
		}
	}
	return times
}

// isSuccess checks if command output indicates a completed ranking.
func isSuccess(output []byte) bool {
	return strings.Contains(string(output), "Ranking completed in")
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/greenplate_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"description", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Description, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary.
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %-28s: No-cache: %s, Cold: %s, Warm: %s\n", result.Description, result.NoCacheTime, result.ColdTime, result.WarmTime)
	}
}
