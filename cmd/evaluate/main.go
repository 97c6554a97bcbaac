// Evaluation tool for measuring fraud scoring quality against a
// labeled dataset.
//
// Usage:
//   go run cmd/evaluate/main.go -data data/test/transactions.jsonl -endpoint http://localhost:9090
//
// This tool:
//   1. Reads labeled transactions (JSONL, one sample per line)
//   2. Scores each through the inference client and score extractor
//   3. Compares predicted labels (score > 0.5) with the fraud labels
//   4. Prints the confusion matrix, per-class metrics, ROC AUC,
//      latency percentiles, and a per-call cost comparison
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/opensource-finance/kestrel/internal/domain"
	"github.com/opensource-finance/kestrel/internal/eval"
	"github.com/opensource-finance/kestrel/internal/inference"
	"github.com/opensource-finance/kestrel/internal/prompt"
	"github.com/opensource-finance/kestrel/internal/score"
)

func main() {
	dataPath := flag.String("data", "", "Path to labeled JSONL dataset")
	modelID := flag.String("model", "risk-scorer-small", "Model identifier")
	endpoint := flag.String("endpoint", "http://localhost:9090", "Inference endpoint base URL")
	provider := flag.String("provider", "chat", "Inference provider: chat, instruct, or stub")
	apiKey := flag.String("api-key", "", "Bearer token for the inference endpoint")
	workers := flag.Int("workers", 4, "Number of concurrent scoring workers")
	limit := flag.Int("limit", 0, "Maximum samples to evaluate (0 = all)")
	timeout := flag.Duration("timeout", 10*time.Second, "Per-call inference timeout")
	flag.Parse()

	if *dataPath == "" {
		fmt.Println("Usage: evaluate -data /path/to/samples.jsonl [-endpoint http://localhost:9090]")
		fmt.Println("\nFlags:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	samples, err := loadSamples(*dataPath, *limit)
	if err != nil {
		fmt.Printf("ERROR: failed to load dataset: %v\n", err)
		os.Exit(1)
	}

	var frauds int
	for _, s := range samples {
		if s.IsFraud {
			frauds++
		}
	}

	fmt.Println("╔═══════════════════════════════════════════════════════════════╗")
	fmt.Println("║            KESTREL EVALUATION - Fraud Scoring Quality         ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════╝")
	fmt.Printf("\nDataset:   %s\n", *dataPath)
	fmt.Printf("Samples:   %d (%d fraud, %d normal)\n", len(samples), frauds, len(samples)-frauds)
	fmt.Printf("Model:     %s (%s)\n", *modelID, *provider)
	fmt.Printf("Endpoint:  %s\n", *endpoint)
	fmt.Printf("Workers:   %d\n", *workers)
	fmt.Println()

	client, err := inference.New(domain.InferenceConfig{
		Provider:  domain.InferenceProvider(*provider),
		ModelID:   *modelID,
		Endpoint:  *endpoint,
		APIKey:    *apiKey,
		Timeout:   *timeout,
		MaxTokens: 200,
	})
	if err != nil {
		fmt.Printf("ERROR: failed to create inference client: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	// The read-only scoring path: prompt, inference, extraction. No
	// persistence and no alerts during replay.
	scoreFn := func(ctx context.Context, tx domain.Transaction) (float64, time.Duration, error) {
		start := time.Now()
		text, err := client.Complete(ctx, prompt.Build(tx, start.UTC()))
		if err != nil {
			return domain.NeutralScore, time.Since(start), err
		}
		value, found := score.Extract(text)
		if !found {
			value = domain.NeutralScore
		}
		return value, time.Since(start), nil
	}

	fmt.Printf("Scoring %d samples...\n", len(samples))
	start := time.Now()
	report := eval.NewHarness(scoreFn, *workers).Evaluate(context.Background(), samples)
	duration := time.Since(start)

	printReport(report, duration)
}

func loadSamples(path string, limit int) ([]domain.EvaluationSample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var samples []domain.EvaluationSample
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}

		var s domain.EvaluationSample
		if err := json.Unmarshal(scanner.Bytes(), &s); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		samples = append(samples, s)

		if limit > 0 && len(samples) >= limit {
			break
		}
	}

	return samples, scanner.Err()
}

func printReport(r *domain.EvaluationReport, duration time.Duration) {
	fmt.Println("\n╔═══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                      EVALUATION RESULTS                       ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════╝")

	fmt.Printf("\n📈 CONFUSION MATRIX\n")
	fmt.Println("                          Predicted")
	fmt.Println("                    Normal      Fraud")
	fmt.Println("              ┌──────────┬──────────┐")
	fmt.Printf("   Actual  N  │ %8d │ %8d │  (TN, FP)\n", r.TrueNegatives, r.FalsePositives)
	fmt.Println("              ├──────────┼──────────┤")
	fmt.Printf("           F  │ %8d │ %8d │  (FN, TP)\n", r.FalseNegatives, r.TruePositives)
	fmt.Println("              └──────────┴──────────┘")

	fmt.Printf("\n🎯 CLASSIFICATION METRICS\n")
	for _, class := range []string{"Normal", "Fraud"} {
		m := r.Classes[class]
		fmt.Printf("   %-8s  precision: %.3f  recall: %.3f  f1: %.3f  support: %d\n",
			class, m.Precision, m.Recall, m.F1, m.Support)
	}
	fmt.Printf("   ROC AUC:   %.4f\n", r.ROCAUC)

	fmt.Printf("\n⏱  LATENCY\n")
	fmt.Printf("   Mean:      %.1f ms\n", r.MeanLatencyMs)
	fmt.Printf("   P95:       %.1f ms\n", r.P95LatencyMs)
	fmt.Printf("   Wall time: %s\n", duration.Round(time.Millisecond))

	fmt.Printf("\n💰 COST COMPARISON (%d calls)\n", r.Samples)
	fmt.Printf("   Frontier model:   $%.4f\n", r.BaseCostUSD)
	fmt.Printf("   Fine-tuned model: $%.4f\n", r.ActualCostUSD)
	fmt.Printf("   Savings:          %.1f%%\n", r.SavingsPercent)
	fmt.Println()
}
