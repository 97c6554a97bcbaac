// Synthetic dataset generator for evaluation and fine-tuning.
//
// Usage:
//   go run cmd/datagen/main.go -n 1000 -fraud-ratio 0.05 -out data/samples.jsonl
//   go run cmd/datagen/main.go -n 1000 -format rft -out data/rft.jsonl
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/opensource-finance/kestrel/internal/generator"
)

func main() {
	n := flag.Int("n", 1000, "Number of samples to generate")
	fraudRatio := flag.Float64("fraud-ratio", 0.05, "Fraction of fraud samples (0.0-1.0)")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed (same seed, same dataset)")
	out := flag.String("out", "", "Output path (default: stdout)")
	format := flag.String("format", "eval", "Output format: eval (labeled samples) or rft (fine-tuning records)")
	flag.Parse()

	if *fraudRatio < 0 || *fraudRatio > 1 {
		fmt.Println("ERROR: -fraud-ratio must be between 0.0 and 1.0")
		os.Exit(1)
	}
	if *format != "eval" && *format != "rft" {
		fmt.Printf("ERROR: unknown format %q (want eval or rft)\n", *format)
		os.Exit(1)
	}

	samples := generator.New(*seed).Dataset(*n, *fraudRatio)

	dest := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fmt.Printf("ERROR: failed to create output file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		dest = f
	}

	w := bufio.NewWriter(dest)
	defer w.Flush()

	enc := json.NewEncoder(w)
	var frauds int
	for _, s := range samples {
		if s.IsFraud {
			frauds++
		}

		if *format == "rft" {
			rec, err := generator.ToRFTRecord(s)
			if err != nil {
				fmt.Printf("ERROR: failed to convert sample %s: %v\n", s.TransactionID, err)
				os.Exit(1)
			}
			if err := enc.Encode(rec); err != nil {
				fmt.Printf("ERROR: failed to write record: %v\n", err)
				os.Exit(1)
			}
			continue
		}

		if err := enc.Encode(s); err != nil {
			fmt.Printf("ERROR: failed to write sample: %v\n", err)
			os.Exit(1)
		}
	}

	if *out != "" {
		fmt.Printf("Generated %d samples (%d fraud, %d normal) -> %s\n",
			len(samples), frauds, len(samples)-frauds, *out)
	}
}
