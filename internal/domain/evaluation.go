package domain

// EvaluationSample is a labeled transaction used only by the offline
// evaluation harness. Samples are never persisted and never alerted.
type EvaluationSample struct {
	Transaction

	IsFraud bool `json:"is_fraud"`

	// Labeler confidence, carried through from the dataset. Optional.
	Confidence float64 `json:"confidence,omitempty"`
}

// EvaluationReport aggregates classification, latency, and cost
// statistics over a labeled sample set.
type EvaluationReport struct {
	Samples int `json:"samples"`

	// Confusion matrix over predicted label (score > 0.5) vs truth.
	TrueNegatives  int `json:"true_negatives"`
	FalsePositives int `json:"false_positives"`
	FalseNegatives int `json:"false_negatives"`
	TruePositives  int `json:"true_positives"`

	// Per-class report, keyed "Normal" and "Fraud".
	Classes map[string]ClassMetrics `json:"classes"`

	ROCAUC float64 `json:"roc_auc"`

	MeanLatencyMs float64 `json:"mean_latency_ms"`
	P95LatencyMs  float64 `json:"p95_latency_ms"`

	// Cost comparison between a reference per-call price and the
	// actual per-call price, as absolute dollars and percent saving.
	BaseCostUSD    float64 `json:"base_cost_usd"`
	ActualCostUSD  float64 `json:"actual_cost_usd"`
	SavingsPercent float64 `json:"savings_percent"`
}

// ClassMetrics holds precision/recall/F1 for one class.
type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}
