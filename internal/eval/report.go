package eval

import (
	"sort"

	"github.com/opensource-finance/kestrel/internal/domain"
)

// Per-call reference prices for the cost comparison: a frontier model
// versus the fine-tuned small model actually serving the pipeline.
const (
	baseCostPerCall   = 0.002
	actualCostPerCall = 0.0001
)

// decisionThreshold converts a continuous score into a predicted
// label for the confusion matrix.
const decisionThreshold = 0.5

// BuildReport reduces per-sample outcomes into an evaluation report.
// Failed samples still carry a score (the pipeline's fallback), so
// every outcome participates.
func BuildReport(outcomes []Outcome) *domain.EvaluationReport {
	r := &domain.EvaluationReport{
		Samples: len(outcomes),
		Classes: make(map[string]domain.ClassMetrics),
	}
	if len(outcomes) == 0 {
		return r
	}

	var latencies []float64
	for _, o := range outcomes {
		predictedFraud := o.Score > decisionThreshold
		switch {
		case !o.Sample.IsFraud && !predictedFraud:
			r.TrueNegatives++
		case !o.Sample.IsFraud && predictedFraud:
			r.FalsePositives++
		case o.Sample.IsFraud && !predictedFraud:
			r.FalseNegatives++
		default:
			r.TruePositives++
		}
		latencies = append(latencies, float64(o.Latency.Milliseconds()))
	}

	// Per-class metrics: "Fraud" treats fraud as the positive class,
	// "Normal" the inverse.
	r.Classes["Fraud"] = classMetrics(r.TruePositives, r.FalsePositives, r.FalseNegatives, r.TruePositives+r.FalseNegatives)
	r.Classes["Normal"] = classMetrics(r.TrueNegatives, r.FalseNegatives, r.FalsePositives, r.TrueNegatives+r.FalsePositives)

	r.ROCAUC = rocAUC(outcomes)

	sort.Float64s(latencies)
	var sum float64
	for _, l := range latencies {
		sum += l
	}
	r.MeanLatencyMs = sum / float64(len(latencies))
	r.P95LatencyMs = percentile(latencies, 0.95)

	calls := float64(len(outcomes))
	r.BaseCostUSD = calls * baseCostPerCall
	r.ActualCostUSD = calls * actualCostPerCall
	r.SavingsPercent = (r.BaseCostUSD - r.ActualCostUSD) / r.BaseCostUSD * 100

	return r
}

func classMetrics(tp, fp, fn, support int) domain.ClassMetrics {
	m := domain.ClassMetrics{Support: support}

	if tp+fp > 0 {
		m.Precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		m.Recall = float64(tp) / float64(tp+fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}

// rocAUC computes the area under the ROC curve by the rank-sum
// formulation, averaging ranks across tied scores. Returns 0 when
// either class is absent.
func rocAUC(outcomes []Outcome) float64 {
	type scored struct {
		score float64
		fraud bool
	}

	items := make([]scored, 0, len(outcomes))
	var nPos, nNeg int
	for _, o := range outcomes {
		items = append(items, scored{score: o.Score, fraud: o.Sample.IsFraud})
		if o.Sample.IsFraud {
			nPos++
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return 0
	}

	sort.Slice(items, func(i, j int) bool { return items[i].score < items[j].score })

	// Walk tie groups assigning each member the group's average rank.
	ranks := make([]float64, len(items))
	for i := 0; i < len(items); {
		j := i
		for j < len(items) && items[j].score == items[i].score {
			j++
		}
		// Ranks are 1-based; a group spanning positions i..j-1 averages
		// to (i+1 + j) / 2.
		avg := float64(i+1+j) / 2
		for k := i; k < j; k++ {
			ranks[k] = avg
		}
		i = j
	}

	var posRankSum float64
	for i, it := range items {
		if it.fraud {
			posRankSum += ranks[i]
		}
	}

	u := posRankSum - float64(nPos)*float64(nPos+1)/2
	return u / (float64(nPos) * float64(nNeg))
}

// percentile returns the nearest-rank percentile of sorted values.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p*float64(len(sorted))+0.5) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
