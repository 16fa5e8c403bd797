package session

import (
	"github.com/tetraminz/estate_coach/internal/analysis"
	"github.com/tetraminz/estate_coach/internal/store"
)

// conversionWeights score how close each intent sits to a closed deal.
var conversionWeights = map[string]float64{
	analysis.IntentPurchase: 0.7,
	analysis.IntentPrice:    0.5,
	analysis.IntentLocation: 0.3,
	analysis.IntentGeneral:  0.2,
}

const conversionWeightOther = 0.1

// ComputeMetrics derives call metrics from the history. Only
// customer turns count; assistant replies never move the scores.
// An empty history yields all zeros.
func ComputeMetrics(history []Utterance) store.MetricsRow {
	var customerTurns, positiveTurns int
	var weightSum float64

	for _, u := range history {
		if u.Speaker != SpeakerCustomer {
			continue
		}
		customerTurns++
		if u.Sentiment == analysis.SentimentPositive {
			positiveTurns++
		}
		weight, ok := conversionWeights[u.Intent]
		if !ok {
			weight = conversionWeightOther
		}
		weightSum += weight
	}

	row := store.MetricsRow{EngagementScore: customerTurns}
	if customerTurns > 0 {
		row.SentimentPositivity = float64(positiveTurns) / float64(customerTurns) * 100
		row.ConversionPotential = weightSum / float64(customerTurns) * 100
	}
	return row
}
