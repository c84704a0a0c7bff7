package matching

import (
	"time"

	"payrecon/internal/domain"
	"payrecon/internal/normalize"
)

// MatchResult is the pure output of Match (§4.F).
type MatchResult struct {
	MatchedInvoiceID *string
	InvoiceNumber    string
	Score            float64
	Classification   Classification
	Breakdown        Breakdown
	Explanation      string
}

// candidateScore holds the ranking-only preliminary score (§4.F step 3)
// used to pick a winner; it is distinct from the final confidence.
type candidateScore struct {
	candidate      domain.InvoiceCandidate
	nameSimilarity float64
	dateScore      int
	preliminary    float64
}

// Match orchestrates normalization, similarity, date proximity,
// ambiguity penalty, and confidence combination over one transaction
// against a pre-filtered candidate set (already equal-amount,
// unpaid). It is pure, deterministic, and reproducible bit-for-bit
// given identical inputs (§8 property 1).
func Match(description string, transactionDate time.Time, candidates []domain.InvoiceCandidate) MatchResult {
	if len(candidates) == 0 {
		return MatchResult{
			Score:          0,
			Classification: Unmatched,
			Explanation:    "No candidate invoices found with matching amount",
		}
	}

	normalizedDesc := normalize.Normalize(description)

	scored := make([]candidateScore, 0, len(candidates))
	for _, c := range candidates {
		normalizedName := normalize.Normalize(c.CustomerName)
		nameSim := Similarity(normalizedDesc, normalizedName)
		dateScore := DateScore(transactionDate, c.DueDate)
		preliminary := nameSim*0.7 + float64(dateScore)

		scored = append(scored, candidateScore{
			candidate:      c,
			nameSimilarity: nameSim,
			dateScore:      dateScore,
			preliminary:    preliminary,
		})
	}

	winner := pickWinner(scored)

	score, classification, breakdown := Confidence(winner.nameSimilarity, winner.dateScore, len(candidates))

	result := MatchResult{
		Score:          score,
		Classification: classification,
		Breakdown:      breakdown,
	}

	if classification == Unmatched {
		result.Explanation = Explain(breakdown, classification, "", len(candidates))
		return result
	}

	id := winner.candidate.ID
	result.MatchedInvoiceID = &id
	result.InvoiceNumber = winner.candidate.InvoiceNumber
	result.Explanation = Explain(breakdown, classification, winner.candidate.InvoiceNumber, len(candidates))
	return result
}

// pickWinner selects the highest preliminary score, breaking ties by
// the smaller candidate id for a stable, deterministic choice (§4.F
// step 4).
func pickWinner(scored []candidateScore) candidateScore {
	best := scored[0]
	for _, s := range scored[1:] {
		if s.preliminary > best.preliminary {
			best = s
			continue
		}
		if s.preliminary == best.preliminary && s.candidate.ID < best.candidate.ID {
			best = s
		}
	}
	return best
}
