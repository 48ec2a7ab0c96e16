package domain

import (
	"github.com/shopspring/decimal"
	mrrdomain "github.com/smallbiznis/norra/internal/mrr/domain"
	reportdomain "github.com/smallbiznis/norra/internal/report/domain"
)

var two = decimal.NewFromInt(2)

type evidence struct {
	calculated decimal.Decimal
	reference  decimal.Decimal
	relative   *decimal.Decimal
	population int
	refCount   int
	policy     Policy
}

// hypothesis is one ranked classification rule. Rules are evaluated in table
// order and the first applicable one wins, so a tax-shaped gap is reported as
// such instead of drowning in a generic mismatch.
type hypothesis struct {
	classification Classification
	applies        func(e evidence) bool
}

var hypotheses = []hypothesis{
	{
		classification: ClassificationMatch,
		applies: func(e evidence) bool {
			return e.relative != nil && e.relative.Abs().LessThanOrEqual(e.policy.Tolerance)
		},
	},
	{
		classification: ClassificationWithinTolerance,
		applies: func(e evidence) bool {
			return e.relative != nil && e.relative.Abs().LessThanOrEqual(e.policy.Tolerance.Mul(two))
		},
	},
	{
		classification: ClassificationTaxDiscrepancy,
		applies: func(e evidence) bool {
			if e.reference.IsZero() {
				return false
			}
			adjusted := e.calculated.Div(decimal.NewFromInt(1).Add(e.policy.TaxRate))
			rel := adjusted.Sub(e.reference).Div(e.reference)
			return rel.Abs().LessThanOrEqual(e.policy.Tolerance)
		},
	},
	{
		classification: ClassificationPopulation,
		applies: func(e evidence) bool {
			if e.refCount <= 0 {
				return false
			}
			diff := e.population - e.refCount
			if diff < 0 {
				diff = -diff
			}
			return diff > e.policy.PopulationThreshold
		},
	},
}

// Reconcile compares a calculated snapshot against one reference figure and
// classifies the delta. Unexplained is a valid terminal state for a human to
// review, never an error.
func Reconcile(calc mrrdomain.Snapshot, ref reportdomain.ReferenceFigure, pol Policy) Result {
	result := Result{
		Period:        ref.Period,
		CalculatedMRR: calc.MRR,
		ReferenceMRR:  ref.MRR,
		AbsoluteDelta: calc.MRR.Sub(ref.MRR),
	}

	e := evidence{
		calculated: calc.MRR,
		reference:  ref.MRR,
		population: calc.ActiveSubscriptions,
		refCount:   ref.Population,
		policy:     pol,
	}
	if !ref.MRR.IsZero() {
		rel := result.AbsoluteDelta.Div(ref.MRR)
		result.RelativeDelta = &rel
		e.relative = &rel
	} else if calc.MRR.IsZero() {
		// Both sides zero agree exactly; relative delta stays N/A.
		zero := decimal.Zero
		e.relative = &zero
	}

	result.Classification = ClassificationUnexplained
	for _, h := range hypotheses {
		if h.applies(e) {
			result.Classification = h.classification
			break
		}
	}
	return result
}
