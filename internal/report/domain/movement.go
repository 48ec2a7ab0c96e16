package domain

import (
	mrrdomain "github.com/smallbiznis/norra/internal/mrr/domain"
)

// ComputeMovement derives MRR movement by set-differencing subscription ids
// between two consecutive subscription-level imports. New MRR comes from ids
// present only in the current month, churned MRR from ids present only in the
// previous month.
func ComputeMovement(current, previous *Import) (*mrrdomain.Movement, error) {
	if current == nil || previous == nil ||
		current.Granularity != GranularitySubscription ||
		previous.Granularity != GranularitySubscription {
		return nil, ErrGranularityNeeded
	}

	prevIDs := make(map[string]struct{}, len(previous.Rows))
	for _, row := range previous.Rows {
		prevIDs[row.SubscriptionID] = struct{}{}
	}
	currIDs := make(map[string]struct{}, len(current.Rows))
	for _, row := range current.Rows {
		currIDs[row.SubscriptionID] = struct{}{}
	}

	movement := &mrrdomain.Movement{}
	if len(current.Rows) > 0 {
		movement.CurrentMonth = current.Rows[0].Period
	}
	if len(previous.Rows) > 0 {
		movement.PreviousMonth = previous.Rows[0].Period
	}

	for _, row := range current.Rows {
		if _, ok := prevIDs[row.SubscriptionID]; !ok {
			movement.NewMRR = movement.NewMRR.Add(row.MRR)
			movement.NewCount++
		}
	}
	for _, row := range previous.Rows {
		if _, ok := currIDs[row.SubscriptionID]; !ok {
			movement.ChurnedMRR = movement.ChurnedMRR.Add(row.MRR)
			movement.ChurnedCount++
		}
	}

	movement.NewMRR = movement.NewMRR.Round(2)
	movement.ChurnedMRR = movement.ChurnedMRR.Round(2)
	movement.NetChange = movement.NewMRR.Sub(movement.ChurnedMRR)
	return movement, nil
}
