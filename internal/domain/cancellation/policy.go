package cancellation

import "errors"

var ErrValidation = errors.New("validation error")

// PolicyConfig carries the refund tier thresholds in hours before
// check-in. Passed in at construction; the workflow never reads ambient
// settings.
type PolicyConfig struct {
	FullRefundHours float64
	HalfRefundHours float64
}

func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		FullRefundHours: 24,
		HalfRefundHours: 6,
	}
}

// Tier is the outcome of evaluating the policy for one cancellation.
type Tier struct {
	RefundPercent    int64
	RequiresApproval bool
}

// Evaluate maps hours-until-check-in to a refund tier. First match wins:
//
//	>= FullRefundHours  100%, auto-approved
//	>= HalfRefundHours   50%, auto-approved
//	otherwise             0% advisory, admin approval required
//	  (including negative hours, i.e. after check-in)
func (c PolicyConfig) Evaluate(hoursUntilCheckIn float64) Tier {
	switch {
	case hoursUntilCheckIn >= c.FullRefundHours:
		return Tier{RefundPercent: 100, RequiresApproval: false}
	case hoursUntilCheckIn >= c.HalfRefundHours:
		return Tier{RefundPercent: 50, RequiresApproval: false}
	default:
		return Tier{RefundPercent: 0, RequiresApproval: true}
	}
}

// RefundBreakdown computes the refund and penalty for a tier.
// totalPrice is in minor units; fails on negative input.
func (c PolicyConfig) RefundBreakdown(hoursUntilCheckIn float64, totalPrice int64) (Tier, int64, int64, error) {
	if totalPrice < 0 {
		return Tier{}, 0, 0, ErrValidation
	}
	tier := c.Evaluate(hoursUntilCheckIn)
	refund := totalPrice * tier.RefundPercent / 100
	return tier, refund, totalPrice - refund, nil
}
