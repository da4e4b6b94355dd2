package budget

import "github.com/relayhub/gateway/pkg/store"

// DowngradeThreshold is the spend percentage at which the guard starts
// forcing a cheaper model tier instead of denying the request outright.
const DowngradeThreshold = 0.80

// DenyThreshold is the spend percentage at which the guard denies the
// request.
const DenyThreshold = 1.0

// Decision is the result of a budget check.
type Decision struct {
	// Allowed reports whether the request may proceed.
	Allowed bool

	// Reason explains a denial. Empty when Allowed is true.
	Reason string

	// Downgrade reports whether the pipeline should route to a cheaper
	// model tier before dispatch.
	Downgrade bool

	// Remaining is the budget left in the tightest exceeded-or-nearest
	// period, in USD. Positive infinity when no budget is enabled.
	Remaining float64

	// Period identifies which budget row drove the decision, if any.
	Period store.BudgetPeriod
}
