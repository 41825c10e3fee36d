package workflow

// Monthly leave allowance: leaves beyond the free quota cost the
// employee a fixed amount each, surfaced to admins only.
const (
	FreeMonthlyLeaves = 3
	DeductionPerLeave = 500
)

// LeaveDeduction returns the salary deduction for the given monthly
// leave count (the count includes the leave being approved).
func LeaveDeduction(count int) int {
	if count <= FreeMonthlyLeaves {
		return 0
	}
	return (count - FreeMonthlyLeaves) * DeductionPerLeave
}
