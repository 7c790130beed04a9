package response

type RunCycleResponse struct {
	AssignmentsCreated int `json:"assignments_created"`
	PremiumAssigned    int `json:"premium_assigned"`
	FreeAssigned       int `json:"free_assigned"`
	ItemsConsidered    int `json:"items_considered"`
	ItemsSkipped       int `json:"items_skipped"`
}
