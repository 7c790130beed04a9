package request

type RunCycleRequest struct {
	MaxAssignments *int `json:"max_assignments,omitempty"`
}
