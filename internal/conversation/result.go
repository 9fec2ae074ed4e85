package conversation

// TurnResult is returned to the caller for each processed turn. It is built
// from the committed state and not persisted beyond the response. Error is
// populated only when Status is StatusError.
type TurnResult struct {
	Reply      string `json:"reply"`
	Status     Status `json:"status"`
	Summary    string `json:"summary,omitempty"`
	Actions    string `json:"actions,omitempty"`
	Resolution string `json:"resolution,omitempty"`
	Routing    string `json:"routing,omitempty"`
	ETA        string `json:"eta,omitempty"`
	Error      string `json:"error,omitempty"`
}
