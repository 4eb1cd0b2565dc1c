package model

type RunStatus string

const (
	StatusSuccess RunStatus = "success"
	StatusError   RunStatus = "error"
)

type RunReport struct {
	RunID     string         `json:"runId"`
	Timestamp string         `json:"timestamp"`
	Account   string         `json:"account"`
	Status    RunStatus      `json:"status"`
	Steps     []string       `json:"steps"`
	Usage     *UsageSnapshot `json:"usage,omitempty"`
}

func (r *RunReport) AddStep(msg string) {
	r.Steps = append(r.Steps, msg)
}

func (r RunReport) Succeeded() bool {
	return r.Status == StatusSuccess
}
