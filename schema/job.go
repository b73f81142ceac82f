package schema

import "encoding/json"

// JobStatus reports the outcome of a background AI job.
type JobStatus string

const (
	// JobDone means the job completed and produced a payload.
	JobDone JobStatus = "DONE"
	// JobPending means the job was accepted and is still running.
	JobPending JobStatus = "PENDING"
	// JobFailed means the job could not complete.
	JobFailed JobStatus = "FAILED"
)

// JobRequest describes an AI job submission for one room.
type JobRequest struct {
	RoomID    RoomID    `json:"roomId"`
	Command   AICommand `json:"command"`
	Note      string    `json:"note,omitempty"`
	RequestID string    `json:"requestId,omitempty"`
}

// JobPayload is the result body of a completed job. Summary and Message are
// the designated display fields; Raw keeps everything else for rendering
// payload shapes this client does not know about.
type JobPayload struct {
	Summary  string          `json:"summary,omitempty"`
	Message  string          `json:"message,omitempty"`
	Fallback bool            `json:"fallback,omitempty"`
	Reason   string          `json:"reason,omitempty"`
	Raw      json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the known display fields and retains the raw bytes.
func (p *JobPayload) UnmarshalJSON(data []byte) error {
	type alias JobPayload
	var decoded alias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*p = JobPayload(decoded)
	p.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// JobResponse is what the job endpoint returns for a submission.
type JobResponse struct {
	Status    JobStatus   `json:"status"`
	Payload   *JobPayload `json:"payload,omitempty"`
	JobID     JobID       `json:"jobId,omitempty"`
	LatencyMs int64       `json:"latencyMs,omitempty"`
}
