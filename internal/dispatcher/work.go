package dispatcher

const OperationArchive = "archive"

// Work represents a message to be processed by the worker
type Work struct {
	SubmissionID string `json:"submissionId"`
	Operation    string `json:"operation"`
}

// IsValid reports whether the message names a submission and a known operation.
func (w *Work) IsValid() bool {
	return w.SubmissionID != "" && w.Operation == OperationArchive
}
