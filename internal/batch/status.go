package batch

// Status represents the lifecycle of an entry.
type Status string

const (
	StatusPending     Status = "pending"
	StatusFetching    Status = "fetching"
	StatusFetched     Status = "fetched"
	StatusNormalizing Status = "normalizing"
	StatusNormalized  Status = "normalized"
	StatusDone        Status = "done"
	StatusError       Status = "error"
	StatusCancelled   Status = "cancelled"
)

var displayLabels = map[Status]string{
	StatusPending:     "Pending",
	StatusFetching:    "Fetching...",
	StatusFetched:     "Fetched",
	StatusNormalizing: "Normalizing...",
	StatusNormalized:  "Normalized",
	StatusDone:        "Done",
	StatusError:       "ERROR",
	StatusCancelled:   "Cancelled",
}

// Display returns the human-readable label for presentation code.
func (s Status) Display() string {
	if label, ok := displayLabels[s]; ok {
		return label
	}
	return string(s)
}

// IsTerminal reports whether the status ends the entry's lifecycle.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusDone, StatusError, StatusCancelled:
		return true
	default:
		return false
	}
}

// stageComplete statuses force progress to 1.0 when set.
func (s Status) stageComplete() bool {
	switch s {
	case StatusFetched, StatusNormalized, StatusDone:
		return true
	default:
		return false
	}
}
