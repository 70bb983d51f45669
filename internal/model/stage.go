package model

// StageState describes how a pipeline stage ended.
type StageState int

const (
	// StageOK means the stage produced a real result.
	StageOK StageState = iota

	// StageFallback means the stage recovered from a provider failure
	// and produced a fallback value.
	StageFallback

	// StageSkipped means the stage had nothing to do.
	StageSkipped

	// StageFailed means the stage failed and aborted the run.
	StageFailed
)

// String returns the state name.
func (s StageState) String() string {
	switch s {
	case StageOK:
		return "ok"
	case StageFallback:
		return "fallback"
	case StageSkipped:
		return "skipped"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s StageState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *StageState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "ok":
		*s = StageOK
	case "fallback":
		*s = StageFallback
	case "skipped":
		*s = StageSkipped
	default:
		*s = StageFailed
	}
	return nil
}

// StageStatus is the recorded outcome of one pipeline stage.
type StageStatus struct {
	// Name is the step name.
	Name string `json:"name"`

	// State is how the stage ended.
	State StageState `json:"state"`

	// Detail is a one-line human-readable description.
	Detail string `json:"detail,omitempty"`
}
