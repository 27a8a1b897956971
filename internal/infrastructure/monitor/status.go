package monitor

import "time"

type ComponentStatus struct {
	Name    string        `json:"name"`
	Healthy bool          `json:"healthy"`
	Detail  string        `json:"detail,omitempty"`
	Elapsed time.Duration `json:"elapsed"`
}

type Status struct {
	Components []ComponentStatus `json:"components"`
	LastCheck  time.Time         `json:"last_check"`
}

// Online reports whether every component answered.
func (s Status) Online() bool {
	for _, c := range s.Components {
		if !c.Healthy {
			return false
		}
	}
	return len(s.Components) > 0
}
