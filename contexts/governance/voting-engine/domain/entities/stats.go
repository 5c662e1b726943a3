package entities

// Stats summarizes vote states across the registry. Every vote is counted in
// exactly one of InProgress or Paused. Accepted and Rejected are reserved for
// a resolution transition that does not exist and therefore stay zero.
type Stats struct {
	InProgress int64 `json:"in_progress"`
	Paused     int64 `json:"paused"`
	Accepted   int64 `json:"accepted"`
	Rejected   int64 `json:"rejected"`
}

// Open is the number of votes that have not been resolved.
func (s Stats) Open() int64 {
	return s.InProgress + s.Paused
}
