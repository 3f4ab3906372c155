package hmm

import "fmt"

// InvalidTimestepError is returned when Advance is called with a timestep
// other than top_t or top_t+1, or Commit is called with a timestep outside
// (top_bind_t, top_t].
type InvalidTimestepError struct {
	Timestep int
	Reason   string
}

func (e *InvalidTimestepError) Error() string {
	return fmt.Sprintf("hmm: invalid timestep %d: %v", e.Timestep, e.Reason)
}

// BeamEmptyError is returned when a beam is empty after advancement and
// pruning. It indicates observations incompatible with any chess-rule-
// reachable position from the root and is treated as fatal by the engine.
type BeamEmptyError struct {
	Timestep int
}

func (e *BeamEmptyError) Error() string {
	return fmt.Sprintf("hmm: beam empty at timestep %d", e.Timestep)
}
