package behavior

// State is the behavioural-state label derived from smoothed locomotion
// speed.
type State string

const (
	StateUnknown      State = ""             // no valid speed at this frame
	StateImmobile     State = "immobile"     // below the immobility threshold
	StateIntermediate State = "intermediate" // between thresholds
	StateLocomotion   State = "locomotion"   // above the locomotion threshold
)

// Bout is a maximal run of consecutive frames sharing one state.
type Bout struct {
	State State
	Start int // first frame index, inclusive
	End   int // last frame index, inclusive
}

// Len returns the bout length in frames.
func (b Bout) Len() int {
	return b.End - b.Start + 1
}
