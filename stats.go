package probetable

type Stats struct {
	Size       int
	Capacity   int
	LoadFactor float32
	// Longest distance from a key's starting slot to the slot holding it.
	MaxProbe int
	// Number of keys not stored in their starting slot.
	Displaced int
}

// State of a table. It only ever moves forward, from empty to full.
type State uint8

const (
	StateEmpty State = iota
	StatePartial
	StateFull
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePartial:
		return "partial"
	case StateFull:
		return "full"
	default:
		return "unknown"
	}
}
