package itemgraph

// Presence is the bit flag an item records for each of its keys.
type Presence uint8

const (
	PresenceSeen           Presence = 1 << iota // Key was set by the caller or loaded.
	PresenceWasNull                             // Stored value is nil.
	PresenceDefaultApplied                      // Value came from a schema or bulk default.
	PresenceNullInjected                        // Value was injected for a nullable name.
	PresenceBackRef                             // Value was written by reverse-relation bookkeeping.
)

// PresenceMap maps real field/relation names to Presence flags.
type PresenceMap map[string]Presence

// Has reports whether every bit of f is set.
func (p Presence) Has(f Presence) bool { return p&f == f }

func presenceOf(v any, base Presence) Presence {
	if v == nil {
		return base | PresenceWasNull
	}
	return base
}
