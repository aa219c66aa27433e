package midi

// Ignore is a bitset of MIDI message classes a caller may ask to have
// dropped before they reach its callback.
type Ignore uint8

const (
	// IgnoreNone passes every message through.
	IgnoreNone Ignore = 0
	// IgnoreSysex drops messages beginning 0xF0.
	IgnoreSysex Ignore = 1 << 0
	// IgnoreTime drops MIDI Time Code (0xF1) and Clock (0xF8).
	IgnoreTime Ignore = 1 << 1
	// IgnoreActiveSense drops Active Sensing (0xFE).
	IgnoreActiveSense Ignore = 1 << 2
)

// Has reports whether flags contains f.
func (flags Ignore) Has(f Ignore) bool { return flags&f != 0 }

// ShouldIgnore reports whether a message whose first byte is status
// should be dropped under the given ignore flags.
func ShouldIgnore(flags Ignore, status byte) bool {
	switch {
	case status == 0xF0:
		return flags.Has(IgnoreSysex)
	case status == 0xF1 || status == 0xF8:
		return flags.Has(IgnoreTime)
	case status == 0xFE:
		return flags.Has(IgnoreActiveSense)
	default:
		return false
	}
}

// Filter removes ignored messages from a decoded batch, preserving
// order.
func Filter(flags Ignore, messages [][]byte) [][]byte {
	if flags == IgnoreNone {
		return messages
	}
	out := messages[:0:0]
	for _, msg := range messages {
		if len(msg) == 0 || ShouldIgnore(flags, msg[0]) {
			continue
		}
		out = append(out, msg)
	}
	return out
}
