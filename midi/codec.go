// Package midi implements the BLE MIDI wire codec: decoding notification
// payloads into complete MIDI 1.0 messages, and encoding a MIDI byte
// stream into BLE-sized write packets.
//
// The framing is defined by the Bluetooth SIG "MIDI over Bluetooth Low
// Energy" specification: a payload begins with a header byte (ignored
// beyond being skipped), followed by one or more (timestamp-byte,
// MIDI-bytes) groups. Running status and multi-payload SysEx are
// handled per the MIDI 1.0 spec.
package midi

// ParserState carries the decoder's memory across BLE notifications
// belonging to the same connection. The zero value is ready to use.
type ParserState struct {
	// RunningStatus is the last channel-voice status byte seen, or 0 if
	// none is active. Cleared by any System Common or SysEx message;
	// System Real-Time messages leave it unchanged.
	RunningStatus byte
	hasRunning    bool

	// sysex holds an in-progress SysEx message (0xF0 ... up to but not
	// including a terminating 0xF7), or nil if none is in progress.
	sysex []byte
}

// InSysex reports whether a SysEx message is currently being assembled.
func (s *ParserState) InSysex() bool { return s.sysex != nil }

func (s *ParserState) setRunning(status byte) {
	s.RunningStatus = status
	s.hasRunning = true
}

func (s *ParserState) clearRunning() {
	s.RunningStatus = 0
	s.hasRunning = false
}

// isStatus reports whether b is a status/timestamp byte (top bit set).
func isStatus(b byte) bool { return b&0x80 != 0 }

// expectedDataLen returns the number of data bytes that follow a status
// byte, and ok=false if status isn't one of the fixed-length messages
// handled by the generic path (real-time, SysEx start/end, and unknown
// statuses are handled separately by the caller).
func expectedDataLen(status byte) (int, bool) {
	switch {
	case status >= 0x80 && status <= 0xBF:
		return 2, true
	case status >= 0xC0 && status <= 0xDF:
		return 1, true
	case status >= 0xE0 && status <= 0xEF:
		return 2, true
	case status == 0xF1:
		return 1, true
	case status == 0xF2:
		return 2, true
	case status == 0xF3:
		return 1, true
	case status == 0xF6:
		return 0, true
	default:
		return 0, false
	}
}

// Decode parses one BLE notification payload, mutating state, and
// returns the complete MIDI messages found in it, in order. It never
// panics on malformed input; undecodable bytes are silently dropped.
func Decode(payload []byte, state *ParserState) [][]byte {
	var messages [][]byte

	if len(payload) < 2 {
		return nil
	}

	idx := 1 // skip the packet header byte
	for idx < len(payload) {
		b := payload[idx]

		if state.InSysex() && !isStatus(b) {
			// A SysEx continuation payload may open directly on data
			// bytes, with no timestamp byte of its own.
			next, finished := extendSysex(state, payload, idx)
			idx = next
			if finished {
				messages = append(messages, state.sysex)
				state.sysex = nil
			}
			continue
		}

		if !isStatus(b) && !state.hasRunning {
			// Stray data byte outside any message; ignore it.
			idx++
			continue
		}

		if isStatus(b) {
			// b is a timestamp byte preceding the next event. A data
			// byte here instead continues the running status directly.
			idx++
			if idx >= len(payload) {
				break
			}
		}

		if state.InSysex() {
			next, finished := extendSysex(state, payload, idx)
			progressed := next != idx
			idx = next
			if finished {
				messages = append(messages, state.sysex)
				state.sysex = nil
			}
			if progressed {
				continue
			}
		}

		status := payload[idx]
		hasStatus := isStatus(status)
		if hasStatus {
			idx++
		} else if state.hasRunning {
			status = state.RunningStatus
		} else {
			idx++
			continue
		}

		switch {
		case status == 0xF0:
			buf := []byte{0xF0}
			state.sysex = buf
			next, finished := extendSysex(state, payload, idx)
			idx = next
			if finished {
				messages = append(messages, state.sysex)
				state.sysex = nil
			}
			state.clearRunning()

		case status == 0xF7:
			if state.InSysex() {
				buf := append(state.sysex, 0xF7)
				state.sysex = nil
				messages = append(messages, buf)
			} else {
				messages = append(messages, []byte{0xF7})
			}
			state.clearRunning()

		case status >= 0xF8:
			messages = append(messages, []byte{status})
			// Real-time messages never touch running status.

		default:
			expected, ok := expectedDataLen(status)
			if !ok {
				state.clearRunning()
				continue
			}
			msg := []byte{status}
			dataBytes := 0
			for idx < len(payload) && dataBytes < expected {
				db := payload[idx]
				if isStatus(db) {
					if idx+1 < len(payload) && payload[idx+1] >= 0xF8 {
						// Timestamped real-time byte interleaved mid-message:
						// emit it and keep collecting this message's data.
						messages = append(messages, []byte{payload[idx+1]})
						idx += 2
						continue
					}
					break
				}
				msg = append(msg, db)
				idx++
				dataBytes++
			}
			if dataBytes != expected {
				// Truncated by end-of-payload: drop it, don't emit.
				continue
			}
			messages = append(messages, msg)
			if status < 0xF0 {
				state.setRunning(status)
			} else {
				state.clearRunning()
			}
		}
	}

	return messages
}

// extendSysex consumes data bytes from payload starting at idx into the
// in-progress SysEx buffer. It stops at the next status byte; if that
// byte is 0xF7 it is appended and finished=true. It returns the index
// just past whatever it consumed.
func extendSysex(state *ParserState, payload []byte, idx int) (next int, finished bool) {
	buf := state.sysex
	for idx < len(payload) {
		b := payload[idx]
		if isStatus(b) {
			if b == 0xF7 {
				buf = append(buf, b)
				idx++
				finished = true
			}
			break
		}
		buf = append(buf, b)
		idx++
	}
	state.sysex = buf
	return idx, finished
}

// maxPacketBytes is the maximum number of message bytes carried per BLE
// write, chosen so header + timestamp + payload stays within a 20-byte
// default ATT MTU.
const maxPacketBytes = 18

// Encode splits a single MIDI message into one or more BLE write
// payloads, each at most 20 bytes: a fixed header byte, a fixed
// timestamp byte, and up to 18 bytes of the message. Message boundaries
// are the caller's responsibility; Encode only chunks by size.
func Encode(message []byte) [][]byte {
	if len(message) == 0 {
		return nil
	}

	var packets [][]byte
	for offset := 0; offset < len(message); offset += maxPacketBytes {
		end := offset + maxPacketBytes
		if end > len(message) {
			end = len(message)
		}
		packet := make([]byte, 0, 2+(end-offset))
		packet = append(packet, 0x80, 0x80)
		packet = append(packet, message[offset:end]...)
		packets = append(packets, packet)
	}
	return packets
}
