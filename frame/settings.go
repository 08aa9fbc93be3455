package frame

// SettingID identifies one entry of a SETTINGS frame.
//
// https://httpwg.org/specs/rfc7540.html#SettingValues
type SettingID uint16

const (
	SettingHeaderTableSize      SettingID = 0x1
	SettingEnablePush           SettingID = 0x2
	SettingMaxConcurrentStreams SettingID = 0x3
	SettingInitialWindowSize    SettingID = 0x4
	SettingMaxFrameSize         SettingID = 0x5
	SettingMaxHeaderListSize    SettingID = 0x6
)

const settingPairLen = 6 // 2 bytes id + 4 bytes value

// SettingPair is one (id, value) entry of a SETTINGS frame.
type SettingPair struct {
	ID    SettingID
	Value uint32
}

// Settings carries the SETTINGS frame body: either the ACK flag alone, or a
// sequence of SettingPair entries.
//
// https://httpwg.org/specs/rfc7540.html#section-6.5
type Settings struct {
	Ack   bool
	Pairs []SettingPair
}

func (s *Settings) Type() Type { return TypeSettings }

func (s *Settings) IsAck() bool { return s.Ack }

func (s *Settings) Decode(h *Header, payload []byte) error {
	s.Ack = h.Flags.Has(FlagAck)
	s.Pairs = s.Pairs[:0]

	if s.Ack {
		if len(payload) != 0 {
			return ErrMissingBytes
		}
		return nil
	}

	if len(payload)%settingPairLen != 0 {
		return ErrMissingBytes
	}

	for len(payload) > 0 {
		s.Pairs = append(s.Pairs, SettingPair{
			ID:    SettingID(uint16(payload[0])<<8 | uint16(payload[1])),
			Value: bytesToUint32(payload[2:6]),
		})
		payload = payload[settingPairLen:]
	}

	return nil
}

func (s *Settings) Marshal(h *Header, dst []byte) []byte {
	if s.Ack {
		h.Flags = h.Flags.Add(FlagAck)
		return dst
	}

	for _, p := range s.Pairs {
		dst = append(dst, byte(p.ID>>8), byte(p.ID))
		dst = appendUint32Bytes(dst, p.Value)
	}

	return dst
}

// Get returns the value of id and whether it was present.
func (s *Settings) Get(id SettingID) (uint32, bool) {
	for _, p := range s.Pairs {
		if p.ID == id {
			return p.Value, true
		}
	}
	return 0, false
}

// Set sets (or replaces) the value of id.
func (s *Settings) Set(id SettingID, value uint32) {
	for i := range s.Pairs {
		if s.Pairs[i].ID == id {
			s.Pairs[i].Value = value
			return
		}
	}
	s.Pairs = append(s.Pairs, SettingPair{ID: id, Value: value})
}

// DefaultSettings returns a conventional set of connection-preface
// SETTINGS values. conn.New does not use it: a Connection advertises the
// values it derives from its own conn.Options.
func DefaultSettings() *Settings {
	s := &Settings{}
	s.Set(SettingHeaderTableSize, 4096)
	s.Set(SettingEnablePush, 0)
	s.Set(SettingMaxConcurrentStreams, 1024)
	s.Set(SettingInitialWindowSize, 1<<20)
	s.Set(SettingMaxFrameSize, defaultMaxLen)
	return s
}
