package shoutcast

import "strings"

// Metadata holds the fields of one ICY metadata block.
type Metadata struct {
	StreamTitle string
	StreamURL   string
}

// NewMetadata parses a block of the form StreamTitle='...';StreamUrl='...';
// padded with NUL bytes.
func NewMetadata(b []byte) *Metadata {
	m := &Metadata{}
	s := strings.TrimRight(string(b), "\x00")
	for _, part := range strings.Split(s, "';") {
		key, value, ok := strings.Cut(part, "='")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "StreamTitle":
			m.StreamTitle = value
		case "StreamUrl":
			m.StreamURL = value
		}
	}
	return m
}

// Equals compares two Metadata, either of which may be nil.
func (m *Metadata) Equals(other *Metadata) bool {
	if m == nil || other == nil {
		return m == other
	}
	return *m == *other
}
