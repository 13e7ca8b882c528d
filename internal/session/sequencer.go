package session

// Op names a kind of asynchronous request whose responses may race.
type Op string

const (
	OpSetLanguage  Op = "set_language"
	OpTranslations Op = "translations"
	OpRegister     Op = "register"
	OpChat         Op = "chat"
	OpCaretakers   Op = "caretakers"
	OpFamily       Op = "family"
	OpFamilyAdd    Op = "family_add"
	OpBooking      Op = "booking"
	OpLocate       Op = "locate"
	OpTriageStart  Op = "triage_start"
)

// Sequencer issues monotonically increasing numbers per Op. A response is
// applied only if its number is still the latest for its Op.
type Sequencer struct {
	last map[Op]uint64
}

// NewSequencer returns an empty sequencer.
func NewSequencer() *Sequencer {
	return &Sequencer{last: make(map[Op]uint64)}
}

// Next issues the next number for op.
func (s *Sequencer) Next(op Op) uint64 {
	s.last[op]++
	return s.last[op]
}

// Latest reports whether seq is the most recent number issued for op.
func (s *Sequencer) Latest(op Op, seq uint64) bool {
	return s.last[op] == seq
}

// Invalidate makes every outstanding number for op stale.
func (s *Sequencer) Invalidate(op Op) {
	s.last[op]++
}
