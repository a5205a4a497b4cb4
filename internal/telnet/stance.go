package telnet

// StanceTable holds the server's negotiation policy per option, plus the
// last verb actually transmitted in each direction. An unchanged stance
// is never re-announced, which keeps a non-conformant peer from bouncing
// the same DO/WILL back and forth forever.
//
// One table is created per connection; nothing here is shared.
type StanceTable struct {
	serverOffers [256]byte // WILL/WONT policy for options the server drives
	clientAsk    [256]byte // DO/DONT policy for options the client may offer
	sentWill     [256]byte // last WILL/WONT transmitted
	sentDo       [256]byte // last DO/DONT transmitted
}

// NewStanceTable returns a table preloaded with the honeypot's stances:
// the server suppresses client-side echo and goes ahead gracefully,
// wants the client's terminal type and window size, and refuses
// linemode and environment negotiation outright.
func NewStanceTable() *StanceTable {
	t := &StanceTable{}

	t.SetServerStance(ECHO, WILL)
	t.SetServerStance(SGA, WILL)
	t.SetServerStance(NEW_ENVIRON, WONT)

	t.SetClientStance(ECHO, DONT)
	t.SetClientStance(SGA, DO)
	t.SetClientStance(NAWS, DO)
	t.SetClientStance(TTYPE, DO)
	t.SetClientStance(LINEMODE, DONT)
	t.SetClientStance(NEW_ENVIRON, DONT)
	return t
}

// SetServerStance records whether the server offers (WILL) or refuses
// (WONT) to perform option itself.
func (t *StanceTable) SetServerStance(option, verb byte) {
	t.serverOffers[option] = verb
}

// SetClientStance records whether the server asks for (DO) or rejects
// (DONT) the option when the client offers it.
func (t *StanceTable) SetClientStance(option, verb byte) {
	t.clientAsk[option] = verb
}

// Reconcile maps an incoming peer verb for option to the reply verb the
// policy dictates, defaulting to refusal for anything not configured.
// transmit reports whether the reply differs from the last verb sent for
// that direction and therefore must actually go on the wire.
func (t *StanceTable) Reconcile(verb, option byte) (reply byte, transmit bool) {
	switch verb {
	case WILL, WONT:
		if t.clientAsk[option] == 0 {
			t.clientAsk[option] = DONT
		}
		return t.clientAsk[option], t.recordDo(t.clientAsk[option], option)
	case DO, DONT:
		if t.serverOffers[option] == 0 {
			t.serverOffers[option] = WONT
		}
		return t.serverOffers[option], t.recordWill(t.serverOffers[option], option)
	}
	return 0, false
}

// Announce replays every configured stance through emit, server offers
// first, using the same dedup as Reconcile so a later identical reply is
// suppressed.
func (t *StanceTable) Announce(emit func(p OptionPacket) error) error {
	for option := 0; option < len(t.serverOffers); option++ {
		verb := t.serverOffers[option]
		if verb == 0 || !t.recordWill(verb, byte(option)) {
			continue
		}
		if err := emit(OptionPacket{Command: verb, Option: byte(option)}); err != nil {
			return err
		}
	}
	for option := 0; option < len(t.clientAsk); option++ {
		verb := t.clientAsk[option]
		if verb == 0 || !t.recordDo(verb, byte(option)) {
			continue
		}
		if err := emit(OptionPacket{Command: verb, Option: byte(option)}); err != nil {
			return err
		}
	}
	return nil
}

func (t *StanceTable) recordWill(verb, option byte) bool {
	if t.sentWill[option] == verb {
		return false
	}
	t.sentWill[option] = verb
	return true
}

func (t *StanceTable) recordDo(verb, option byte) bool {
	if t.sentDo[option] == verb {
		return false
	}
	t.sentDo[option] = verb
	return true
}
