package adv

// BotState is the bot's advertised state.
type BotState struct {
	// SwitchMode is true when the bot toggles instead of pressing.
	SwitchMode bool

	// On is meaningful only in switch mode.
	On bool
}

func decodeBotState(service []byte) *BotState {
	s := &BotState{SwitchMode: service[1]&0x80 != 0}
	if s.SwitchMode {
		s.On = service[1]&0x40 == 0
	}
	return s
}
