package adv

// CurtainState is the curtain's advertised state. Position is
// device-native: 0 = open, 100 = closed.
type CurtainState struct {
	Calibrated  bool
	InMotion    bool
	Position    uint8
	LightLevel  uint8
	DeviceChain uint8
}

func decodeCurtainState(service, mfr []byte) *CurtainState {
	// Newer firmware moves the position block into manufacturer data;
	// service data keeps a copy on older revisions.
	var block []byte
	switch {
	case len(mfr) >= 11:
		block = mfr[8:11]
	case len(service) >= 6:
		block = service[3:6]
	default:
		return &CurtainState{Calibrated: len(service) > 1 && service[1]&0x40 != 0}
	}

	position := block[0] & 0x7f
	if position > 100 {
		position = 100
	}
	return &CurtainState{
		Calibrated:  service[1]&0x40 != 0,
		InMotion:    block[0]&0x80 != 0,
		Position:    position,
		LightLevel:  (block[1] >> 4) & 0x0f,
		DeviceChain: block[1] & 0x07,
	}
}
