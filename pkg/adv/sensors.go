package adv

// MotionState is the motion sensor's advertised state.
type MotionState struct {
	Tested         bool
	MotionDetected bool
	Light          bool
}

func decodeMotionState(service, mfr []byte) *MotionState {
	s := &MotionState{
		Tested:         service[1]&0x80 != 0,
		MotionDetected: service[1]&0x40 != 0,
	}
	if len(service) >= 6 {
		s.Light = service[5]&0x02 != 0
	}
	if len(mfr) >= 8 {
		s.MotionDetected = mfr[7]&0x40 != 0
		s.Light = mfr[7]&0x20 != 0
	}
	return s
}

// ContactState is the contact sensor's advertised state.
type ContactState struct {
	Tested         bool
	MotionDetected bool
	ContactOpen    bool
	ContactTimeout bool
	Light          bool
	ButtonCount    uint8
}

func decodeContactState(service, mfr []byte) *ContactState {
	s := &ContactState{Tested: service[1]&0x80 != 0}

	if len(mfr) >= 13 {
		s.MotionDetected = mfr[7]&0x80 != 0
		s.ContactTimeout = mfr[7]&0x20 != 0
		// a timed-out contact is still open
		s.ContactOpen = mfr[7]&0x10 != 0 || s.ContactTimeout
		s.Light = mfr[7]&0x40 != 0
		s.ButtonCount = mfr[12] & 0x0f
		return s
	}

	s.MotionDetected = service[1]&0x40 != 0
	if len(service) >= 4 {
		s.ContactTimeout = service[3]&0x04 != 0
		s.ContactOpen = service[3]&0x02 != 0 || s.ContactTimeout
		s.Light = service[3]&0x01 != 0
	}
	if len(service) >= 9 {
		s.ButtonCount = service[8] & 0x0f
	}
	return s
}
