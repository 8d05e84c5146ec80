package adv

import "github.com/switchbot-protocol/switchbot-go/pkg/wire"

// LockState is the lock's advertised state. The mechanism bits live in
// manufacturer data; a scan that only captured service data yields a
// state with State == wire.LockStateUnknown.
type LockState struct {
	Calibrated    bool
	State         wire.LockState
	UpdatedBySub  bool // status pushed by a paired secondary lock
	DoorOpen      bool
	DoubleLock    bool
	UnclosedAlarm bool
	UnlockedAlarm bool
	AutoLockPause bool
}

func decodeLockState(service, mfr []byte) *LockState {
	if len(mfr) < 9 {
		return &LockState{State: wire.LockStateUnknown}
	}

	s := &LockState{
		Calibrated:    mfr[7]&0x80 != 0,
		UpdatedBySub:  mfr[7]&0x08 != 0,
		DoorOpen:      mfr[7]&0x04 != 0,
		DoubleLock:    mfr[8]&0x80 != 0,
		UnclosedAlarm: mfr[8]&0x20 != 0,
		UnlockedAlarm: mfr[8]&0x10 != 0,
		AutoLockPause: mfr[8]&0x02 != 0,
	}
	s.State = wire.LockState((mfr[7] & 0x70) >> 4)
	if s.State > wire.LockStateNotFullyLocked {
		s.State = wire.LockStateUnknown
	}
	return s
}
