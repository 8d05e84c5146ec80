package adv

// MeterState is the meter's advertised measurement.
type MeterState struct {
	TemperatureC float64
	Humidity     uint8
	Fahrenheit   bool

	// Valid is false when the payload carried no measurement block.
	Valid bool
}

func decodeMeterState(service, mfr []byte) *MeterState {
	var block []byte
	switch {
	case len(mfr) >= 11:
		block = mfr[8:11]
	case len(service) >= 6:
		block = service[3:6]
	default:
		return &MeterState{}
	}

	sign := 1.0
	if block[1]&0x80 == 0 {
		sign = -1.0
	}
	return &MeterState{
		TemperatureC: sign * (float64(block[1]&0x7f) + float64(block[0]&0x0f)/10),
		Humidity:     block[2] & 0x7f,
		Fahrenheit:   block[2]&0x80 != 0,
		Valid:        true,
	}
}
