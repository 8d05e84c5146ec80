package hci

import "tinygo.org/x/bluetooth"

// Vendor GATT service and characteristics, common to all supported
// device models.
var (
	// serviceUUID is the communication service (cba20d00-224d-11e6-9fb8-0002a5d5c51b).
	serviceUUID = bluetooth.NewUUID([16]byte{
		0xcb, 0xa2, 0x0d, 0x00, 0x22, 0x4d, 0x11, 0xe6,
		0x9f, 0xb8, 0x00, 0x02, 0xa5, 0xd5, 0xc5, 0x1b,
	})

	// commandCharUUID receives command writes (cba20002-224d-11e6-9fb8-0002a5d5c51b).
	commandCharUUID = bluetooth.NewUUID([16]byte{
		0xcb, 0xa2, 0x00, 0x02, 0x22, 0x4d, 0x11, 0xe6,
		0x9f, 0xb8, 0x00, 0x02, 0xa5, 0xd5, 0xc5, 0x1b,
	})

	// dataCharUUID carries response notifications (cba20003-224d-11e6-9fb8-0002a5d5c51b).
	dataCharUUID = bluetooth.NewUUID([16]byte{
		0xcb, 0xa2, 0x00, 0x03, 0x22, 0x4d, 0x11, 0xe6,
		0x9f, 0xb8, 0x00, 0x02, 0xa5, 0xd5, 0xc5, 0x1b,
	})

	// advServiceDataUUID is the 16-bit UUID devices advertise their
	// service data under.
	advServiceDataUUID = bluetooth.New16BitUUID(0xfd3d)
)

// manufacturerID is the Bluetooth SIG company identifier found in
// device advertisements.
const manufacturerID = 0x0969
