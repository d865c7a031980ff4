package main

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// linkReadTimeout bounds how long a transfer waits for the peer's byte. A
// silent peer then reads as a disconnected cable.
const linkReadTimeout = 20 * time.Millisecond

func openLink(device string, baud int) (serial.Port, error) {
	port, err := serial.Open(device, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open link %s: %w", device, err)
	}
	if err := port.SetReadTimeout(linkReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("link %s: %w", device, err)
	}
	return port, nil
}
