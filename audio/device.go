package audio

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"
)

// ErrSelectionCanceled reports that the user aborted the interactive
// device picker.
var ErrSelectionCanceled = errors.New("device selection canceled")

// SelectDevice presents an interactive picker over the given capture
// devices and returns the chosen one. A single device is returned without
// prompting; an empty list is an error.
func SelectDevice(devices []DeviceInfo) (*DeviceInfo, error) {
	if len(devices) == 0 {
		return nil, fmt.Errorf("no capture devices found")
	}
	if len(devices) == 1 {
		return &devices[0], nil
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("setting raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	cursor := 0
	render := func() {
		fmt.Print("\r\x1b[J")
		fmt.Print("Select input device (arrows or j/k, Enter to confirm, q to cancel):\r\n\r\n")
		for i, d := range devices {
			tag := ""
			if IsBluetooth(d.Name) {
				tag = " \x1b[33m[BT: lower audio quality]\x1b[0m"
			}
			if i == cursor {
				fmt.Printf("  \x1b[1;36m> %s%s\x1b[0m\r\n", d.Name, tag)
			} else {
				fmt.Printf("    %s%s\r\n", d.Name, tag)
			}
		}
	}

	render()

	buf := make([]byte, 3)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}

		move := 0
		switch {
		case n == 1 && buf[0] == 13: // Enter
			fmt.Print("\r\n")
			return &devices[cursor], nil
		case n == 1 && (buf[0] == 3 || buf[0] == 'q'): // Ctrl+C / q
			fmt.Print("\r\n")
			return nil, ErrSelectionCanceled
		case n == 1 && buf[0] == 'j':
			move = 1
		case n == 1 && buf[0] == 'k':
			move = -1
		case n == 3 && buf[0] == 0x1b && buf[1] == '[' && buf[2] == 'A': // up
			move = -1
		case n == 3 && buf[0] == 0x1b && buf[1] == '[' && buf[2] == 'B': // down
			move = 1
		}
		if next := cursor + move; next >= 0 && next < len(devices) {
			cursor = next
		}

		fmt.Printf("\x1b[%dA", len(devices)+2)
		render()
	}
}
