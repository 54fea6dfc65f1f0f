package midi

import (
	"fmt"
	"strings"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// FindOut returns the first MIDI output port whose name contains
// substr, case-insensitively. An empty substr matches the first port.
func FindOut(substr string) (drivers.Out, error) {
	ports := gomidi.GetOutPorts()
	if len(ports) == 0 {
		return nil, fmt.Errorf("midi: no output ports")
	}
	if substr == "" {
		return ports[0], nil
	}
	want := strings.ToLower(substr)
	for _, port := range ports {
		if strings.Contains(strings.ToLower(port.String()), want) {
			return port, nil
		}
	}
	return nil, fmt.Errorf("midi: no output port matching %q", substr)
}

// OutPortNames lists the available MIDI output port names.
func OutPortNames() []string {
	ports := gomidi.GetOutPorts()
	names := make([]string, len(ports))
	for i, port := range ports {
		names[i] = port.String()
	}
	return names
}

// Close releases the MIDI driver and every open port.
func Close() {
	gomidi.CloseDriver()
}
