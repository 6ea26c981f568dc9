package format

import (
	"fmt"
)

// Detect attempts to detect the schematic format from file data by asking every
// registered codec in identifier order.
func Detect(data []byte) (string, error) {
	if len(data) < 4 {
		return "", fmt.Errorf("insufficient data for format detection")
	}
	for _, c := range sortedCodecs() {
		if c.Sniff(data) {
			return c.ID(), nil
		}
	}
	return "", fmt.Errorf("unknown format")
}
