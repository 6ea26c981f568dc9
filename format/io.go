package format

import (
	"bytes"
	"fmt"
	"io"

	"github.com/oriumgames/pile/unischem/schematic"
)

// Read reads data from r, detects the schematic format, and returns the parsed schematic.
func Read(r io.Reader) (*schematic.Schematic, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	return Decode(data)
}

// Decode detects the format of data and parses it.
func Decode(data []byte) (*schematic.Schematic, error) {
	formatID, err := Detect(data)
	if err != nil {
		return nil, fmt.Errorf("detect format: %w", err)
	}
	return DecodeFormat(data, formatID)
}

// ReadFormat parses data from r using a specific schematic format identifier.
func ReadFormat(r io.Reader, formatID string) (*schematic.Schematic, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	return DecodeFormat(data, formatID)
}

// DecodeFormat parses data using a specific schematic format identifier.
func DecodeFormat(data []byte, formatID string) (*schematic.Schematic, error) {
	c, err := lookup(formatID)
	if err != nil {
		return nil, err
	}
	s, err := c.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", formatID, err)
	}
	return s, nil
}

// Write writes the schematic using the format it was read from (s.Format()).
func Write(w io.Writer, s *schematic.Schematic) error {
	formatID := s.Format()
	if formatID == "" {
		return fmt.Errorf("schematic does not declare a format")
	}
	return WriteFormat(w, formatID, s)
}

// WriteFormat writes the schematic using the specified format identifier.
func WriteFormat(w io.Writer, formatID string, s *schematic.Schematic) error {
	data, err := EncodeFormat(s, formatID)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, bytes.NewReader(data))
	return err
}

// EncodeFormat serializes the schematic using the specified format identifier.
func EncodeFormat(s *schematic.Schematic, formatID string) ([]byte, error) {
	c, err := lookup(formatID)
	if err != nil {
		return nil, err
	}
	data, err := c.Encode(s)
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", formatID, err)
	}
	return data, nil
}

// Formats returns a sorted list of supported schematic format identifiers.
func Formats() []string {
	cs := sortedCodecs()
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.ID()
	}
	return ids
}
