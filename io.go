package unischem

import (
	"io"
	"os"

	"github.com/oriumgames/pile/unischem/format"
)

// Read reads a schematic file with auto-format detection.
func Read(r io.Reader) (*Structure, error) {
	s, err := format.Read(r)
	if err != nil {
		return nil, err
	}
	return NewStructure(s), nil
}

// ReadFile reads a schematic from a file path.
func ReadFile(path string) (*Structure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := format.Decode(data)
	if err != nil {
		return nil, err
	}
	return NewStructure(s), nil
}

// ReadFormat reads a schematic with a specific format.
func ReadFormat(r io.Reader, formatID string) (*Structure, error) {
	s, err := format.ReadFormat(r, formatID)
	if err != nil {
		return nil, err
	}
	return NewStructure(s), nil
}

// Write writes the structure in the format it was read from.
func Write(w io.Writer, s *Structure) error {
	return format.Write(w, s.schem)
}

// WriteFile writes the structure to a file in the given format.
func WriteFile(path, formatID string, s *Structure) error {
	data, err := format.EncodeFormat(s.schem, formatID)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// WriteFormat writes the structure in the specified format.
func WriteFormat(w io.Writer, formatID string, s *Structure) error {
	return format.WriteFormat(w, formatID, s.schem)
}

// Formats returns a list of supported format identifiers.
func Formats() []string {
	return format.Formats()
}
