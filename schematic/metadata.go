package schematic

import (
	"sort"

	"github.com/oriumgames/pile/unischem/internal/tag"
)

// Metadata describes a schematic. Zero values mean "not set".
type Metadata struct {
	Name        string
	Author      string
	Description string
	Created     int64 // unix milliseconds
	Modified    int64 // unix milliseconds

	// DataVersion is the Minecraft data version the blocks were saved with, 0 if unknown.
	// It is recorded as-is; block states are never translated between versions.
	DataVersion int
}

// GameVersion returns the Minecraft release for the data version (e.g., "1.20.1").
// Returns "" if the data version is unknown.
func (m Metadata) GameVersion() string {
	i := sort.Search(len(gameVersions), func(i int) bool {
		return gameVersions[i].dataVersion <= m.DataVersion
	})
	if i == len(gameVersions) {
		return ""
	}
	return gameVersions[i].name
}

// ToNBT maps the metadata to its tag form, omitting unset fields.
func (m Metadata) ToNBT() map[string]any {
	out := make(map[string]any, 5)
	if m.Name != "" {
		out["Name"] = m.Name
	}
	if m.Author != "" {
		out["Author"] = m.Author
	}
	if m.Description != "" {
		out["Description"] = m.Description
	}
	if m.Created != 0 {
		out["Date"] = m.Created
	}
	if m.Modified != 0 {
		out["Modified"] = m.Modified
	}
	return out
}

// MetadataFromNBT reads metadata from its tag form. Absent or mistyped keys are left unset.
func MetadataFromNBT(c map[string]any) Metadata {
	t := tag.Compound(c)
	var m Metadata
	m.Name, _ = t.String("Name")
	m.Author, _ = t.String("Author")
	m.Description, _ = t.String("Description")
	m.Created, _ = t.Long("Date")
	m.Modified, _ = t.Long("Modified")
	return m
}

// gameVersions lists the first data version of each release, newest first.
var gameVersions = []struct {
	dataVersion int
	name        string
}{
	{4665, "1.21.11"},
	{4556, "1.21.10"},
	{4554, "1.21.9"},
	{4440, "1.21.8"},
	{4438, "1.21.7"},
	{4435, "1.21.6"},
	{4325, "1.21.5"},
	{4189, "1.21.4"},
	{4082, "1.21.3"},
	{4080, "1.21.2"},
	{3955, "1.21.1"},
	{3953, "1.21"},
	{3839, "1.20.6"},
	{3837, "1.20.5"},
	{3700, "1.20.4"},
	{3578, "1.20.2"},
	{3465, "1.20.1"},
	{3463, "1.20"},
	{3337, "1.19.4"},
	{3218, "1.19.3"},
	{3120, "1.19.2"},
	{3117, "1.19.1"},
	{3105, "1.19"},
	{2975, "1.18.2"},
	{2860, "1.18"},
	{2730, "1.17.1"},
	{2724, "1.17"},
	{2586, "1.16.5"},
	{2566, "1.16"},
	{2230, "1.15.2"},
	{2225, "1.15"},
	{1976, "1.14.4"},
	{1952, "1.14"},
	{1631, "1.13.2"},
	{1628, "1.13.1"},
	{1519, "1.13"},
	{1343, "1.12.2"},
	{1241, "1.12.1"},
	{1139, "1.12"},
	{922, "1.11.2"},
	{921, "1.11.1"},
	{819, "1.11"},
	{512, "1.10.2"},
	{511, "1.10.1"},
	{510, "1.10"},
	{184, "1.9.4"},
	{183, "1.9.3"},
	{176, "1.9.2"},
	{175, "1.9.1"},
	{169, "1.9"},
}
