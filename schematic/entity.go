package schematic

import (
	"encoding/binary"
	"fmt"
	"maps"
	"math"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/oriumgames/pile/unischem/internal/tag"
)

// BlockEntity represents a block entity (tile entity).
type BlockEntity struct {
	ID   string         // e.g., "minecraft:chest"
	Pos  cube.Pos       // Absolute block position
	Data map[string]any // NBT data (excluding position and id)
}

// NewBlockEntity creates a block entity with empty data.
func NewBlockEntity(id string, pos cube.Pos) BlockEntity {
	return BlockEntity{ID: id, Pos: pos, Data: make(map[string]any)}
}

// With returns a copy of the block entity with key set to value in its data.
func (be BlockEntity) With(key string, value any) BlockEntity {
	c := be.Clone()
	c.Data[key] = value
	return c
}

// WithItem returns a copy of the block entity with an item appended to its Items list.
func (be BlockEntity) WithItem(slot byte, id string, count byte) BlockEntity {
	c := be.Clone()
	items, _ := c.Data["Items"].([]map[string]any)
	c.Data["Items"] = append(items, map[string]any{
		"Slot":  slot,
		"id":    id,
		"Count": count,
	})
	return c
}

// Clone creates a deep copy of the BlockEntity.
func (be BlockEntity) Clone() BlockEntity {
	return BlockEntity{ID: be.ID, Pos: be.Pos, Data: cloneData(be.Data)}
}

// ToNBT maps the block entity to its tag form. pos is written instead of be.Pos so a
// codec can store positions relative to its own origin.
func (be BlockEntity) ToNBT(pos cube.Pos) map[string]any {
	m := make(map[string]any, len(be.Data)+2)
	maps.Copy(m, be.Data)
	m["Id"] = be.ID
	m["Pos"] = [3]int32{int32(pos[0]), int32(pos[1]), int32(pos[2])}
	return m
}

// BlockEntityFromNBT reads a block entity from its tag form. Both "Id" and the
// lower-case "id" used by older writers are accepted.
func BlockEntityFromNBT(c map[string]any) (BlockEntity, error) {
	t := tag.Compound(c)
	id, err := t.String("Id")
	if err != nil {
		if id, err = t.String("id"); err != nil {
			return BlockEntity{}, fmt.Errorf("block entity id: %w", err)
		}
	}
	pos, err := t.IntArray("Pos")
	if err != nil {
		return BlockEntity{}, fmt.Errorf("block entity position: %w", err)
	}
	if len(pos) < 3 {
		return BlockEntity{}, fmt.Errorf("block entity position: %d components", len(pos))
	}

	be := NewBlockEntity(id, cube.Pos{int(pos[0]), int(pos[1]), int(pos[2])})
	for k, v := range c {
		if k != "Pos" && k != "Id" && k != "id" {
			be.Data[k] = v
		}
	}
	return be, nil
}

// Entity represents a movable entity. Its position is not aligned to the block grid.
type Entity struct {
	ID       string         // e.g., "minecraft:armor_stand"
	Pos      mgl64.Vec3     // Absolute position
	Rotation mgl32.Vec2     // Rotation (yaw, pitch) in degrees
	Motion   mgl64.Vec3     // Velocity (x, y, z)
	UUID     uuid.UUID      // uuid.Nil when absent
	Data     map[string]any // NBT data (excluding Pos, Rotation, Motion, UUID, id)
}

// NewEntity creates an entity with empty data.
func NewEntity(id string, pos mgl64.Vec3) Entity {
	return Entity{ID: id, Pos: pos, Data: make(map[string]any)}
}

// With returns a copy of the entity with key set to value in its data.
func (e Entity) With(key string, value any) Entity {
	c := e.Clone()
	c.Data[key] = value
	return c
}

// Clone creates a deep copy of the Entity.
func (e Entity) Clone() Entity {
	c := e
	c.Data = cloneData(e.Data)
	return c
}

// BlockPos returns the block position of the entity, rounding each component.
func (e Entity) BlockPos() cube.Pos {
	return cube.Pos{roundInt(e.Pos[0]), roundInt(e.Pos[1]), roundInt(e.Pos[2])}
}

// ToNBT maps the entity to its tag form, writing pos as its position.
func (e Entity) ToNBT(pos mgl64.Vec3) map[string]any {
	m := make(map[string]any, len(e.Data)+5)
	maps.Copy(m, e.Data)
	m["Id"] = e.ID
	m["Pos"] = []float64{pos[0], pos[1], pos[2]}
	m["Rotation"] = []float32{e.Rotation[0], e.Rotation[1]}
	m["Motion"] = []float64{e.Motion[0], e.Motion[1], e.Motion[2]}
	if e.UUID != uuid.Nil {
		m["UUID"] = uuidToInts(e.UUID)
	}
	return m
}

// EntityFromNBT reads an entity from its tag form. Rotation, Motion and UUID are optional.
func EntityFromNBT(c map[string]any) (Entity, error) {
	t := tag.Compound(c)
	id, err := t.String("Id")
	if err != nil {
		if id, err = t.String("id"); err != nil {
			return Entity{}, fmt.Errorf("entity id: %w", err)
		}
	}
	pos, err := t.Doubles("Pos")
	if err != nil {
		return Entity{}, fmt.Errorf("entity position: %w", err)
	}
	if len(pos) < 3 {
		return Entity{}, fmt.Errorf("entity position: %d components", len(pos))
	}

	e := NewEntity(id, mgl64.Vec3{pos[0], pos[1], pos[2]})
	if rot, err := t.Floats("Rotation"); err == nil && len(rot) >= 2 {
		e.Rotation = mgl32.Vec2{rot[0], rot[1]}
	}
	if motion, err := t.Doubles("Motion"); err == nil && len(motion) >= 3 {
		e.Motion = mgl64.Vec3{motion[0], motion[1], motion[2]}
	}
	if ints, err := t.IntArray("UUID"); err == nil && len(ints) == 4 {
		e.UUID = uuidFromInts(ints)
	}

	for k, v := range c {
		switch k {
		case "Id", "id", "Pos", "Rotation", "Motion", "UUID":
		default:
			e.Data[k] = v
		}
	}
	return e, nil
}

// uuidToInts splits a UUID into the four big-endian ints Minecraft stores.
func uuidToInts(u uuid.UUID) [4]int32 {
	var out [4]int32
	for i := range out {
		out[i] = int32(binary.BigEndian.Uint32(u[i*4:]))
	}
	return out
}

func uuidFromInts(ints []int32) uuid.UUID {
	var u uuid.UUID
	for i, v := range ints[:4] {
		binary.BigEndian.PutUint32(u[i*4:], uint32(v))
	}
	return u
}

func roundInt(f float64) int {
	return int(math.Round(f))
}

// cloneData performs a deep copy of NBT data.
func cloneData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = deepCopy(v)
	}
	return out
}

func deepCopy(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneData(val)
	case []map[string]any:
		c := make([]map[string]any, len(val))
		for i, m := range val {
			c[i] = cloneData(m)
		}
		return c
	case []any:
		c := make([]any, len(val))
		for i, e := range val {
			c[i] = deepCopy(e)
		}
		return c
	case []byte:
		b := make([]byte, len(val))
		copy(b, val)
		return b
	default:
		return v
	}
}
