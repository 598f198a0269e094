// Package testschema holds components and schema-generated declarations used
// to exercise kessokugen output against a real world.
package testschema

type MeshID string

type Position struct {
	X, Y, Z float32
}

type Velocity struct {
	X, Y, Z float32
}

type Health struct {
	Current, Max int32
}
