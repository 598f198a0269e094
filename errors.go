package kessoku

import "github.com/rotisserie/eris"

var (
	// ErrDuplicateComponent is reported when a component type occurs more than
	// once in a single bundle.
	ErrDuplicateComponent = eris.New("kessoku: duplicate component type")
	// ErrNotStruct is reported when a bundle or query type is not a struct.
	ErrNotStruct = eris.New("kessoku: schema type must be a struct")
	// ErrInvalidQueryField is reported when a query field is not a pointer to a
	// component or carries an unknown tag option.
	ErrInvalidQueryField = eris.New("kessoku: invalid query field")
	// ErrAccessConflict is reported when one query requests the same component
	// both shared and exclusively, or exclusively twice.
	ErrAccessConflict = eris.New("kessoku: conflicting access within one query")
	// ErrBorrowConflict is reported when a borrow is incompatible with the
	// borrows already held on that component type.
	ErrBorrowConflict = eris.New("kessoku: component already borrowed")
	// ErrWorldLocked is reported when the entity layout of a world is changed
	// while a query holds borrows on it.
	ErrWorldLocked = eris.New("kessoku: world is locked by an active query")
	// ErrDuplicateResource is reported when a world already holds a resource
	// of the same type.
	ErrDuplicateResource = eris.New("kessoku: resource already present")
)
