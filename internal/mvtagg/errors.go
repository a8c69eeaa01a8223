package mvtagg

import "errors"

// ErrNoGeometryColumn is returned by TransFn, on the call that builds the
// column cache, when the row schema has no column the driver can resolve
// as the geometry column.
var ErrNoGeometryColumn = errors.New("mvtagg: no geometry column resolved")
