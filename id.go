package housecup

import "github.com/xraph/housecup/id"

// ID identifies a committed ledger change.
type ID = id.ID

// Prefix identifies the kind of change encoded in a TypeID.
type Prefix = id.Prefix
