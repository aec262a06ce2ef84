package ports

import "github.com/attn-labs/focusship/pkg/log"

// Logger is the structured logging port. It is an alias of the public
// pkg/log interface so adapters written against either work everywhere.
type Logger = log.Logger

// Field is a structured log field.
type Field = log.Field

// Field constructors re-exported for call-site brevity.
var (
	String   = log.String
	Int      = log.Int
	Int64    = log.Int64
	Uint64   = log.Uint64
	Float64  = log.Float64
	Bool     = log.Bool
	Duration = log.Duration
	Err      = log.Err
	Any      = log.Any
)
