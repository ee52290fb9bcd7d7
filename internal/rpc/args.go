package rpc

import (
	"fmt"

	"github.com/tidwall/sjson"
)

// Args builds a JSON argument object for a call through chained Set calls.
// The first error sticks; later operations are no-ops that preserve it.
//
//	args, err := rpc.Args{}.
//		Set("username", "admin").
//		Set("password", "admin").
//		Bytes()
type Args struct {
	raw string
	err error
}

// Set assigns a value at the given sjson path and returns the updated Args.
func (a Args) Set(path string, value any) Args {
	if a.err != nil {
		return a
	}
	out, err := sjson.Set(a.raw, path, value)
	if err != nil {
		return Args{raw: a.raw, err: fmt.Errorf("args set %q: %w", path, err)}
	}
	return Args{raw: out}
}

// Bytes returns the built object, or the first error encountered. An empty
// builder yields an empty object.
func (a Args) Bytes() ([]byte, error) {
	if a.err != nil {
		return nil, a.err
	}
	if a.raw == "" {
		return []byte("{}"), nil
	}
	return []byte(a.raw), nil
}
