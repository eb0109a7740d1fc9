// Package stdlib holds the prelude: library definitions written in monalisp
// itself and evaluated when a runtime starts.
package stdlib

import _ "embed"

//go:embed prelude.lisp
var Prelude string
