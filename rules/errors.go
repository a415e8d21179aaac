package rules

import "errors"

var errDimensionMismatch = errors.New("embedding dimension mismatch")
