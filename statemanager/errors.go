package statemanager

import "github.com/pkg/errors"

// ErrNotConvergence is returned when Apply is given a block that is not a
// certified convergence block (spec.md §4.5 operates "on certification of a
// convergence block").
var ErrNotConvergence = errors.New("statemanager: block is not a certified convergence block")
