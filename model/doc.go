// Package model owns the Variable, Expression, Constraint, Selection, and
// Move entities of a mixed-integer pseudo-boolean instance, and provides
// the incremental evaluation API (EvaluateMove / ApplyMove) that the rest
// of the engine is built around.
//
// Entities live in dense arenas inside Store and are cross-referenced by
// numeric ID rather than by pointer, so the ownership graph stays acyclic
// even though, conceptually, variables point at constraints and vice
// versa. The variable→related-constraints adjacency is a separate
// incidence graph (incidence.go), rebuilt only on presolve changes and
// never on the hot loop.
package model
