// Package parameterization exposes properties of step parameter objects as
// shared, named parameters.
//
// Binding a property chain to a name adds a field of the same kind to a
// synthesized schema class. The schema always lists its fields in alphabetical
// order and owns one canonical value holder. Every shape change builds a fresh
// class, marks the previous one stale and migrates the canonical holder and all
// tracked instance holders onto the new class. Observers are told before and
// after a migration so they can drop references to the old objects.
//
// An Instance keeps a local copy of the parameter values and pushes them onto a
// duplicated pipeline right before it runs, leaving canonical values untouched.
package parameterization
