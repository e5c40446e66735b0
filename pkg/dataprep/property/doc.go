// Package property addresses values inside model objects through chains of
// named, optionally indexed hops.
//
// Resolving a chain walks plain value fields, nested struct fields and list, set
// or map elements. Every link caches the field it resolved to; later resolutions
// first replay those cached fields, using each field's declaring class as a
// fingerprint, and only look up by name the hops whose cache went stale. That
// keeps repeated access cheap while still catching regenerated classes.
package property
