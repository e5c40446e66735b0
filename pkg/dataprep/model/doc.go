// Package model provides the data structures shared by the dataprep packages.
// It defines the object model the pipeline works on (classes, fields, instances
// and objects holding cty values), the step descriptors and the hook interface
// an action calls around each step.
package model
