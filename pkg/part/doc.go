// Package part defines the building data model: immutable part templates
// shared by many placed instances, the per-instance transform, and the
// Building that collects instances in pipeline emission order.
//
// Templates own their geometry. Instances reference a template and differ
// from each other only by their Transform, so a 27-part building holds
// five templates and 27 small instance records.
package part
