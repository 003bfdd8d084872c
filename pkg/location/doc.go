// Package location addresses fields that may sit inside any number of repeated
// (array) sections. A Location splits a field's full name path at array
// boundaries so every level of nesting contributes exactly one FieldPath, and an
// Index names which element of each enclosing array a value belongs to.
//
// Two textual forms are supported: the compact form used in logs and
// definitions (`model.rules[].value`) and the JSON-Forms style scope used by
// value-change triggers (`#/properties/model/properties/rules/items/properties/value`).
package location
