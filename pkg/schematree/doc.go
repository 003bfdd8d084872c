// Package schematree holds the immutable structure of a form: sections of
// leaf fields, nested groups and repeatable array sections. Trees are built
// once per form from Section specs (or an OpenAPI component schema) and then
// only read.
package schematree
