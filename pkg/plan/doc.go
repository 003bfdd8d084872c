// Package plan linearises, per trigger signature, the providers a trigger
// reaches into an execution order where every provider runs after the
// providers it reads.
package plan
