// Package provider defines the two-phase contract implemented by everything
// that computes a form value or UI hint.
//
// Declare is called exactly once per form, before any computation, with a
// Recorder on which the provider states which triggers invoke it and which
// fields or other providers it reads. Read returns a Handle the provider keeps
// to fetch the resolved value from Inputs during Compute. Compute runs for
// every trigger whose execution plan contains the provider, once per array
// element combination it is evaluated for.
//
// Providers are attached to form fields through an explicit Registry built
// alongside the schema tree.
package provider
