// Package domain contains the core entities of the lead intake service: leads,
// the training programs a lead can be interested in, and the identity of a
// caller reading leads. The types carry no infrastructure concerns so they can
// be shared between the storage, API and worker packages.
package domain
