// Package storage defines the chunk persistence interface and the MUS
// serialization shared by its backends. The badger subpackage provides
// the production implementation.
package storage
