// Package storage defines the repository interfaces for equipment,
// document, and chunk records, plus the filter and serialization helpers
// shared by backends. The storage/badger sub-package provides the BadgerDB
// implementation.
package storage
