// Package store provides durable key/value slots for serialized documents.
//
// # Architecture
//
// The Slot interface is the only contract the rest of the module depends on:
//
//   - Get: read the value under a key (ErrNotFound when absent)
//   - Put: replace the value under a key
//   - Delete: remove the value under a key
//
// SQLiteStore implements Slot on an embedded SQLite database with a single
// slots table. It plays the part a browser gives to localStorage: one named
// slot per document, surviving restarts. WithMaxValueBytes emulates a storage
// quota; writes above it fail with ErrQuotaExceeded.
//
// MockStore is an in-memory Slot for tests, with FailWrites/FailReads to
// inject storage failures.
//
// # Usage
//
//	s, err := store.NewSQLiteStore("/var/lib/schoolsite/site.db")
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	err = s.Put(ctx, "siteData", payload)
package store
