// Package records is the local store of encrypted health log rows.
//
// Rows carry an opaque ciphertext payload plus sync bookkeeping
// (synced_at, cloud_id). The store never decrypts anything; the record
// service owns the key and the sync engine only moves ciphertext.
//
// Every method fails with common.ErrNotInitialized until Init has applied
// the schema. Each mutation is its own atomic statement; ReplacePayloads is
// the only multi-row operation and runs in a single transaction.
package records
