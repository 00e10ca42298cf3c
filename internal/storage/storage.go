package storage

// Tx is the commit/rollback surface the service needs from a store
// transaction. *sql.Tx satisfies it unchanged; an in-memory test store can
// satisfy it with a no-op.
type Tx interface {
	Commit() error
	Rollback() error
}
