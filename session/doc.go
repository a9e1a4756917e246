// Package session keeps finished query results addressable by session id for
// the lifetime of the process. Storage is deliberately volatile: results are
// never written to disk and do not survive a restart.
//
// Add additional backends in sub-packages without changing calling code;
// only the wiring layer decides which Store to instantiate.
package session
