/*
Package store provides the persisted app registry backing Ferry.

Application definitions are stored in a single BoltDB file under the data
directory, one bucket, JSON values keyed by AppID. The coordinator touches
the registry in exactly two ways: listing all known identifiers at the start
of a reconciliation round, and expunging one application's record during
stop. Both honor context cancellation before entering the transaction;
they are the only suspension points in a round.
*/
package store
