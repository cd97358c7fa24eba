/*
Package tasks provides the in-memory task registry.

The registry is the coordinator's local view of what is running on the
cluster. It is written by the status-update path and read by reconciliation
through two snapshot calls: AppTasks for one application and GroupedByApp
for everything at once. Snapshots are copies taken under the read lock;
callers pass them through a round rather than re-reading.

Grouping keys can go stale: an application may be expunged while its tasks
are still tracked, and a task re-reported under a new application id stays
listed under the old key until removed. The reconciler resolves ownership
against the app registry, never against the grouping key alone.
*/
package tasks
