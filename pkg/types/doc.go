/*
Package types defines the core data model shared by all Ferry components.

The model is deliberately small: applications (immutable definitions keyed
by a hierarchical AppID), tasks (instances of an application running on the
cluster), and task status snapshots (transient values derived from tasks for
reconciliation with the cluster driver).

Ownership is many-to-one: every task belongs to exactly one application,
recorded in Task.AppID. The coordinator never mutates tasks; placement and
status updates from the cluster driver do.
*/
package types
