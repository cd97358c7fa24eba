/*
Package driver is the outbound boundary to the remote cluster resource
manager.

ClusterDriver exposes the two commands reconciliation needs: submitting a
batch of task status snapshots (an empty batch requests the remote side's
full view) and killing a task. Both are one-way; the caller never blocks
on the remote system, and replies come back later through the status-update
channel.

Dispatcher is the production implementation: a buffered command queue
drained by a single goroutine into a pluggable Transport, preserving
submission order so the explicit batch always reaches the transport before
the implicit request of the same round. The wire protocol to the cluster
manager lives entirely behind the Transport hooks.
*/
package driver
