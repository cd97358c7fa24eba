/*
Package controlloop drives the coordinator on a fixed interval.

The loop owns the timer the scheduler package deliberately does not have:
every tick runs one reconciliation round, and a failed round is logged and
retried whole on the next tick. The loop also carries the status-update
inbox: task updates reported back by the cluster driver are folded into the
task registry here, terminal states removing the task.
*/
package controlloop
