/*
Package scheduler is the lifecycle-and-reconciliation coordinator at the
heart of Ferry.

It keeps Ferry's view of running work consistent with the remote cluster
manager's view by composing the app registry, task registry, launch queue,
health check manager, and event bus around two operations:

StopApp removes an application cleanly. Besides expunging the persisted
definition, it purges pending launches and resets the app's launch backoff,
so re-creating the same identifier later starts without a residual penalty.

ReconcileTasks runs the two-phase reconciliation protocol each round:

 1. Explicit: one call carrying a status snapshot for every task of every
    application the registry currently lists ("here is everything I believe
    is true; tell me if you disagree"). Sent even when empty.
 2. Implicit: one call with an empty list, asking the remote side to report
    the full state of every task it knows for this scheduler.

Tasks whose grouping application no longer exists in the registry are
orphans and get a kill command, deduplicated by task id within the round.
Rounds are independent and idempotent; a lost command is naturally retried
by the next round, which is what makes the protocol self-healing under
at-least-once delivery.

The coordinator never blocks on the cluster driver and owns no timer; the
control loop drives it on a fixed interval.
*/
package scheduler
