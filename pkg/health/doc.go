/*
Package health provides health checking for tasks running on the cluster.

Checkers probe a task endpoint (HTTP or TCP) and report a Result; Status
folds consecutive results into a healthy/unhealthy verdict using the
configured retry threshold and startup grace period.

Manager owns the running check loops, keyed by application and task. The
stop-app workflow calls StopChecksForApp to tear down everything registered
under an application in one shot.
*/
package health
