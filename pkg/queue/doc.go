/*
Package queue provides the launch queue: pending launch attempts and a
per-application backoff delay.

Every failed launch doubles the application's delay up to its configured
bound, throttling crash loops. Stopping an application must not leave a
residual penalty behind, so the stop workflow purges pending attempts and
resets the delay to its seed; a later re-creation of the same identifier
starts fresh.

Purge and ResetDelay are one-way commands; callers never wait on queue
confirmation.
*/
package queue
