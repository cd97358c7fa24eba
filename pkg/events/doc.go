/*
Package events provides the process-wide event bus for Ferry lifecycle
notifications.

The coordinator publishes an event when an application is stopped, when a
reconciliation round starts and completes, and when an orphaned task is
killed. Subscribers receive events on buffered channels; a subscriber that
falls behind misses events rather than blocking the broker.
*/
package events
