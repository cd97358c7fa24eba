/*
Package log provides structured logging for Ferry built on zerolog.

Init configures the global logger once at startup (console or JSON output,
level from configuration). Components take child loggers via WithComponent
so every line carries its origin; WithAppID and WithTaskID attach the
identifiers reconciliation decisions are keyed by.
*/
package log
