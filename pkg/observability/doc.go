/*
Package observability provides Prometheus instrumentation for the workspace service.

Instrument wraps any ports.WorkspaceStore and records how many store operations ran,
how they ended, and how long they took. Commit conflicts are counted apart from failures
because they are expected under concurrent writers.
*/
package observability
