// Package drain coordinates the graceful shutdown of a process running
// multiple concurrent workers. On an external stop request it stops
// accepting new work, lets every in-flight worker run its cleanup to
// completion, and only then lets the process exit.
package drain
