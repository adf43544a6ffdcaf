// Package coordinator runs the workers that turn intents into API calls.
//
// A watcher is registered per intent kind with TakeLatest. Each time the
// store reduces a matching Requested action, the watcher cancels the worker
// still running for that kind, assigns a new generation and starts a new
// worker. Terminal actions put by a worker carry its generation; IsCurrent
// lets the store reject those of superseded workers.
package coordinator
