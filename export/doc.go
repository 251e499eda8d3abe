// Package export runs compiled queries against the asynchronous export API.
//
// A query is submitted once, then its job is polled until it leaves the
// pending and running states. A completed job carries the object-storage
// location of its result shards:
//
//	client := export.NewClient(apiKey, export.WithLogger(logger))
//	loc, err := client.Execute(ctx, query.MustCompile("select user_id from events"))
//
// Failures are reported as *TransportError (the request itself failed) or
// *ExecutionError (the job ended in a state other than completed). Nothing
// is retried.
package export
