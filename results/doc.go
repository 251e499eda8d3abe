// Package results turns a completed export into an ordered, lazy stream of
// rows.
//
// Opening a result lists every shard under the export's prefix, downloads
// the shards in parallel into a private scratch directory and then decodes
// them one at a time in file name order. The scratch directory is removed
// when the stream is exhausted, when decoding fails, when the consumer
// stops early or when Close is called, whichever happens first.
//
//	stream, err := results.NewOpener(factory).Open(ctx, loc)
//	if err != nil {
//		return err
//	}
//	defer stream.Close()
//
//	for row, err := range stream.Rows() {
//		...
//	}
package results
