// Command zaius-export runs queries and reports against the export API.
//
// Usage:
//
//	zaius-export query "select user_id, ts from events where action = 'open' order by ts"
//	zaius-export query --explain "select user_id from events"
//	zaius-export email-metrics 9097 2018-01-01 2018-02-01
//	zaius-export --format table lifecycle-progress 2018-01 2019-01
//	zaius-export --output report.parquet --format parquet --upload s3://bucket/reports/report.parquet \
//	    product-attribution 2018-01-01 2018-02-01
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vegasq/zaius-export/report"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(report.Default())
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
