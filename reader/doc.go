// Package reader decodes export result shards into rows.
//
// A shard is a gzip-compressed CSV file whose first record names the
// columns. The column names are the dotted field paths requested by the
// query, in request order.
//
// # Basic Usage
//
// Reading a single shard:
//
//	shard, err := reader.OpenShard("part-0000.csv.gz")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer shard.Close()
//
//	for {
//	    row, err := shard.Next()
//	    if errors.Is(err, io.EOF) {
//	        break
//	    }
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(row.Value("user_id"))
//	}
//
// # Multiple Shards
//
// ShardFiles lists the shards in a directory in lexicographic order, the
// order in which their rows concatenate into the full result:
//
//	files, err := reader.ShardFiles(dir)
//
// # Column Checks
//
// Code that depends on particular columns declares them up front and
// checks them once, when the first row arrives:
//
//	rows = reader.Require(rows, "user_id", "ts")
//
// A missing column then fails with ErrMissingColumn at the boundary instead
// of surfacing as an empty value deep inside an aggregation.
package reader
