// Package cpcommon is the root of a library of typed, constrained,
// in-memory record tables and the plumbing that moves them in and out of
// files, databases and HTTP.
//
// # Key Packages
//
//   - pkg/record: columns, records, record tables, comparators, adapters and
//     the synchronized and read-only decorators
//   - pkg/registry: named record factory providers
//   - pkg/schema: YAML and JSON table definitions, text parsing and type
//     inference
//   - pkg/formats: csv, json, jsonl, avro and text export; csv and json import
//   - pkg/sqlstore: tables saved to and loaded from sqlite, postgres or mysql
//   - pkg/index: ordered btree indexes over one column of a table
//   - pkg/compression: gzip, zstd, snappy, s2 and lz4 streams
//   - pkg/metrics and pkg/observability: Prometheus table metrics and
//     OpenTelemetry spans
//   - pkg/config, pkg/logger, pkg/commonerrors: configuration, zap logging
//     and structured errors
//
// # Quick Start
//
//	id := record.MustColumn("id", record.TypeFor[int](), record.WithUnique(), record.WithNullable(false))
//	name := record.MustColumn("name", record.TypeFor[string](), record.WithSize(32))
//
//	table, err := record.NewTable([]*record.Column{id, name}, record.WithName("people"))
//	if err != nil {
//	    return err
//	}
//	if err := table.AppendValues(1, "Jon"); err != nil {
//	    return err
//	}
//	err = formats.Write(os.Stdout, table, formats.JSONL, nil)
//
// # Command Line
//
// cmd/rectable loads CSV and JSON files through a schema and validates,
// shows, exports, serves or stores them:
//
//	rectable validate --schema people.yaml --input people.csv
//	rectable export --schema people.yaml --input people.csv --format jsonl,avro --compression zstd
//	rectable sql save --dsn file:people.db --schema people.yaml --input people.csv
//
// # Configuration
//
// The command reads an optional YAML file passed with --config, overridden by
// CPCOMMON_* environment variables. See pkg/config.
package cpcommon
