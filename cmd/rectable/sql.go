package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/formats"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/schema"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/sqlstore"
)

// sqlFlags selects the database and SQL table. Empty values fall back to
// the configuration, except that the SQL table is named after the record
// table when one is known.
type sqlFlags struct {
	driver string
	dsn    string
	table  string
}

func (f *sqlFlags) register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&f.driver, "driver", "", "Database driver (sqlite, postgres, mysql)")
	cmd.PersistentFlags().StringVar(&f.dsn, "dsn", "", "Database connection string")
	cmd.PersistentFlags().StringVarP(&f.table, "table", "t", "", "SQL table name")
}

func (a *app) openStore(f *sqlFlags, tableName string) (*sqlstore.Store, string, error) {
	driver, dsn, name := f.driver, f.dsn, f.table
	if driver == "" {
		driver = a.cfg.SQL.Driver
	}
	if dsn == "" {
		dsn = a.cfg.SQL.DSN
	}
	if name == "" {
		name = tableName
	}
	if name == "" {
		name = a.cfg.SQL.Table
	}

	factory, err := a.factory(tableName)
	if err != nil {
		return nil, "", err
	}
	store, err := sqlstore.Open(driver, dsn,
		sqlstore.WithLogger(a.log),
		sqlstore.WithTracerProvider(a.tracing.TracerProvider()),
		sqlstore.WithFactory(factory))
	if err != nil {
		return nil, "", err
	}
	return store, name, nil
}

func newSQLCommand(a *app) *cobra.Command {
	var flags sqlFlags

	cmd := &cobra.Command{
		Use:   "sql",
		Short: "Store tables in a SQL database",
		Long: `The sql commands save tables to and load them from sqlite, postgres or
mysql. Driver, DSN and table name default to the sql section of the
configuration.`,
	}
	flags.register(cmd)

	var schemaPath, input string
	save := &cobra.Command{
		Use:   "save",
		Short: "Save an input file to a SQL table, replacing its rows",
		Long: `Save loads an input file and writes its rows to a SQL table in one
transaction. The SQL table is created from the columns when missing.

Example:
  rectable sql save --driver sqlite --dsn file:people.db --schema people.yaml --input people.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, _, err := a.loadTable(cmd.Context(), schemaPath, input, 0)
			if err != nil {
				return err
			}
			store, name, err := a.openStore(&flags, table.Name())
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Save(cmd.Context(), name, table); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "saved %d rows to %s\n", table.RowCount(), name)
			return nil
		},
	}
	save.Flags().StringVarP(&schemaPath, "schema", "s", "", "Path to the schema file, inferred from CSV input when empty")
	save.Flags().StringVarP(&input, "input", "i", "", "Path to the input file (required)")
	_ = save.MarkFlagRequired("input")

	var loadSchema, format string
	load := &cobra.Command{
		Use:   "load",
		Short: "Load a SQL table and print it",
		Long: `Load reads the schema's columns from a SQL table. Every row passes the
column constraints again before it is printed.

Example:
  rectable sql load --dsn file:people.db --schema people.yaml --format csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := formats.ParseFormat(format)
			if err != nil {
				return err
			}
			def, err := schema.LoadFile(loadSchema)
			if err != nil {
				return err
			}
			columns, err := def.BuildColumns()
			if err != nil {
				return err
			}
			store, name, err := a.openStore(&flags, def.Name)
			if err != nil {
				return err
			}
			defer store.Close()

			table, err := store.Load(cmd.Context(), name, columns)
			if err != nil {
				return err
			}
			return formats.Write(a.out, table, f, &formats.Options{DisplayNames: f == formats.Text, Pretty: true})
		},
	}
	load.Flags().StringVarP(&loadSchema, "schema", "s", "", "Path to the schema file (required)")
	load.Flags().StringVarP(&format, "format", "f", string(formats.Text), "Output format (csv, json, jsonl, text)")
	_ = load.MarkFlagRequired("schema")

	drop := &cobra.Command{
		Use:   "drop",
		Short: "Drop a SQL table",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, name, err := a.openStore(&flags, "")
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Drop(cmd.Context(), name); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "dropped %s\n", name)
			return nil
		},
	}

	cmd.AddCommand(save, load, drop)
	return cmd
}
