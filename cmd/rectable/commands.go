package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/commonerrors"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/formats"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/index"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/record"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/schema"
)

func newValidateCommand(a *app) *cobra.Command {
	var schemaPath, input string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a schema and optionally the rows of an input file",
		Long: `Validate checks a schema file and, when an input is given, loads every row
through the column constraints. The first rejected row is reported with its
row number and column.

Example:
  rectable validate --schema people.yaml --input people.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := schema.LoadFile(schemaPath)
			if err != nil {
				return err
			}
			if input == "" {
				fmt.Fprintf(a.out, "%s: schema valid, %d columns\n", def.Name, len(def.Columns))
				return nil
			}

			table, _, err := a.loadTable(cmd.Context(), schemaPath, input, 0)
			if err != nil {
				fmt.Fprintf(a.out, "%s: invalid\n", input)
				for _, line := range describe(err) {
					fmt.Fprintf(a.out, "  %s\n", line)
				}
				return err
			}
			fmt.Fprintf(a.out, "%s: valid, %d rows, %d columns\n", input, table.RowCount(), table.ColumnCount())
			return nil
		},
	}

	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "Path to the schema file (required)")
	cmd.Flags().StringVarP(&input, "input", "i", "", "Path to a CSV or JSON input file")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

// describe lists the details of every structured error in err's chain,
// outermost first.
func describe(err error) []string {
	var lines []string
	for err != nil {
		var e *commonerrors.Error
		if !errors.As(err, &e) {
			break
		}
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("%s: %v", k, e.Details[k]))
		}
		err = e.Cause
	}
	return lines
}

func newInferCommand(a *app) *cobra.Command {
	var input, format string
	var sample int

	cmd := &cobra.Command{
		Use:   "infer",
		Short: "Infer a schema from a CSV file",
		Long: `Infer derives column types from the header and sample rows of a CSV file
and prints the schema. Every row is then loaded to check the result.

Example:
  rectable infer --input people.csv --sample 100 > people.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != schema.FormatYAML && format != schema.FormatJSON {
				return commonerrors.Newf(commonerrors.ErrorTypeArgument, "invalid schema format %q", format)
			}
			_, def, err := a.loadTable(cmd.Context(), "", input, sample)
			if err != nil {
				return err
			}
			data, err := schema.Marshal(def, format)
			if err != nil {
				return err
			}
			_, err = a.out.Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Path to the CSV input file (required)")
	cmd.Flags().IntVar(&sample, "sample", 1000, "Number of rows sampled for inference, 0 for all")
	cmd.Flags().StringVarP(&format, "format", "f", schema.FormatYAML, "Schema format (yaml, json)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

// showOptions selects and orders the rows printed by show.
type showOptions struct {
	columns []string
	sortBy  []string
	desc    bool
	where   string
	limit   int
}

func newShowCommand(a *app) *cobra.Command {
	var schemaPath, input, format string
	var opts showOptions

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the rows of an input file",
		Long: `Show loads an input file and prints its rows, as an aligned text table by
default. Rows can be sorted, filtered by a column value and limited.

Example:
  rectable show --schema people.yaml --input people.csv --sort age --desc --limit 10
  rectable show --input people.csv --where name=Jon --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := formats.ParseFormat(format)
			if err != nil {
				return err
			}
			table, _, err := a.loadTable(cmd.Context(), schemaPath, input, 0)
			if err != nil {
				return err
			}
			rows, err := selectRows(table, opts)
			if err != nil {
				return err
			}
			a.log.Debug("showing rows", zap.Int("rows", len(rows)), zap.String("format", string(f)))
			return formats.Write(a.out, table, f, &formats.Options{
				Columns:      opts.columns,
				Rows:         rows,
				DisplayNames: f == formats.Text,
				Pretty:       true,
			})
		},
	}

	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "Path to the schema file, inferred from CSV input when empty")
	cmd.Flags().StringVarP(&input, "input", "i", "", "Path to the input file (required)")
	cmd.Flags().StringVarP(&format, "format", "f", string(formats.Text), "Output format (csv, json, jsonl, text)")
	cmd.Flags().StringSliceVar(&opts.columns, "columns", nil, "Columns to print, in order")
	cmd.Flags().StringSliceVar(&opts.sortBy, "sort", nil, "Columns to sort by, in priority order")
	cmd.Flags().BoolVar(&opts.desc, "desc", false, "Sort in descending order")
	cmd.Flags().StringVar(&opts.where, "where", "", "Only rows whose column equals a value, as column=value")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Maximum number of rows, 0 for all")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

// selectRows sorts table in place and returns the positions of the rows to
// print.
func selectRows(table record.Table, opts showOptions) ([]int, error) {
	if len(opts.sortBy) > 0 {
		columns := make([]*record.Column, len(opts.sortBy))
		for i, name := range opts.sortBy {
			c, err := table.ColumnNamed(name)
			if err != nil {
				return nil, err
			}
			columns[i] = c
		}
		rc, err := record.NewRecordComparator(columns...)
		if err != nil {
			return nil, err
		}
		if opts.desc {
			rc = rc.Reversed()
		}
		if err := table.SortRows(rc); err != nil {
			return nil, err
		}
	}

	var rows []int
	if opts.where == "" {
		rows = make([]int, table.RowCount())
		for i := range rows {
			rows[i] = i
		}
	} else {
		var err error
		if rows, err = lookupRows(table, opts.where); err != nil {
			return nil, err
		}
	}

	if opts.limit > 0 && len(rows) > opts.limit {
		rows = rows[:opts.limit]
	}
	return rows, nil
}

// lookupRows indexes the column named in where and returns the rows holding
// the value, in table order.
func lookupRows(table record.Table, where string) ([]int, error) {
	name, text, ok := strings.Cut(where, "=")
	if !ok {
		return nil, commonerrors.Newf(commonerrors.ErrorTypeArgument, "invalid filter %q, expected column=value", where)
	}
	c, err := table.ColumnNamed(strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	value, err := schema.ParseValue(c, text)
	if err != nil {
		return nil, err
	}

	idx, err := index.Build(table, c.Name(), nil)
	if err != nil {
		return nil, err
	}
	rows, err := idx.Lookup(value)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []int{}
	}
	return rows, nil
}
