package cmd

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/spf13/cobra"

	"github.com/silica-hdl/silica/datarecording"
)

var recordingCmd = &cobra.Command{
	Use:   "recording",
	Short: "Inspect simulation recording files.",
	Long: "`recording tables --file [name]` lists the tables of a " +
		"recording file. `recording dump --file [name] --table [table]` " +
		"prints the rows of one table.",
}

var recordingTablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the tables of a recording file.",
	Run: func(cmd *cobra.Command, _ []string) {
		file, _ := cmd.Flags().GetString("file")

		reader := datarecording.NewReader(file)
		defer func() {
			err := reader.Close()
			if err != nil {
				log.Fatalf("Error closing recording file: %v", err)
			}
		}()

		tables, err := reader.ListTables()
		if err != nil {
			log.Fatalf("Error listing tables: %v", err)
		}

		for _, t := range tables {
			fmt.Println(t)
		}
	},
}

var recordingDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the rows of one table of a recording file.",
	Run: func(cmd *cobra.Command, _ []string) {
		file, _ := cmd.Flags().GetString("file")
		table, _ := cmd.Flags().GetString("table")
		limit, _ := cmd.Flags().GetInt("limit")

		reader := datarecording.NewReader(file)
		defer func() {
			err := reader.Close()
			if err != nil {
				log.Fatalf("Error closing recording file: %v", err)
			}
		}()

		rows, err := reader.Dump(context.Background(), table, limit)
		if err != nil {
			log.Fatalf("Error dumping table %s: %v", table, err)
		}

		for _, row := range rows {
			printRow(row)
		}
	},
}

func printRow(row map[string]any) {
	columns := make([]string, 0, len(row))
	for c := range row {
		columns = append(columns, c)
	}
	sort.Strings(columns)

	for i, c := range columns {
		if i > 0 {
			fmt.Print(", ")
		}
		fmt.Printf("%s=%v", c, row[c])
	}
	fmt.Println()
}

func init() {
	recordingCmd.PersistentFlags().String("file", "",
		"The recording file to inspect.")
	_ = recordingCmd.MarkPersistentFlagRequired("file")

	recordingDumpCmd.Flags().String("table", "",
		"The table to dump.")
	_ = recordingDumpCmd.MarkFlagRequired("table")
	recordingDumpCmd.Flags().Int("limit", 0,
		"The maximum number of rows to print. 0 prints all rows.")

	recordingCmd.AddCommand(recordingTablesCmd)
	recordingCmd.AddCommand(recordingDumpCmd)
	rootCmd.AddCommand(recordingCmd)
}
