// Package main provides the shiftscan CLI, which extracts shifts from a
// roster workbook on disk.
package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	"shiftcal/pkg/contracts"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "shiftscan",
		Short: "Extract employee shifts from roster spreadsheets",
		Long: `shiftscan reads a weekly roster workbook (.xlsx or .xls), finds the
shifts of the given employees and writes them as iCalendar, JSON or CSV.`,
		SilenceUsage: true,
	}

	root.AddCommand(newScanCmd())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), contracts.GetFullVersionString())
		},
	})
	return root
}
