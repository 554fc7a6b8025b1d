package commands

import (
	"errors"

	"github.com/spf13/cobra"
)

var errNotFound = errors.New("registro no encontrado")

var searchList bool

func init() {
	docCmd.Flags().BoolVar(&searchList, "list", false, "Print every matching row instead of resolving the first one.")
	nameCmd.Flags().BoolVar(&searchList, "list", false, "Print every matching row instead of resolving the first one.")

	rootCmd.AddCommand(rucCmd, rucsCmd, docCmd, nameCmd)
}

var rucCmd = &cobra.Command{
	Use:   "ruc <ruc>",
	Short: "Looks a taxpayer up by its 11 digit RUC.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		record, err := client.GetByRuc(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printRecords(cmd.Context(), record)
	},
}

var rucsCmd = &cobra.Command{
	Use:   "rucs <ruc>...",
	Short: "Looks several taxpayers up concurrently, results keep the argument order.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		records, err := client.GetByRucs(cmd.Context(), args)
		if err != nil {
			return err
		}
		return printRecords(cmd.Context(), records...)
	},
}

var docCmd = &cobra.Command{
	Use:   "doc <type> <number> [--list]",
	Short: "Searches by identity document, type is one of 1 (DNI), 4 (CE), 7 (passport) or A (CDI).",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		if searchList {
			results, err := client.SearchByDocument(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printResults(results)
		}
		record, err := client.GetByDocument(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return printRecords(cmd.Context(), record)
	},
}

var nameCmd = &cobra.Command{
	Use:   "name <text> [--list]",
	Short: "Searches by business name.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		if searchList {
			results, err := client.SearchByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResults(results)
		}
		record, err := client.GetByName(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printRecords(cmd.Context(), record)
	},
}
