package commands

import (
	"github.com/dyluth/canvass/internal/config"
	"github.com/dyluth/canvass/internal/printer"
	"github.com/dyluth/canvass/pkg/route"
	"github.com/spf13/cobra"
)

var streetsInput string

var streetsCmd = &cobra.Command{
	Use:   "streets",
	Short: "List the streets in a register as a street_order block",
	Long: `List the distinct streets of a register, sorted alphabetically, as a
street_order block ready to paste into canvass.yml.

Rearrange the list into walking order afterwards.

Example:
  canvass streets --input register.csv >> canvass.yml`,
	Args: cobra.NoArgs,
	RunE: runStreets,
}

func init() {
	streetsCmd.Flags().StringVarP(&streetsInput, "input", "i", "", "Electoral register CSV")
	rootCmd.AddCommand(streetsCmd)
}

func runStreets(cmd *cobra.Command, args []string) error {
	// Only Street is needed here, so the register layout is never enforced
	table, err := loadRegister(streetsInput, false)
	if err != nil {
		return err
	}

	streets := route.DetectStreets(table.Records)
	if len(streets) == 0 {
		printer.Warning("No streets found in %s\n", streetsInput)
		return nil
	}

	out, err := config.StreetOrderYAML(streets)
	if err != nil {
		return explainError(err)
	}

	printer.Printf("%s", out)
	return nil
}
