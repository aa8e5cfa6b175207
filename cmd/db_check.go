package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vulncert/vulncert/vulncert/db"
)

var dbCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "check whether the vulnerability feed snapshot is stale",
	Args:  cobra.ExactArgs(0),
	RunE:  runDbCheckCmd,
}

func init() {
	dbCmd.AddCommand(dbCheckCmd)
}

func runDbCheckCmd(_ *cobra.Command, _ []string) error {
	dbCurator := db.NewCurator(appConfig.Db.ToCuratorConfig())

	updateAvailable, current, err := dbCurator.IsUpdateAvailable()
	if err != nil {
		return fmt.Errorf("unable to check for vulnerability feed update: %w", err)
	}

	switch {
	case current == nil:
		fmt.Println("No feed snapshot present, an update is required")
	case updateAvailable:
		fmt.Printf("Feed snapshot built on %s is stale, an update is available\n", current.Built.Format("2006-01-02"))
	default:
		fmt.Printf("Feed snapshot built on %s is fresh enough\n", current.Built.Format("2006-01-02"))
	}
	return nil
}
