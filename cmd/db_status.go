package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vulncert/vulncert/vulncert/db"
)

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "display database status",
	Args:  cobra.ExactArgs(0),
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runDbStatusCmd(cmd, args))
	},
}

func init() {
	dbCmd.AddCommand(dbStatusCmd)
}

func runDbStatusCmd(_ *cobra.Command, _ []string) int {
	dbCurator := db.NewCurator(appConfig.Db.ToCuratorConfig())

	status := dbCurator.Status()

	fmt.Println("Location: ", status.Location)
	fmt.Println("Built:    ", status.Built.String())
	fmt.Println("Feeds:")
	for _, feedFile := range status.Feeds {
		fmt.Println("  -", feedFile)
	}
	if status.Err != nil {
		fmt.Printf("Status:    INVALID [%+v]\n", status.Err)
	} else {
		fmt.Println("Status:    Valid")
	}

	return 0
}
