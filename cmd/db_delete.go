package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vulncert/vulncert/internal/log"
	"github.com/vulncert/vulncert/vulncert/db"
)

var dbDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "remove the feed snapshot and its derived store from disk",
	Args:  cobra.ExactArgs(0),
	Run: func(cmd *cobra.Command, args []string) {
		ret := runDbDeleteCmd(cmd, args)
		if ret != 0 {
			fmt.Println("Unable to delete the feed snapshot")
		}
		os.Exit(ret)
	},
}

func init() {
	dbCmd.AddCommand(dbDeleteCmd)
}

func runDbDeleteCmd(_ *cobra.Command, _ []string) int {
	dbCurator := db.NewCurator(appConfig.Db.ToCuratorConfig())

	if err := dbCurator.Delete(); err != nil {
		log.Errorf("unable to delete the feed snapshot: %+v", err)
		return 1
	}

	fmt.Println("Feed snapshot deleted")

	return 0
}
