package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vulncert/vulncert/internal/log"
	"github.com/vulncert/vulncert/vulncert"
	"github.com/vulncert/vulncert/vulncert/db"
)

var dbUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "download the latest vulnerability feeds and activate them",
	Run: func(cmd *cobra.Command, args []string) {
		ret := runDbUpdateCmd(cmd, args)
		if ret != 0 {
			fmt.Println("Unable to update vulnerability feed database")
		}
		os.Exit(ret)
	},
}

func init() {
	dbCmd.AddCommand(dbUpdateCmd)
}

func runDbUpdateCmd(_ *cobra.Command, _ []string) int {
	dbCurator := db.NewCurator(appConfig.Db.ToCuratorConfig())

	if err := dbCurator.Update(context.TODO()); err != nil {
		log.Errorf("unable to update vulnerability feed database: %+v", err)
		return 1
	}

	// reparse the fresh snapshot now so later runs start from the feed cache
	if _, err := vulncert.LoadFeeds(context.TODO(), appConfig.Db.ToCuratorConfig(), false); err != nil {
		log.Errorf("unable to parse updated feeds: %+v", err)
		return 1
	}

	fmt.Println("Vulnerability feed database updated!")
	return 0
}
