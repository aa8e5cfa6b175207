package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vulncert/vulncert/internal/log"
	"github.com/vulncert/vulncert/vulncert/db"
)

var dbImportCmd = &cobra.Command{
	Use:   "import DIR",
	Short: "import a vulnerability feed snapshot",
	Long: "import a vulnerability feed snapshot from a local directory of feed files.\n" +
		"Snapshots can be assembled on a host with feed access and carried to air-gapped hosts.",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ret := runDbImportCmd(cmd, args)
		if ret != 0 {
			fmt.Println("Unable to import vulnerability feed snapshot")
		}
		os.Exit(ret)
	},
}

func init() {
	dbCmd.AddCommand(dbImportCmd)
}

func runDbImportCmd(_ *cobra.Command, args []string) int {
	dbCurator := db.NewCurator(appConfig.Db.ToCuratorConfig())

	if err := dbCurator.ImportFrom(args[0]); err != nil {
		log.Errorf("unable to import vulnerability feed snapshot: %+v", err)
		return 1
	}

	fmt.Println("Vulnerability feed snapshot imported")

	return 0
}
