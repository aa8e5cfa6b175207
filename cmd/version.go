package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vulncert/vulncert/internal"
	"github.com/vulncert/vulncert/internal/version"
)

var outputFormat string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "show the version",
	RunE:  printVersion,
}

func init() {
	versionCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "version output format (available=[text, json])")

	rootCmd.AddCommand(versionCmd)
}

func printVersion(_ *cobra.Command, _ []string) error {
	versionInfo := version.FromBuild()

	switch outputFormat {
	case "text":
		for _, row := range []struct{ label, value string }{
			{"Application", internal.ApplicationName},
			{"Version", versionInfo.Version},
			{"BuildDate", versionInfo.BuildDate},
			{"GitCommit", versionInfo.GitCommit},
			{"GitTreeState", versionInfo.GitTreeState},
			{"Platform", versionInfo.Platform},
			{"GoVersion", versionInfo.GoVersion},
			{"Compiler", versionInfo.Compiler},
		} {
			fmt.Printf("%-14s %s\n", row.label+":", row.value)
		}
		return nil

	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", " ")
		payload := struct {
			version.Version
			Application string `json:"application"`
		}{
			Version:     versionInfo,
			Application: internal.ApplicationName,
		}
		if err := enc.Encode(&payload); err != nil {
			return fmt.Errorf("unable to show version information: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}
