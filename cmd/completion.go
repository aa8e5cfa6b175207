package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish]",
	Short: "Generate a shell completion for vulncert",
	Long: `To load completions:

Bash:

$ source <(vulncert completion bash)

# To load completions for each session, execute once:
Linux:
  $ vulncert completion bash > /etc/bash_completion.d/vulncert
MacOS:
  $ vulncert completion bash > /usr/local/etc/bash_completion.d/vulncert

Zsh:

# If shell completion is not already enabled in your environment you will need
# to enable it. You can execute the following once:

$ echo "autoload -U compinit; compinit" >> ~/.zshrc

# To load completions for each session, execute once:
$ vulncert completion zsh > "${fpath[1]}/_vulncert"

# You will need to start a new shell for this setup to take effect.

Fish:

$ vulncert completion fish | source

# To load completions for each session, execute once:
$ vulncert completion fish > ~/.config/fish/completions/vulncert.fish
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish"},
	Args:                  cobra.ExactValidArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(os.Stdout)
		case "zsh":
			return cmd.Root().GenZshCompletion(os.Stdout)
		case "fish":
			return cmd.Root().GenFishCompletion(os.Stdout, true)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
