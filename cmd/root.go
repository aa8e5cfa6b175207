package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/wagoodman/go-partybus"

	"github.com/vulncert/vulncert/internal"
	"github.com/vulncert/vulncert/internal/bus"
	"github.com/vulncert/vulncert/internal/config"
	"github.com/vulncert/vulncert/internal/format"
	"github.com/vulncert/vulncert/internal/log"
	"github.com/vulncert/vulncert/internal/ui"
	"github.com/vulncert/vulncert/internal/version"
	"github.com/vulncert/vulncert/vulncert"
	"github.com/vulncert/vulncert/vulncert/event"
	"github.com/vulncert/vulncert/vulncert/matcher"
	"github.com/vulncert/vulncert/vulncert/presenter"
	"github.com/vulncert/vulncert/vulncert/vulncerterr"
	"github.com/vulncert/vulncert/vulncert/vulnerability"
)

var persistentOpts = config.CliOnlyOptions{}

var rootCmd = &cobra.Command{
	Use:   fmt.Sprintf("%s [PRODUCTS-FILE]", internal.ApplicationName),
	Short: "A vulnerability reporter for certified products",
	Long: format.Tprintf(`Match certified product descriptions to CPE identifiers and report the CVEs that apply:
    {{.appName}} ./products.csv                read a certified products document from a file
    {{.appName}} -                             explicitly read the document from STDIN
    cat products.csv | {{.appName}}            read the document from a pipe

A products document is a CSV listing products the way certification reports describe them,
with versions separated by ";":
    id,vendor,name,versions
    cert-77,IBM Corporation,IBM MQ,9.1;9.2
`, map[string]interface{}{
		"appName": internal.ApplicationName,
	}),
	Args:          validateRootArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if appConfig.Dev.ProfileCPU && appConfig.Dev.ProfileMem {
			return fmt.Errorf("cannot profile CPU and memory simultaneously")
		}

		if appConfig.Dev.ProfileCPU {
			defer profile.Start(profile.CPUProfile).Stop()
		} else if appConfig.Dev.ProfileMem {
			defer profile.Start(profile.MemProfile).Stop()
		}

		return rootExec(cmd, args)
	},
}

func init() {
	setGlobalCliOptions()
	setRootFlags(rootCmd.Flags())
}

func setGlobalCliOptions() {
	// setup global CLI options (available on all CLI commands)
	rootCmd.PersistentFlags().StringVarP(&persistentOpts.ConfigPath, "config", "c", "", "application config file")

	flag := "quiet"
	rootCmd.PersistentFlags().BoolP(
		flag, "q", false,
		"suppress all logging output",
	)
	if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		fmt.Printf("unable to bind flag '%s': %+v", flag, err)
		os.Exit(1)
	}

	rootCmd.PersistentFlags().CountVarP(&persistentOpts.Verbosity, "verbose", "v", "increase verbosity (-v = info, -vv = debug)")
}

func setRootFlags(flags *pflag.FlagSet) {
	flags.StringP(
		"output", "o", presenter.TablePresenter.String(),
		fmt.Sprintf("report output formatter, options=%v", presenter.Options),
	)

	flags.StringP(
		"file", "", "",
		"file to write the report output to (default is STDOUT)",
	)

	flags.StringP(
		"fail-on", "f", "",
		fmt.Sprintf("set the return code to 1 if a vulnerability is found with a severity >= the given severity, options=%v", vulnerability.AllSeverities()),
	)
}

func bindRootConfigOptions(flags *pflag.FlagSet) error {
	if err := viper.BindPFlag("output", flags.Lookup("output")); err != nil {
		return err
	}

	if err := viper.BindPFlag("file", flags.Lookup("file")); err != nil {
		return err
	}

	if err := viper.BindPFlag("fail-on-severity", flags.Lookup("fail-on")); err != nil {
		return err
	}

	return nil
}

func validateRootArgs(cmd *cobra.Command, args []string) error {
	isPipedInput, err := internal.IsPipedInput()
	if err != nil {
		log.Warnf("unable to determine if there is piped input: %+v", err)
		isPipedInput = false
	}

	if len(args) == 0 && !isPipedInput {
		// in the case that no arguments are given and there is no piped input we want to show the help text and return with a non-0 return code.
		if err := cmd.Help(); err != nil {
			return fmt.Errorf("unable to display help: %w", err)
		}
		return fmt.Errorf("a products document argument is required")
	}

	return cobra.MaximumNArgs(1)(cmd, args)
}

func rootExec(_ *cobra.Command, args []string) error {
	// we may not be provided a file if the user is piping in the products document
	userInput := "-"
	if len(args) > 0 {
		userInput = args[0]
	}

	reporter, closer, err := reportWriter()
	defer func() {
		if err := closer(); err != nil {
			log.Warnf("unable to write to report destination: %+v", err)
		}
	}()
	if err != nil {
		return err
	}

	return eventLoop(
		startWorker(userInput, appConfig.FailOnSeverity),
		setupSignals(),
		eventSubscription,
		func() {},
		ui.Select(isVerbose(), appConfig.Quiet, reporter)...,
	)
}

func isVerbose() (result bool) {
	isPipedInput, err := internal.IsPipedInput()
	if err != nil {
		// since we can't tell if there was piped input we assume that there could be to disable the ETUI
		log.Warnf("unable to determine if there is piped input: %+v", err)
		return true
	}
	// verbosity should consider if there is piped input (in which case we should not show the ETUI)
	return appConfig.CliOptions.Verbosity > 0 || isPipedInput
}

func startWorker(userInput string, failOnSeverity *vulnerability.Severity) <-chan error {
	errs := make(chan error)
	go func() {
		defer close(errs)

		presenterOption := presenter.ParseOption(appConfig.Output)
		if presenterOption == presenter.UnknownPresenter {
			errs <- fmt.Errorf("bad --output value '%s'", appConfig.Output)
			return
		}

		checkForAppUpdate()

		products, err := loadProducts(userInput)
		if err != nil {
			errs <- err
			return
		}

		store, err := vulncert.LoadFeeds(context.TODO(), appConfig.Db.ToCuratorConfig(), appConfig.Db.AutoUpdate)
		if err != nil {
			errs <- err
			return
		}

		result, err := vulncert.Analyze(context.TODO(), store, appConfig.Match.ToMatcherConfig(), products)
		if err != nil {
			errs <- err
			return
		}

		if failOnSeverity != nil && result.HasSeverityAtLeast(*failOnSeverity) {
			errs <- vulncerterr.ErrAboveSeverityThreshold
		}

		bus.Publish(partybus.Event{
			Type:  event.ProductMatchingFinished,
			Value: presenter.GetPresenter(presenterOption, result),
		})
	}()
	return errs
}

func loadProducts(userInput string) ([]matcher.Product, error) {
	if userInput == "-" {
		return matcher.ParseProducts(os.Stdin)
	}

	f, err := os.Open(userInput)
	if err != nil {
		return nil, fmt.Errorf("unable to open products document=%q: %w", userInput, err)
	}
	defer f.Close()

	return matcher.ParseProducts(f)
}

func checkForAppUpdate() {
	if !appConfig.CheckForAppUpdate {
		return
	}

	isAvailable, newVersion, err := version.IsUpdateAvailable()
	if err != nil {
		log.Errorf(err.Error())
	}
	if isAvailable {
		log.Infof("new version of %s is available: %s (currently running: %s)", internal.ApplicationName, newVersion, version.FromBuild().Version)

		bus.Publish(partybus.Event{
			Type:  event.AppUpdateAvailable,
			Value: newVersion,
		})
	} else {
		log.Debugf("no new %s update available", internal.ApplicationName)
	}
}
