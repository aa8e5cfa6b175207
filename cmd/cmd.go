package cmd

import (
	"fmt"
	"os"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wagoodman/go-partybus"

	"github.com/vulncert/vulncert/internal"
	"github.com/vulncert/vulncert/internal/config"
	"github.com/vulncert/vulncert/internal/log"
	"github.com/vulncert/vulncert/internal/logger"
	"github.com/vulncert/vulncert/internal/version"
	"github.com/vulncert/vulncert/vulncert"
)

var (
	appConfig         *config.Application
	eventBus          *partybus.Bus
	eventSubscription *partybus.Subscription
)

func init() {
	cobra.OnInitialize(
		initRootCmdConfigOptions,
		initAppConfig,
		initLogging,
		logAppConfig,
		logAppVersion,
		initEventBus,
	)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_ = stderrPrintLnf(err.Error())
		os.Exit(1)
	}
}

func initRootCmdConfigOptions() {
	if err := bindRootConfigOptions(rootCmd.Flags()); err != nil {
		panic(err)
	}
}

func initAppConfig() {
	cfg, err := config.LoadApplicationConfig(viper.GetViper(), persistentOpts)
	if err != nil {
		fmt.Printf("unable to load application config: \n\t%+v\n", err)
		os.Exit(1)
	}
	appConfig = cfg
}

func initLogging() {
	cfg := logger.LogrusConfig{
		EnableConsole: (appConfig.Log.FileLocation == "" || appConfig.CliOptions.Verbosity > 0) && !appConfig.Quiet,
		EnableFile:    appConfig.Log.FileLocation != "",
		Level:         appConfig.Log.LevelOpt,
		Structured:    appConfig.Log.Structured,
		FileLocation:  appConfig.Log.FileLocation,
	}

	vulncert.SetLogger(logger.NewLogrusLogger(cfg))
}

func logAppConfig() {
	log.Debugf("application config:\n%+v", color.Magenta.Sprint(appConfig.String()))
}

func logAppVersion() {
	versionInfo := version.FromBuild()
	log.Infof("%s version: %s", internal.ApplicationName, versionInfo.Version)

	details := []struct{ name, value string }{
		{"build date", versionInfo.BuildDate},
		{"git commit", versionInfo.GitCommit},
		{"git tree state", versionInfo.GitTreeState},
		{"compiler", versionInfo.Compiler},
		{"go version", versionInfo.GoVersion},
		{"platform", versionInfo.Platform},
	}
	for idx, detail := range details {
		branch := "├──"
		if idx == len(details)-1 {
			branch = "└──"
		}
		log.Debugf("  %s %s: %s", branch, detail.name, detail.value)
	}
}

func initEventBus() {
	eventBus = partybus.NewBus()
	eventSubscription = eventBus.Subscribe()

	vulncert.SetBus(eventBus)
}
