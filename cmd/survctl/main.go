package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Durai69/LLS-Survey/cmd/llssurvey/config"
	"github.com/Durai69/LLS-Survey/storage/model"
)

var rootCmd = &cobra.Command{
	Use:               "survctl",
	Short:             "survctl can help you manage your survey server",
	Long:              "survctl manages departments, survey templates and admin users of the survey server",
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
}

var configFile string
var backends model.Backends

func loadConfig(*cobra.Command, []string) error {
	config.Load(configFile)
	log.Debug("Loaded Config")

	var err error
	backends, err = config.LoadStorageBackends(config.Get())
	return err
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "the config file to use")
	rootCmd.AddCommand(departmentsCmd, templatesCmd, usersCmd, tokenCmd, matrixCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
