package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var logger = logrus.New()

func RootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "gridchase",
		Short:         "Train and inspect tabular Q-learning agents of a grid pursuit game",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.LoadEnv(envFile); err != nil {
				return err
			}
			if configFile != "" {
				if err := flags.LoadFile(configFile); err != nil {
					return err
				}
			}
			if err := UpdateFlags(cmd); err != nil {
				return err
			}
			return setupLogger()
		},
	}
	AddFlags(cmd)

	cmd.AddCommand(
		TrainCommand(),
		InspectCommand(),
	)

	return cmd
}

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	if flags.Debug && level < logrus.TraceLevel {
		level = logrus.TraceLevel
	}
	logger.SetLevel(level)
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return nil
}
