package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"datadesigner/internal/logger"
	"datadesigner/internal/syncclient"
)

const defaultServer = "http://localhost:8080/api/v1"

type app struct {
	v       *viper.Viper
	log     *logrus.Logger
	cfgFile string
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:          "designer",
		Short:        "Edit data designer projects from the terminal",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default $HOME/.designer.yaml)")
	flags.String("server", defaultServer, "API base URL")
	flags.String("log-level", "warn", "log level for request tracing")
	_ = a.v.BindPFlag("server", flags.Lookup("server"))
	_ = a.v.BindPFlag("log_level", flags.Lookup("log-level"))

	root.AddCommand(
		a.registerCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.projectsCmd(),
		a.newProjectCmd(),
		a.renameCmd(),
		a.deleteCmd(),
		a.showCmd(),
		a.addTableCmd(),
		a.dropTableCmd(),
		a.connectCmd(),
		a.exportCmd(),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	path := a.cfgFile
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("locate home directory: %w", err)
		}
		path = filepath.Join(home, ".designer.yaml")
	}
	a.v.SetConfigFile(path)
	a.v.SetEnvPrefix("DESIGNER")
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	a.log = logger.New(a.v.GetString("log_level"), "text")
	a.log.SetOutput(cmd.ErrOrStderr())
	return nil
}

func (a *app) client() *syncclient.Client {
	return syncclient.New(
		a.v.GetString("server"),
		syncclient.WithToken(a.v.GetString("token")),
		syncclient.WithLogger(a.log),
		syncclient.WithOptimisticConcurrency(),
	)
}

// saveToken persists the session token next to the server address.
func (a *app) saveToken(token string) error {
	a.v.Set("token", token)
	path := a.v.ConfigFileUsed()
	if err := a.v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return os.Chmod(path, 0o600)
}
