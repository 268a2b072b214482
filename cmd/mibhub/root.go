package main

import (
	"fmt"

	"mibhub/pkg/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCmd(version string) *cobra.Command {
	v := viper.New()
	config.SetDefaults(v)

	var cfgFile string
	root := &cobra.Command{
		Use:   "mibhub",
		Short: "SNMP/MIB monitoring platform API",
		Long: `mibhub serves the monitoring platform API: it proxies devices, MIBs and
alert rules to the backend, registers hosts, deploys rules and monitoring
components, detects device brands over SNMP and keeps a MIB file library.`,
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if err := config.Bind(v); err != nil {
				return err
			}
			return config.ReadFile(v, cfgFile)
		},
	}

	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: mibhub.yml)")
	root.PersistentFlags().Bool("debug", false, "enable debug logging")
	_ = v.BindPFlag("debug", root.PersistentFlags().Lookup("debug"))

	root.AddCommand(
		newServeCmd(v, version),
		newDetectCmd(v),
		newVersionCmd(version),
	)
	return root
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
