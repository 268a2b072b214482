package main

import (
	"context"
	"encoding/json"
	"errors"

	"mibhub/pkg/models"
	"mibhub/pkg/snmp"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newDetectCmd(v *viper.Viper) *cobra.Command {
	var (
		probe       models.ProbeRequest
		v3          models.SNMPv3
		sysDescr    string
		sysObjectID string
	)

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Detect the brand of a device",
		Long: `Detect the brand and template of a device, either by probing it over SNMP
(--target) or offline from known sysDescr/sysObjectID values.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				match *models.BrandMatch
				err   error
			)

			switch {
			case probe.Target != "":
				if v3.User != "" {
					probe.V3 = &v3
				}
				prober := snmp.NewProber(snmp.Config{
					Community: v.GetString("snmp.community"),
					Version:   v.GetString("snmp.version"),
					Timeout:   v.GetDuration("snmp.timeout"),
					Retries:   v.GetInt("snmp.retries"),
					V3: models.SNMPv3{
						User:           v.GetString("snmp.v3.user"),
						AuthProtocol:   v.GetString("snmp.v3.auth_protocol"),
						AuthPassphrase: v.GetString("snmp.v3.auth_passphrase"),
						PrivProtocol:   v.GetString("snmp.v3.priv_protocol"),
						PrivPassphrase: v.GetString("snmp.v3.priv_passphrase"),
						ContextName:    v.GetString("snmp.v3.context_name"),
					},
				})
				match, err = prober.Probe(context.Background(), probe)
				if err != nil {
					return err
				}
			case sysDescr != "" || sysObjectID != "":
				match = snmp.DetectBrand(sysDescr, sysObjectID)
			default:
				return errors.New("either --target or --descr/--oid is required")
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(match)
		},
	}

	cmd.Flags().StringVar(&probe.Target, "target", "", "device address to probe")
	cmd.Flags().StringVar(&probe.Community, "community", "", "SNMP community (default from config)")
	cmd.Flags().StringVar(&probe.Version, "version", "", "SNMP version: 1, 2c or 3")
	cmd.Flags().Uint16Var(&probe.Port, "port", 0, "SNMP port (default 161)")
	cmd.Flags().StringVar(&v3.User, "user", "", "SNMPv3 user name")
	cmd.Flags().StringVar(&v3.AuthProtocol, "auth-proto", "", "SNMPv3 auth protocol: md5, sha, sha256, ...")
	cmd.Flags().StringVar(&v3.AuthPassphrase, "auth-pass", "", "SNMPv3 auth passphrase")
	cmd.Flags().StringVar(&v3.PrivProtocol, "priv-proto", "", "SNMPv3 privacy protocol: des, aes, aes256, ...")
	cmd.Flags().StringVar(&v3.PrivPassphrase, "priv-pass", "", "SNMPv3 privacy passphrase")
	cmd.Flags().StringVar(&v3.ContextName, "context", "", "SNMPv3 context name")
	cmd.Flags().StringVar(&sysDescr, "descr", "", "known sysDescr value")
	cmd.Flags().StringVar(&sysObjectID, "oid", "", "known sysObjectID value")
	return cmd
}
