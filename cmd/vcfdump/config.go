package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage vcfdump configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.vcfdump.yaml.",
		Example: `  vcfdump config                              # show all config
  vcfdump config set export.compress true     # write .vcf.gz files
  vcfdump config set reference.fasta ~/ref.fa # anchor bases for indels
  vcfdump config get db                       # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd)
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd, args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd, args[0])
		},
	}
}

// configKeys lists the settings vcfdump reads, with their value kinds.
var configKeys = map[string]string{
	"db":                "string",
	"export.workers":    "int",
	"export.output_dir": "string",
	"export.compress":   "bool",
	"reference.fasta":   "string",
}

func runConfigShow(cmd *cobra.Command) error {
	settings := make(map[string]any, len(configKeys))
	for key := range configKeys {
		settings[key] = viper.Get(key)
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "# Config file: %s\n", used)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "# No config file. Defaults and VCFDUMP_* environment shown.")
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}

// parseConfigValue converts a command-line value to the kind of the key.
func parseConfigValue(key, value string) (any, error) {
	kind, ok := configKeys[key]
	if !ok {
		return nil, fmt.Errorf("unknown config key %q", key)
	}
	switch kind {
	case "bool":
		switch value {
		case "true", "yes", "on":
			return true, nil
		case "false", "no", "off":
			return false, nil
		}
		return nil, fmt.Errorf("%s expects a boolean, got %q", key, value)
	case "int":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%s expects a non-negative integer, got %q", key, value)
		}
		return n, nil
	}
	return value, nil
}

func runConfigSet(cmd *cobra.Command, key, value string) error {
	v, err := parseConfigValue(key, value)
	if err != nil {
		return err
	}
	viper.Set(key, v)

	// Ensure config file exists
	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, ".vcfdump.yaml")
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

func runConfigGet(cmd *cobra.Command, key string) error {
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Fprintln(cmd.OutOrStdout(), val)
	return nil
}
