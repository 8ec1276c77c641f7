package commands

import (
	"encoding/json"
	"io"

	"github.com/Abraxas-365/wacloud/configx"
	"github.com/spf13/cobra"
)

// Global flags
type globalFlags struct {
	configFile string
	envFile    string
	logLevel   string
	logFormat  string
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "wacloud",
		Short:         "WhatsApp Business Cloud API toolkit",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configFile, "config", "c", "", "config file (yaml, json or toml)")
	pf.StringVar(&flags.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	pf.StringVar(&flags.logLevel, "log-level", "", "override log.level")
	pf.StringVar(&flags.logFormat, "log-format", "", "override log.format (console, json)")

	root.AddCommand(
		newSendTextCmd(flags),
		newSendTemplateCmd(flags),
		newUploadMediaCmd(flags),
		newTemplatesCmd(flags),
		newVerifySignatureCmd(),
		newServeWebhookCmd(flags),
	)
	return root
}

// load reads the configuration and applies the logging flags
func (f *globalFlags) load() (*configx.Config, error) {
	opts := []configx.Option{configx.FromDotEnv(f.envFile)}
	if f.configFile != "" {
		opts = append(opts, configx.FromFile(f.configFile))
	}

	cfg, err := configx.Load(opts...)
	if err != nil {
		return nil, err
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Log.Format = f.logFormat
	}
	if err := cfg.ConfigureLogging(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
