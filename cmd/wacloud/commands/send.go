package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSendTextCmd(flags *globalFlags) *cobra.Command {
	var to, body string
	var preview bool

	cmd := &cobra.Command{
		Use:   "send-text",
		Short: "Send a text message",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			client, err := cfg.NewWhatsAppClient()
			if err != nil {
				return err
			}

			resp, err := client.SendText(cmd.Context(), to, body, preview)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "recipient phone number")
	cmd.Flags().StringVar(&body, "body", "", "message text")
	cmd.Flags().BoolVar(&preview, "preview-url", false, "render a preview for the first URL")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("body")
	return cmd
}

func newSendTemplateCmd(flags *globalFlags) *cobra.Command {
	var to, name, language string
	var params []string

	cmd := &cobra.Command{
		Use:   "send-template",
		Short: "Send an approved template",
		Example: `  wacloud send-template --to 5215512345678 --name order_ready --lang es_MX \
    --param name=Ana --param order=A-17`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			values, err := parseParams(params)
			if err != nil {
				return err
			}

			cfg, err := flags.load()
			if err != nil {
				return err
			}
			client, err := cfg.NewWhatsAppClient()
			if err != nil {
				return err
			}

			resp, err := client.SendTemplate(cmd.Context(), to, name, language, values)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "recipient phone number")
	cmd.Flags().StringVar(&name, "name", "", "template name")
	cmd.Flags().StringVar(&language, "lang", "en_US", "template language code")
	cmd.Flags().StringArrayVar(&params, "param", nil, "template parameter as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func parseParams(raw []string) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	values := make(map[string]any, len(raw))
	for _, p := range raw {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q, expected key=value", p)
		}
		values[key] = value
	}
	return values, nil
}
