package commands

import (
	"github.com/Abraxas-365/wacloud/whatsapp"
	"github.com/spf13/cobra"
)

func newTemplatesCmd(flags *globalFlags) *cobra.Command {
	var opts whatsapp.ListOptions

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List message templates of the business account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			client, err := cfg.NewWhatsAppClient()
			if err != nil {
				return err
			}

			list, err := client.ListTemplates(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), list)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "filter by name")
	cmd.Flags().StringVar(&opts.Language, "lang", "", "filter by language")
	cmd.Flags().StringVar(&opts.Status, "status", "", "filter by status (APPROVED, PENDING, REJECTED)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "page size")
	cmd.Flags().StringVar(&opts.After, "after", "", "page cursor")
	return cmd
}
