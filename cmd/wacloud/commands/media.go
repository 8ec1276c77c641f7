package commands

import (
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Abraxas-365/wacloud/whatsapp"
	"github.com/spf13/cobra"
)

func newUploadMediaCmd(flags *globalFlags) *cobra.Command {
	var file, mimeType string

	cmd := &cobra.Command{
		Use:   "upload-media",
		Short: "Upload a file and print its media ID",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			if mimeType == "" {
				mimeType = detectMimeType(file, data)
			}

			cfg, err := flags.load()
			if err != nil {
				return err
			}
			client, err := cfg.NewWhatsAppClient()
			if err != nil {
				return err
			}

			id, err := client.UploadMedia(cmd.Context(), whatsapp.Upload{
				Filename: filepath.Base(file),
				MimeType: mimeType,
				Data:     data,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]string{"id": id, "mime_type": mimeType})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "file to upload")
	cmd.Flags().StringVar(&mimeType, "mime", "", "MIME type (detected from the extension or content when empty)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func detectMimeType(path string, data []byte) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return http.DetectContentType(data)
}
