package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/theopenlane/spectra/internal/analyzer"
	"github.com/theopenlane/spectra/internal/mailparse"
	"github.com/theopenlane/spectra/internal/scanner"
	"github.com/theopenlane/spectra/internal/severity"
	"github.com/theopenlane/spectra/internal/types"
)

// scanCmd scores one message from flags or an .eml file and prints the result as JSON
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "score a single message or url",
	Run: func(cmd *cobra.Command, _ []string) {
		err := scan(cmd.Context(), cmd)
		cobra.CheckErr(err)
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringSlice("url", nil, "url to scan, repeatable")
	scanCmd.Flags().String("text", "", "message body text")
	scanCmd.Flags().String("sender", "", "sender email address")
	scanCmd.Flags().String("eml", "", "path to an RFC 822 message to scan")
	scanCmd.Flags().Bool("report", false, "print the full analysis report instead of the consensus scan")
}

// scanOutput is the consensus scan with the rollup of its findings
type scanOutput struct {
	*types.UnifiedScanResult

	MailSeverity types.MailSeverityRollup `json:"mail_severity"`
}

func scan(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	msg := mailparse.Message{
		Text:   k.String("text"),
		Sender: k.String("sender"),
	}

	if path := k.String("eml"); path != "" {
		f, err := os.Open(filepath.Clean(path))
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close() //nolint:errcheck

		if msg, err = mailparse.ReadMessage(f); err != nil {
			return err
		}
	}

	urls := k.Strings("url")
	if len(urls) == 0 {
		urls = msg.URLs
	}

	if len(urls) == 0 {
		urls = mailparse.ExtractURLs(msg.Text)
	}

	svc, err := setupServices(ctx, cfg)
	if err != nil {
		return err
	}

	defer svc.close()

	var out any

	if k.Bool("report") {
		out, err = svc.analyzer.Analyze(ctx, analyzer.Request{
			EmailText:   msg.Text,
			EmailHeader: msg.Headers,
			URLs:        urls,
			SenderEmail: msg.Sender,
			PrivateMode: true,
		})
	} else {
		var res *types.UnifiedScanResult

		res, err = svc.scanner.Scan(ctx, scanner.Request{Text: msg.Text, Sender: msg.Sender, URLs: urls})
		if err == nil {
			out = scanOutput{UnifiedScanResult: res, MailSeverity: severity.Aggregate(res.URLFindings)}
		}
	}

	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(encoded))

	return err
}
