package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"findoc/internal/docintel"
)

// --- process ---

var processCmd = &cobra.Command{
	Use:   "process <file>",
	Short: "Analyze a financial document",
	Long: `Analyze a financial document and hold the extracted data in the
server session, ready to be saved with "findoc save".

Examples:
  findoc process ./invoice.pdf
  findoc process ./receipt.jpg --type Receipt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath := args[0]
		docType, _ := cmd.Flags().GetString("type")

		if !docintel.SupportedFile(filePath) {
			return fmt.Errorf("unsupported file type (expected one of: pdf, jpg, jpeg, png)")
		}
		if docType != "" && !slices.Contains(docintel.DocumentTypes(), docType) {
			printWarning("unknown document type %q, the service will fall back to general text extraction", docType)
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.postFile(cmd.Context(), "/documents/analyze", filePath,
			map[string]string{"model_type": docType})
		if err != nil {
			return err
		}

		var result struct {
			Filename  string          `json:"filename"`
			ModelType string          `json:"model_type"`
			FileSize  int64           `json:"file_size"`
			RawText   string          `json:"raw_text"`
			Fields    json.RawMessage `json:"fields"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Analyzed %s (%s, %d bytes)", result.Filename, result.ModelType, result.FileSize)

		var fields map[string]any
		if json.Unmarshal(result.Fields, &fields) == nil && len(fields) > 0 {
			fmt.Printf("Extracted %d fields:\n", len(fields))
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			enc.Encode(fields)
		} else {
			printWarning("no structured fields extracted")
		}
		fmt.Printf("Raw text: %d characters\n", len(result.RawText))
		fmt.Println(`Run "findoc save" to persist this document.`)
		return nil
	},
}

// --- save ---

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the last analyzed document to the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/documents", nil)
		if err != nil {
			return err
		}

		var result struct {
			Saved   bool   `json:"saved"`
			ID      int64  `json:"id"`
			Message string `json:"message"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if !result.Saved {
			printError("%s", result.Message)
			return fmt.Errorf("save failed")
		}
		printSuccess("%s (record %d)", result.Message, result.ID)
		return nil
	},
}

// --- records ---

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List saved documents (most recent first)",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/documents")
		if err != nil {
			return err
		}

		var docs []struct {
			ID              int64     `json:"id"`
			Filename        string    `json:"filename"`
			UploadTimestamp time.Time `json:"upload_timestamp"`
			ModelType       string    `json:"model_type"`
			FileSize        int64     `json:"file_size"`
		}
		if err := decodeJSON(resp, &docs); err != nil {
			return err
		}

		if len(docs) == 0 {
			fmt.Println("No documents saved yet.")
			return nil
		}

		for _, d := range docs {
			fmt.Printf("%4d  %-19s  %-16s  %8d B  %s\n",
				d.ID,
				d.UploadTimestamp.Format("2006-01-02 15:04:05"),
				d.ModelType,
				d.FileSize,
				d.Filename)
		}
		fmt.Printf("%d document(s)\n", len(docs))
		return nil
	},
}

// --- export ---

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export saved documents to CSV or XLSX",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		format = strings.ToLower(format)
		if format != "csv" && format != "xlsx" {
			return fmt.Errorf("unsupported format %q (expected csv or xlsx)", format)
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/documents/export."+format)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != 200 {
			body, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
		}

		if output == "" {
			output = fmt.Sprintf("financial_documents_export_%s.%s",
				time.Now().Format("20060102_150405"), format)
		}

		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()

		n, err := io.Copy(f, resp.Body)
		if err != nil {
			return fmt.Errorf("writing export: %w", err)
		}

		printSuccess("Exported %d bytes to %s", n, output)
		return nil
	},
}

func init() {
	processCmd.Flags().String("type", "Invoice", "document type (Invoice, Receipt, General Document, Layout)")
	exportCmd.Flags().String("format", "csv", "export format (csv or xlsx)")
	exportCmd.Flags().String("output", "", "output file path (default: timestamped name in current dir)")
}

// --- chat ---

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions about the last analyzed document",
}

var chatAskCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about the pending document",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/chat", map[string]string{"question": question})
		if err != nil {
			return err
		}

		var result struct {
			Answer string `json:"answer"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		fmt.Println(result.Answer)
		return nil
	},
}

var chatLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the chat transcript for the pending document",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/chat")
		if err != nil {
			return err
		}

		var turns []struct {
			Question string    `json:"question"`
			Answer   string    `json:"answer"`
			AskedAt  time.Time `json:"asked_at"`
		}
		if err := decodeJSON(resp, &turns); err != nil {
			return err
		}

		if len(turns) == 0 {
			fmt.Println("No chat history.")
			return nil
		}

		for _, t := range turns {
			fmt.Printf("[%s] Q: %s\n", t.AskedAt.Format("15:04:05"), t.Question)
			fmt.Printf("           A: %s\n", t.Answer)
		}
		return nil
	},
}

var chatClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the chat transcript",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.delete(cmd.Context(), "/chat")
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Chat history cleared")
		return nil
	},
}

func init() {
	chatCmd.AddCommand(chatAskCmd, chatLogCmd, chatClearCmd)
}
