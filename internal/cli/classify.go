package cli

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var classifyJSON bool

var classifyCmd = &cobra.Command{
	Use:   "classify [textfile]",
	Short: "Classify the document type of extracted text",
	Long:  "Classifies a plain text file. Use - to read the text from stdin.",
	Args:  cobra.ExactArgs(1),
	RunE:  runClassify,
}

func init() {
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "Print the classification as JSON")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return err
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return errors.New("no text to classify")
	}

	if svc.Classifier == nil {
		return errors.New("no classifier configured")
	}
	c, err := svc.Classifier.Classify(cmd.Context(), text)
	if err != nil {
		return err
	}
	if classifyJSON {
		return printJSON(cmd.OutOrStdout(), c)
	}
	printClassification(cmd.OutOrStdout(), c)
	return nil
}
