package cli

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var askContext []string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about a dataset",
	Long: `Retrieves the passages closest to the question and asks the configured
model to answer using only those passages. When they do not contain the
answer the model says so.

Use --context to add text blocks after the retrieved passages.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var askImageCmd = &cobra.Command{
	Use:   "ask-image [image] [question]",
	Short: "Ask a question about an image",
	Long: `Captions the image with the configured vision model and asks the question
with the caption as extra context. The question defaults to asking what
the image shows.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runAskImage,
}

func init() {
	askCmd.Flags().StringArrayVarP(&askContext, "context", "c", nil, "extra context block (repeatable)")
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(askImageCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}
	coll, err := collection()
	if err != nil {
		return err
	}

	question := strings.Join(args, " ")
	answer := answerService.Ask(cmd.Context(), coll, question, askContext...)
	fmt.Fprintln(cmd.OutOrStdout(), answer)
	return nil
}

func runAskImage(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}
	coll, err := collection()
	if err != nil {
		return err
	}

	image, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	mimeType := http.DetectContentType(image)
	if !strings.HasPrefix(mimeType, "image/") {
		return fmt.Errorf("%s is not an image (%s)", args[0], mimeType)
	}

	question := ""
	if len(args) > 1 {
		question = args[1]
	}

	answer := answerService.AskWithImage(cmd.Context(), coll, image, mimeType, question)
	fmt.Fprintln(cmd.OutOrStdout(), answer)
	return nil
}
