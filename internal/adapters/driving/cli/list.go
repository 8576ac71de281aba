package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List books with annotation counts and modification state",
	Long: `Lists every book the tool knows about: its short asset ID, a star when
it has annotation data newer than the persisted document, the annotation
count and the title.`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	lib, err := loadPopulatedLibrary(ctx)
	if err != nil {
		return err
	}

	for _, book := range lib.Books() {
		cmd.Println(book.String())
	}
	return nil
}
