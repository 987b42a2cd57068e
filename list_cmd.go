package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/bookspeak/internal/library"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List convertible books in the books directory",
	Long: paragraph(
		fmt.Sprintf("\n%s every book in the books directory that bookspeak knows how to convert (%s).", keyword("List"), strings.Join(library.SupportedExtensions(), ", ")),
	),
	Args: cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		books := library.FindAllBooks(booksDir)
		if len(books) == 0 {
			fmt.Printf("No books found in %s.\n", booksDir)
			return nil
		}

		for _, book := range books {
			size := "?"
			if info, err := os.Stat(book.FilePath); err == nil {
				size = humanize.Bytes(uint64(info.Size())) //nolint:gosec
			}
			fmt.Printf("%s  %s (%s)\n", keyword(book.BookID()), book.FileName, size)
		}
		return nil
	},
}
