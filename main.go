// Package main provides the entry point for the bookspeak CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	homedir "github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/bookspeak/internal/convert"
	"github.com/dgnsrekt/bookspeak/internal/document"
	"github.com/dgnsrekt/bookspeak/internal/ledger"
	"github.com/dgnsrekt/bookspeak/internal/library"
	"github.com/dgnsrekt/bookspeak/internal/tts"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile   string
	outputDir    string
	booksDir     string
	progressFile string
	voice        string
	model        string
	engine       string
	batchSize    int
	maxPages     int
	resume       bool

	rootCmd = &cobra.Command{
		Use:   "bookspeak [BOOK]",
		Short: "Turn books into audiobooks on the CLI",
		Long: paragraph(
			fmt.Sprintf("\nTurn PDF, EPUB and plain-text books into %s, one spoken chunk at a time.", keyword("audiobooks")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func validateOptions(*cobra.Command) error {
	// grab config values from Viper
	outputDir = viper.GetString("output")
	booksDir = viper.GetString("books_dir")
	progressFile = viper.GetString("progress_file")
	voice = viper.GetString("voice")
	model = viper.GetString("model")
	engine = viper.GetString("engine")
	batchSize = viper.GetInt("batch_size")
	maxPages = viper.GetInt("max_pages")
	resume = viper.GetBool("resume")

	if outputDir == "" {
		outputDir = "output"
	}
	if booksDir == "" {
		booksDir = "books"
	}
	outputDir = expandPath(outputDir)
	booksDir = expandPath(booksDir)
	// The ledger lives next to the audio unless placed explicitly.
	if progressFile == "" {
		progressFile = filepath.Join(outputDir, "progress.json")
	}
	progressFile = expandPath(progressFile)
	if batchSize < 1 {
		batchSize = 1
	}
	if maxPages < 0 {
		return fmt.Errorf("max-pages must be zero or positive, got %d", maxPages)
	}
	if viper.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}
	return nil
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(p string) string {
	expanded, err := homedir.Expand(p)
	if err != nil {
		return p
	}
	return expanded
}

// resolveBook turns the CLI argument into an unloaded document: an
// existing file path is used as-is, anything else is looked up by name in
// the books directory.
func resolveBook(arg string) (*document.Document, error) {
	if st, err := os.Stat(arg); err == nil && !st.IsDir() {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("unable to get absolute path: %w", err)
		}
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(arg)), ".")
		if _, err := library.ForFile(abs, booksDir); err != nil {
			return nil, err
		}
		return document.New(abs, ext), nil
	}

	loader, err := library.ForFile(arg, booksDir)
	if err != nil {
		return nil, err
	}
	doc, err := loader.FindByName(arg)
	if err != nil {
		return nil, fmt.Errorf("unable to find %q in %s: %w", arg, booksDir, err)
	}
	return doc, nil
}

func execute(cmd *cobra.Command, args []string) error {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	} else {
		// No argument: fall back to a book named "sample" in the books
		// directory.
		for _, book := range library.FindAllBooks(booksDir) {
			if book.BookID() == "sample" {
				arg = book.FilePath
				break
			}
		}
		if arg == "" {
			return fmt.Errorf("no book given and no sample.* found in %s", booksDir)
		}
	}

	doc, err := resolveBook(arg)
	if err != nil {
		return err
	}

	loader, err := library.ForFile(doc.FilePath, booksDir)
	if err != nil {
		return err
	}

	synth, err := tts.NewSynthesizer(engine, tts.EngineConfig{})
	if err != nil {
		return err
	}

	log.Debug("Starting conversion",
		"book", doc.FileName,
		"engine", engine,
		"model", model,
		"voice", voice,
		"batch_size", batchSize,
		"resume", resume,
	)

	conv := convert.New(loader, synth, ledger.New(progressFile))
	bookDir, err := conv.Convert(cmd.Context(), doc, convert.Options{
		OutputDir: outputDir,
		Audio:     tts.AudioConfigFromStrings(model, voice),
		BatchSize: batchSize,
		Resume:    resume,
		MaxPages:  maxPages,
	})
	if err != nil {
		return err
	}

	if bookDir == "" {
		fmt.Println("Nothing to do:", keyword(doc.BookID()), "is already fully converted.")
		return nil
	}
	fmt.Println("Audiobook written to", keyword(bookDir))
	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().StringVar(&booksDir, "books-dir", "books", "directory containing books to convert")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "output", "directory audiobooks are written to")
	rootCmd.Flags().StringVar(&progressFile, "progress-file", "", "progress ledger path (default <output>/progress.json)")
	rootCmd.Flags().StringVarP(&voice, "voice", "v", "shimmer", "voice for speech synthesis")
	rootCmd.Flags().StringVarP(&model, "model", "m", tts.ModelStandard, "speech model")
	rootCmd.Flags().StringVarP(&engine, "engine", "e", "openai", fmt.Sprintf("synthesis engine (%s)", strings.Join(tts.Engines(), ", ")))
	rootCmd.Flags().IntVarP(&batchSize, "batch-size", "b", 1, "chunks to synthesize concurrently")
	rootCmd.Flags().IntVar(&maxPages, "max-pages", 0, "only convert the first N pages (0 converts all)")
	rootCmd.Flags().BoolVarP(&resume, "resume", "r", true, "skip chunks already recorded in the progress file")

	// Config bindings
	_ = viper.BindPFlag("books_dir", rootCmd.PersistentFlags().Lookup("books-dir"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("output", rootCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("progress_file", rootCmd.Flags().Lookup("progress-file"))
	_ = viper.BindPFlag("voice", rootCmd.Flags().Lookup("voice"))
	_ = viper.BindPFlag("model", rootCmd.Flags().Lookup("model"))
	_ = viper.BindPFlag("engine", rootCmd.Flags().Lookup("engine"))
	_ = viper.BindPFlag("batch_size", rootCmd.Flags().Lookup("batch-size"))
	_ = viper.BindPFlag("max_pages", rootCmd.Flags().Lookup("max-pages"))
	_ = viper.BindPFlag("resume", rootCmd.Flags().Lookup("resume"))

	viper.SetDefault("books_dir", "books")
	viper.SetDefault("output", "output")
	viper.SetDefault("engine", "openai")
	viper.SetDefault("voice", "shimmer")
	viper.SetDefault("model", tts.ModelStandard)
	viper.SetDefault("batch_size", 1)
	viper.SetDefault("max_pages", 0)
	viper.SetDefault("resume", true)

	rootCmd.AddCommand(listCmd, configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "bookspeak")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "bookspeak")}, dirs...)
	}

	if c := os.Getenv("BOOKSPEAK_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("bookspeak")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("bookspeak")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "bookspeak.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
