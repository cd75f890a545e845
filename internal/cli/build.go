package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"tagscope/internal/adapter/fs"
	"tagscope/internal/domain"
	"tagscope/internal/usecase"
)

var (
	buildTags    string
	buildJSON    bool
	buildNoStore bool
)

var buildCmd = &cobra.Command{
	Use:   "build [path]",
	Short: "Build the symbol index of a project",
	Long: `Build the symbol index of a project from its tag listing.
Without --tags the listing named by index.tags_file is used when it exists
in the project; otherwise the project is walked with the configured globs.
The snapshot is stored in .tagscope/index.db within the project.

Examples:
  tagscope build .                      # Use ./tags or walk the project
  tagscope build . --tags build/tags    # Use a specific listing
  tagscope build . --json > index.json  # Export the produced index`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVarP(&buildTags, "tags", "t", "", "tag listing file (default from config)")
	buildCmd.Flags().BoolVar(&buildJSON, "json", false, "print the produced index as JSON")
	buildCmd.Flags().BoolVar(&buildNoStore, "no-store", false, "do not persist the snapshot")
}

func runBuild(cmd *cobra.Command, args []string) error {
	path, err := projectArg(args)
	if err != nil {
		return err
	}

	s, err := openSession(path, !buildNoStore)
	if err != nil {
		return err
	}
	defer s.Close()

	tags := tagsPathFor(path, buildTags)
	if tags == "" {
		fmt.Fprintf(os.Stderr, "No tag listing found, walking %s...\n", path)
	} else {
		fmt.Fprintf(os.Stderr, "Reading %s...\n", tags)
	}

	idx, err := s.service.Build(cmd.Context(), path, tags, newProgress("Indexing"))
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	if buildJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(usecase.ExportIndex(idx))
	}

	printSummary(idx)
	if s.dbPath != "" {
		fmt.Printf("\nIndex stored at: %s\n", s.dbPath)
	}
	return nil
}

// tagsPathFor picks the listing of a build: the flag when given, else the
// configured listing if it exists in the project, else none.
func tagsPathFor(project, flag string) string {
	if flag != "" {
		return flag
	}
	name := GetConfig().Index.TagsFile
	if name == "" {
		return ""
	}
	if !filepath.IsAbs(name) {
		name = filepath.Join(project, name)
	}
	if !fs.IsRegularFile(name) {
		return ""
	}
	return name
}

// newProgress returns a build progress callback drawing a bar on stderr.
// The bar is created on the first call, once the total is known.
func newProgress(label string) usecase.Progress {
	var bar *progressbar.ProgressBar
	var barMu sync.Mutex
	var startTime time.Time

	return func(processed, total int, currentFile string) {
		barMu.Lock()
		defer barMu.Unlock()

		if bar == nil {
			startTime = time.Now()
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]"+label+"[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(os.Stderr)
				}),
			)
		}

		bar.Set(processed)

		if processed > 0 {
			elapsed := time.Since(startTime)
			rate := float64(processed) / elapsed.Seconds()
			remaining := total - processed
			if rate > 0 {
				eta := time.Duration(float64(remaining)/rate) * time.Second
				bar.Describe(fmt.Sprintf("[cyan]%s[reset] ETA: %s", label, formatDuration(eta)))
			}
		}
	}
}

func printSummary(idx *domain.ProjectIndex) {
	var classes, functions, objects, lambdas, unresolved int
	for _, fa := range idx.Analyses {
		for _, tag := range fa.Tags {
			switch tag.Kind {
			case domain.KindClass:
				classes++
			case domain.KindFunction:
				functions++
			case domain.KindObject:
				objects++
			}
			for _, ref := range tag.Refs() {
				if ref.Name != "" && !ref.IsResolved() {
					unresolved++
				}
			}
		}
		lambdas += len(fa.Lambdas)
	}
	edges := 0
	for i := range idx.Files {
		edges += len(idx.ImportedFiles(i))
	}

	fmt.Printf("\nIndex built (%s):\n", idx.ID)
	fmt.Printf("  Files:        %d\n", len(idx.Files))
	fmt.Printf("  Classes:      %d\n", classes)
	fmt.Printf("  Functions:    %d\n", functions)
	fmt.Printf("  Objects:      %d\n", objects)
	fmt.Printf("  Lambdas:      %d\n", lambdas)
	fmt.Printf("  File imports: %d\n", edges)
	fmt.Printf("  Unresolved:   %d\n", unresolved)

	if len(idx.Errors) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, e := range idx.Errors {
			fmt.Printf("  - %s [%s]: %s\n", e.File, e.Code, e.Message)
		}
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
