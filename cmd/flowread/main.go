// Package main provides the CLI entrypoint for flowread.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gen2brain/beeep"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Aryan-Shakya/FlowRead/internal/config"
	"github.com/Aryan-Shakya/FlowRead/internal/document"
	"github.com/Aryan-Shakya/FlowRead/internal/logger"
	"github.com/Aryan-Shakya/FlowRead/internal/model"
	"github.com/Aryan-Shakya/FlowRead/internal/picker"
	"github.com/Aryan-Shakya/FlowRead/internal/playback"
	"github.com/Aryan-Shakya/FlowRead/internal/reader"
	"github.com/Aryan-Shakya/FlowRead/internal/render"
	"github.com/Aryan-Shakya/FlowRead/internal/session"
	"github.com/Aryan-Shakya/FlowRead/internal/stats"
	"github.com/Aryan-Shakya/FlowRead/internal/store"
)

const (
	defaultTheme       = "auto"
	defaultLogLevel    = "normal"
	defaultSpeedWindow = 20
	defaultPlotWidth   = 60
)

var (
	readWPM            int
	readPreset         string
	readVowelColor     string
	readConsonantColor string
	readTheme          string
	readNotify         bool
	readLogLevel       string

	importTitle string

	statsLast int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "flowread [document]",
		Short:         "RSVP reader for the terminal",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runReadCmd,
	}

	rootCmd.Flags().IntVar(&readWPM, "wpm", playback.DefaultWPM, "reading speed in words per minute")
	rootCmd.Flags().StringVar(&readPreset, "preset", render.DefaultPreset, "color preset (see: flowread presets)")
	rootCmd.Flags().StringVar(&readVowelColor, "vowel-color", "", "hex override for the vowel color")
	rootCmd.Flags().StringVar(&readConsonantColor, "consonant-color", "", "hex override for the consonant color")
	rootCmd.Flags().StringVar(&readTheme, "theme", defaultTheme, "display theme: light, dark or auto")
	rootCmd.Flags().BoolVar(&readNotify, "notify", false, "desktop notification when a document is finished")
	rootCmd.Flags().StringVar(&readLogLevel, "log-level", defaultLogLevel, "log verbosity: off, normal or debug")

	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newDocsCmd())
	rootCmd.AddCommand(newRmCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newPresetsCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runReadCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "wpm", &readWPM, fileCfg.Reading.WPM)
	applyStringConfig(cmd, "preset", &readPreset, fileCfg.Reading.Preset)
	applyStringConfig(cmd, "vowel-color", &readVowelColor, fileCfg.Reading.VowelColor)
	applyStringConfig(cmd, "consonant-color", &readConsonantColor, fileCfg.Reading.ConsonantColor)
	applyStringConfig(cmd, "theme", &readTheme, fileCfg.Reading.Theme)
	applyBoolConfig(cmd, "notify", &readNotify, fileCfg.Reading.Notify)
	applyStringConfig(cmd, "log-level", &readLogLevel, fileCfg.Reading.LogLevel)

	cfg := model.Config{
		WPM:            readWPM,
		Preset:         readPreset,
		VowelColor:     readVowelColor,
		ConsonantColor: readConsonantColor,
		Theme:          readTheme,
		Notify:         readNotify,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	var doc model.Document
	if len(args) == 1 {
		doc, err = st.ResolveDocument(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve document %q: %w", args[0], err)
		}
	} else {
		progress, err := st.ListProgress(ctx)
		if err != nil {
			return fmt.Errorf("failed to list documents: %w", err)
		}
		if len(progress) == 0 {
			logErrln("No documents imported yet. Add one with: flowread import <file>")
			return nil
		}
		chosen, ok, err := pickDocument(progress)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		doc = chosen
	}

	return readDocument(ctx, st, doc, cfg)
}

// pickDocument runs the library picker and reports the selection, if any.
func pickDocument(progress []model.DocumentProgress) (model.Document, bool, error) {
	m := picker.NewModel(progress)
	program := tea.NewProgram(m, tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return model.Document{}, false, fmt.Errorf("failed to run picker: %w", err)
	}
	pm, ok := final.(*picker.Model)
	if !ok {
		return model.Document{}, false, fmt.Errorf("unexpected picker model type %T", final)
	}
	doc, chosen := pm.Choice()
	return doc, chosen, nil
}

// readDocument wires playback, session tracking and the reader TUI for
// one document. While the TUI owns the terminal, logs go to a file.
func readDocument(ctx context.Context, st *store.Store, doc model.Document, cfg model.Config) error {
	log := logger.New(logger.ParseLevel(readLogLevel), os.Stderr)
	logFile, err := openLogFile(config.DefaultLogPath())
	if err != nil {
		logErrf("failed to open log file: %v\n", err)
	} else {
		log.SetOutput(logFile)
		defer func() {
			if cerr := logFile.Close(); cerr != nil {
				logErrf("failed to close log file: %v\n", cerr)
			}
		}()
	}

	words, err := st.GetWords(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("failed to load words: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	wpm := playback.ClampWPM(cfg.WPM)
	mgr := session.New(st, log)
	sess, resumed := mgr.Open(runCtx, doc, wpm)

	ctrl := playback.NewController(runCtx, words, wpm, log)
	if resumed {
		ctrl.Restore(sess.CurrentWordIndex, sess.SpeedWPM)
	}
	ctrl.AddObserver(mgr)
	mgr.PlaybackChanged(ctrl.Snapshot())
	mgr.Start(runCtx)

	relay := reader.NewRelay()
	ctrl.AddObserver(relay)

	var notifier reader.Notifier
	if cfg.Notify {
		notifier = desktopNotifier{}
	}

	m := reader.NewModel(doc, ctrl, render.Resolve(cfg), resolveTheme(cfg.Theme), notifier, log)
	program := tea.NewProgram(m, tea.WithAltScreen())
	go relay.Forward(program.Send)

	_, runErr := program.Run()

	relay.Close()
	ctrl.Close()
	mgr.Stop()
	mgr.Flush(context.Background())

	if runErr != nil {
		return fmt.Errorf("failed to run reader: %w", runErr)
	}
	return nil
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a text file into the library",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
	cmd.Flags().StringVar(&importTitle, "title", "", "document title (default: file name)")
	return cmd
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	doc, words, err := document.FromFile(args[0], importTitle)
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", args[0], err)
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	existing, found, err := st.FindDocumentByHash(ctx, doc.Hash)
	if err != nil {
		return fmt.Errorf("failed to check for duplicates: %w", err)
	}
	if found {
		return fmt.Errorf("already imported as %q (%s)", existing.Title, shortID(existing.ID))
	}
	if err := st.InsertDocument(ctx, doc, words); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Imported %q: %d words (%s)\n", doc.Title, doc.WordCount, shortID(doc.ID)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newDocsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "docs",
		Short: "List imported documents",
		Args:  cobra.NoArgs,
		RunE:  runDocsCmd,
	}
}

func runDocsCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	progress, err := st.ListProgress(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	if len(progress) == 0 {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), "No documents imported yet. Add one with: flowread import <file>"); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.SetAllowedRowLength(getTermWidth())
	t.AppendHeader(table.Row{"ID", "Title", "Words", "Read", "Speed", "Added"})
	for _, p := range progress {
		t.AppendRow(table.Row{
			shortID(p.Document.ID),
			p.Document.Title,
			p.Document.WordCount,
			readCell(p),
			speedCell(p.SpeedWPM),
			p.Document.CreatedAt.Local().Format("2006-01-02"),
		})
	}
	t.Render()
	return nil
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <document>",
		Short: "Delete a document and its reading history",
		Args:  cobra.ExactArgs(1),
		RunE:  runRmCmd,
	}
}

func runRmCmd(cmd *cobra.Command, args []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	doc, err := st.ResolveDocument(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve document %q: %w", args[0], err)
	}
	if err := st.DeleteDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q (%s)\n", doc.Title, shortID(doc.ID)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show reading statistics",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().IntVar(&statsLast, "last", defaultSpeedWindow, "number of recent sessions in the speed trend")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	if statsLast <= 0 {
		return fmt.Errorf("--last must be greater than 0")
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	report, err := stats.BuildReport(context.Background(), st, statsLast)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	width := getTermWidth()
	if width > defaultPlotWidth {
		width = defaultPlotWidth
	}
	if err := stats.Render(cmd.OutOrStdout(), report, width); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List color presets",
		Args:  cobra.NoArgs,
		RunE:  runPresetsCmd,
	}
}

func runPresetsCmd(cmd *cobra.Command, _ []string) error {
	for _, p := range render.Presets() {
		line := fmt.Sprintf("%-8s %s %-8s %s %s",
			p.Key,
			swatch(p.Colors.Vowel), "vowel",
			swatch(p.Colors.Consonant), "consonant")
		if p.Key == render.DefaultPreset {
			line += "  (default)"
		}
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func swatch(color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("██") + " " + color
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// desktopNotifier sends completion notices to the system notification area.
type desktopNotifier struct{}

func (desktopNotifier) Notify(title, body string) error {
	return beeep.Notify(title, body, "")
}

func resolveTheme(theme string) render.Theme {
	switch theme {
	case "light":
		return render.ThemeLight
	case "dark":
		return render.ThemeDark
	}
	if lipgloss.HasDarkBackground() {
		return render.ThemeDark
	}
	return render.ThemeLight
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func readCell(p model.DocumentProgress) string {
	if p.Completed {
		return "100%"
	}
	if p.Position <= 0 && p.TimeMs <= 0 {
		return "-"
	}
	if p.Document.WordCount <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d%%", (p.Position+1)*100/p.Document.WordCount)
}

func speedCell(wpm int) string {
	if wpm <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d wpm", wpm)
}

func getTermWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	if width, _, err := term.GetSize(int(os.Stderr.Fd())); err == nil && width > 0 {
		return width
	}
	return 120
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func validateConfig(cfg model.Config) error {
	switch cfg.Theme {
	case "light", "dark", "auto":
	default:
		return fmt.Errorf("--theme must be light, dark or auto")
	}
	if cfg.VowelColor != "" && !validHexColor(cfg.VowelColor) {
		return fmt.Errorf("--vowel-color must be a hex color like #E63946")
	}
	if cfg.ConsonantColor != "" && !validHexColor(cfg.ConsonantColor) {
		return fmt.Errorf("--consonant-color must be a hex color like #1D3557")
	}
	return nil
}

func validHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# flowread configuration
# Uncomment a value to enable it. CLI flags override config values.

[reading]
# wpm = %d                   # Reading speed in words per minute (%d-%d)
# preset = %q          # Color preset, see: flowread presets
# vowel-color = "#E63946"     # Hex override for the vowel color
# consonant-color = "#000000" # Hex override for the consonant color
# theme = %q              # light, dark or auto
# notify = false              # Desktop notification when a document is finished
# log-level = %q          # off, normal or debug
`,
		playback.DefaultWPM,
		playback.MinWPM,
		playback.MaxWPM,
		render.DefaultPreset,
		defaultTheme,
		defaultLogLevel,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
