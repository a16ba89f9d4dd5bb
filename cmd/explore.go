package cmd

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mabhi256/objexplorer/internal/config"
	"github.com/mabhi256/objexplorer/internal/explorer"
	"github.com/mabhi256/objexplorer/internal/layout"
	"github.com/mabhi256/objexplorer/internal/logging"
	"github.com/mabhi256/objexplorer/internal/memory"
	"github.com/mabhi256/objexplorer/internal/registry"
	"github.com/mabhi256/objexplorer/internal/rtti"
	"github.com/mabhi256/objexplorer/internal/tui"
	"github.com/mabhi256/objexplorer/utils"
)

var exploreConfig = config.Default()

var exploreCmd = &cobra.Command{
	Use:   "explore [PID]",
	Short: "Open the interactive object explorer",
	Long: `Explore opens a tree view of managed objects in a live process or a raw memory dump.

Roots come from --root addresses and from a pointer table in the target
(--registry-table/--registry-count). Any other address can be typed into the
"Object Address" field.

Examples:
  objexplorer explore                                 # Interactive process selection
  objexplorer explore 1234                            # Attach to process ID 1234
  objexplorer explore --name game --root 0x7f001000   # Find process by name
  objexplorer explore --image heap.bin@0x10000 --layout re.yaml`,
	Args: cobra.MaximumNArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		// Already provided (single) argument, don't offer completions
		if len(args) != 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		processes, err := memory.DiscoverProcesses("")
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		completions := make([]string, 0, len(processes))
		for _, proc := range processes {
			completions = append(completions, fmt.Sprintf("%d\t%s", proc.PID, proc.Name))
		}
		return completions, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := exploreConfig

		if len(args) > 0 {
			pid, err := strconv.Atoi(args[0])
			if err != nil || pid <= 0 {
				return fmt.Errorf("invalid argument '%s': must be a PID", args[0])
			}
			cfg.PID = pid
		}

		if cfg.Debug {
			cfg.LogLevel = "debug"
		}

		if err := cfg.Validate(); err != nil {
			return err
		}

		logCfg := logging.DefaultConfig()
		logCfg.Level = cfg.LogLevel
		logger, closer, err := logging.OpenFile(logCfg, cfg.LogFile)
		if err != nil {
			return err
		}
		defer closer.Close()

		l, err := layout.Load(cfg.LayoutFile)
		if err != nil {
			return err
		}

		s := &sessionBuilder{cfg: cfg, layout: l, logger: logger}

		opts := tui.Options{
			Attach: s.attach,
			Discover: func() ([]memory.ProcessInfo, error) {
				return memory.DiscoverProcesses("")
			},
			Sinks: explorer.Sinks{
				Clipboard: tui.SystemClipboard{},
				Log:       logging.NewSink(logger, "hierarchy"),
			},
			Logger: logger,
		}

		opts.Session, err = s.initial()
		if err != nil {
			return err
		}

		logger.Info().Str("target", cfg.String()).Msg("starting explorer")

		if err := tui.StartTUI(opts); err != nil {
			return fmt.Errorf("unable to start TUI: %w", err)
		}
		return nil
	},
}

// sessionBuilder turns the configured target into a tui.Session.
type sessionBuilder struct {
	cfg    *config.Config
	layout *layout.Layout
	logger zerolog.Logger
}

// initial opens the target named on the command line. It returns a nil session
// when no target was given, which starts the process picker.
func (s *sessionBuilder) initial() (*tui.Session, error) {
	if !s.cfg.HasTarget() {
		s.logger.Info().Msg("no target given, starting process selection")
		return nil, nil
	}

	switch {
	case len(s.cfg.Images) > 0:
		img, err := memory.LoadImage(s.cfg.Images...)
		if err != nil {
			return nil, err
		}
		title := fmt.Sprintf("%s, %s mapped", s.cfg.String(), utils.MemorySize(img.Size()))
		return s.build(img, title)

	case s.cfg.ProcessName != "":
		info, err := memory.FindProcess(s.cfg.ProcessName)
		if err != nil {
			return nil, err
		}
		return s.attach(info)

	case s.cfg.PID != 0:
		return s.attach(memory.ProcessInfo{PID: s.cfg.PID})
	}

	return nil, nil
}

func (s *sessionBuilder) attach(info memory.ProcessInfo) (*tui.Session, error) {
	proc, err := memory.OpenProcess(info.PID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int("pid", proc.PID()).Str("name", info.Name).Msg("attached to process")

	title := fmt.Sprintf("PID %d", proc.PID())
	if info.Name != "" {
		title += " (" + info.Name + ")"
	}
	return s.build(proc, title)
}

func (s *sessionBuilder) build(space memory.Space, title string) (*tui.Session, error) {
	roots, err := s.cfg.RootAddresses()
	if err != nil {
		return nil, err
	}

	source := registry.MultiSource{registry.NewStaticSource(roots...)}
	if table := s.cfg.TableAddress(); !table.IsNull() {
		source = append(source, registry.NewTableSource(space, table, s.cfg.RegistryCount))
	}

	in := rtti.NewInspector(space, s.layout)

	s.logger.Debug().
		Str("target", title).
		Int("roots", len(roots)).
		Str("table", s.cfg.TableAddress().String()).
		Msg("session ready")

	return &tui.Session{
		Title:      title,
		Explorer:   explorer.New(in),
		Singletons: registry.NewSingletons(source, in, s.cfg.Refresh, s.logger),
	}, nil
}

func init() {
	rootCmd.AddCommand(exploreCmd)

	flags := exploreCmd.Flags()
	flags.IntVarP(&exploreConfig.PID, "pid", "p", 0, "Process ID to attach to")
	flags.StringVarP(&exploreConfig.ProcessName, "name", "n", "", "Attach to the single process whose name contains this")
	flags.StringArrayVarP(&exploreConfig.Images, "image", "i", nil, "Raw memory dump mapped at a base address (path@0xBASE), repeatable")
	flags.StringVarP(&exploreConfig.LayoutFile, "layout", "l", "", "YAML file overriding runtime structure offsets")
	flags.StringArrayVarP(&exploreConfig.Roots, "root", "r", nil, "Address listed under Singletons, repeatable")
	flags.StringVar(&exploreConfig.RegistryTable, "registry-table", "", "Address of a pointer table of singleton objects")
	flags.IntVar(&exploreConfig.RegistryCount, "registry-count", 0, "Number of slots in the registry table")
	flags.DurationVar(&exploreConfig.Refresh, "refresh", exploreConfig.Refresh, "Singleton refresh interval (minimum 1s)")
	flags.StringVar(&exploreConfig.LogFile, "log-file", exploreConfig.LogFile, "Log file (hierarchy dumps go here)")
	flags.StringVar(&exploreConfig.LogLevel, "log-level", exploreConfig.LogLevel, "Log level (debug, info, warn, error)")
	flags.BoolVar(&exploreConfig.Debug, "debug", false, "Enable debug logging")

	exploreCmd.MarkFlagsMutuallyExclusive("pid", "name", "image")

	exploreCmd.RegisterFlagCompletionFunc("layout", utils.CompleteFilesByExtension(".yaml", ".yml"))
	exploreCmd.RegisterFlagCompletionFunc("image", utils.CompleteImageSpecs(".bin", ".dmp", ".raw", ".mem"))
	exploreCmd.RegisterFlagCompletionFunc("log-level", cobra.FixedCompletions(
		[]string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp))
}
