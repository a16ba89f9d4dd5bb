package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

const binaryName = "objexplorer"

var rootCmd = &cobra.Command{
	Use:   binaryName,
	Short: "Browse managed objects in a running process or memory dump",
	Long: `objexplorer validates raw addresses as managed objects of a reflective runtime and
shows them as an expandable tree: type hierarchy, declared fields, and every word of
the object that itself points at a managed object.`,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		switch cmd.Name() {
		case "install", "version", "help", "layout", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return
		}

		if !isShellSupported() || completionsExist() {
			return
		}

		fmt.Printf("🔧 First run detected, setting up %s...\n", binaryName)
		if installCompletions(cmd.Root()) == nil {
			fmt.Println("✅ Shell completions installed")
			fmt.Println("💡 Restart your shell to enable tab completion")
		} else {
			fmt.Printf("⚠️  Auto-setup failed. Run '%s install' to try again.\n", binaryName)
		}
	},
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install shell completions",
	Run: func(cmd *cobra.Command, args []string) {
		if !isInPath() {
			printPathInstructions()
			return
		}

		if !isShellSupported() {
			fmt.Printf("❌ Shell completion not supported for: %s\n", detectShell())
			fmt.Println("Supported shells: bash, zsh, fish, powershell")
			return
		}

		if completionsExist() {
			fmt.Println("✅ Already configured!")
			return
		}

		fmt.Println("📦 Installing completions...")
		if err := installCompletions(cmd.Root()); err != nil {
			fmt.Printf("❌ Failed: %v\n", err)
		} else {
			fmt.Println("✅ Done! Restart your shell to enable tab completion.")
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func GetRootCmd() *cobra.Command {
	return rootCmd
}

type completionConfig struct {
	dir         string
	file        string
	genFunc     func(io.Writer) error
	activateCmd string
}

func (c completionConfig) path() string {
	return filepath.Join(c.dir, c.file)
}

// completionConfigs describes where each supported shell looks for completion
// scripts. root may be nil when only the paths are needed.
func completionConfigs(root *cobra.Command) map[string]completionConfig {
	home, _ := os.UserHomeDir()

	gen := func(f func(*cobra.Command, io.Writer) error) func(io.Writer) error {
		return func(w io.Writer) error { return f(root, w) }
	}

	bashDir := filepath.Join(home, ".local/share/bash-completion/completions")
	zshDir := filepath.Join(home, ".zsh/completions")

	return map[string]completionConfig{
		"bash": {
			dir:         bashDir,
			file:        binaryName,
			genFunc:     gen((*cobra.Command).GenBashCompletion),
			activateCmd: "source " + filepath.Join(bashDir, binaryName),
		},
		"zsh": {
			dir:         zshDir,
			file:        "_" + binaryName,
			genFunc:     gen((*cobra.Command).GenZshCompletion),
			activateCmd: fmt.Sprintf("fpath=(%s $fpath) && autoload -U compinit && compinit", zshDir),
		},
		"fish": {
			dir:  filepath.Join(home, ".config/fish/completions"),
			file: binaryName + ".fish",
			genFunc: gen(func(c *cobra.Command, w io.Writer) error {
				return c.GenFishCompletion(w, true)
			}),
			activateCmd: "complete --do-complete=" + binaryName, // Trigger fish to reload completions
		},
		"powershell": {
			dir:         home,
			file:        binaryName + "_completion.ps1",
			genFunc:     gen((*cobra.Command).GenPowerShellCompletionWithDesc),
			activateCmd: ". " + filepath.Join(home, binaryName+"_completion.ps1"),
		},
	}
}

func completionsExist() bool {
	config, ok := completionConfigs(nil)[detectShell()]
	if !ok {
		return false
	}
	_, err := os.Stat(config.path())
	return err == nil
}

func isShellSupported() bool {
	_, ok := completionConfigs(nil)[detectShell()]
	return ok
}

func detectShell() string {
	if runtime.GOOS == "windows" {
		return "powershell"
	}

	shell := filepath.Base(os.Getenv("SHELL"))
	if shell == "" || shell == "." {
		return "bash"
	}
	return shell
}

func installCompletions(root *cobra.Command) error {
	shell := detectShell()

	config, ok := completionConfigs(root)[shell]
	if !ok {
		return fmt.Errorf("unsupported shell: %s", shell)
	}

	if err := os.MkdirAll(config.dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", config.dir, err)
	}

	file, err := os.Create(config.path())
	if err != nil {
		return err
	}
	defer file.Close()

	if err := config.genFunc(file); err != nil {
		return err
	}

	// Print activation command for immediate use
	fmt.Printf("🔄 Running this command to enable auto-completions:\n")
	fmt.Printf("   %s\n", config.activateCmd)

	return nil
}

func isInPath() bool {
	execPath, err := os.Executable()
	if err != nil {
		return false
	}

	paths := strings.Split(os.Getenv("PATH"), string(os.PathListSeparator))
	return slices.Contains(paths, filepath.Dir(execPath))
}

func printPathInstructions() {
	execPath, _ := os.Executable()
	execDir := filepath.Dir(execPath)

	fmt.Printf("❌ %s not in PATH. Binary location: %s\n\n", binaryName, execPath)

	if runtime.GOOS == "windows" {
		fmt.Printf("Add to PATH: %s\n", execDir)
	} else {
		fmt.Printf("Add to shell profile: export PATH=\"%s:$PATH\"\n", execDir)
		fmt.Printf("Or copy to: /usr/local/bin\n")
	}
}

func init() {
	rootCmd.AddCommand(installCmd)
}
