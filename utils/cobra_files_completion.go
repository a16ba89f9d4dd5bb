package utils

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

type CompletionFunc = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective)

// CompleteFilesByExtension suggests directories and files ending in one of
// extensions.
func CompleteFilesByExtension(extensions ...string) CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		suggestions, err := matchFiles(toComplete, extensions)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return suggestions, cobra.ShellCompDirectiveNoFileComp
	}
}

// CompleteImageSpecs completes the path half of a "path@0xBASE" image flag.
// Once the user has typed '@' nothing more is offered.
func CompleteImageSpecs(extensions ...string) CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if strings.Contains(toComplete, "@") {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		suggestions, err := matchFiles(toComplete, extensions)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		for i, s := range suggestions {
			if !strings.HasSuffix(s, "/") {
				suggestions[i] = s + "@"
			}
		}
		return suggestions, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
	}
}

func matchFiles(toComplete string, extensions []string) ([]string, error) {
	dir := filepath.Dir(toComplete)
	prefix := filepath.Base(toComplete)

	// If no path separator, we're completing in current directory
	if !strings.Contains(toComplete, "/") {
		dir = "."
		prefix = toComplete
	} else if strings.HasSuffix(toComplete, "/") {
		dir = toComplete
		prefix = ""
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var suggestions []string
	for _, file := range files {
		name := file.Name()

		// Skip hidden files and non-matching prefixes
		if strings.HasPrefix(name, ".") || !strings.HasPrefix(name, prefix) {
			continue
		}

		// Build the suggestion path
		suggestion := name
		if dir != "." {
			suggestion = filepath.Join(dir, name)
		}

		if file.IsDir() {
			suggestions = append(suggestions, suggestion+"/")
		} else if hasExtension(name, extensions) {
			suggestions = append(suggestions, suggestion)
		}
	}

	slices.Sort(suggestions)
	return suggestions, nil
}

func hasExtension(filename string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	for _, ext := range extensions {
		if strings.HasSuffix(filename, ext) {
			return true
		}
	}
	return false
}
