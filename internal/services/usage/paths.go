package usage

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/j-veylop/token-monitor-tui/internal/logger"
)

// Fallback executable names resolved through PATH.
const (
	defaultNode    = "node"
	defaultCcusage = "ccusage"
)

// Paths holds the resolved executables used to run ccusage.
type Paths struct {
	Node    string
	Ccusage string
}

// DiscoverPaths resolves the node and ccusage executables. Non-empty
// overrides win; otherwise the first existing well-known install location
// is used, falling back to the bare command name.
func DiscoverPaths(home, nodeOverride, ccusageOverride string) Paths {
	p := Paths{Node: nodeOverride, Ccusage: ccusageOverride}

	if p.Node == "" {
		candidates := nodeCandidates(home)
		p.Node = firstExisting(candidates, defaultNode)
		logger.Debug("resolved node", "path", p.Node, "candidates", len(candidates))
	}
	if p.Ccusage == "" {
		candidates := ccusageCandidates(home)
		p.Ccusage = firstExisting(candidates, defaultCcusage)
		logger.Debug("resolved ccusage", "path", p.Ccusage, "candidates", len(candidates))
	}

	return p
}

// nodeCandidates lists Homebrew, system and Volta installs followed by
// every version managed by nvm, fnm and asdf.
func nodeCandidates(home string) []string {
	candidates := []string{
		"/opt/homebrew/bin/node",
		"/usr/local/bin/node",
	}
	if home == "" {
		return append(candidates, "/usr/bin/node")
	}

	candidates = append(candidates,
		filepath.Join(home, ".volta", "bin", "node"),
		"/usr/bin/node",
	)

	patterns := []string{
		filepath.Join(home, ".nvm", "versions", "node", "*", "bin", "node"),
		filepath.Join(home, ".local", "share", "fnm", "node-versions", "*", "installation", "bin", "node"),
		filepath.Join(home, ".asdf", "installs", "nodejs", "*", "bin", "node"),
	}
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		candidates = append(candidates, matches...)
	}

	return candidates
}

// ccusageCandidates lists global installs from Homebrew, npm, yarn and pnpm.
func ccusageCandidates(home string) []string {
	candidates := []string{
		"/opt/homebrew/bin/ccusage",
		"/usr/local/bin/ccusage",
	}
	if home == "" {
		return candidates
	}
	return append(candidates,
		filepath.Join(home, ".yarn", "bin", "ccusage"),
		filepath.Join(home, ".local", "share", "pnpm", "ccusage"),
	)
}

func firstExisting(paths []string, fallback string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return fallback
}

// searchPath returns a PATH value that puts the node directory and the
// common install prefixes ahead of the inherited PATH, so that ccusage's
// "#!/usr/bin/env node" shebang resolves.
func searchPath(node, inherited string) string {
	dir := filepath.Dir(node)
	if dir == "." || dir == "" {
		dir = "/usr/local/bin"
	}
	entries := []string{dir, "/opt/homebrew/bin", "/usr/local/bin", "/usr/bin", "/bin"}
	if inherited != "" {
		entries = append(entries, inherited)
	}
	return strings.Join(entries, string(os.PathListSeparator))
}
