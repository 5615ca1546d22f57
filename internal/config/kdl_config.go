package config

import (
	"fmt"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// parseKDL reads a .smellscan.kdl document over the defaults:
//
//	project { root "." name "shop" }
//	analysis { max_parameters 4 workers 8 skip_tests false }
//	rules { disable "CommentHeadline" "FlagArgument" }
//	exclude { "**/Generated/**" }
//	blacklist { "Designer" }
//	output { dir "out" format "json" }
//	watch { debounce_ms 500 }
func parseKDL(content string, defaultRoot string) (*Config, error) {
	cfg := Default("")
	cfg.Project.Root = ""

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "version":
			if v, ok := firstIntArg(n); ok {
				cfg.Version = v
			}
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "analysis":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_parameters":
					if v, ok := firstIntArg(cn); ok {
						cfg.Analysis.MaxParameters = v
					}
				case "max_function_lines":
					if v, ok := firstIntArg(cn); ok {
						cfg.Analysis.MaxFunctionLines = v
					}
				case "headline_block_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Analysis.HeadlineBlockSize = v
					}
				case "workers":
					if v, ok := firstIntArg(cn); ok {
						cfg.Analysis.Workers = v
					}
				case "skip_tests":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Analysis.SkipTests = b
					}
				}
			}
		case "rules":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "disable":
					cfg.Rules.Disable = append(cfg.Rules.Disable, collectStringArgs(cn)...)
				case "only":
					cfg.Rules.Only = append(cfg.Rules.Only, collectStringArgs(cn)...)
				}
			}
		case "output":
			for _, cn := range n.Children {
				assignSimpleString(cn, "dir", func(v string) { cfg.Output.Dir = v })
				assignSimpleString(cn, "format", func(v string) { cfg.Output.Format = strings.ToLower(v) })
			}
		case "watch":
			for _, cn := range n.Children {
				if nodeName(cn) == "debounce_ms" {
					if v, ok := firstIntArg(cn); ok {
						cfg.Watch.DebounceMs = v
					}
				}
			}
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			// an exclude block adds to the always-on exclusions
			cfg.Exclude = DeduplicatePatterns(append(cfg.Exclude, collectStringArgs(n)...))
		case "blacklist":
			cfg.Blacklist = append(cfg.Blacklist, collectStringArgs(n)...)
		}
	}

	if cfg.Project.Root == "" {
		cfg.Project.Root = defaultRoot
	}
	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

// collectStringArgs accepts both the inline form (exclude "a" "b") and the
// block form (exclude { "a"; "b" }), where each child's name is the value.
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}
