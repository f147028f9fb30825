package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"mmdu/version"
)

// ByteMode selects the policy attribute used for byte accounting.
type ByteMode int

const (
	FileSize ByteMode = iota
	KBAllocated
)

// CountMode selects which fields the du-style rows carry.
type CountMode int

const (
	CountBytes CountMode = iota
	CountInodes
	CountBoth
)

type Config struct {
	Dirs            []string
	MaxDepth        int
	CountLinks      bool
	ByteMode        ByteMode
	CountMode       CountMode
	User            string
	Group           string
	Ncdu            bool
	DuReport        string
	NcduReport      string
	MMNodes         string
	MMLocalWorkDir  string
	MMGlobalWorkDir string
	LogLevel        string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		ByteMode:  FileSize,
		CountMode: CountBytes,
		LogLevel:  "warn",
	}

	maxDepth := flag.Int("max-depth", cfg.MaxDepth, "Show the size of each sub-directory up to the given depth including totals for each super-directory. Setting maximum depth to 0 is equivalent to not specifying it at all.")
	flag.IntVar(maxDepth, "d", cfg.MaxDepth, "Shorthand for -max-depth.")
	countLinks := flag.Bool("count-links", cfg.CountLinks, "Count sizes many times if hard linked. The default behavior is to count each hard linked object only once for each point of interest.")
	kbAllocated := flag.Bool("kb-allocated", false, "Use KB_ALLOCATED instead of FILE_SIZE as the policy attribute.")
	count := flag.String("count", "block", "Output fields: block, inodes, or both.")
	user := flag.String("user", cfg.User, "Consider only inodes owned by this user (name or uid).")
	group := flag.String("group", cfg.Group, "Consider only inodes owned by this group (name or gid).")
	ncdu := flag.Bool("ncdu", cfg.Ncdu, "Write an ncdu export to standard output instead of du-style rows.")
	duReport := flag.String("du-report", cfg.DuReport, "Write du-style rows to a file of this name created in each DIR (default: none).")
	ncduReport := flag.String("ncdu-report", cfg.NcduReport, "Write an ncdu export to a file of this name created in each DIR (default: none).")
	mmNodes := flag.String("mm-nodes", cfg.MMNodes, "List of nodes to use with mmapplypolicy -N, see man mmapplypolicy.")
	mmLocalWorkDir := flag.String("mm-local-work-dir", cfg.MMLocalWorkDir, "Local work directory to use with mmapplypolicy -s. The policy LIST output is written there temporarily before being processed; the system temporary directory might be too small for large directories.")
	mmGlobalWorkDir := flag.String("mm-global-work-dir", cfg.MMGlobalWorkDir, "Global work directory to use with mmapplypolicy -g, see man mmapplypolicy.")
	logLevel := flag.String("log-level", cfg.LogLevel, fmt.Sprintf("Log level: debug, info, warn, error, fatal, or panic (default: %s).", cfg.LogLevel))
	showVersion := flag.Bool("version", false, "Print version and exit.")

	flag.Parse()

	if *showVersion {
		fmt.Printf("mmdu version %s\n", version.Version)
		os.Exit(0)
	}

	cfg.MaxDepth = *maxDepth
	cfg.CountLinks = *countLinks
	cfg.User = *user
	cfg.Group = *group
	cfg.Ncdu = *ncdu
	cfg.DuReport = *duReport
	cfg.NcduReport = *ncduReport
	cfg.MMNodes = *mmNodes
	cfg.MMLocalWorkDir = *mmLocalWorkDir
	cfg.MMGlobalWorkDir = *mmGlobalWorkDir
	cfg.LogLevel = *logLevel

	if *kbAllocated {
		cfg.ByteMode = KBAllocated
	}

	mode, err := parseCountMode(*count)
	if err != nil {
		return nil, err
	}
	cfg.CountMode = mode

	cfg.Dirs = flag.Args()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Filtered reports whether a user or group filter narrows the scan. A
// missing policy report is only a legitimate outcome for filtered scans.
func (cfg *Config) Filtered() bool {
	return cfg.User != "" || cfg.Group != ""
}

// NcduMode reports whether the scan has to collect extended records for
// building a filesystem tree.
func (cfg *Config) NcduMode() bool {
	return cfg.Ncdu || cfg.NcduReport != ""
}

// DuRequested reports whether du-style rows are wanted at all.
func (cfg *Config) DuRequested() bool {
	return !cfg.Ncdu || cfg.DuReport != ""
}

func parseCountMode(s string) (CountMode, error) {
	switch s {
	case "block":
		return CountBytes, nil
	case "inodes":
		return CountInodes, nil
	case "both":
		return CountBoth, nil
	default:
		return CountBytes, fmt.Errorf("invalid count mode: %q (expected block, inodes, or both)", s)
	}
}

func (cfg *Config) validate() error {
	if cfg.MaxDepth < 0 {
		return fmt.Errorf("invalid max depth: %d", cfg.MaxDepth)
	}
	if cfg.User != "" && cfg.Group != "" {
		return fmt.Errorf("the filter options -group and -user are in conflict")
	}
	for _, dir := range cfg.Dirs {
		if err := isDir(dir); err != nil {
			return err
		}
	}
	if cfg.MMLocalWorkDir != "" {
		if err := isDir(cfg.MMLocalWorkDir); err != nil {
			return err
		}
	}
	if cfg.MMGlobalWorkDir != "" {
		if err := isDir(cfg.MMGlobalWorkDir); err != nil {
			return err
		}
	}
	return nil
}

func isDir(path string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("is not absolute: %s", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("does not exist: %s", path)
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("is not a directory: %s", path)
	}
	return nil
}
