package policy

import (
	"fmt"
	"os/user"
	"strconv"
	"strings"

	"mmdu/config"
)

// ListName is the policy LIST name; it also ends up in the report file
// name chosen by mmapplypolicy.
const ListName = "size"

// Rules returns the policy rule text for one scan. Du-mode scans show
// the configured byte attribute plus NLINK; ncdu-mode scans show mode,
// NLINK, and both byte attributes so a full tree can be built.
func Rules(cfg *config.Config) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "RULE\n  EXTERNAL LIST '%s'\n  EXEC ''\n", ListName)
	fmt.Fprintf(&b, "\nRULE 'TOTAL'\n  LIST '%s'\n  DIRECTORIES_PLUS\n", ListName)

	if cfg.NcduMode() {
		b.WriteString("  SHOW(VARCHAR(MODE) || ' ' || VARCHAR(NLINK) || ' ' || VARCHAR(FILE_SIZE) || ' ' || VARCHAR(KB_ALLOCATED))\n")
	} else {
		attribute := "FILE_SIZE"
		if cfg.ByteMode == config.KBAllocated {
			attribute = "KB_ALLOCATED"
		}
		fmt.Fprintf(&b, "  SHOW(VARCHAR(%s) || ' ' || VARCHAR(NLINK))\n", attribute)
	}

	where, err := whereClause(cfg)
	if err != nil {
		return "", err
	}
	b.WriteString(where)

	return b.String(), nil
}

func whereClause(cfg *config.Config) (string, error) {
	switch {
	case cfg.User != "":
		uid, err := resolveUser(cfg.User)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("  WHERE USER_ID = %d\n", uid), nil

	case cfg.Group != "":
		gid, err := resolveGroup(cfg.Group)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("  WHERE GROUP_ID = %d\n", gid), nil

	default:
		return "", nil
	}
}

func resolveUser(name string) (uint64, error) {
	if uid, err := strconv.ParseUint(name, 10, 64); err == nil {
		return uid, nil
	}
	u, err := user.Lookup(name)
	if err != nil {
		return 0, fmt.Errorf("resolving user %q: %w", name, err)
	}
	return strconv.ParseUint(u.Uid, 10, 64)
}

func resolveGroup(name string) (uint64, error) {
	if gid, err := strconv.ParseUint(name, 10, 64); err == nil {
		return gid, nil
	}
	g, err := user.LookupGroup(name)
	if err != nil {
		return 0, fmt.Errorf("resolving group %q: %w", name, err)
	}
	return strconv.ParseUint(g.Gid, 10, 64)
}
