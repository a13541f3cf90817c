package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"github.com/mpo-id/portal/config"
	"github.com/mpo-id/portal/internal/adapters/localauth"
	"github.com/mpo-id/portal/internal/bootstrap"
	"github.com/mpo-id/portal/internal/data"
	domainauth "github.com/mpo-id/portal/internal/domain/auth"
	"github.com/mpo-id/portal/internal/migrate"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Stdin  io.Reader
	Stdout io.Writer
}

const (
	defaultMigrationTimeout = 5 * time.Minute
	defaultCommandTimeout   = 30 * time.Second
	minPasswordLength       = 12
)

func main() {
	cfg, cfgErr := bootstrap.LoadConfig()
	logger := bootstrap.InitLogger(cfg.Observability)

	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stderr); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	if cfgErr != nil {
		logger.ErrorContext(context.Background(), "load config", "error", cfgErr)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Run database migrations",
			run:         runMigrations,
		},
		"migrate-status": {
			name:        "migrate-status",
			description: "List applied and pending migrations",
			run:         runMigrationStatus,
		},
		"create-user": {
			name:        "create-user",
			description: "Create a local account and its profile (AUTH_MODE=local)",
			run:         runCreateUser,
		},
		"set-role": {
			name:        "set-role",
			description: "Create or update the profile and role for a user id",
			run:         runSetRole,
		},
		"list-users": {
			name:        "list-users",
			description: "List user profiles and their roles",
			run:         runListUsers,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: portal-admin <command> [flags]\n\nAvailable commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-16s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

// withDatabase connects, runs f under timeout and closes the pool. SIGINT
// and SIGTERM cancel f.
func withDatabase(cmdCtx *commandContext, timeout time.Duration, f func(context.Context, *sql.DB) error) error {
	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(ctx, cmdCtx.Config.Postgres, cmdCtx.Logger)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", cerr)
		}
	}()

	return f(ctx, db)
}

type migrateOptions struct {
	Timeout time.Duration
}

func parseMigrateFlags(name string, args []string) (migrateOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := migrateOptions{}
	fs.DurationVar(&opts.Timeout, "timeout", defaultMigrationTimeout, "Maximum duration to wait for migrations to complete")
	if err := fs.Parse(args); err != nil {
		return migrateOptions{}, err
	}
	if opts.Timeout <= 0 {
		return migrateOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags("migrate", args)
	if err != nil {
		return err
	}
	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		cmdCtx.Logger.InfoContext(ctx, "running database migrations")
		return bootstrap.RunMigrations(ctx, db, cmdCtx.Logger)
	})
}

func runMigrationStatus(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags("migrate-status", args)
	if err != nil {
		return err
	}
	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		status, err := data.MigrationStatus(ctx, db)
		if err != nil {
			return fmt.Errorf("migration status: %w", err)
		}
		return printMigrationStatus(cmdCtx.Stdout, status)
	})
}

func printMigrationStatus(w io.Writer, status migrate.Status) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writef(tw, "MIGRATION\tSTATE\n"); err != nil {
		return err
	}
	for _, name := range status.Applied {
		if err := writef(tw, "%s\tapplied\n", name); err != nil {
			return err
		}
	}
	for _, name := range status.Pending {
		if err := writef(tw, "%s\tpending\n", name); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return writef(w, "\n%d applied, %d pending\n", len(status.Applied), len(status.Pending))
}

type createUserOptions struct {
	Email         string
	FullName      string
	Role          domainauth.Role
	PasswordStdin bool
}

func parseCreateUserFlags(args []string) (createUserOptions, error) {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts createUserOptions
	var role string
	fs.StringVar(&opts.Email, "email", "", "Account email (required)")
	fs.StringVar(&opts.FullName, "name", "", "Display name")
	fs.StringVar(&role, "role", string(domainauth.RoleContentAdmin), "Role to grant")
	fs.BoolVar(&opts.PasswordStdin, "password-stdin", false, "Read the password from stdin instead of PORTAL_ADMIN_PASSWORD")
	if err := fs.Parse(args); err != nil {
		return createUserOptions{}, err
	}

	opts.Email = strings.TrimSpace(opts.Email)
	if opts.Email == "" || !strings.Contains(opts.Email, "@") {
		return createUserOptions{}, errors.New("--email must be a valid address")
	}
	parsed, err := domainauth.ParseRole(role)
	if err != nil {
		return createUserOptions{}, fmt.Errorf("--role: %w", err)
	}
	opts.Role = parsed
	return opts, nil
}

// readPassword takes the first line of r, or the PORTAL_ADMIN_PASSWORD value.
func readPassword(r io.Reader, fromStdin bool, getenv func(string) string) (string, error) {
	var pw string
	if fromStdin {
		line, err := bufio.NewReader(r).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read password: %w", err)
		}
		pw = strings.TrimRight(line, "\r\n")
	} else {
		pw = getenv("PORTAL_ADMIN_PASSWORD")
	}
	if len(pw) < minPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	return pw, nil
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

func runCreateUser(cmdCtx *commandContext, args []string) error {
	opts, err := parseCreateUserFlags(args)
	if err != nil {
		return err
	}
	if cmdCtx.Config.Auth.Mode != config.IdentityModeLocal {
		return errors.New("create-user only applies to AUTH_MODE=local; use set-role for hosted accounts")
	}
	pw, err := readPassword(cmdCtx.Stdin, opts.PasswordStdin, os.Getenv)
	if err != nil {
		return err
	}
	hash, err := localauth.HashPassword(pw)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, defaultCommandTimeout, func(ctx context.Context, db *sql.DB) error {
		profile, err := data.NewAuthUserRepo(db).CreateWithProfile(ctx, data.CreateUserParams{
			Email:        opts.Email,
			PasswordHash: hash,
			FullName:     optional(opts.FullName),
			Role:         opts.Role,
		})
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return writef(cmdCtx.Stdout, "created %s (%s) as %s\n", profile.Email, profile.ID, profile.Role.Label())
	})
}

type setRoleOptions struct {
	ID       string
	Email    string
	FullName string
	Role     domainauth.Role
}

func parseSetRoleFlags(args []string) (setRoleOptions, error) {
	fs := flag.NewFlagSet("set-role", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts setRoleOptions
	var role string
	fs.StringVar(&opts.ID, "id", "", "User id as issued by the identity provider (required)")
	fs.StringVar(&opts.Email, "email", "", "User email (required)")
	fs.StringVar(&opts.FullName, "name", "", "Display name; kept when empty")
	fs.StringVar(&role, "role", "", "Role to assign (required)")
	if err := fs.Parse(args); err != nil {
		return setRoleOptions{}, err
	}

	id, err := uuid.Parse(strings.TrimSpace(opts.ID))
	if err != nil {
		return setRoleOptions{}, fmt.Errorf("--id must be a UUID: %w", err)
	}
	opts.ID = id.String()
	opts.Email = strings.TrimSpace(opts.Email)
	if opts.Email == "" {
		return setRoleOptions{}, errors.New("--email is required")
	}
	parsed, err := domainauth.ParseRole(role)
	if err != nil {
		return setRoleOptions{}, fmt.Errorf("--role: %w", err)
	}
	opts.Role = parsed
	return opts, nil
}

func runSetRole(cmdCtx *commandContext, args []string) error {
	opts, err := parseSetRoleFlags(args)
	if err != nil {
		return err
	}
	return withDatabase(cmdCtx, defaultCommandTimeout, func(ctx context.Context, db *sql.DB) error {
		profile, err := data.NewProfileRepo(db).UpsertProfile(ctx, &domainauth.UserProfile{
			ID:       opts.ID,
			Email:    opts.Email,
			FullName: optional(opts.FullName),
			Role:     opts.Role,
		})
		if err != nil {
			return fmt.Errorf("set role: %w", err)
		}
		return writef(cmdCtx.Stdout, "%s is now %s\n", profile.Email, profile.Role.Label())
	})
}

type listUsersOptions struct {
	Limit  int
	Offset int
}

func parseListUsersFlags(args []string) (listUsersOptions, error) {
	fs := flag.NewFlagSet("list-users", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts listUsersOptions
	fs.IntVar(&opts.Limit, "limit", 50, "Maximum rows to print")
	fs.IntVar(&opts.Offset, "offset", 0, "Rows to skip")
	if err := fs.Parse(args); err != nil {
		return listUsersOptions{}, err
	}
	if opts.Limit <= 0 || opts.Offset < 0 {
		return listUsersOptions{}, errors.New("--limit must be positive and --offset non-negative")
	}
	return opts, nil
}

func runListUsers(cmdCtx *commandContext, args []string) error {
	opts, err := parseListUsersFlags(args)
	if err != nil {
		return err
	}
	return withDatabase(cmdCtx, defaultCommandTimeout, func(ctx context.Context, db *sql.DB) error {
		profiles, err := data.NewProfileRepo(db).ListProfiles(ctx, opts.Limit, opts.Offset)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		return printProfiles(cmdCtx.Stdout, profiles)
	})
}

func printProfiles(w io.Writer, profiles []*domainauth.UserProfile) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writef(tw, "ID\tEMAIL\tNAME\tROLE\n"); err != nil {
		return err
	}
	for _, p := range profiles {
		name := "-"
		if p.FullName != nil {
			name = *p.FullName
		}
		if err := writef(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Email, name, p.Role.Label()); err != nil {
			return err
		}
	}
	return tw.Flush()
}
