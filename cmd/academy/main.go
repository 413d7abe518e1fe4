package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"swimschool/internal/analytics"
	"swimschool/internal/config"
	"swimschool/internal/database"
	"swimschool/internal/logging"
	"swimschool/internal/media"
	"swimschool/internal/repository"
	"swimschool/internal/security"
	"swimschool/internal/seed"
	"swimschool/internal/service"
	"swimschool/internal/state"
)

type app struct {
	cfg      *config.Config
	db       *database.DB
	repos    *repository.Repositories
	store    *state.Store
	tenantID int64
}

func main() {
	tenantID := flag.Int64("tenant", 0, "Tenant ID to load (default: first tenant)")
	flag.Usage = printUsage
	flag.Parse()
	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()
	logger := logging.Setup("swimschool", cfg.LogLevel)
	ctx := context.Background()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		fatal("Failed to initialize database", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		fatal("Failed to run migrations", err)
	}
	logger.Info("Database ready", "type", cfg.DatabaseType)

	a := &app{cfg: cfg, db: db, repos: repository.New(db), tenantID: *tenantID}

	cmd, args := flag.Arg(0), flag.Args()[1:]
	switch cmd {
	case "migrate":
		err = a.migrate()
	case "seed":
		err = a.seed(ctx, args)
	default:
		if err = a.openStore(ctx, logger); err != nil {
			break
		}
		defer a.store.Teardown()

		switch cmd {
		case "login":
			err = a.login(ctx, args)
		case "analytics":
			err = a.analytics(args)
		case "at-risk":
			err = a.atRisk(args)
		case "progress":
			err = a.progress(args)
		case "badges":
			err = a.badges(ctx, args)
		default:
			printUsage()
			os.Exit(1)
		}
	}

	if err != nil {
		fatal(cmd+" failed", err)
	}
}

func (a *app) openStore(ctx context.Context, logger *slog.Logger) error {
	opts := []state.Option{state.WithLogger(logger)}
	if a.tenantID != 0 {
		opts = append(opts, state.WithTenantID(a.tenantID))
	}

	presigner, err := media.NewPresigner(ctx, a.cfg)
	if err != nil {
		return err
	}
	if presigner != nil {
		opts = append(opts, state.WithPresigner(presigner))
	}

	emailService, err := service.NewEmailService(ctx, a.cfg)
	if err != nil {
		return err
	}
	if emailService.IsEnabled() {
		opts = append(opts, state.WithNotifier(emailService))
	}

	a.store = state.New(a.repos, opts...)
	if err := a.store.Initialize(ctx); err != nil {
		return err
	}
	if a.store.Tenant() == nil {
		return fmt.Errorf("%w: run `academy seed` first", state.ErrNoTenant)
	}
	return nil
}

func (a *app) migrate() error {
	version, err := a.db.Version()
	if err != nil {
		return err
	}
	slog.Info("Schema up to date", "version", version)
	return nil
}

func (a *app) seed(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	name := fs.String("name", "", "School name")
	timezone := fs.String("timezone", "", "IANA timezone of the school")
	currency := fs.String("currency", "", "ISO currency code")
	fs.Parse(args)

	tx, err := a.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := seed.Run(ctx, repository.New(tx), seed.Options{
		TenantName:    *name,
		Timezone:      *timezone,
		Currency:      *currency,
		CoachEmail:    a.cfg.CoachEmail,
		CoachPassword: a.cfg.CoachPassword,
	})
	if errors.Is(err, seed.ErrAlreadySeeded) {
		slog.Info("Demo data already present, skipping seed")
		return nil
	}
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	return printJSON(os.Stdout, result)
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "Coach email")
	student := fs.Int64("student", 0, "Student ID for a student login")
	password := fs.String("password", "", "Password")
	fs.Parse(args)

	sessions := security.NewSessionManager(a.cfg.SessionSecret, a.cfg.SessionDuration)
	auth, err := service.NewAuthService(a.store, a.repos.Users, sessions, a.cfg)
	if err != nil {
		return err
	}

	var session *service.Session
	if *student != 0 {
		session, err = auth.StudentLogin(ctx, *student, *password)
	} else {
		session, err = auth.CoachLogin(ctx, *email, *password)
	}
	if err != nil {
		return err
	}

	slog.Info("Signed in", "user_id", session.Claims.UserID, "role", session.Claims.Role)
	return printJSON(os.Stdout, session)
}

func (a *app) analytics(args []string) error {
	fs := flag.NewFlagSet("analytics", flag.ExitOnError)
	rangeFlag := fs.String("range", string(analytics.Range30Days), "Window: 7d, 30d, 90d or all")
	format := fs.String("format", "json", "Output format: json or xlsx")
	out := fs.String("out", "", "Output file (default: stdout for json, analytics.xlsx for xlsx)")
	fs.Parse(args)

	rng, err := analytics.ParseRange(*rangeFlag)
	if err != nil {
		return err
	}
	snap := a.store.Snapshot().Analytics(rng, time.Now())

	switch *format {
	case "json":
		if *out == "" {
			return service.WriteAnalyticsJSON(os.Stdout, snap)
		}
		return writeFile(*out, func(w io.Writer) error { return service.WriteAnalyticsJSON(w, snap) })
	case "xlsx":
		path := *out
		if path == "" {
			path = "analytics.xlsx"
		}
		if err := writeFile(path, func(w io.Writer) error { return service.WriteAnalyticsXLSX(w, snap) }); err != nil {
			return err
		}
		slog.Info("Analytics workbook written", "path", path, "range", rng)
		return nil
	default:
		return fmt.Errorf("unknown format %q", *format)
	}
}

func (a *app) atRisk(args []string) error {
	fs := flag.NewFlagSet("at-risk", flag.ExitOnError)
	fs.Parse(args)

	snap := a.store.Snapshot().Analytics(analytics.Range30Days, time.Now())
	return printJSON(os.Stdout, snap.AtRisk)
}

func (a *app) progress(args []string) error {
	fs := flag.NewFlagSet("progress", flag.ExitOnError)
	student := fs.Int64("student", 0, "Student ID (required)")
	fs.Parse(args)

	snap := a.store.Snapshot()
	client, ok := snap.Client(*student)
	if !ok {
		return fmt.Errorf("student %d: %w", *student, state.ErrNotFound)
	}

	return printJSON(os.Stdout, map[string]interface{}{
		"student": client,
		"stats":   snap.StudentStats(client.ID, time.Now()),
		"mastery": snap.StudentMastery(client.ID),
	})
}

func (a *app) badges(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("badges", flag.ExitOnError)
	student := fs.Int64("student", 0, "Student ID (default: every client)")
	fs.Parse(args)

	students := []int64{*student}
	if *student == 0 {
		students = students[:0]
		for _, c := range a.store.Snapshot().Clients {
			students = append(students, c.ID)
		}
	}

	awarded := make(map[int64][]string)
	for _, id := range students {
		badges, err := a.store.CheckAndAwardBadges(ctx, id)
		if err != nil {
			return err
		}
		for _, b := range badges {
			awarded[id] = append(awarded[id], b.Name)
		}
	}

	return printJSON(os.Stdout, awarded)
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := write(f); err != nil {
		return err
	}
	return f.Close()
}

func printJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Println("Swim School")
	fmt.Println()
	fmt.Println("Usage: academy [-tenant <id>] <command> [options]")
	fmt.Println()
	fmt.Println("  -tenant <id>      School to load (default: first tenant)")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  academy migrate                               Apply the schema and print its version")
	fmt.Println("  academy seed [-name -timezone -currency]      Create the demo school")
	fmt.Println("  academy login -email <e> -password <p>        Sign in as the coach")
	fmt.Println("  academy login -student <id> -password <p>     Sign in as a student")
	fmt.Println("  academy analytics [-range 30d] [-format json|xlsx] [-out file]")
	fmt.Println("  academy at-risk                               Clients without a recent lesson")
	fmt.Println("  academy progress -student <id>                Streaks, XP and skill mastery")
	fmt.Println("  academy badges [-student <id>]                Award any newly earned badges")
}
