package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Abraxas-365/userdesk/pkg/asyncx"
	"github.com/Abraxas-365/userdesk/pkg/config"
	"github.com/Abraxas-365/userdesk/pkg/iam/auth"
	"github.com/Abraxas-365/userdesk/pkg/iam/scopes"
	"github.com/Abraxas-365/userdesk/pkg/kernel"
	"github.com/Abraxas-365/userdesk/pkg/logx"
	"github.com/Abraxas-365/userdesk/pkg/processx"
	"github.com/Abraxas-365/userdesk/pkg/users"
	"github.com/Abraxas-365/userdesk/pkg/users/usersinfra"
	"github.com/jmoiron/sqlx"
)

const usage = `usage: userdesk <command> [flags]

commands:
  serve               run the HTTP API and job workers (default)
  demo                run the number processor demo
  seed [-n 100]       write generated users to Postgres
  token <user-id>     mint an access token
`

func main() {
	cmd, args := "serve", os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "serve":
		err = runServe()
	case "demo":
		err = runDemo(context.Background())
	case "seed":
		err = runSeed(args)
	case "token":
		err = runToken(args)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		logx.WithError(err).Fatal("userdesk " + cmd + " failed")
	}
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logx.Infof("🚀 Starting %s API Server...", cfg.Server.AppName)

	container := NewContainer(cfg)
	defer container.Cleanup()

	return serve(container)
}

// runDemo runs the processor three times: with the defaults, with a
// 500ms delay, and with a 1s delay cancelled after 1.5s.
func runDemo(ctx context.Context) error {
	out := processx.WriterReporter{W: os.Stdout}

	fmt.Println("1. default options")
	if err := processx.Process([]float64{1, 2, 3, 4}, processx.WithReporter(out)); err != nil {
		return err
	}

	fmt.Println("2. custom delay")
	if err := processx.Process([]float64{1, 2, 3},
		processx.WithDelay(500*time.Millisecond),
		processx.WithReporter(out),
	); err != nil {
		return err
	}

	fmt.Println("3. cancelled after 1.5s")
	ctx, cancel := context.WithTimeout(ctx, 1500*time.Millisecond)
	defer cancel()

	err := processx.Process([]float64{1, 2, 3},
		processx.WithDelay(time.Second),
		processx.WithToken(asyncx.FromContext(ctx)),
		processx.WithReporter(out),
	)
	if processx.IsCancelled(err) {
		fmt.Println("Processing was aborted")
		return nil
	}
	return err
}

func runSeed(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	n := fs.Int("n", users.DefaultCount, "number of users to generate")
	seed := fs.Uint64("seed", uint64(time.Now().UnixNano()), "generator seed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !cfg.Database.Enabled() {
		return config.ErrRegistry.New(config.ErrInvalid).
			WithDetail("key", "DB_HOST").
			WithDetail("reason", "seed writes to Postgres")
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	repo := usersinfra.NewPostgresRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}

	generated := users.NewGenerator(*seed).Generate(*n)
	if err := repo.Save(ctx, generated...); err != nil {
		return err
	}

	logx.WithFields(logx.Fields{"count": len(generated), "seed": *seed}).Info("users seeded")
	return nil
}

func runToken(args []string) error {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	email := fs.String("email", "", "email claim")
	name := fs.String("name", "", "name claim")
	group := fs.String("group", "viewer", "scope group to grant")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !cfg.Auth.Enabled() {
		return config.ErrRegistry.New(config.ErrInvalid).
			WithDetail("key", "AUTH_JWT_SECRET").
			WithDetail("reason", "required to sign tokens")
	}

	granted := scopes.ForGroup(*group)
	if granted == nil {
		return config.ErrRegistry.New(config.ErrInvalid).
			WithDetail("key", "group").
			WithDetail("reason", "unknown scope group "+*group)
	}

	svc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.Issuer)
	token, err := svc.GenerateAccessToken(kernel.NewUserID(fs.Arg(0)), map[string]any{
		"email":  *email,
		"name":   *name,
		"scopes": granted,
	})
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
