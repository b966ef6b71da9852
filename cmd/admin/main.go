// admin manages accounts and datasets; use with go run ./cmd/admin <command>.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/parshv1234/ChemicalVisualizer/internal/admin"
	"github.com/parshv1234/ChemicalVisualizer/internal/application"
	"github.com/parshv1234/ChemicalVisualizer/internal/auth"
	"github.com/parshv1234/ChemicalVisualizer/internal/config"
	"github.com/parshv1234/ChemicalVisualizer/internal/core"
	"github.com/parshv1234/ChemicalVisualizer/internal/logging"
	"github.com/parshv1234/ChemicalVisualizer/internal/report"
)

const usage = `usage: admin <command> [flags]

commands:
  createuser      -username NAME -password PASS
  deleteuser      -username NAME
  delete-dataset  -id ID
  list-datasets
  reset           -yes
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	_ = godotenv.Overload()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if cfg.Database.Backend == config.BackendMemory {
		fmt.Fprintln(os.Stderr, "admin: the memory backend does not outlive this process; set DATABASE_BACKEND=postgres")
		os.Exit(1)
	}

	ctx := context.Background()
	backends, err := application.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "admin:", err)
		os.Exit(1)
	}
	defer backends.Close()

	tokens := auth.NewTokenIssuer([]byte(cfg.Security.TokenSecret), cfg.Security.TokenIssuer, cfg.Security.TokenTTL)
	a := &admin.Admin{
		Users:    backends.Users,
		Files:    backends.Files,
		Auth:     auth.NewService(backends.Users, auth.NewHasher(cfg.Security.BcryptCost), tokens),
		Datasets: core.NewService(backends.Datasets, backends.Files, report.NewRenderer()),
	}

	if err := run(ctx, a, os.Args[1], os.Args[2:]); err != nil {
		var usageErr usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintln(os.Stderr, err)
			fmt.Fprint(os.Stderr, usage)
			backends.Close()
			os.Exit(2)
		}
		if core.IsUserFacing(err) {
			slog.Debug("admin command failed", "command", os.Args[1], "error", err)
			err = errors.New(core.FormatUserError(err))
		}
		fmt.Fprintln(os.Stderr, "admin:", err)
		backends.Close()
		os.Exit(1)
	}
}

type usageError string

func (e usageError) Error() string { return string(e) }

func run(ctx context.Context, a *admin.Admin, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	username := fs.String("username", "", "account name")
	password := fs.String("password", "", "account password")
	id := fs.String("id", "", "dataset id")
	yes := fs.Bool("yes", false, "confirm a destructive command")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}

	switch cmd {
	case "createuser":
		u, err := a.CreateUser(ctx, *username, *password)
		if err != nil {
			return err
		}
		fmt.Printf("created user %s (%s)\n", u.Username, u.ID)

	case "deleteuser":
		if *username == "" {
			return usageError("deleteuser: -username is required")
		}
		n, err := a.DeleteUser(ctx, *username)
		if err != nil {
			return err
		}
		fmt.Printf("deleted user %s and %d datasets\n", *username, n)

	case "delete-dataset":
		if *id == "" {
			return usageError("delete-dataset: -id is required")
		}
		if err := a.DeleteDataset(ctx, *id); err != nil {
			return err
		}
		fmt.Printf("deleted dataset %s\n", *id)

	case "list-datasets":
		return a.ListDatasets(ctx, os.Stdout)

	case "reset":
		if !*yes {
			return usageError("reset: deletes every dataset; pass -yes to confirm")
		}
		n, err := a.ResetAll(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("deleted %d datasets\n", n)

	default:
		return usageError(fmt.Sprintf("unknown command %q", cmd))
	}
	return nil
}
