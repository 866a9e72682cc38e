// Command admin runs the operator tasks that have no HTTP surface: answering
// bug reports, closing them and merging duplicate restaurants.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mnuddindev/winoreat/internal/config"
	"github.com/mnuddindev/winoreat/internal/db"
	"github.com/mnuddindev/winoreat/internal/models"
	bug "github.com/mnuddindev/winoreat/internal/models/bug"
	"github.com/mnuddindev/winoreat/pkg/logger"
	"github.com/mnuddindev/winoreat/pkg/utils"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const usage = `usage: admin <command> [flags]

commands:
  answer -bug ID -text TEXT   answer a bug report and mail the reporter
  done -bug ID                mark a bug report as done
  merge-duplicates            merge restaurants sharing a name
`

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%s", usage)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	log, err := logger.NewLogger(logger.WithOutputDir(cfg.LogDir), logger.WithApp("winoreat-admin"))
	if err != nil {
		return err
	}
	defer log.Close()

	gormDB, err := db.NewDB(ctx, cfg.DBDriver, cfg.DSN(), models.RegisterModels(), db.WithLogger(log, gormLogger.Warn))
	if err != nil {
		return err
	}
	defer db.CloseDB(log)

	var notifier bug.Notifier
	if email := emailConfig(cfg); email.Enabled() {
		notifier = utils.NewMailer(email, log)
	}

	return dispatch(ctx, gormDB, notifier, args, out)
}

func emailConfig(cfg *config.Config) utils.EmailConfig {
	return utils.EmailConfig{
		SMTPHost:     cfg.SMTPHost,
		SMTPPort:     cfg.SMTPPort,
		SMTPUsername: cfg.SMTPUsername,
		SMTPPassword: cfg.SMTPPassword,
		AppURL:       cfg.AppURL,
		FromEmail:    cfg.MailFrom,
	}
}

// dispatch runs one subcommand against gormDB.
func dispatch(ctx context.Context, gormDB *gorm.DB, notifier bug.Notifier, args []string, out io.Writer) error {
	switch args[0] {
	case "answer":
		fs := flag.NewFlagSet("answer", flag.ContinueOnError)
		fs.SetOutput(out)
		id := fs.Uint("bug", 0, "bug id")
		text := fs.String("text", "", "answer text")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *id == 0 {
			return fmt.Errorf("answer: -bug is required")
		}
		a, err := models.AnswerBug(ctx, gormDB, *id, *text, notifier)
		if err != nil && a == nil {
			return err
		}
		fmt.Fprintf(out, "answer %d stored for bug %d\n", a.ID, *id)
		if err != nil {
			fmt.Fprintf(out, "notification failed: %s\n", utils.MessageOf(err))
		}
		return nil

	case "done":
		fs := flag.NewFlagSet("done", flag.ContinueOnError)
		fs.SetOutput(out)
		id := fs.Uint("bug", 0, "bug id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *id == 0 {
			return fmt.Errorf("done: -bug is required")
		}
		b, err := models.MarkDone(ctx, gormDB, *id)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "bug %d is %s\n", b.ID, b.StatusType)
		return nil

	case "merge-duplicates":
		report, err := models.MergeDuplicates(ctx, gormDB)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "merged %d groups, removed %d restaurants\n", report.Groups, report.Removed)
		return nil

	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}
