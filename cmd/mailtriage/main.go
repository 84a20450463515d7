// Command mailtriage scans the inbox for unread mail, classifies each
// message, audits the result, and leaves decline drafts for off-topic
// recruiter outreach.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hnguyen/mailtriage/internal/classify"
	"github.com/hnguyen/mailtriage/internal/credential"
	"github.com/hnguyen/mailtriage/internal/llm"
	"github.com/hnguyen/mailtriage/internal/mail"
	"github.com/hnguyen/mailtriage/internal/model"
	"github.com/hnguyen/mailtriage/internal/respond"
	"github.com/hnguyen/mailtriage/internal/store"
	"github.com/hnguyen/mailtriage/internal/triage"
)

func main() {
	configPath := flag.String(
		"config", model.DefaultConfigPath(), "path to the config file",
	)
	once := flag.Bool(
		"once", false, "run a single scan and exit, ignoring scan.interval_sec",
	)
	setCred := flag.String(
		"set-credential", "",
		fmt.Sprintf("store a credential (%s or %s) read from stdin, then exit",
			credential.KeyIMAPPassword, credential.KeyLLMAPIKey),
	)
	delCred := flag.String(
		"delete-credential", "",
		"remove a stored credential from the keyring, then exit",
	)
	flag.Parse()

	if *delCred != "" {
		if err := removeCredential(*delCred, credential.Delete); err != nil {
			fmt.Fprintf(os.Stderr, "mailtriage: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "deleted")
		return
	}

	if *setCred != "" {
		fmt.Fprintf(os.Stderr, "enter value for %s: ", *setCred)
		if err := storeCredential(*setCred, os.Stdin, credential.Set); err != nil {
			fmt.Fprintf(os.Stderr, "mailtriage: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "stored")
		return
	}

	if err := run(*configPath, *once); err != nil {
		fmt.Fprintf(os.Stderr, "mailtriage: %v\n", err)
		os.Exit(1)
	}
}

// credentialKey validates a credential name given on the command line.
func credentialKey(name string) error {
	switch name {
	case credential.KeyIMAPPassword, credential.KeyLLMAPIKey:
		return nil
	default:
		return fmt.Errorf("unknown credential %q (want %s or %s)",
			name, credential.KeyIMAPPassword, credential.KeyLLMAPIKey)
	}
}

// removeCredential deletes the named credential from the keyring.
func removeCredential(name string, del func(key string) error) error {
	if err := credentialKey(name); err != nil {
		return err
	}
	return del(name)
}

// storeCredential reads one line from in and stores it in the keyring under
// the named key, so the scheduler can run without secrets in the
// environment.
func storeCredential(
	name string, in io.Reader, set func(key, value string) error,
) error {
	if err := credentialKey(name); err != nil {
		return err
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("reading credential value: %w", err)
	}

	value := strings.TrimSpace(line)
	if value == "" {
		return fmt.Errorf("credential value must not be empty")
	}

	return set(name, value)
}

func run(configPath string, once bool) error {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	imapPassword, err := credential.IMAPPassword()
	if err != nil {
		return fmt.Errorf("resolving IMAP password: %w", err)
	}
	apiKey, err := credential.LLMAPIKey()
	if err != nil {
		return fmt.Errorf("resolving LLM API key: %w", err)
	}

	records, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening audit store: %w", err)
	}
	defer func() { _ = records.Close() }()

	backend := llm.NewClient(apiKey)
	handler := mail.NewIMAPHandler(cfg.IMAP, imapPassword)

	runner := triage.NewRunner(
		handler,
		classify.New(backend, cfg.Profile, cfg.LLM.ClassifyModel, cfg.LLM.MaxTokens),
		respond.New(backend, cfg.Profile, cfg.LLM.GenerateModel, cfg.LLM.MaxTokens),
		records,
		logger,
		cfg.IMAP.Username,
		cfg.Scan.BatchLimit,
	)

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	if once || cfg.Scan.IntervalSec <= 0 {
		report, err := runner.Scan(ctx)
		if err != nil {
			return err
		}
		logger.Info("scan complete",
			zap.Int("scanned", report.Scanned),
			zap.Int("drafted", report.Drafted),
			zap.Int("audited", report.Audited),
			zap.Int("skipped_seen", report.SkippedSeen),
			zap.Int("skipped_followup", report.SkippedFollowup),
			zap.Int("failed", report.Failed),
		)
		return nil
	}

	scheduler := triage.NewScheduler(
		runner,
		time.Duration(cfg.Scan.IntervalSec)*time.Second,
		logger,
	)

	err = scheduler.Run(ctx)
	if err != nil && ctx.Err() != nil {
		logger.Info("shutting down")
		return nil
	}
	return err
}
