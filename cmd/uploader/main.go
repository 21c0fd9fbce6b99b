// Command uploader selects a local file, stores it in the object store under
// {username}/{fileName} and records the upload with the API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/docker/go-units"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/radif/uploads/internal/config"
	"github.com/radif/uploads/internal/identity"
	"github.com/radif/uploads/internal/logger"
	"github.com/radif/uploads/internal/record"
	"github.com/radif/uploads/internal/storage"
	"github.com/radif/uploads/internal/upload"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("uploader", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath = fs.String("config", "", "path to a YAML config file")
		username   = fs.String("user", "", "username to log in with (ignored when a token is configured)")
		password   = fs.String("password", "", "password to log in with (prompted when omitted on a terminal)")
		filePath   = fs.String("file", "", "file to upload (or pass it as the first argument)")
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	path := *filePath
	if path == "" && fs.NArg() > 0 {
		path = fs.Arg(0)
	}

	cfg, err := config.LoadClient(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 2
	}

	log := logger.New(&logger.Config{
		Level:  cfg.LogLevel,
		Format: "console",
		Output: stderr,
	})

	session, err := openSession(ctx, cfg, *username, *password)
	if err != nil {
		log.Error().Err(err).Msg("login failed")
		return 1
	}

	// Storage is opened by the first object write, after the controller
	// has checked for a selected file and a logged-in user.
	store := newLazyStorage(func(ctx context.Context) (storage.Storage, error) {
		st, err := openStorage(ctx, log, cfg.Storage)
		if err != nil {
			log.Error().Err(err).Str("provider", cfg.Storage.Provider).Msg("object storage init failed")
		}
		return st, err
	})

	recorder := record.NewClient(cfg.APIURL, session, record.Options{
		RetryMax: cfg.Record.RetryMax,
		Timeout:  cfg.Record.Timeout,
		Logger:   log.With().Str("component", "record").Logger(),
	})

	ctrl := upload.New(session, store, recorder,
		upload.WithNotifier(upload.NewWriterNotifier(stdout)),
		upload.WithLogger(log.With().Str("component", "upload").Logger()),
	)

	if path != "" {
		file, err := selectLocal(path)
		if err != nil {
			log.Error().Err(err).Str("path", path).Msg("cannot select file")
			return 1
		}
		ctrl.SelectFile(file)
		log.Info().
			Str("file_name", file.Name()).
			Str("size", units.HumanSize(float64(file.Size()))).
			Str("content_type", file.ContentType()).
			Msg("file selected")
	}

	if !ctrl.CanUpload() {
		log.Debug().Msg("upload action disabled: no file selected")
	}

	res, err := ctrl.Upload(ctx)
	if err != nil {
		switch {
		case upload.IsPrecondition(err):
			fs.Usage()
		case upload.IsRecord(err) && res != nil && res.Orphaned():
			log.Warn().Str("key", res.Key).Str("url", res.ObjectURL).Msg("object stored without a metadata record")
		}
		return 1
	}

	fmt.Fprintf(stdout, "%s (%s) -> %s\n", res.Key, units.HumanSize(float64(res.Size)), res.ObjectURL)
	return 0
}

// openSession uses the configured token when there is one, otherwise logs in.
func openSession(ctx context.Context, cfg *config.ClientConfig, username, password string) (*identity.Session, error) {
	if cfg.Token != "" {
		session := identity.NewSession()
		if err := session.SetToken(cfg.Token); err != nil {
			return nil, fmt.Errorf("configured token: %w", err)
		}
		return session, nil
	}
	if username == "" {
		// Not logged in is a valid state; the upload is rejected later.
		return identity.NewSession(), nil
	}
	if password == "" {
		pw, err := promptPassword()
		if err != nil {
			return nil, err
		}
		password = pw
	}
	return identity.NewClient(cfg.APIURL).Login(ctx, username, password)
}

func openStorage(ctx context.Context, log zerolog.Logger, sc config.StorageConfig) (storage.Storage, error) {
	switch sc.Provider {
	case config.ProviderS3:
		return storage.NewS3Storage(ctx, storage.S3Params{
			Region:          sc.Region,
			Bucket:          sc.Bucket,
			AccessKeyID:     sc.AccessKey,
			SecretAccessKey: sc.SecretKey,
			Endpoint:        sc.Endpoint,
			PublicBase:      sc.PublicBase,
		})
	case config.ProviderMinIO:
		return storage.NewMinioStorage(ctx, log,
			sc.Endpoint, sc.AccessKey, sc.SecretKey,
			sc.Bucket, sc.Region, sc.PublicBase, sc.UseSSL,
		)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", sc.Provider)
	}
}

func selectLocal(path string) (*upload.LocalFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fs := osfs.New(filepath.Dir(abs))
	return upload.NewLocalFile(fs, filepath.Base(abs))
}

func promptPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("-password is required with -user when stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, "Password: ")
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}
