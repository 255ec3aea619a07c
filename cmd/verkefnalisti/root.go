package main

import (
	"context"
	"io"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ManiEids/vef2hop2/auth"
	"github.com/ManiEids/vef2hop2/client"
	"github.com/ManiEids/vef2hop2/config"
	"github.com/ManiEids/vef2hop2/localstore"
	"github.com/ManiEids/vef2hop2/service"
)

// localSecret signs tokens of the local fallback when JWT_SECRET is unset.
const localSecret = "verkefnalisti-local"

// clientError shows the user facing message of a client error.
type clientError struct {
	err error
}

func (e clientError) Error() string { return client.Message(e.err) }
func (e clientError) Unwrap() error { return e.err }

type app struct {
	stdout io.Writer
	stderr io.Writer
	open   func(ctx context.Context) (*client.Client, error)
	client *client.Client
}

// NewCommand builds the verkefnalisti command tree for cfg.
func NewCommand(stdout, stderr io.Writer, cfg config.Config) *cobra.Command {
	return newRootCommand(stdout, stderr, func(ctx context.Context) (*client.Client, error) {
		return newClient(ctx, stderr, cfg)
	})
}

func newRootCommand(stdout, stderr io.Writer, open func(context.Context) (*client.Client, error)) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr, open: open}
	cmd := &cobra.Command{
		Use:           "verkefnalisti",
		Short:         "Manage tasks, categories and tags",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.client != nil {
				return nil
			}
			c, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			a.client = c
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")

	cmd.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newRegisterCmd(a),
		newMeCmd(a),
		newTasksCmd(a),
		newCategoriesCmd(a),
		newTagsCmd(a),
	)
	return cmd
}

func (a *app) fail(err error) error {
	if err == nil {
		return nil
	}
	return clientError{err: err}
}

// newClient opens the local store, seeds the fallback service and points
// the client at API_URL.
func newClient(ctx context.Context, stderr io.Writer, cfg config.Config) (*client.Client, error) {
	logger := log.New()
	logger.SetOutput(stderr)
	logger.SetLevel(log.WarnLevel)
	if cfg.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	var rc *redis.Client
	if cfg.RedisConnectionString != "" {
		opts, err := config.RedisOptions(cfg.RedisConnectionString)
		if err != nil {
			return nil, err
		}
		rc = redis.NewClient(opts)
	}
	kv, err := localstore.Open(cfg.LocalStore, rc)
	if err != nil {
		return nil, err
	}

	secret := cfg.JWTSecret
	if secret == "" {
		secret = localSecret
	}
	tokens := auth.NewTokens([]byte(secret), cfg.JWTTTL, "", "")
	mock := service.New(localstore.NewStore(kv), tokens, service.Options{
		SoftDelete:   cfg.SoftDelete,
		PasswordCost: cfg.BcryptCost,
	}, logger)
	if cfg.SeedData {
		if err := mock.Seed(ctx); err != nil {
			return nil, err
		}
	}
	return client.New(cfg.APIURL, kv, mock, logger), nil
}
