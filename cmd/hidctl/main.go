// Command hidctl performs operator tasks against a hidapi deployment:
// registering API clients and minting user bearer tokens.
//
//	hidctl client --id ops-bot --name "Ops bot" --secret s3cret --trusted
//	hidctl token --user hid-01j... --ttl 24h
//
// Connection settings default to the HIDAPI_* environment variables.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	clientstore "github.com/dalemusser/hidapi/internal/app/store/clients"
	"github.com/dalemusser/hidapi/internal/app/system/auth"
	"github.com/dalemusser/hidapi/internal/app/system/timeouts"
	"github.com/spf13/pflag"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if err := run(context.Background(), os.Args[1:], os.Stdout, logger); err != nil {
		logger.Error("hidctl failed", zap.Error(err))
		os.Exit(1)
	}
}

const usage = "usage: hidctl <client|token> [flags]"

func run(ctx context.Context, args []string, out io.Writer, logger *zap.Logger) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	switch args[0] {
	case "client":
		return runClient(ctx, args[1:], out, logger)
	case "token":
		return runToken(args[1:], out)
	default:
		return fmt.Errorf("unknown command %q; %s", args[0], usage)
	}
}

func runClient(ctx context.Context, args []string, out io.Writer, logger *zap.Logger) error {
	fs := pflag.NewFlagSet("client", pflag.ContinueOnError)
	uri := fs.String("mongo_uri", envOr("HIDAPI_MONGO_URI", "mongodb://localhost:27017"), "MongoDB connection URI")
	dbName := fs.String("mongo_database", envOr("HIDAPI_MONGO_DATABASE", "hidapi"), "MongoDB database name")
	id := fs.String("id", "", "client id")
	name := fs.String("name", "", "display name")
	secret := fs.String("secret", "", "client secret")
	trusted := fs.Bool("trusted", false, "grant full API standing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" || *secret == "" {
		return errors.New("client: --id and --secret are required")
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()

	mc, err := mongo.Connect(ctx, options.Client().ApplyURI(*uri))
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	defer func() { _ = mc.Disconnect(context.Background()) }()

	c, err := clientstore.New(mc.Database(*dbName)).Create(ctx, *id, *name, *secret, *trusted)
	if err != nil {
		return err
	}
	logger.Info("client registered", zap.String("client_id", c.ClientID), zap.Bool("trusted", c.Trusted))
	_, err = fmt.Fprintln(out, c.ClientID)
	return err
}

func runToken(args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("token", pflag.ContinueOnError)
	secret := fs.String("jwt_secret", os.Getenv("HIDAPI_JWT_SECRET"), "HS256 signing key")
	issuer := fs.String("jwt_issuer", os.Getenv("HIDAPI_JWT_ISSUER"), "token issuer")
	user := fs.String("user", "", "profile user id")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *user == "" || *secret == "" {
		return errors.New("token: --user and --jwt_secret are required")
	}

	a := auth.New(auth.Config{Secret: *secret, Issuer: *issuer}, nil, nil, nil, nil, zap.NewNop())
	tok, err := a.IssueToken(*user, *ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, tok)
	return err
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
