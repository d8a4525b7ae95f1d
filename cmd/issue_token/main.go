// Command issue_token mints a bearer token for an account address, for local development and scripts.
//
//	issue_token -account 0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed [-ttl 24h] [-json]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
	"github.com/SscSPs/charity_donation_ledger/internal/core/services"
	"github.com/SscSPs/charity_donation_ledger/internal/platform/config"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "issue_token:", err)
		}
		os.Exit(2)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("issue_token", flag.ContinueOnError)
	fs.SetOutput(stderr)
	account := fs.String("account", "", "account address the token identifies (required)")
	ttl := fs.Duration("ttl", 0, "token lifetime, defaults to JWT_EXPIRY_DURATION")
	asJSON := fs.Bool("json", false, "print token and expiry as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *account == "" {
		fs.Usage()
		return errors.New("-account is required")
	}

	addr, err := domain.ParseAddress(*account)
	if err != nil {
		return err
	}

	cfg := config.LoadTokenConfig()
	if *ttl > 0 {
		cfg.JWTExpiryDuration = *ttl
	}

	token, expiresAt, err := services.NewTokenService(cfg).GenerateAccessToken(context.Background(), addr)
	if err != nil {
		return err
	}

	if *asJSON {
		return json.NewEncoder(stdout).Encode(map[string]any{
			"account":   addr.String(),
			"token":     token,
			"expiresAt": expiresAt.UTC().Format(time.RFC3339),
		})
	}
	_, err = fmt.Fprintln(stdout, token)
	return err
}
