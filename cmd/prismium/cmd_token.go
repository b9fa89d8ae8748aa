package main

import (
	"fmt"
	"time"

	"github.com/luizguil99/prismium/src/config"
	"github.com/luizguil99/prismium/src/server"
)

// TokenCmd mints a development session token
type TokenCmd struct {
	User string        `required:"" help:"Owner identity to embed in the token"`
	TTL  time.Duration `help:"Token lifetime (defaults to config)"`
}

// Run executes the token command
func (c *TokenCmd) Run(cli *CLI) error {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	if cfg.Server.JWTSecret == "" {
		return fmt.Errorf("configuration error: server.jwt_secret is required to mint tokens")
	}

	ttl := c.TTL
	if ttl <= 0 {
		ttl = cfg.Server.TokenTTL
	}

	token, err := server.MintToken(cfg.Server.JWTSecret, c.User, ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
