package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// CLI represents the main CLI structure
type CLI struct {
	Config   string `env:"PRISMIUM_CONFIG" help:"Config file path"`
	LogLevel string `default:"warn" help:"Log level"`

	Serve   ServeCmd   `cmd:"" help:"Run the history API server"`
	Migrate MigrateCmd `cmd:"" help:"Database migrations"`
	Chats   ChatsCmd   `cmd:"" help:"List stored chats"`
	Export  ExportCmd  `cmd:"" help:"Export a chat transcript to a file"`
	Import  ImportCmd  `cmd:"" help:"Import a chat transcript from a file"`
	Token   TokenCmd   `cmd:"" help:"Mint a development session token"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("prismium"),
		kong.Description("Conversation history service for the Prismium chat app"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	err := ctx.Run(&cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}
