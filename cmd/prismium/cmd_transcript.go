package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"

	"github.com/luizguil99/prismium/src/history"
	"github.com/luizguil99/prismium/src/storage"
)

// ExportCmd writes a chat transcript to a JSON file
type ExportCmd struct {
	User   string `required:"" help:"Owner identity"`
	Chat   string `arg:"" help:"Chat id or urlId"`
	Output string `short:"o" default:"chat.json" help:"Output file"`
	DBPath string `help:"Database path (defaults to config)"`
}

// Run executes the export command
func (c *ExportCmd) Run(cli *CLI) error {
	db, err := openDatabase(cli, c.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := history.NewService(storage.NewChatStore(db, c.User), createCLILogger(cli.LogLevel))
	transcript, err := svc.ExportTranscript(context.Background(), c.Chat)
	if err != nil {
		return err
	}

	if err := writeTranscript(afero.NewOsFs(), c.Output, transcript); err != nil {
		return err
	}
	fmt.Printf("Exported %d messages to %s\n", len(transcript.Messages), c.Output)
	return nil
}

// ImportCmd creates a chat from a transcript JSON file
type ImportCmd struct {
	User        string `required:"" help:"Owner identity"`
	Input       string `arg:"" help:"Transcript file"`
	Description string `help:"Override the transcript description"`
	DBPath      string `help:"Database path (defaults to config)"`
}

// Run executes the import command
func (c *ImportCmd) Run(cli *CLI) error {
	db, err := openDatabase(cli, c.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	transcript, err := readTranscript(afero.NewOsFs(), c.Input)
	if err != nil {
		return err
	}
	description := transcript.Description
	if c.Description != "" {
		description = c.Description
	}

	svc := history.NewService(storage.NewChatStore(db, c.User), createCLILogger(cli.LogLevel))
	urlID, err := svc.ImportTranscript(context.Background(), description, transcript.Messages)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d messages as %s\n", len(transcript.Messages), history.ChatPath(urlID))
	return nil
}

func writeTranscript(fs afero.Fs, path string, transcript *history.Transcript) error {
	data, err := json.MarshalIndent(transcript, "", "  ")
	if err != nil {
		return err
	}
	return afero.WriteFile(fs, path, data, 0644)
}

func readTranscript(fs afero.Fs, path string) (*history.Transcript, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	var transcript history.Transcript
	if err := json.Unmarshal(data, &transcript); err != nil {
		return nil, fmt.Errorf("%w: %v", history.ErrInvalidFormat, err)
	}
	return &transcript, nil
}
