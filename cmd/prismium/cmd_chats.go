package main

import (
	"context"
	"fmt"

	"github.com/luizguil99/prismium/src/storage"
)

// ChatsCmd lists stored chats for an owner
type ChatsCmd struct {
	User   string `required:"" help:"Owner identity to list chats for"`
	DBPath string `help:"Database path (defaults to config)"`
}

// Run executes the chats command
func (c *ChatsCmd) Run(cli *CLI) error {
	db, err := openDatabase(cli, c.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	store := storage.NewChatStore(db, c.User)
	chats, err := store.GetAll(context.Background())
	if err != nil {
		return err
	}

	if len(chats) == 0 {
		fmt.Println("no chats")
		return nil
	}
	for _, chat := range chats {
		fmt.Printf("%s  %-24s  %3d messages  %s\n", chat.ID, chat.URLID, len(chat.Messages), chat.Description)
	}
	return nil
}
