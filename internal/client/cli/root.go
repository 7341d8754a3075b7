package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	mode := "offline"
	if a.monitor.IsOnline() {
		mode = "online"
	}
	pending, err := a.service.PendingCount(context.Background())
	if err != nil {
		return fmt.Sprintf("(%s)", mode)
	}
	return fmt.Sprintf("(%s, %d pending)", mode, pending)
}

func (a *App) Root(ctx context.Context) {

	fmt.Println("Lectern CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("lectern %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			fmt.Println("Available commands: status, note, highlight, bookmark, delete, read, cache, sync, online, offline, exit")
		case "status":
			a.status(ctx)
		case "note":
			a.addNote(ctx, args)
		case "highlight":
			a.addHighlight(ctx, args)
		case "bookmark":
			a.addBookmark(ctx, args)
		case "delete":
			a.deleteRecord(ctx, args)
		case "read":
			a.readChapter(ctx, args)
		case "cache":
			a.cacheChapter(ctx, args)
		case "sync":
			a.sync(ctx)
		case "online":
			a.monitor.SetOnline(true)
		case "offline":
			a.monitor.SetOnline(false)
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}
