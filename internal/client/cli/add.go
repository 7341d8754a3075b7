package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/avelichka/lectern/internal/syncmsg"
)

func (a *App) write(ctx context.Context, class string, op syncmsg.Operation, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	seq, err := a.service.Write(ctx, class, op, data)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Printf("Queued (seq %d)\n", seq)
}

func (a *App) addNote(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: note <reference> <text>")
		return
	}
	a.write(ctx, "note", syncmsg.OpInsert, map[string]string{
		"reference": args[0],
		"body":      strings.Join(args[1:], " "),
	})
}

func (a *App) addHighlight(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Println("Usage: highlight <reference> <color>")
		return
	}
	a.write(ctx, "highlight", syncmsg.OpInsert, map[string]string{
		"reference": args[0],
		"color":     args[1],
	})
}

func (a *App) addBookmark(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: bookmark <reference>")
		return
	}
	a.write(ctx, "bookmark", syncmsg.OpInsert, map[string]string{
		"reference": args[0],
	})
}

func (a *App) deleteRecord(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Println("Usage: delete <class> <id>")
		return
	}
	a.write(ctx, args[0], syncmsg.OpDelete, map[string]string{
		"id": args[1],
	})
}
