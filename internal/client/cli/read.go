package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/avelichka/lectern/internal/common"
)

func variantFor(translation string) string {
	return "translation=" + translation
}

func (a *App) readChapter(ctx context.Context, args []string) {
	if len(args) < 1 || len(args) > 2 {
		fmt.Println("Usage: read <chapter-id> [translation]")
		return
	}

	translation := "KJV"
	if len(args) == 2 {
		translation = args[1]
	}

	payload, err := a.service.ReadContent(ctx, "chapter", args[0], variantFor(translation))
	if errors.Is(err, common.ErrNotFound) {
		fmt.Printf("Chapter %s (%s) is not cached\n", args[0], translation)
		return
	}
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println(string(payload))
}

func (a *App) cacheChapter(ctx context.Context, args []string) {
	if len(args) < 3 {
		fmt.Println("Usage: cache <chapter-id> <translation> <text>")
		return
	}

	text := strings.Join(args[2:], " ")
	if err := a.service.CacheContent(ctx, "chapter", args[0], variantFor(args[1]), []byte(text)); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Cached")
}
