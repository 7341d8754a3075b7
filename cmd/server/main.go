package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/avelichka/lectern/internal/server"
	"github.com/avelichka/lectern/internal/server/auth"
	"github.com/avelichka/lectern/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	// "mint <principal>" issues a device token and exits; tokens are
	// distributed out of band, there is no registration endpoint.
	if len(os.Args) > 2 && os.Args[1] == "mint" {
		token, err := auth.GenerateToken(os.Args[2], []byte(cfg.SecretKey), cfg.TokenValidityDuration)
		if err != nil {
			log.Printf("%v", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
	}
}
