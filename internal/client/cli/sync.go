package cli

import (
	"context"
	"fmt"
)

func (a *App) status(ctx context.Context) {
	if a.monitor.IsOnline() {
		fmt.Println("Connectivity: online")
	} else {
		fmt.Println("Connectivity: offline")
	}

	pending, err := a.service.PendingCount(ctx)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Printf("Pending changes: %d\n", pending)

	if r := a.trigger.LastReport(); r != nil {
		fmt.Printf("Last sync: %d processed, %d rejected\n", r.Processed, r.Failed)
	}
}

func (a *App) sync(ctx context.Context) {
	if !a.monitor.IsOnline() {
		fmt.Println("Offline, changes stay queued")
		return
	}
	a.trigger.SyncNow()
	fmt.Println("Sync requested")
}
