// notify-cli connects to a running ServeSpot server, registers for a
// recipient's notifications, and prints the reconciled live feed to the
// terminal. Useful for watching delivery end to end during development.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"

	"servespot/pkg/notify"
)

func main() {
	apiURL := flag.String("api", "http://localhost:8080", "base URL of the HTTP API")
	wsURL := flag.String("ws", "ws://localhost:8080/ws", "websocket endpoint")
	token := flag.String("token", "", "access token (from /api/auth/login)")
	role := flag.String("role", "volunteer", "recipient role: volunteer, organization or admin")
	recipientID := flag.String("id", "", "recipient id (your user id)")
	flag.Parse()

	if *token == "" {
		log.Fatal("missing -token; log in first and pass the access token")
	}
	if *recipientID == "" {
		log.Fatal("missing -id; pass the recipient's user id")
	}

	channel := notify.Init(*wsURL, *token)
	defer channel.Close()

	feed := notify.NewFeed(*role, *recipientID)
	feed.OnNew(func(n notify.Notification) {
		color.Yellow("🔔 %s: %s", n.Title, n.Message)
	})
	off := feed.Attach(channel)
	defer off()

	// re-register on every connect, reconnects included
	channel.OnConnect(func() {
		if err := channel.Register(*role, *recipientID); err != nil {
			log.Println("registration failed:", err)
		}
	})

	fmt.Println("🔌 Connecting...")
	if err := channel.Connect(); err != nil {
		log.Fatalf("connection failed: %v", err)
	}
	fmt.Println("✅ Connected! Waiting for notifications (Ctrl-C to exit)")

	// fetch stored history and merge it under the live feed
	client := notify.NewClient(*apiURL, *token)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := feed.LoadHistory(ctx, client); err != nil {
		color.Red("history fetch failed: %v (showing live events only)", err)
	}

	for _, n := range feed.Items() {
		printNotification(n)
	}
	color.HiBlack("%d unread", feed.UnreadCount())

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	<-interrupt
	log.Println("Closing connection...")
}

func printNotification(n notify.Notification) {
	marker := " "
	if !n.Read {
		marker = "*"
	}
	color.Cyan("%s [%s] %s: %s", marker, n.CreatedAt.Format(time.RFC822), n.Title, n.Message)
}
