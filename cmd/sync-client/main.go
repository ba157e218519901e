package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"

	"streamhub/internal/logging"
	synchub "streamhub/internal/sync"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:7070", "TCP sync server address")
	profile := flag.String("profile", "", "only print events for this profile id")
	raw := flag.Bool("raw", false, "print lines as received")
	flag.Parse()

	logging.Init(logging.Config{Level: "info", Format: "console"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for ctx.Err() == nil {
		if err := run(ctx, *addr, *profile, *raw); err != nil && ctx.Err() == nil {
			logging.Warn().Err(err).Str("addr", *addr).Msg("sync stream disconnected")
		}
		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
		}
	}
}

func run(ctx context.Context, addr, profile string, raw bool) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	logging.Info().Str("addr", addr).Msg("connected")

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		line := sc.Bytes()
		if raw {
			fmt.Println(string(line))
			continue
		}

		var ev synchub.Event
		if err := json.Unmarshal(line, &ev); err != nil {
			fmt.Println(string(line))
			continue
		}
		if profile != "" && ev.ProfileID != "" && ev.ProfileID != profile {
			continue
		}
		fmt.Println(format(ev))
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return fmt.Errorf("connection closed")
}

func format(ev synchub.Event) string {
	at := ev.At.Local().Format(time.TimeOnly)
	switch ev.Type {
	case synchub.TypeWatchUpdate:
		state := "watching"
		if ev.Completed {
			state = "completed"
		}
		return fmt.Sprintf("%s %-9s profile=%s title=%s position=%ds", at, state, ev.ProfileID, ev.TitleID, ev.PositionSec)
	case synchub.TypeLikeUpdate:
		verb := "liked"
		if ev.Liked != nil && !*ev.Liked {
			verb = "unliked"
		}
		return fmt.Sprintf("%s %-9s profile=%s title=%s", at, verb, ev.ProfileID, ev.TitleID)
	default:
		return fmt.Sprintf("%s %s", at, ev.Type)
	}
}
