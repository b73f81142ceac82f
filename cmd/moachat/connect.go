package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/readmoa/moachat"
	"github.com/readmoa/moachat/core"
	"github.com/readmoa/moachat/internal/appconfig"
	"github.com/readmoa/moachat/internal/auth"
	"github.com/readmoa/moachat/schema"
	"pkt.systems/pslog"
)

func newConnectCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "connect [roomID...]",
		Short: "Open rooms and stream their messages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := pslog.Ctx(ctx)
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}

			sink := &consoleSink{out: cmd.OutOrStdout()}
			client, err := moachat.NewClient(moachat.ClientConfig{
				Service:  cfg.ClientConfig(),
				HTTPBase: cfg.Server.HTTPBase,
				WSBase:   cfg.Server.WSBase,
				Tokens:   tokenSource(cfg.Auth),
				Sinks:    []core.EventSink{sink},
				Logger:   logger,
			})
			if err != nil {
				return err
			}
			defer func() { _ = client.Close(context.Background()) }()
			svc := client.Service()

			var active schema.RoomID
			for _, arg := range args {
				id, err := parseRoomID(arg)
				if err != nil {
					return err
				}
				if _, err := svc.OpenRoom(ctx, schema.OpenRoomRequest{RoomID: id}); err != nil {
					logger.Warn("room open failed", "room", id.String(), "err", err)
					continue
				}
				active = id
			}

			return repl(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), svc, active)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file path")
	return cmd
}

func tokenSource(cfg appconfig.AuthConfig) core.TokenSource {
	if cfg.TokenFile != "" {
		return auth.NewFileToken(cfg.TokenFile)
	}
	if cfg.Token != "" {
		return auth.StaticToken(cfg.Token)
	}
	return nil
}

func parseRoomID(arg string) (schema.RoomID, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid room id %q", arg)
	}
	return schema.RoomID(id), nil
}

// repl routes stdin lines: /-prefixed room controls, everything else is sent
// as chat text (or as an AI command when the first token is a known alias)
// to the active room.
func repl(ctx context.Context, in io.Reader, out io.Writer, svc core.Service, active schema.RoomID) error {
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if line == "/quit" {
				return nil
			}
			if strings.HasPrefix(line, "/") {
				next, err := roomControl(ctx, out, svc, line, active)
				if err != nil {
					fmt.Fprintf(out, "!! %v\n", err)
					continue
				}
				active = next
				continue
			}
			if !active.Valid() {
				fmt.Fprintln(out, "!! no active room")
				continue
			}
			if _, err := svc.SendText(ctx, schema.SendTextRequest{RoomID: active, Text: line}); err != nil {
				fmt.Fprintf(out, "!! %v\n", err)
			}
		}
	}
}

func roomControl(ctx context.Context, out io.Writer, svc core.Service, line string, active schema.RoomID) (schema.RoomID, error) {
	fields := strings.Fields(line)
	verb := fields[0]

	if verb == "/rooms" {
		resp, err := svc.ListRooms(ctx, schema.ListRoomsRequest{})
		if err != nil {
			return active, err
		}
		for _, room := range resp.Rooms {
			marker := " "
			if room.RoomID == active {
				marker = "*"
			}
			state := string(room.Status)
			if room.Minimized {
				state += ", minimized"
			}
			fmt.Fprintf(out, "%s room %s (%s)\n", marker, room.RoomID, state)
		}
		return active, nil
	}

	if len(fields) < 2 {
		return active, fmt.Errorf("usage: %s <roomID>", verb)
	}
	id, err := parseRoomID(fields[1])
	if err != nil {
		return active, err
	}

	switch verb {
	case "/open", "/switch":
		if _, err := svc.OpenRoom(ctx, schema.OpenRoomRequest{RoomID: id}); err != nil {
			return active, err
		}
		return id, nil
	case "/close":
		if _, err := svc.CloseRoom(ctx, schema.CloseRoomRequest{RoomID: id}); err != nil {
			return active, err
		}
		if id == active {
			active = 0
		}
		return active, nil
	case "/min":
		_, err := svc.MinimizeRoom(ctx, schema.MinimizeRoomRequest{RoomID: id})
		return active, err
	case "/restore":
		if _, err := svc.RestoreRoom(ctx, schema.RestoreRoomRequest{RoomID: id}); err != nil {
			return active, err
		}
		return id, nil
	default:
		return active, fmt.Errorf("unknown command %s", verb)
	}
}

// consoleSink renders room events as terminal lines. Deleted messages arrive
// as update-typed frames and are rendered as tombstones rather than erasing
// previous output.
type consoleSink struct {
	mu  sync.Mutex
	out io.Writer
}

func (s *consoleSink) OnMessage(event schema.MessageEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := event.Message
	if msg.Type == schema.MessageUpdate && msg.DeletedAt != nil {
		fmt.Fprintf(s.out, "[%s] message %s deleted\n", msg.RoomID, msg.ID)
		return
	}
	body := msg.Body.Text
	switch msg.Type {
	case schema.MessageImage:
		body = "(image) " + msg.Body.ImageURL
	case schema.MessageFile:
		body = fmt.Sprintf("(file %s) %s", msg.Body.FileName, msg.Body.FileURL)
	}
	fmt.Fprintf(s.out, "[%s] %s: %s\n", msg.RoomID, msg.SenderNickname, body)
}

func (s *consoleSink) OnStatus(event schema.StatusEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.Final {
		fmt.Fprintf(s.out, "-- room %s: %s (gave up after %d attempts)\n", event.RoomID, event.Status, event.Attempt)
		return
	}
	fmt.Fprintf(s.out, "-- room %s: %s\n", event.RoomID, event.Status)
}

func (s *consoleSink) OnNotice(event schema.NoticeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "!! room %s: %s\n", event.RoomID, event.Text)
}
