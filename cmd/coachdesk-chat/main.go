package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/claude/coachdesk/internal/chat"
	"github.com/claude/coachdesk/internal/chatstate"
	"github.com/claude/coachdesk/internal/client"
	"github.com/claude/coachdesk/internal/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Version is set at build time via -ldflags.
var Version = "dev"

const help = `Commands:
  <text>             send a message
  /reply N <text>    reply to message N
  /lang <code>       show the conversation in another language ("/lang" alone shows originals)
  /hide, /show       pause or resume polling and translation
  /quit              exit`

func main() {
	serverURL := flag.String("server", "", "CoachDesk server URL (e.g. https://coachdesk.tail1234.ts.net)")
	apiKey := flag.String("key", os.Getenv("COACHDESK_API_KEY"), "API key (default $COACHDESK_API_KEY)")
	customer := flag.String("customer", "", "customer ID of the conversation")
	sender := flag.String("as", models.SenderTrainer, "post as trainer or customer")
	lang := flag.String("lang", "", "display language (overrides the saved choice)")
	poll := flag.Duration("poll", chat.DefaultPollInterval, "poll interval")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("coachdesk-chat", Version)
		return
	}

	if *serverURL == "" || *customer == "" {
		fmt.Fprintf(os.Stderr, "Usage: coachdesk-chat -server <URL> -customer <ID> [-as trainer|customer] [-lang de]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	customerID, err := uuid.Parse(*customer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: -customer must be a UUID\n")
		os.Exit(1)
	}
	if *sender != models.SenderTrainer && *sender != models.SenderCustomer {
		fmt.Fprintf(os.Stderr, "Error: -as must be trainer or customer\n")
		os.Exit(1)
	}

	// Logs go to stderr so they don't interleave with the conversation.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	state, err := chatstate.Open(filepath.Join(homeDir, ".coachdesk-chat"))
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	if *lang == "" {
		if *lang, err = state.Language(customerID); err != nil {
			log.Warn("failed to read saved language", "error", err)
		}
	}

	api := client.New(*serverURL, *apiKey)
	updates := make(chan struct{}, 1)
	notify := func() {
		select {
		case updates <- struct{}{}:
		default:
		}
	}
	session := chat.New(api, api, log, chat.Config{
		CustomerID:   customerID,
		Sender:       *sender,
		Language:     *lang,
		PollInterval: *poll,
		OnUpdate:     notify,
	})
	defer session.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	v := &view{session: session, state: state, customerID: customerID, self: *sender, out: os.Stdout, log: log}
	fmt.Println(help)

	lines := readLines(os.Stdin)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return session.Run(ctx)
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-updates:
				v.render()
			}
		}
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					return errQuit
				}
				if err := v.command(ctx, line); err != nil {
					return err
				}
				notify()
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errQuit) {
		log.Error("chat failed", "error", err)
		os.Exit(1)
	}
}

var errQuit = errors.New("quit")

// readLines delivers stdin lines until EOF. The reader goroutine is left
// blocked on exit.
func readLines(r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			ch <- sc.Text()
		}
	}()
	return ch
}

type view struct {
	session    *chat.Session
	state      *chatstate.Store
	customerID uuid.UUID
	self       string
	out        io.Writer
	log        *slog.Logger
}

// render prints the conversation with top-level messages numbered for
// /reply, then advances the read cursor.
func (v *view) render() {
	msgs := v.session.Messages()
	readUntil, err := v.state.ReadUntil(v.customerID)
	if err != nil {
		v.log.Warn("failed to read cursor", "error", err)
	}

	lang := v.session.Language()
	if lang == "" {
		lang = "original"
	}
	fmt.Fprintf(v.out, "\n--- %d messages, %d unread, language: %s ---\n",
		len(msgs), chatstate.Unread(msgs, v.self, readUntil), lang)

	n := 0
	for _, e := range v.session.Entries() {
		marker := " "
		if e.Sender != v.self && e.CreatedAt.After(readUntil) {
			marker = "*"
		}
		stamp := e.CreatedAt.Local().Format("Jan 2 15:04")
		if e.ReplyTo == "" {
			n++
			fmt.Fprintf(v.out, "%s[%d] %s %s: %s\n", marker, n, stamp, e.Sender, e.Display)
		} else {
			fmt.Fprintf(v.out, "%s      %s %s: %s\n", marker, stamp, e.Sender, e.Display)
		}
	}

	if latest := chatstate.Latest(msgs); latest.After(readUntil) {
		if err := v.state.MarkRead(v.customerID, latest); err != nil {
			v.log.Warn("failed to save read cursor", "error", err)
		}
	}
}

func (v *view) command(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if !strings.HasPrefix(line, "/") {
		v.send(ctx, func(ctx context.Context) error {
			_, err := v.session.Send(ctx, line)
			return err
		})
		return nil
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "/quit":
		return errQuit
	case "/hide":
		v.session.SetVisible(false)
	case "/show":
		v.session.SetVisible(true)
	case "/lang":
		v.session.SetLanguage(arg)
		if err := v.state.SetLanguage(v.customerID, arg); err != nil {
			v.log.Warn("failed to save language", "error", err)
		}
	case "/reply":
		numStr, body, _ := strings.Cut(arg, " ")
		id, ok := v.messageID(numStr)
		if !ok {
			fmt.Fprintf(v.out, "no message %q\n", numStr)
			return nil
		}
		v.send(ctx, func(ctx context.Context) error {
			_, err := v.session.Reply(ctx, id, body)
			return err
		})
	default:
		fmt.Fprintln(v.out, help)
	}
	return nil
}

// send runs a post with a timeout. Rejected input is reported, not fatal.
func (v *view) send(ctx context.Context, post func(context.Context) error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	err := post(ctx)
	switch {
	case err == nil:
	case errors.Is(err, chat.ErrEmptyMessage):
		fmt.Fprintln(v.out, "nothing to send")
	default:
		fmt.Fprintf(v.out, "send failed: %v\n", err)
	}
}

// messageID maps a displayed message number to its ID.
func (v *view) messageID(num string) (uuid.UUID, bool) {
	n, err := strconv.Atoi(num)
	msgs := v.session.Messages()
	if err != nil || n < 1 || n > len(msgs) {
		return uuid.Nil, false
	}
	return msgs[n-1].ID, true
}
