package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"language-learner/internal/config"
	"language-learner/internal/conversation"
	"language-learner/internal/domain"
	"language-learner/internal/languageapi"
	"language-learner/internal/practice"
	"language-learner/internal/settings"
)

const usage = `Commands:
  /lang <us|sp|kr|ch>   switch the language you are practicing
  /prompt <1-9>         pick a prompt (no number lists them)
  /random               pick a random prompt
  /ask <text>           one-off question without history
  /quit                 exit
Anything else is sent as your answer.`

func main() {
	debug := flag.Bool("debug", false, "log to stderr")
	flag.Parse()

	logger := zap.NewNop()
	if *debug {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	defer func() { _ = logger.Sync() }()

	if err := run(logger, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(logger *zap.Logger, in io.Reader, out io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg := config.LoadPractice(os.LookupEnv)

	repo, err := settings.Open(cfg.SettingsDB)
	if err != nil {
		return err
	}
	defer repo.Close()

	st, err := repo.Get(ctx)
	if err != nil {
		return err
	}

	caller, err := languageapi.NewHTTPCaller(cfg.BaseURL,
		languageapi.WithCallerID(st.DeviceID),
		languageapi.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
	)
	if err != nil {
		return err
	}
	api, err := languageapi.NewService(caller, logger)
	if err != nil {
		return err
	}

	session, err := practice.NewSession(ctx, repo, api, logger)
	if err != nil {
		return err
	}

	for _, m := range session.Conversation().Messages() {
		printMessage(out, m)
	}
	unsubscribe := session.Conversation().Subscribe(func(e conversation.Event) {
		switch e.Kind {
		case conversation.EventAppended:
			if e.Message.SenderType == domain.SenderBot {
				printMessage(out, e.Message)
			}
		case conversation.EventReplaced:
			printMessage(out, e.Message)
		}
	})
	defer unsubscribe()

	fmt.Fprintln(out, usage)
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "%s > ", session.Language().EnterMessage())
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" {
			return nil
		}
		if err := handleLine(ctx, session, api, out, line); err != nil {
			fmt.Fprintln(out, err)
		}
	}
}

func handleLine(ctx context.Context, s *practice.Session, api *languageapi.Service, out io.Writer, line string) error {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/lang":
		l, err := domain.ParseLanguage(arg)
		if err != nil {
			return err
		}
		return s.ChangeLanguage(ctx, l)
	case "/prompt":
		prompts := domain.Prompts()
		if arg == "" {
			for i, p := range prompts {
				fmt.Fprintf(out, "%d. %s\n", i+1, p.Translated(s.Language()))
			}
			return nil
		}
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > len(prompts) {
			return fmt.Errorf("prompt must be a number from 1 to %d", len(prompts))
		}
		return s.ChangePrompt(ctx, prompts[n-1])
	case "/random":
		return s.ChangePrompt(ctx, domain.RandomPrompt())
	case "/ask":
		if arg == "" {
			return errors.New("usage: /ask <text>")
		}
		reply, err := api.Ask(ctx, "", arg)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "bot: %s\n", reply)
		return nil
	case "/help":
		fmt.Fprintln(out, usage)
		return nil
	}

	if strings.HasPrefix(cmd, "/") {
		return fmt.Errorf("unknown command %s", cmd)
	}
	// Backend failures are already shown inline.
	if _, err := s.Submit(ctx, line); errors.Is(err, practice.ErrBlankInput) || errors.Is(err, practice.ErrBusy) {
		return err
	}
	return nil
}

func printMessage(out io.Writer, m domain.Message) {
	fmt.Fprintf(out, "%s: %s\n", m.SenderType, m.Text)
}
