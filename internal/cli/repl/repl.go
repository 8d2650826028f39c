package repl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"campuscomplaint/internal/cli/command"
	pkgerrors "campuscomplaint/pkg/errors"
	"campuscomplaint/pkg/utils/logger"

	"github.com/chzyer/readline"
	"github.com/google/shlex"
	"go.uber.org/zap"
)

const prompt = "campus> "

// Prompter asks the user for a missing field value.
type Prompter interface {
	Prompt(label string, secret bool) (string, error)
}

// Session holds REPL state.
type Session struct {
	env        *command.Env
	commands   map[string]command.Command
	prettyJSON bool
	out        io.Writer
}

func New(env *command.Env, commands map[string]command.Command, prettyJSON bool, out io.Writer) *Session {
	if out == nil {
		out = os.Stdout
	}
	return &Session{
		env:        env,
		commands:   commands,
		prettyJSON: prettyJSON,
		out:        out,
	}
}

type readlinePrompter struct {
	rl *readline.Instance
}

func (p readlinePrompter) Prompt(label string, secret bool) (string, error) {
	if secret {
		value, err := p.rl.ReadPassword(label + ": ")
		return strings.TrimSpace(string(value)), err
	}
	p.rl.SetPrompt(label + ": ")
	defer p.rl.SetPrompt(prompt)
	line, err := p.rl.Readline()
	return strings.TrimSpace(line), err
}

// Run reads commands until exit or end of input.
func (s *Session) Run(ctx context.Context, historyFile string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     historyFile,
		AutoComplete:    s.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("init readline failed: %w", err)
	}
	defer rl.Close()
	s.out = rl.Stdout()
	prompter := readlinePrompter{rl: rl}

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input failed: %w", err)
		}
		quit, err := s.Execute(ctx, line, prompter)
		if err != nil {
			s.printError(ctx, err)
		}
		if quit {
			s.printLine("bye")
			return nil
		}
	}
}

func (s *Session) completer() *readline.PrefixCompleter {
	services := map[string][]readline.PrefixCompleterInterface{}
	var order []string
	for _, cmd := range command.Sorted(s.commands) {
		if _, ok := services[cmd.Service]; !ok {
			order = append(order, cmd.Service)
		}
		services[cmd.Service] = append(services[cmd.Service], readline.PcItem(cmd.Action))
	}
	items := []readline.PrefixCompleterInterface{
		readline.PcItem("help"),
		readline.PcItem("exit"),
		readline.PcItem("set", readline.PcItem("base"), readline.PcItem("token")),
		readline.PcItem("show", readline.PcItem("base"), readline.PcItem("token")),
	}
	for _, service := range order {
		items = append(items, readline.PcItem(service, services[service]...))
	}
	return readline.NewPrefixCompleter(items...)
}

// Execute runs one input line. quit is true when the user asked to leave.
func (s *Session) Execute(ctx context.Context, line string, prompter Prompter) (quit bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	if handled, quit := s.handleSystemCommand(ctx, line); handled {
		return quit, nil
	}
	return false, s.handleCommand(ctx, line, prompter)
}

func (s *Session) handleSystemCommand(ctx context.Context, line string) (handled, quit bool) {
	switch line {
	case "exit", "quit":
		return true, true
	case "help":
		s.printHelp()
		return true, false
	}
	if strings.HasPrefix(line, "set ") {
		s.handleSet(ctx, strings.TrimSpace(strings.TrimPrefix(line, "set ")))
		return true, false
	}
	if strings.HasPrefix(line, "show ") {
		s.handleShow(ctx, strings.TrimSpace(strings.TrimPrefix(line, "show ")))
		return true, false
	}
	return false, false
}

func (s *Session) handleSet(ctx context.Context, args string) {
	parts := strings.Fields(args)
	if len(parts) == 0 {
		s.printLine("usage: set base|token")
		return
	}
	switch parts[0] {
	case "base":
		if len(parts) < 2 {
			s.printLine("usage: set base http://127.0.0.1:8080")
			return
		}
		s.env.Client.SetBaseURL(parts[1])
		s.printLine("base set to %s", s.env.Client.BaseURL())
	case "token":
		if len(parts) < 3 {
			s.printLine("usage: set token <access_token> <refresh_token>")
			return
		}
		if err := s.env.Session.Establish(ctx, parts[1], parts[2]); err != nil {
			s.printError(ctx, err)
			return
		}
		s.printLine("token updated")
	default:
		s.printLine("unknown set command")
	}
}

func (s *Session) handleShow(ctx context.Context, args string) {
	switch args {
	case "base":
		s.printLine("base: %s", s.env.Client.BaseURL())
	case "token":
		cred, ok := s.env.Session.Current(ctx)
		if !ok {
			s.printLine("token: <empty>")
			return
		}
		s.printLine("token: %s", mask(cred.AccessToken))
		if cred.HasExpiry() {
			s.printLine("expires: %s", cred.ExpiresAt.Format(time.RFC3339))
		}
	default:
		s.printLine("usage: show base|token")
	}
}

func mask(token string) string {
	if len(token) > 12 {
		return token[:6] + "..." + token[len(token)-4:]
	}
	return token
}

func (s *Session) handleCommand(ctx context.Context, line string, prompter Prompter) error {
	tokens, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("parse command failed: %w", err)
	}
	if len(tokens) < 2 {
		return fmt.Errorf("invalid command, use: <service> <action> key=value ...")
	}
	key := tokens[0] + " " + tokens[1]
	cmd, ok := s.commands[key]
	if !ok {
		return fmt.Errorf("unknown command: %s", key)
	}
	params := command.Params{}
	for _, token := range tokens[2:] {
		parts := strings.SplitN(token, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid param: %s", token)
		}
		params.Set(parts[0], parts[1])
	}
	params.Canonicalize(cmd.Fields)

	if err := s.promptMissing(cmd, params, prompter); err != nil {
		return err
	}
	if err := params.Check(cmd.Fields); err != nil {
		return err
	}

	started := time.Now()
	result, err := cmd.Run(ctx, s.env, params)
	logger.Debug(ctx, "command finished", zap.String("command", key), zap.Duration("duration", time.Since(started)), zap.Error(err))
	if err != nil {
		return err
	}
	s.render(result)
	return nil
}

func (s *Session) promptMissing(cmd command.Command, params command.Params, prompter Prompter) error {
	for _, field := range cmd.Fields {
		if !field.Required || params.Get(field.Name) != "" {
			continue
		}
		if prompter == nil {
			return fmt.Errorf("missing required param: %s", field.Name)
		}
		value, err := prompter.Prompt(field.Prompt, field.Secret)
		if err != nil {
			return fmt.Errorf("read input failed: %w", err)
		}
		params.Set(field.Name, value)
	}
	return nil
}

func (s *Session) render(result any) {
	var (
		data []byte
		err  error
	)
	if s.prettyJSON {
		data, err = json.MarshalIndent(result, "", "  ")
	} else {
		data, err = json.Marshal(result)
	}
	if err != nil {
		s.printLine("%v", result)
		return
	}
	s.printLine("%s", string(data))
}

func (s *Session) printError(ctx context.Context, err error) {
	logger.Debug(ctx, "command failed", zap.Error(err))
	code := pkgerrors.GetCode(err)
	if code == pkgerrors.InternalServerError {
		s.printLine("error: %v", err)
		return
	}
	s.printLine("error [%d]: %s", int(code), pkgerrors.UserMessage(err))
}

func (s *Session) printHelp() {
	s.printLine("usage: <service> <action> key=value ...")
	s.printLine("system: help | exit | set base|token | show base|token")
	for _, cmd := range command.Sorted(s.commands) {
		s.printLine("  %-28s %s", cmd.Key(), cmd.Summary)
	}
	s.printLine("examples:")
	s.printLine("  auth login mobile=9876543210 password=secret")
	s.printLine("  complaint submit description=\"Broken streetlight\" photo=./lamp.jpg")
	s.printLine("  complaint all status=PENDING from=2026-01-01")
}

func (s *Session) printLine(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.out, format+"\n", args...)
}
