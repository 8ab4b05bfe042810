// Command onboard is a terminal client for the account API. It keeps the
// credential and the onboarding flags in a YAML state file and decides, the
// same way the web client does, whether the profile-completion prompt shows.
//
// A session runs from one login to the next: the session tier is a second
// YAML file next to the state file, and login starts it afresh. That is how
// a prompt shown by login can still be dismissed by a later invocation.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrymomot/teamauth/pkg/config"
	"github.com/dmitrymomot/teamauth/pkg/logger"
	"github.com/dmitrymomot/teamauth/pkg/onboarding"
)

const keyToken = "auth.token"

type cliConfig struct {
	APIURL    string        `env:"ONBOARD_API_URL" envDefault:"http://localhost:8080"`
	StateFile string        `env:"ONBOARD_STATE_FILE"`
	Timeout   time.Duration `env:"ONBOARD_TIMEOUT" envDefault:"10s"`
	Debug     bool          `env:"ONBOARD_DEBUG" envDefault:"false"`
}

const usage = `usage: onboard <command> [flags]

commands:
  login -token <credential>   store the credential and evaluate the prompt
  check                       evaluate the prompt for the stored credential
  dismiss                     dismiss the prompt shown since the last login
  edit-profile [-name N] [-avatar URL] [-complete]
                              open the profile editor (dismisses the prompt)
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := loadConfig()
	if err == nil {
		err = run(ctx, cfg, os.Args[1:], os.Stdout)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "onboard: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (cliConfig, error) {
	var cfg cliConfig
	if err := config.Load(&cfg); err != nil {
		return cfg, err
	}
	if cfg.StateFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return cfg, err
		}
		cfg.StateFile = filepath.Join(dir, "teamauth", "onboard.yaml")
	}
	return cfg, nil
}

func run(ctx context.Context, cfg cliConfig, args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return errors.New("missing command")
	}

	log := logger.Discard()
	if cfg.Debug {
		log = logger.New(logger.WithOutput(os.Stderr), logger.WithFormat(logger.FormatText))
	}

	s := &session{
		cfg:     cfg,
		out:     out,
		durable: onboarding.NewFileStore(cfg.StateFile),
		tab:     onboarding.NewFileStore(sessionFile(cfg.StateFile)),
	}
	s.machine = onboarding.New(s.durable, s.tab, onboarding.WithLogger(log))

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return s.login(ctx, rest)
	case "check":
		return s.check(ctx)
	case "dismiss":
		return s.dismiss(ctx)
	case "edit-profile":
		return s.editProfile(ctx, rest)
	case "reset":
		return s.reset(rest)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

type session struct {
	cfg     cliConfig
	out     io.Writer
	durable *onboarding.FileStore
	tab     *onboarding.FileStore
	machine *onboarding.Machine
}

// sessionFile derives the session tier path from the state file,
// e.g. onboard.yaml -> onboard.session.yaml.
func sessionFile(stateFile string) string {
	return strings.TrimSuffix(stateFile, filepath.Ext(stateFile)) + ".session.yaml"
}

func (s *session) client() (*apiClient, error) {
	token, ok, err := s.durable.Get(keyToken)
	if err != nil {
		return nil, err
	}
	if !ok || token == "" {
		return nil, errors.New("not logged in, run: onboard login -token <credential>")
	}
	return newAPIClient(s.cfg.APIURL, token, s.cfg.Timeout), nil
}

func (s *session) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(s.out)
	token := fs.String("token", "", "credential from the sign-in redirect")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *token == "" {
		return errors.New("login: -token is required")
	}

	p, err := newAPIClient(s.cfg.APIURL, *token, s.cfg.Timeout).Profile(ctx)
	if err != nil {
		return err
	}
	if err := s.durable.Set(keyToken, *token); err != nil {
		return err
	}
	if err := os.Remove(s.tab.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("start session: %w", err)
	}
	fmt.Fprintf(s.out, "signed in as %s <%s>\n", p.FullName, p.Email)
	return s.evaluate(ctx, p)
}

func (s *session) check(ctx context.Context) error {
	c, err := s.client()
	if err != nil {
		return err
	}
	p, err := c.Profile(ctx)
	if err != nil {
		return err
	}
	return s.evaluate(ctx, p)
}

// evaluate decides the prompt, prints it, then records the visit. The
// snapshot is written after the decision, never before.
func (s *session) evaluate(ctx context.Context, p onboarding.Profile) error {
	state, err := s.machine.Evaluate(ctx, p)
	if err != nil {
		fmt.Fprintf(s.out, "onboarding state unreadable: %v\n", err)
	}
	if state == onboarding.Shown {
		fmt.Fprintln(s.out, "Welcome! Complete your profile: onboard edit-profile -name <name> -complete")
		fmt.Fprintln(s.out, "Not now? onboard dismiss")
	} else {
		fmt.Fprintf(s.out, "prompt %s (%s)\n", state, s.machine.Reason())
	}
	return s.machine.Remember(p)
}

// resume reopens the prompt that login displayed, if it is still open.
// It reports false when there is nothing to act on.
func (s *session) resume(ctx context.Context, p onboarding.Profile) (bool, error) {
	err := s.machine.Resume(ctx, p)
	if errors.Is(err, onboarding.ErrNotShown) {
		return false, nil
	}
	return err == nil, err
}

func (s *session) dismiss(ctx context.Context) error {
	c, err := s.client()
	if err != nil {
		return err
	}
	p, err := c.Profile(ctx)
	if err != nil {
		return err
	}

	open, err := s.resume(ctx, p)
	if err != nil {
		return err
	}
	if !open {
		fmt.Fprintln(s.out, "nothing to dismiss")
		return nil
	}
	if err := s.machine.Dismiss(ctx); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "prompt dismissed")
	return nil
}

func (s *session) editProfile(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("edit-profile", flag.ContinueOnError)
	fs.SetOutput(s.out)
	name := fs.String("name", "", "new display name")
	avatar := fs.String("avatar", "", "new avatar URL")
	complete := fs.Bool("complete", false, "mark the profile as complete")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, err := s.client()
	if err != nil {
		return err
	}
	p, err := c.Profile(ctx)
	if err != nil {
		return err
	}
	// Opening the editor counts as dismissal when the prompt is up.
	open, err := s.resume(ctx, p)
	if err != nil {
		fmt.Fprintf(s.out, "onboarding state unreadable: %v\n", err)
	}
	if open {
		if err := s.machine.EditProfile(ctx); err != nil {
			return err
		}
	}

	var upd profileUpdate
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			upd.FullName = name
		case "avatar":
			upd.Avatar = avatar
		}
	})
	if upd.FullName != nil || upd.Avatar != nil {
		if p, err = c.UpdateProfile(ctx, upd); err != nil {
			return err
		}
	}
	if *complete {
		if p, err = c.CompleteProfile(ctx); err != nil {
			return err
		}
	}
	if err := s.machine.Remember(p); err != nil {
		return err
	}

	out, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, string(out))
	return nil
}

// reset is the operator escape hatch for a client stuck in a prompt loop.
// It is deliberately left out of the usage text.
func (s *session) reset(args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	fs.SetOutput(s.out)
	user := fs.String("user", "", "user id (defaults to the stored snapshot)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id := *user
	if id == "" {
		if raw, ok, err := s.durable.Get(onboarding.KeyUser); err == nil && ok {
			var p onboarding.Profile
			if json.Unmarshal([]byte(raw), &p) == nil {
				id = p.ID
			}
		}
	}

	if err := onboarding.ForceReset(s.durable, s.tab, id); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "onboarding state reset in %s\n", s.durable.Path())
	return nil
}
