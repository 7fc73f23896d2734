// Command ballot fills in an Oscars ballot from the terminal, either as a local
// draft or directly against the ballot server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sydney-cole/oscars-ballot/internal/catalog"
	"github.com/sydney-cole/oscars-ballot/internal/config"
	"github.com/sydney-cole/oscars-ballot/internal/draft"
	"github.com/sydney-cole/oscars-ballot/internal/model"
	"github.com/sydney-cole/oscars-ballot/internal/picks"
	"github.com/sydney-cole/oscars-ballot/pkg/ballotapi"
)

var _ picks.Repository = (*ballotapi.Client)(nil)

func main() {
	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	opts, err := parseFlags(os.Args[1:], config.ClientFromEnv(), os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{opts: opts, out: os.Stdout, catalog: catalog.Default()}
	defer a.close()
	if err := a.run(ctx); err != nil {
		log.Error().Err(err).Str("command", opts.Command).Msg("ballot failed")
		os.Exit(1)
	}
}

type app struct {
	opts    options
	out     io.Writer
	catalog *catalog.Catalog

	draft  *draft.Store
	client *ballotapi.Client
}

func (a *app) run(ctx context.Context) error {
	switch a.opts.Command {
	case "categories":
		return a.categories()
	case "pick":
		if len(a.opts.Args) != 2 {
			return errors.New("usage: pick <category> <pick>")
		}
		return a.pick(ctx, a.opts.Args[0], a.opts.Args[1])
	case "picks":
		return a.picks(ctx)
	case "name":
		return a.name(ctx, strings.Join(a.opts.Args, " "))
	case "submit":
		return a.submit(ctx)
	case "sync":
		return a.sync(ctx)
	case "leaderboard":
		group := ""
		if len(a.opts.Args) > 0 {
			group = a.opts.Args[0]
		}
		return a.leaderboard(ctx, group)
	case "clear":
		return a.clear(ctx)
	default:
		return fmt.Errorf("unknown command %q", a.opts.Command)
	}
}

func (a *app) close() {
	if a.draft != nil {
		_ = a.draft.Close()
	}
}

func (a *app) local(ctx context.Context) (*draft.Store, error) {
	if a.draft != nil {
		return a.draft, nil
	}
	if dir := filepath.Dir(a.opts.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create draft dir: %w", err)
		}
	}
	s, err := draft.Open(ctx, a.opts.DBPath)
	if err != nil {
		return nil, err
	}
	a.draft = s
	return s, nil
}

func (a *app) remote() (*ballotapi.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	if a.opts.Token == "" {
		return nil, fmt.Errorf("a token is required (-token or BALLOT_TOKEN): %w", model.ErrUnauthenticated)
	}
	a.client = ballotapi.New(a.opts.Server, a.opts.Token)
	return a.client, nil
}

func (a *app) store(ctx context.Context) (picks.Repository, error) {
	if a.opts.Mode == modeRemote {
		return a.remote()
	}
	return a.local(ctx)
}

func (a *app) categories() error {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, c := range a.catalog.Categories() {
		_, _ = fmt.Fprintf(tw, "%s\t\n", c.Name)
		for _, n := range c.Nominees {
			d := n.Display()
			_, _ = fmt.Fprintf(tw, "  %s\t%s\t%s\n", d.PickKey, d.PrimaryLine, d.SecondaryLine)
		}
	}
	return tw.Flush()
}

// pick validates against the catalog before saving so a local draft never holds
// a pick the server would reject on sync.
func (a *app) pick(ctx context.Context, category, pickKey string) error {
	if _, ok := a.catalog.Lookup(category, pickKey); !ok {
		return fmt.Errorf("%q is not nominated for %q: %w", pickKey, category, model.ErrInvalidInput)
	}
	s, err := a.store(ctx)
	if err != nil {
		return err
	}
	if err := s.Save(ctx, category, pickKey); err != nil {
		return err
	}
	if a.opts.Mode == modeLocal {
		if err := a.draft.SetStep(ctx, a.nextStep(category)); err != nil {
			return err
		}
	}
	_, _ = fmt.Fprintf(a.out, "%s: %s\n", category, pickKey)
	return nil
}

// nextStep is the catalog position after category, held at the last one.
func (a *app) nextStep(category string) int {
	cats := a.catalog.Categories()
	for i, c := range cats {
		if c.Name == category {
			return min(i+1, len(cats)-1)
		}
	}
	return 0
}

// name sets the draft's display name, or prints it when none is given.
func (a *app) name(ctx context.Context, name string) error {
	if a.opts.Mode == modeRemote {
		return errors.New("the display name belongs to the local draft; the server uses the token's name")
	}
	s, err := a.local(ctx)
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		cur, err := s.Name(ctx)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(a.out, cur)
		return nil
	}
	if err := s.SetName(ctx, name); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(a.out, "name: %s\n", name)
	return nil
}

func (a *app) picks(ctx context.Context) error {
	s, err := a.store(ctx)
	if err != nil {
		return err
	}
	p, err := s.Load(ctx)
	if err != nil {
		return err
	}
	if a.opts.Mode == modeLocal {
		if err := a.draftHeader(ctx); err != nil {
			return err
		}
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, c := range a.catalog.Categories() {
		v := p[c.Name]
		if v == "" {
			v = "-"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", c.Name, v)
	}
	_, _ = fmt.Fprintf(tw, "\n%d of %d picked\n", p.Filled(), a.catalog.Len())
	return tw.Flush()
}

// draftHeader prints the draft's display name and the category to resume at.
func (a *app) draftHeader(ctx context.Context) error {
	name, err := a.draft.Name(ctx)
	if err != nil {
		return err
	}
	if name != "" {
		_, _ = fmt.Fprintf(a.out, "ballot of %s\n", name)
	}
	step, err := a.draft.Step(ctx)
	if err != nil {
		return err
	}
	cats := a.catalog.Categories()
	if step > 0 && step < len(cats) {
		_, _ = fmt.Fprintf(a.out, "resume at: %s\n", cats[step].Name)
	}
	return nil
}

func (a *app) sync(ctx context.Context) error {
	src, err := a.local(ctx)
	if err != nil {
		return err
	}
	dst, err := a.remote()
	if err != nil {
		return err
	}
	order := make([]string, 0, a.catalog.Len())
	for _, c := range a.catalog.Categories() {
		order = append(order, c.Name)
	}
	n, err := picks.Sync(ctx, src, dst, order)
	if err != nil {
		return fmt.Errorf("synced %d picks before failing: %w", n, err)
	}
	_, _ = fmt.Fprintf(a.out, "synced %d picks\n", n)
	return nil
}

// submit pushes the local draft first when working locally.
func (a *app) submit(ctx context.Context) error {
	if a.opts.Mode == modeLocal {
		if err := a.sync(ctx); err != nil {
			return err
		}
	}
	c, err := a.remote()
	if err != nil {
		return err
	}
	b, err := c.Submit(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(a.out, "submitted %d of %d picks at %s\n", b.Picks.Filled(), a.catalog.Len(), b.SubmittedAt.Local().Format("15:04"))
	return nil
}

func (a *app) leaderboard(ctx context.Context, group string) error {
	c, err := a.remote()
	if err != nil {
		return err
	}
	var lb model.Leaderboard
	if group != "" {
		lb, err = c.GroupLeaderboard(ctx, group)
	} else {
		lb, err = c.Leaderboard(ctx)
	}
	if err != nil {
		return err
	}
	writeLeaderboard(a.out, lb)
	return nil
}

func writeLeaderboard(w io.Writer, lb model.Leaderboard) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, e := range lb.Ranked {
		score := "-"
		if e.Score != nil {
			score = fmt.Sprintf("%d/%d", *e.Score, lb.TotalCategories)
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\n", e.Rank, e.Name, score)
	}
	_ = tw.Flush()
	if !lb.WinnersKnown {
		_, _ = fmt.Fprintf(w, "%d ballots submitted, no winners announced yet\n", lb.Total)
	}
}

func (a *app) clear(ctx context.Context) error {
	if a.opts.Mode == modeRemote {
		return errors.New("clear only applies to the local draft")
	}
	s, err := a.local(ctx)
	if err != nil {
		return err
	}
	if err := s.Clear(ctx); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(a.out, "draft cleared")
	return nil
}
