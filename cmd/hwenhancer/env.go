package main

import (
	"context"
	"net/url"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/fr4nk3nst1ner/hwenhancer/internal/app"
	"github.com/fr4nk3nst1ner/hwenhancer/internal/client"
	"github.com/fr4nk3nst1ner/hwenhancer/internal/config"
	"github.com/fr4nk3nst1ner/hwenhancer/internal/crawler"
	"github.com/fr4nk3nst1ner/hwenhancer/internal/host"
	"github.com/fr4nk3nst1ner/hwenhancer/internal/logger"
	"github.com/fr4nk3nst1ner/hwenhancer/internal/models"
	"github.com/fr4nk3nst1ner/hwenhancer/internal/session"
	"github.com/fr4nk3nst1ner/hwenhancer/internal/ui"
)

// environment holds what every command needs: configuration, logging and
// the session store.
type environment struct {
	cfg     *config.Config
	log     *zap.SugaredLogger
	backend session.Backend
	state   *session.State
	console *ui.Console
}

func newEnvironment(flags *rootFlags, assumeYes bool) (*environment, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.debug {
		cfg.Log.Level = "debug"
	}
	if err := logger.Initialize(cfg.Log.Level, cfg.Log.JSON); err != nil {
		return nil, errors.Wrap(err, "failed to initialize logger")
	}

	backend, err := session.Open(cfg.Session.Backend, cfg.Session.Dir, cfg.Session.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open session")
	}
	logger.Logger.Debugw("Session opened",
		"backend", cfg.Session.Backend,
		"dir", cfg.Session.Dir,
		"id", cfg.Session.ID)

	return &environment{
		cfg:     cfg,
		log:     logger.Logger,
		backend: backend,
		state:   session.NewState(backend, logger.Component("session")),
		console: ui.NewConsole(assumeYes, logger.Component("ui")),
	}, nil
}

func (e *environment) Close() error {
	return e.backend.Close()
}

func isURL(target string) bool {
	u, err := url.Parse(target)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// openPage loads the first page. A URL is fetched over HTTP; otherwise the
// targets are saved pages, replayed in order as the crawl clicks through.
func (e *environment) openPage(ctx context.Context, targets []string) (crawler.Page, error) {
	if len(targets) == 1 && isURL(targets[0]) {
		httpClient, err := client.CreateHTTPClient(client.Options{
			ProxyURL:           e.cfg.HTTP.Proxy,
			Timeout:            e.cfg.HTTP.Timeout,
			InsecureSkipVerify: e.cfg.HTTP.InsecureSkipVerify,
		})
		if err != nil {
			return nil, err
		}
		page := host.NewHTTPPage(httpClient, logger.Component("host"))
		if err := page.Open(ctx, targets[0]); err != nil {
			return nil, err
		}
		return page, nil
	}

	for _, target := range targets {
		if isURL(target) {
			return nil, errors.WithHint(errors.Newf("cannot mix URLs and files: %s", target),
				"pass a single URL, or one or more saved pages")
		}
	}
	page, err := host.LoadFiles(targets...)
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (e *environment) enhancer(page crawler.Page) *app.Enhancer {
	return app.New(page, e.state, e.console, crawler.Options{
		NextSelector: e.cfg.Crawl.NextSelector,
		Delay:        e.cfg.Crawl.PageDelay,
		Logger:       logger.Component("crawler"),
	})
}

// outputFlags control what is done with the listing once it is set up
type outputFlags struct {
	sort string
	out  string
}

func (o *outputFlags) sortKey() (models.SortKey, bool, error) {
	if strings.TrimSpace(o.sort) == "" {
		return "", false, nil
	}
	key, err := models.ParseSortKey(o.sort)
	if err != nil {
		return "", false, errors.WithHint(err, "use one of salary_max, salary_min, hours")
	}
	return key, true, nil
}

// finish sorts the listing if asked, prints it and writes the page out
func (e *environment) finish(enh *app.Enhancer, out *outputFlags) error {
	key, doSort, err := out.sortKey()
	if err != nil {
		return err
	}
	if doSort {
		if err := enh.Sort(key); err != nil {
			return err
		}
	}

	if board := enh.Board(); board != nil && board.Len() > 0 {
		if err := e.console.PrintJobs(board.Jobs()); err != nil {
			return err
		}
	}

	if out.out == "" {
		return nil
	}
	f, err := os.Create(out.out)
	if err != nil {
		return errors.Wrap(err, "failed to create output file")
	}
	if err := enh.WriteHTML(f); err != nil {
		f.Close()
		return errors.Wrap(err, "failed to write page")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "failed to write page")
	}
	e.log.Infow("Page written", "path", out.out)
	return nil
}
