package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"

	"text2phenotype.com/itn/api"
	"text2phenotype.com/itn/cache"
	"text2phenotype.com/itn/classify"
	"text2phenotype.com/itn/logger"
	"text2phenotype.com/itn/pipeline"
	"text2phenotype.com/itn/types"
	"text2phenotype.com/itn/worker"
)

type Config struct {
	RestAPIActive bool   `envconfig:"ITN_REST_API_ACTIVE" default:"false"`
	RestAPIPort   string `envconfig:"ITN_REST_API_PORT" default:"10000"`
}

const grammarLoadMaxRetries = 5

// GrammarFlags select one grammar. Flags override the configuration file.
type GrammarFlags struct {
	Config           string             `help:"YAML grammar configuration" type:"existingfile" env:"ITN_CONFIG"`
	Language         string             `short:"l" help:"Grammar language"`
	Direction        string             `short:"d" help:"itn or tn"`
	CacheDir         string             `help:"Directory of compiled grammar artifacts" type:"path" env:"ITN_CACHE_DIR"`
	OverwriteCache   bool               `help:"Rebuild even when a cached artifact exists"`
	Exclude          []string           `help:"Classes to exclude"`
	Weight           map[string]float64 `help:"Class weight overrides, class=weight"`
	ExtraSpaceWeight float64            `help:"Cost of every extra space between tokens"`
	Whitelist        string             `help:"spoken|written whitelist replacing the built-in one" type:"existingfile"`
}

func (f GrammarFlags) options() (classify.Options, error) {
	cfg := types.Configuration{}
	if f.Config != "" {
		var err error
		if cfg, err = types.LoadConfiguration(f.Config); err != nil {
			return classify.Options{}, err
		}
	}
	if f.Language != "" {
		cfg.Language = f.Language
	}
	if f.Direction != "" {
		cfg.Direction = f.Direction
	}
	if f.CacheDir != "" {
		cfg.CacheDir = f.CacheDir
	}
	cfg.OverwriteCache = cfg.OverwriteCache || f.OverwriteCache
	if len(f.Exclude) > 0 && cfg.ExcludedClasses == nil {
		cfg.ExcludedClasses = map[string]bool{}
	}
	for _, name := range f.Exclude {
		cfg.ExcludedClasses[name] = true
	}
	if len(f.Weight) > 0 && cfg.ClassWeights == nil {
		cfg.ClassWeights = map[string]float64{}
	}
	for name, w := range f.Weight {
		cfg.ClassWeights[name] = w
	}
	if f.ExtraSpaceWeight != 0 {
		cfg.ExtraSpaceWeight = f.ExtraSpaceWeight
	}
	if f.Whitelist != "" {
		cfg.WhitelistFile = f.Whitelist
	}
	return classify.OptionsFromConfig(cfg)
}

func (f GrammarFlags) grammar(ctx context.Context) (*classify.Grammar, error) {
	opts, err := f.options()
	if err != nil {
		return nil, err
	}
	locker, err := cache.LockerFromEnv()
	if err != nil {
		return nil, err
	}
	defer locker.Close()
	opts.Locker = locker
	return classify.NewGrammar(ctx, opts)
}

// loadGrammar retries grammar construction for the long-running services.
func (f GrammarFlags) loadGrammar(ctx context.Context) (*classify.Grammar, error) {
	itnLogger := logger.NewLogger("Main")
	var err error
	for retry := 0; retry < grammarLoadMaxRetries; retry++ {
		var g *classify.Grammar
		if g, err = f.grammar(ctx); err == nil {
			itnLogger.Info().
				Str("language", g.Language).
				Str("direction", string(g.Direction)).
				Bool("from_cache", g.FromCache).
				Msg("Grammar loaded")
			return g, nil
		}
		itnLogger.Err(err).Msg("Failed to load grammar. Retrying in 5 sec")
		time.Sleep(5 * time.Second)
	}
	return nil, fmt.Errorf("could not load grammar after %d retries: %w", grammarLoadMaxRetries, err)
}

// GrammarSetFlags select one grammar per configuration of a directory, or
// the single grammar of GrammarFlags when no directory is given.
type GrammarSetFlags struct {
	GrammarFlags
	ConfigDir string `help:"Load every *.yaml configuration of this directory" type:"existingdir" env:"ITN_CONFIG_DIR"`
}

// each calls fn with the flags of every selected grammar.
func (f GrammarSetFlags) each(fn func(name string, flags GrammarFlags) error) error {
	if f.ConfigDir == "" {
		return fn("flags", f.GrammarFlags)
	}
	cfgs, err := types.LoadConfigurations(f.ConfigDir)
	if err != nil {
		return err
	}
	if len(cfgs) == 0 {
		return fmt.Errorf("no configurations in %s", f.ConfigDir)
	}
	for _, cfg := range cfgs {
		flags := f.GrammarFlags
		flags.Config = cfg.FilePath
		if err = fn(cfg.Name, flags); err != nil {
			return fmt.Errorf("configuration %s: %w", cfg.Name, err)
		}
	}
	return nil
}

// router loads the selected grammars and routes their language and
// direction to a pipeline each.
func (f GrammarSetFlags) router(ctx context.Context) (*pipeline.Router, error) {
	router := pipeline.NewRouter()
	err := f.each(func(name string, flags GrammarFlags) error {
		g, err := flags.loadGrammar(ctx)
		if err != nil {
			return err
		}
		return router.AddGrammar(g)
	})
	if err != nil {
		return nil, err
	}
	return router, nil
}

type BuildCmd struct {
	GrammarSetFlags
}

func (c *BuildCmd) Run() error {
	itnLogger := logger.NewLogger("Build")
	ctx := context.Background()
	return c.each(func(name string, flags GrammarFlags) error {
		g, err := flags.grammar(ctx)
		if err != nil {
			return err
		}
		itnLogger.Info().
			Str("configuration", name).
			Str("grammar", g.Language+"/"+string(g.Direction)).
			Str("fingerprint", fmt.Sprintf("%016x", g.Fingerprint)).
			Msg("Grammar built")
		return nil
	})
}

type ClassifyCmd struct {
	GrammarFlags
	Text []string `arg:"" optional:"" help:"Text to classify; stdin is read when empty"`
}

func (c *ClassifyCmd) Run() error {
	g, err := c.grammar(context.Background())
	if err != nil {
		return err
	}
	text := strings.Join(c.Text, " ")
	if len(c.Text) == 0 {
		buf, err := io.ReadAll(bufio.NewReader(os.Stdin))
		if err != nil {
			return err
		}
		text = string(buf)
	}
	resp := <-pipeline.New(g)(pipeline.Request{Tid: "cli", Text: text})
	_, err = fmt.Println(resp)
	return err
}

type ServeCmd struct {
	GrammarSetFlags
}

func (c *ServeCmd) Run() error {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	router, err := c.router(context.Background())
	if err != nil {
		return err
	}
	return serveAPI(router, config.RestAPIPort)
}

func serveAPI(router *pipeline.Router, port string) error {
	itnLogger := logger.NewLogger("Main")
	apiRequest := &api.Request{Router: router}
	host := fmt.Sprintf(":%s", port)
	itnLogger.Info().Msgf("REST API on %s", host)
	return http.ListenAndServe(host, apiRequest.Handler())
}

type WorkerCmd struct {
	GrammarSetFlags
}

func (c *WorkerCmd) Run() error {
	itnLogger := logger.NewLogger("Main")
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router, err := c.router(ctx)
	if err != nil {
		return err
	}

	if config.RestAPIActive {
		go func() {
			itnLogger.Info().Msg("Starting API service")
			err := serveAPI(router, config.RestAPIPort)
			itnLogger.Fatal().Err(err).Msg("REST API stopped with error")
		}()
	}

	itnLogger.Info().Msg("Start ITN Worker")
	for {
		rmqWorker, err := worker.New(router)
		if err != nil {
			return fmt.Errorf("could not initialize RMQ worker: %w", err)
		}
		err = rmqWorker.Run(ctx)
		if ctx.Err() != nil {
			itnLogger.Info().Msg("Worker stopped")
			return nil
		}
		itnLogger.Err(err).Msg("Worker returned with error. Launching new in 5 seconds")
		time.Sleep(5 * time.Second)
	}
}

type WrapCmd struct {
	Command []string `arg:"" passthrough:"" help:"Command and arguments to run"`
}

func (c *WrapCmd) Run() error {
	logger.WrapProcess(c.Command[0], c.Command[1:]...)
	return nil
}
