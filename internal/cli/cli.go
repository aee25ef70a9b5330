// Package cli implements the ping, order and interactive commands.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"futures-testnet-bot/internal/api"
	"futures-testnet-bot/internal/config"
	"futures-testnet-bot/internal/logger"
	"futures-testnet-bot/internal/model"
	"futures-testnet-bot/internal/order"
	"futures-testnet-bot/internal/repository"
	"futures-testnet-bot/internal/validator"
)

const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Exchange is the part of api.BinanceClient the commands use.
type Exchange interface {
	Ping(ctx context.Context) error
	ServerTime(ctx context.Context) (int64, error)
	PlaceOrder(ctx context.Context, params api.Params) (*model.OrderResponse, error)
}

type App struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	LoadConfig func() (*config.Config, error)
	NewClient  func(cfg *config.Config) (Exchange, error)
	// OpenJournal may return a nil journal to disable journaling.
	OpenJournal func(cfg *config.Config) (*repository.Journal, error)
	Now         func() time.Time

	prompt *prompter
}

func NewApp() *App {
	return &App{
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		LoadConfig:  config.Load,
		NewClient:   NewExchange,
		OpenJournal: func(cfg *config.Config) (*repository.Journal, error) { return repository.NewJournal(cfg.LogDir) },
		Now:         time.Now,
	}
}

// NewExchange builds the signed REST client from cfg.
func NewExchange(cfg *config.Config) (Exchange, error) {
	signer, err := api.NewSigner(cfg.Credentials.APISecret())
	if err != nil {
		return nil, err
	}
	return api.NewBinanceClient(api.ClientConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.Credentials.APIKey(),
		Signer:  signer,
		Timeout: cfg.HTTPTimeout,
	})
}

func (a *App) Run(args []string) int {
	if len(args) == 0 {
		a.usage(a.Stdout)
		return ExitOK
	}

	switch args[0] {
	case "ping":
		return a.cmdPing(args[1:])
	case "order":
		return a.cmdOrder(args[1:])
	case "interactive":
		return a.cmdInteractive(args[1:])
	case "help", "-h", "--help":
		a.usage(a.Stdout)
		return ExitOK
	default:
		fmt.Fprintf(a.Stderr, "unknown command %q\n\n", args[0])
		a.usage(a.Stderr)
		return ExitUsage
	}
}

func (a *App) usage(w io.Writer) {
	fmt.Fprint(w, `trading-bot: place MARKET and LIMIT orders on the Binance Futures Testnet.

Usage:
  trading-bot ping
  trading-bot order --symbol BTCUSDT --side BUY --type MARKET --quantity 0.01 [--price P] [--yes]
  trading-bot interactive

Commands:
  ping          Test API connectivity
  order         Place an order directly via flags
  interactive   Launch guided interactive prompt
`)
}

func (a *App) cmdPing(args []string) int {
	fs := flag.NewFlagSet("ping", flag.ContinueOnError)
	fs.SetOutput(a.Stderr)
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	client, _, err := a.connect()
	if err != nil {
		return a.fail("Ping failed", err)
	}
	defer closeExchange(client)

	ctx := context.Background()
	if err := client.Ping(ctx); err != nil {
		return a.fail("Ping failed", err)
	}
	fmt.Fprintln(a.Stdout, "Binance Futures Testnet is reachable.")
	return ExitOK
}

func (a *App) cmdOrder(args []string) int {
	fs := flag.NewFlagSet("order", flag.ContinueOnError)
	fs.SetOutput(a.Stderr)

	var in validator.OrderInput
	var yes bool
	stringFlag(fs, &in.Symbol, "symbol", "s", "", "Trading pair (e.g. BTCUSDT)")
	stringFlag(fs, &in.Side, "side", "S", "", "Order side: BUY or SELL")
	stringFlag(fs, &in.Type, "type", "t", "", "Order type: MARKET or LIMIT")
	stringFlag(fs, &in.Quantity, "quantity", "q", "", "Order quantity")
	stringFlag(fs, &in.Price, "price", "p", "", "Limit price (required for LIMIT orders)")
	fs.BoolVar(&yes, "yes", false, "Submit without asking for confirmation")
	fs.BoolVar(&yes, "y", false, "Shorthand for --yes")

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(a.Stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		return ExitUsage
	}

	var missing []string
	for name, v := range map[string]string{"symbol": in.Symbol, "side": in.Side, "type": in.Type, "quantity": in.Quantity} {
		if v == "" {
			missing = append(missing, "--"+name)
		}
	}
	if len(missing) > 0 {
		fmt.Fprintf(a.Stderr, "missing required flags: %s\n", strings.Join(sortedCopy(missing), ", "))
		fs.Usage()
		return ExitUsage
	}

	params, err := validator.ValidateOrder(in)
	if err != nil {
		return a.fail("Validation failed", err)
	}
	return a.execute(params, !yes)
}

func (a *App) cmdInteractive(args []string) int {
	fs := flag.NewFlagSet("interactive", flag.ContinueOnError)
	fs.SetOutput(a.Stderr)
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	fmt.Fprint(a.Stdout, banner)

	params, err := a.prompter().orderParams()
	if err != nil {
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(a.Stderr, "\ninput closed, order cancelled")
			return ExitError
		}
		return a.fail("Validation failed", err)
	}
	return a.execute(params, true)
}

// execute is the shared order flow: summary, confirmation, ping, submit.
func (a *App) execute(params model.OrderParams, confirm bool) int {
	printOrderSummary(a.Stdout, params)
	if params.PriceDiscarded {
		fmt.Fprintln(a.Stdout, "Note: price is ignored for MARKET orders.")
	}

	if confirm {
		ok, err := a.prompter().confirm("Submit this order?")
		if err != nil || !ok {
			fmt.Fprintln(a.Stdout, "Order cancelled by user.")
			logger.Info("Order cancelled by user", "symbol", params.Symbol)
			return ExitOK
		}
	}

	client, cfg, err := a.connect()
	if err != nil {
		return a.fail("Order not sent", err)
	}
	defer closeExchange(client)

	ctx := context.Background()

	fmt.Fprint(a.Stdout, "Testing API connectivity... ")
	if err := client.Ping(ctx); err != nil {
		fmt.Fprintln(a.Stdout, "FAILED")
		return a.fail("Cannot reach Binance Testnet", err)
	}
	fmt.Fprintln(a.Stdout, "OK")

	if serverTime, err := client.ServerTime(ctx); err == nil {
		offset := serverTime - a.Now().UnixMilli()
		logger.Info("Time Synchronized", "server_time", serverTime, "offset_ms", offset)
		if abs(offset) > cfg.RecvWindow.Milliseconds() {
			logger.Warn("Local clock is outside recvWindow, the exchange may reject the order", "offset_ms", offset)
		}
	} else {
		logger.Warn("Failed to read server time, using local clock", "error", err)
	}

	svc := order.NewService(client, order.NewBuilder(cfg.RecvWindow), nil)
	svc.Clock = a.Now
	if a.OpenJournal != nil {
		journal, err := a.OpenJournal(cfg)
		if err != nil {
			logger.Warn("Order journal disabled", "error", err)
		} else if journal != nil {
			svc.Journal = journal
		}
	}

	resp, err := svc.Submit(ctx, params)
	if err != nil {
		return a.fail("Order failed", err)
	}

	printOrderResponse(a.Stdout, resp)
	fmt.Fprintln(a.Stdout, "Order submitted successfully!")
	return ExitOK
}

func (a *App) connect() (Exchange, *config.Config, error) {
	cfg, err := a.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	client, err := a.NewClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	return client, cfg, nil
}

// fail prints "<what>: <kind> error: <message>" to stderr, logs it and returns ExitError.
func (a *App) fail(what string, err error) int {
	kind := model.KindOf(err)
	fmt.Fprintf(a.Stderr, "%s: %s error: %v\n", what, kind, err)
	logger.Error(what, "kind", kind, "error", err)
	return ExitError
}

func (a *App) prompter() *prompter {
	if a.prompt == nil {
		a.prompt = newPrompter(a.Stdin, a.Stdout)
	}
	return a.prompt
}

// closeExchange releases the client's secret when it supports io.Closer.
func closeExchange(client Exchange) {
	if c, ok := client.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logger.Warn("Failed to close exchange client", "error", err)
		}
	}
}

// stringFlag registers a long and a short name for the same value.
func stringFlag(fs *flag.FlagSet, p *string, long, short, value, usage string) {
	fs.StringVar(p, long, value, usage)
	fs.StringVar(p, short, value, "Shorthand for --"+long)
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
