// Command shopcli is a terminal client for the recommender shop API. It
// keeps the authenticated session in a local file between invocations (or in
// Redis when several processes share a login) and drives the same session,
// catalog, recommendation, and admin controllers a graphical frontend would.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/dmitrymomot/shopclient/pkg/account"
	"github.com/dmitrymomot/shopclient/pkg/admin"
	"github.com/dmitrymomot/shopclient/pkg/apiclient"
	"github.com/dmitrymomot/shopclient/pkg/authguard"
	"github.com/dmitrymomot/shopclient/pkg/broadcast"
	"github.com/dmitrymomot/shopclient/pkg/catalog"
	"github.com/dmitrymomot/shopclient/pkg/config"
	"github.com/dmitrymomot/shopclient/pkg/logger"
	"github.com/dmitrymomot/shopclient/pkg/product"
	"github.com/dmitrymomot/shopclient/pkg/recommend"
	"github.com/dmitrymomot/shopclient/pkg/redis"
	"github.com/dmitrymomot/shopclient/pkg/session"
	"github.com/dmitrymomot/shopclient/pkg/validator"
)

const usage = `Usage: shopcli <command> [arguments]

Commands:
  register <username> <email> <password>
  login <username> <password>
  logout
  whoami
  products
  search <query>
  show <product-id>
  recommend
  admin list
  admin add    -name N -price P -category C [-desc D] [-image URL] [-stock S]
  admin update -id ID -name N -price P -category C [-desc D] [-image URL] [-stock S]
  admin delete -id ID
`

type cliConfig struct {
	SessionBackend string `env:"SHOP_SESSION_BACKEND" envDefault:"file"` // file or redis
	SessionFile    string `env:"SHOP_SESSION_FILE"`
	Debug          bool   `env:"SHOP_DEBUG" envDefault:"false"`
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("missing command")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cliCfg cliConfig
	if err := config.Load(&cliCfg); err != nil {
		return err
	}
	var apiCfg apiclient.Config
	if err := config.Load(&apiCfg); err != nil {
		return err
	}

	logOpts := []logger.Option{logger.WithOutput(os.Stderr)}
	if cliCfg.Debug {
		logOpts = append(logOpts, logger.WithDevelopment("shopcli"))
	} else {
		logOpts = append(logOpts, logger.WithLevel(slog.LevelWarn), logger.WithFormat(logger.FormatText))
	}
	log := logger.New(logOpts...)

	persistence, err := newPersistence(ctx, cliCfg)
	if err != nil {
		return err
	}

	store, err := session.NewStore(ctx, persistence)
	if err != nil {
		return err
	}
	defer store.Close()

	client, err := apiclient.New(apiCfg.BaseURL, store,
		apiclient.WithTimeout(apiCfg.Timeout),
		apiclient.WithLogger(log),
	)
	if err != nil {
		return err
	}

	guard := authguard.New(store, authguard.WithLogger(log))
	defer guard.Close()

	notices := guard.Notices(ctx)
	invalidations := guard.Invalidations(ctx)
	defer func() {
		drain(notices, func(n authguard.Notice) {
			fmt.Fprintln(os.Stderr, n.Text)
		})
		drain(invalidations, func(authguard.Invalidated) {
			fmt.Fprintln(os.Stderr, "Run 'shopcli login' to sign in again.")
		})
	}()

	app := &app{
		store:     store,
		accounts:  account.New(client, store, account.WithLogger(log)),
		catalog:   catalog.New(client, guard, catalog.WithLogger(log)),
		recommend: recommend.New(client, store, recommend.WithLogger(log)),
		admin:     admin.New(client, store, guard, admin.WithLogger(log)),
	}
	return app.dispatch(ctx, args[0], args[1:])
}

func newPersistence(ctx context.Context, cfg cliConfig) (session.Persistence, error) {
	switch cfg.SessionBackend {
	case "redis":
		var redisCfg redis.Config
		if err := config.Load(&redisCfg); err != nil {
			return nil, err
		}
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return nil, err
		}
		return session.NewRedisPersistence(client, ""), nil
	case "file":
		path := cfg.SessionFile
		if path == "" {
			var err error
			if path, err = session.DefaultSessionPath("shopcli"); err != nil {
				return nil, err
			}
		}
		return session.NewFilePersistence(path)
	default:
		return nil, fmt.Errorf("unknown session backend %q: must be file or redis", cfg.SessionBackend)
	}
}

type app struct {
	store     *session.Store
	accounts  *account.Service
	catalog   *catalog.Controller
	recommend *recommend.Controller
	admin     *admin.Controller
}

func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		if len(args) != 3 {
			return errors.New("usage: shopcli register <username> <email> <password>")
		}
		msg, err := a.accounts.Register(ctx, args[0], args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Println(msg)
		return nil

	case "login":
		if len(args) != 2 {
			return errors.New("usage: shopcli login <username> <password>")
		}
		msg, err := a.accounts.Login(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Println(msg)
		sess := a.store.Get()
		if sess.IsAdmin {
			fmt.Printf("Welcome, %s! Admin commands are available.\n", sess.Username)
		} else {
			fmt.Printf("Welcome, %s!\n", sess.Username)
		}
		return nil

	case "logout":
		return a.accounts.Logout(ctx)

	case "whoami":
		sess := a.store.Get()
		if sess.IsAnonymous() {
			fmt.Println("Not logged in.")
			return nil
		}
		fmt.Printf("%s (user %d, admin: %t)\n", sess.Username, *sess.UserID, sess.IsAdmin)
		return nil

	case "products":
		a.catalog.LoadAll(ctx)
		return a.printCatalog()

	case "search":
		if len(args) != 1 {
			return errors.New("usage: shopcli search <query>")
		}
		a.catalog.Search(ctx, args[0])
		return a.printCatalog()

	case "show":
		if len(args) != 1 {
			return errors.New("usage: shopcli show <product-id>")
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[0])
		}
		a.catalog.SelectDetail(ctx, id)
		snap := a.catalog.Snapshot()
		if snap.Detail == nil {
			if snap.Err != "" {
				return errors.New(snap.Err)
			}
			return nil
		}
		printDetail(*snap.Detail)
		return nil

	case "recommend":
		a.recommend.Refresh(ctx)
		snap := a.recommend.Snapshot()
		switch snap.Phase {
		case recommend.PhaseLoaded:
			fmt.Printf("Recommended for user %d:\n", snap.UserID)
			printProducts(snap.Products)
		case recommend.PhaseEmpty:
			if a.store.Get().IsAnonymous() {
				fmt.Println("Log in to see personalized recommendations.")
			} else {
				fmt.Println("No recommendations available yet. Browse some products!")
			}
		case recommend.PhaseFailed:
			fmt.Println("Recommendations are unavailable right now.")
		}
		return nil

	case "admin":
		if len(args) == 0 {
			return errors.New("usage: shopcli admin <list|add|update|delete> [flags]")
		}
		return a.dispatchAdmin(ctx, args[0], args[1:])

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) dispatchAdmin(ctx context.Context, sub string, args []string) error {
	switch sub {
	case "list":
		if err := a.admin.List(ctx); err != nil {
			return err
		}
		printProducts(a.admin.Snapshot().Products)
		return nil

	case "add":
		draft, _, err := parseDraftFlags("admin add", args, false)
		if err != nil {
			return err
		}
		if err := a.admin.Create(ctx, draft); err != nil {
			return err
		}
		snap := a.admin.Snapshot()
		fmt.Println(snap.AddMsg.Text)
		printProducts(snap.Products)
		return nil

	case "update":
		draft, id, err := parseDraftFlags("admin update", args, true)
		if err != nil {
			return err
		}
		if err := a.admin.Update(ctx, id, draft); err != nil {
			return err
		}
		snap := a.admin.Snapshot()
		fmt.Println(snap.ManageMsg.Text)
		printProducts(snap.Products)
		return nil

	case "delete":
		fs := flag.NewFlagSet("admin delete", flag.ContinueOnError)
		id := fs.Int64("id", 0, "product id")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *id == 0 {
			return errors.New("admin delete: -id is required")
		}
		if err := a.admin.Remove(ctx, *id); err != nil {
			return err
		}
		fmt.Println(a.admin.Snapshot().ManageMsg.Text)
		return nil

	default:
		return fmt.Errorf("unknown admin command %q", sub)
	}
}

func parseDraftFlags(name string, args []string, withID bool) (admin.Draft, int64, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	var id int64
	if withID {
		fs.Int64Var(&id, "id", 0, "product id")
	}
	d := admin.Draft{StockQuantity: "0"}
	fs.StringVar(&d.Name, "name", "", "product name")
	fs.StringVar(&d.Description, "desc", "", "description")
	fs.StringVar(&d.Price, "price", "", "price")
	fs.StringVar(&d.Category, "category", "", "category")
	fs.StringVar(&d.ImageURL, "image", "", "image URL")
	fs.StringVar(&d.StockQuantity, "stock", d.StockQuantity, "stock quantity")
	if err := fs.Parse(args); err != nil {
		return admin.Draft{}, 0, err
	}
	if withID && id == 0 {
		return admin.Draft{}, 0, fmt.Errorf("%s: -id is required", name)
	}
	return d, id, nil
}

func (a *app) printCatalog() error {
	snap := a.catalog.Snapshot()
	if snap.Phase == catalog.PhaseFailed {
		return errors.New(snap.Err)
	}
	if snap.ZeroResults() {
		fmt.Printf("No products matched %q.\n", snap.Query)
		return nil
	}
	printProducts(snap.Products)
	return nil
}

func printProducts(products []product.Product) {
	if len(products) == 0 {
		fmt.Println("No products.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tCATEGORY\tSTOCK")
	for _, p := range products {
		fmt.Fprintf(w, "%d\t%s\t$%.2f\t%s\t%d\n", p.ID, p.Name, p.Price, p.Category, p.StockQuantity)
	}
	_ = w.Flush()
}

func printDetail(p product.Product) {
	fmt.Printf("%s\n", p.Name)
	fmt.Printf("  Price:    $%.2f\n", p.Price)
	if p.Description != "" {
		fmt.Printf("  About:    %s\n", p.Description)
	}
	fmt.Printf("  Category: %s\n", p.Category)
	fmt.Printf("  Stock:    %d\n", p.StockQuantity)
	if p.ImageURL != "" {
		fmt.Printf("  Image:    %s\n", p.ImageURL)
	}
}

func printError(err error) {
	if verrs := validator.ExtractValidationErrors(err); verrs != nil {
		for _, verr := range verrs {
			fmt.Fprintf(os.Stderr, "Error: %s: %s\n", verr.Field, verr.Message)
		}
		return
	}
	if errors.Is(err, admin.ErrSessionInvalidated) {
		// The guard already told the user what happened.
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
}

// drain prints everything a feed buffered during the command without
// blocking on an empty feed.
func drain[T any](sub broadcast.Subscriber[T], fn func(T)) {
	for {
		select {
		case msg, ok := <-sub.Receive():
			if !ok {
				return
			}
			fn(msg.Data)
		default:
			return
		}
	}
}
