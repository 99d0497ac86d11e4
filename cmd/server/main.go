// Command server runs the FilingDesk API: account sign-up, invoicing,
// expense tracking, and tax filings behind per-account-type route gating.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/filingdesk/filingdesk/modules/account"
	"github.com/filingdesk/filingdesk/modules/expense"
	"github.com/filingdesk/filingdesk/modules/filing"
	"github.com/filingdesk/filingdesk/modules/invoice"
	"github.com/filingdesk/filingdesk/pkg/config"
	"github.com/filingdesk/filingdesk/pkg/email"
	"github.com/filingdesk/filingdesk/pkg/httpserver"
	"github.com/filingdesk/filingdesk/pkg/logger"
	"github.com/filingdesk/filingdesk/pkg/mongo"
	"github.com/filingdesk/filingdesk/pkg/pg"
	"github.com/filingdesk/filingdesk/pkg/ratelimiter"
	"github.com/filingdesk/filingdesk/pkg/redis"
	"github.com/filingdesk/filingdesk/pkg/returnurl"
	"github.com/filingdesk/filingdesk/pkg/routegate"
	"github.com/filingdesk/filingdesk/pkg/search"
	"github.com/filingdesk/filingdesk/pkg/storage"
	"github.com/filingdesk/filingdesk/pkg/taxrate"
)

// returnDestinations are the paths a sign-up may redirect to. Tokens naming
// anything else are rejected at issue and at validation.
var returnDestinations = []string{
	"/dashboard",
	"/invoices",
	"/expenses",
	"/filings",
	"/referrals",
}

func main() {
	log := logger.New(logger.WithService("filingdesk"))
	if err := run(context.Background(), log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger) error {
	var (
		httpCfg    httpserver.Config
		pgCfg      pg.Config
		mongoCfg   mongo.Config
		redisCfg   redis.Config
		emailCfg   email.Config
		storageCfg storage.Config
		returnCfg  returnurl.Config
		accountCfg account.Config
		oauthCfg   account.OAuthConfig
		invoiceCfg invoice.Config
	)
	for _, load := range []func() error{
		func() error { return config.Load(&httpCfg) },
		func() error { return config.Load(&pgCfg) },
		func() error { return config.Load(&mongoCfg) },
		func() error { return config.Load(&redisCfg) },
		func() error { return config.Load(&emailCfg) },
		func() error { return config.Load(&storageCfg) },
		func() error { return config.Load(&returnCfg) },
		func() error { return config.Load(&accountCfg) },
		func() error { return config.Load(&oauthCfg) },
		func() error { return config.Load(&invoiceCfg) },
	} {
		if err := load(); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	mongoDB, err := mongo.Database(ctx, mongoCfg)
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	defer mongoDB.Client().Disconnect(ctx)

	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()

	limiter, err := ratelimiter.New(
		ratelimiter.NewRedisStore(redisClient, "rl:auth"),
		ratelimiter.Config{Capacity: 10, RefillRate: 10, RefillInterval: time.Minute},
	)
	if err != nil {
		return fmt.Errorf("build rate limiter: %w", err)
	}

	sender, err := buildSender(emailCfg, log)
	if err != nil {
		return fmt.Errorf("build email sender: %w", err)
	}

	objects, err := storage.New(ctx, storageCfg)
	if err != nil {
		return fmt.Errorf("build object storage: %w", err)
	}

	rates, err := loadRates()
	if err != nil {
		return fmt.Errorf("load tax rates: %w", err)
	}

	returnSvc, err := returnurl.NewFromConfig(returnCfg, returnDestinations)
	if err != nil {
		return fmt.Errorf("build return-url service: %w", err)
	}

	var invoiceIndex invoice.Indexer
	if os.Getenv("OPENSEARCH_ADDRESSES") != "" {
		var searchCfg search.Config
		if err := config.Load(&searchCfg); err != nil {
			return fmt.Errorf("load search config: %w", err)
		}
		client, err := search.Connect(ctx, searchCfg)
		if err != nil {
			return fmt.Errorf("connect opensearch: %w", err)
		}
		invoiceIndex = search.NewIndex(client, "invoices")
	}

	accountSvc := account.NewService(accountCfg,
		account.NewPgStore(pool), account.NewMongoReferralStore(mongoDB),
		returnSvc, sender, log)
	invoiceSvc := invoice.NewService(invoiceCfg,
		invoice.NewPgStore(pool), rates, invoiceIndex, log)
	expenseSvc := expense.NewService(
		expense.NewPgStore(pool), rates, objects, log)
	filingSvc := filing.NewService(
		filing.NewMongoStore(mongoDB), rates, invoiceSvc, expenseSvc,
		accountContact(accountSvc), sender, log)

	gate := routegate.New()
	authLimit := ratelimiter.Middleware(limiter, ratelimiter.KeyByIP)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", httpserver.HealthHandler(log, map[string]httpserver.Probe{
		"postgres": pg.Healthcheck(pool),
		"mongo":    mongo.Healthcheck(mongoDB.Client()),
		"redis":    redis.Healthcheck(redisClient),
	}))

	accountRoutes := account.RouterOptions{RateLimit: authLimit}
	if oauthCfg.ClientID != "" {
		accountRoutes.OAuth = account.NewGoogleProvider(oauthCfg)
	}
	r.Mount("/account", account.Router(accountSvc, accountRoutes))

	r.Group(func(r chi.Router) {
		r.Use(resolveAccountType(accountSvc))
		r.With(gate.Require(routegate.SegmentInvoices)).
			Mount("/invoices", invoice.Router(invoiceSvc))
		r.With(gate.Require(routegate.SegmentExpenses)).
			Mount("/expenses", expense.Router(expenseSvc))
		r.With(gate.Require(routegate.SegmentFilings)).
			Mount("/filings", filing.Router(filingSvc, gate.Require(routegate.SegmentAdmin)))
	})

	return httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log)).Run(ctx, r)
}

func buildSender(cfg email.Config, log *slog.Logger) (email.Sender, error) {
	if cfg.PostmarkServerToken == "" {
		log.Warn("no postmark token configured, logging emails instead of sending")
		return email.NewDevSender(log), nil
	}
	return email.NewPostmarkSender(cfg)
}

// loadRates reads a YAML schedule override when TAXRATE_FILE is set;
// otherwise the statutory defaults apply.
func loadRates() (taxrate.Schedule, error) {
	path := os.Getenv("TAXRATE_FILE")
	if path == "" {
		return taxrate.Default(), nil
	}
	return taxrate.LoadFile(path)
}

// accountContact resolves filing notification addresses through the account
// service.
func accountContact(svc *account.Service) filing.Contact {
	return func(ctx context.Context, accountID uuid.UUID) (string, error) {
		acct, err := svc.Get(ctx, accountID)
		if err != nil {
			return "", err
		}
		return acct.Email, nil
	}
}

// resolveAccountType loads the calling account and stamps its type into the
// request context for the route gate. The account ID comes from the
// X-Account-ID header set by the edge after session validation.
func resolveAccountType(svc *account.Service) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accountID, err := uuid.Parse(r.Header.Get("X-Account-ID"))
			if err != nil {
				http.Error(w, "missing or malformed X-Account-ID", http.StatusUnauthorized)
				return
			}
			acct, err := svc.Get(r.Context(), accountID)
			if err != nil {
				http.Error(w, "unknown account", http.StatusUnauthorized)
				return
			}
			ctx := routegate.SetAccountType(r.Context(), acct.Type)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
