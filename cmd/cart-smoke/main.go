package main

import (
	"context"
	"flag"
	"fmt"
	"net/http/httptest"
	"os"
	"time"

	goCart "github.com/MrEthical07/goCart"
	"github.com/MrEthical07/goCart/catalog"
	"github.com/MrEthical07/goCart/internal/fakeapi"
	"github.com/MrEthical07/goCart/metrics/export/internaldefs"
	"github.com/MrEthical07/goCart/order"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	var (
		baseURL   = flag.String("base-url", "", "storefront API base URL; overrides GOCART_API_BASE_URL")
		email     = flag.String("email", "smoke@example.com", "account email")
		password  = flag.String("password", "smoke-secret", "account password")
		product   = flag.String("product", "p-smoke", "product id to add")
		qty       = flag.Int("qty", 2, "quantity to add")
		redisAddr = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		envFile   = flag.String("env", ".env", "dotenv file with GOCART_* settings")
		fake      = flag.Bool("fake", false, "run against an in-process fake backend")
		verbose   = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *qty <= 0 {
		fmt.Fprintln(os.Stderr, "qty must be > 0")
		os.Exit(2)
	}

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	cfg, err := goCart.LoadConfigFromEnv(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	if *baseURL != "" {
		cfg.API.BaseURL = *baseURL
	}

	if *fake {
		backend := fakeapi.New([]byte("cart-smoke"), fakeapi.Product{ID: *product, Name: "Smoke Tee", Price: 12.5})
		backend.AddUser("Smoke Tester", *email, *password, "USER")
		srv := httptest.NewServer(backend)
		defer srv.Close()
		cfg.API.BaseURL = srv.URL + "/api"
		fmt.Printf("using fake backend at %s\n", cfg.API.BaseURL)
	}

	rdb, cleanup, err := openRedis(*redisAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "redis: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	client, err := goCart.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithLogger(log).
		WithAuditSink(goCart.NewLogSink(log)).
		WithLatencyHistograms(true).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build client: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx := goCart.WithTraceID(context.Background(), fmt.Sprintf("smoke-%d", time.Now().UnixNano()))
	if err := run(ctx, client, *email, *password, *product, *qty); err != nil {
		fmt.Fprintf(os.Stderr, "smoke failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("---- counters ----")
	printCounters(client.MetricsSnapshot())
}

func run(ctx context.Context, c *goCart.Client, email, password, product string, qty int) error {
	if _, err := c.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	listing, err := step("list products", func() (catalog.Page, error) {
		return c.Products(ctx, catalog.Filter{})
	})
	if err != nil {
		return err
	}
	fmt.Printf("catalog has %d products\n", listing.Matched)

	res, err := step("sign in", func() (goCart.LoginResult, error) {
		return c.SignIn(ctx, email, password, "")
	})
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s (%s), landing %s\n", res.Session.Name, res.Session.Role, res.Landing.Path)

	if _, err := step("add to cart", func() (struct{}, error) {
		_, err := c.AddToCart(ctx, product, qty)
		return struct{}{}, err
	}); err != nil {
		return err
	}

	line, ok := c.Cart().FindProduct(product)
	if !ok {
		return fmt.Errorf("product %s missing from cart after add", product)
	}
	if _, err := step("update quantity", func() (struct{}, error) {
		_, err := c.UpdateQuantity(ctx, line.ID, line.Quantity+1)
		return struct{}{}, err
	}); err != nil {
		return err
	}
	fmt.Printf("cart: %d line(s), %d unit(s)\n", c.CartCount(), c.Cart().TotalQuantity())

	placed, err := step("checkout", func() (order.Order, error) {
		return c.Checkout(ctx)
	})
	if err != nil {
		return err
	}
	fmt.Printf("order %s: %s, total %.2f, %d item(s)\n", placed.ID, placed.Status.Label(), placed.TotalAmount, placed.ItemCount())

	page, err := step("list orders", func() (order.Page, error) {
		return c.Orders(ctx, order.View{})
	})
	if err != nil {
		return err
	}
	fmt.Printf("orders: %d matched, page %d/%d\n", page.Matched, page.Page, page.TotalPages)

	nav := c.Logout(ctx)
	s, err := c.Initialize(ctx)
	if err != nil {
		return fmt.Errorf("initialize after logout: %w", err)
	}
	if s != nil {
		return fmt.Errorf("session survived logout")
	}
	fmt.Printf("logged out, navigate to %s\n", nav.Path)
	return nil
}

func step[T any](name string, fn func() (T, error)) (T, error) {
	t0 := time.Now()
	v, err := fn()
	d := time.Since(t0).Round(time.Microsecond)
	if err != nil {
		fmt.Printf("%-16s FAIL %s: %v\n", name, d, err)
		return v, fmt.Errorf("%s: %w", name, err)
	}
	fmt.Printf("%-16s ok   %s\n", name, d)
	return v, nil
}

func openRedis(addr string) (redis.UniversalClient, func(), error) {
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("start miniredis: %w", err)
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{mr.Addr()},
		})
		fmt.Printf("using miniredis at %s\n", mr.Addr())
		return client, func() {
			_ = client.Close()
			mr.Close()
		}, nil
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{addr},
	})
	fmt.Printf("using redis at %s\n", addr)
	return client, func() { _ = client.Close() }, nil
}

func printCounters(s goCart.MetricsSnapshot) {
	for _, def := range internaldefs.CounterDefs {
		if v := s.Counters[def.ID]; v > 0 {
			fmt.Printf("%-40s %d\n", def.Name, v)
		}
	}
	for _, def := range internaldefs.HistogramDefs {
		buckets := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(s.Histograms[def.ID]))
		fmt.Printf("%-40s count=%d\n", def.Name, buckets[len(buckets)-1])
	}
}
