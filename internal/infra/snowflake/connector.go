package snowflake

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	sf "github.com/snowflakedb/gosnowflake"

	"github.com/finops-dwh/o2c/internal/config"
	"github.com/finops-dwh/o2c/internal/progress"
)

const driverName = "snowflake"

var (
	// ErrConnectTimeout means browser authentication did not complete inside
	// the configured window.
	ErrConnectTimeout = errors.New("snowflake: no authentication detected before timeout")

	// ErrInvalidWarehouse means the configured warehouse does not exist or is
	// not granted to the session role.
	ErrInvalidWarehouse = errors.New("snowflake: warehouse not found or not accessible")
)

// userMismatchMarker is the fragment Snowflake puts in the error when the
// browser SSO session belongs to a different user than the one being dialed.
const userMismatchMarker = "differs from the user currently logged in"

// IdentityPrompter asks the operator for a login identity.
type IdentityPrompter interface {
	PromptIdentity(reason string) (string, error)
}

// ConsolePrompter reads the identity from stdin.
type ConsolePrompter struct{}

func (ConsolePrompter) PromptIdentity(reason string) (string, error) {
	fmt.Printf("%s\nEmail: ", reason)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("ConsolePrompter: reading identity: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Connector establishes authenticated warehouse sessions over browser SSO.
type Connector struct {
	Config   config.WarehouseConfig
	Prompter IdentityPrompter
	Reporter progress.Reporter

	// openFn dials and pings; swapped out by tests.
	openFn func(ctx context.Context, dsn string) (*sqlx.DB, error)
}

// NewConnector wires a Connector for the given warehouse settings.
func NewConnector(cfg config.WarehouseConfig, prompter IdentityPrompter, rep progress.Reporter) *Connector {
	return &Connector{
		Config:   cfg,
		Prompter: prompter,
		Reporter: rep,
		openFn:   openAndPing,
	}
}

// Connect authenticates and returns a live session. The configured user is
// used when present, otherwise the operator is prompted. An identity-mismatch
// failure, where the browser is logged in as someone else, is retried exactly
// once with a freshly prompted identity; every other failure is terminal.
func (c *Connector) Connect(ctx context.Context) (*Session, error) {
	user := strings.TrimSpace(c.Config.User)
	if user == "" {
		prompted, err := c.prompt("No warehouse user configured. Enter the email address to log in with.")
		if err != nil {
			return nil, fmt.Errorf("Connector.Connect: %w", err)
		}
		user = prompted
	}

	c.report("connecting to %s as %s", c.Config.Account, user)
	db, err := c.dial(ctx, user)
	if err != nil && isUserMismatch(err) {
		prompted, perr := c.prompt("The browser session belongs to a different user. Enter the email address that matches it.")
		if perr != nil {
			return nil, fmt.Errorf("Connector.Connect: %w", perr)
		}
		user = prompted
		c.report("retrying connection as %s", user)
		db, err = c.dial(ctx, user)
	}
	if err != nil {
		return nil, fmt.Errorf("Connector.Connect: %w", err)
	}

	c.report("connected as %s", user)
	return newSession(db, c.Config, user), nil
}

type dialResult struct {
	db  *sqlx.DB
	err error
}

// dial opens and pings on a worker goroutine so the timeout covers the whole
// browser round trip. On timeout the worker is abandoned; callers treat the
// timeout as terminal.
func (c *Connector) dial(ctx context.Context, user string) (*sqlx.DB, error) {
	dsn, err := c.dsn(user)
	if err != nil {
		return nil, err
	}

	timeout := c.Config.ConnectTimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	done := make(chan dialResult, 1)
	go func() {
		db, openErr := c.openFn(ctx, dsn)
		done <- dialResult{db: db, err: openErr}
	}()

	select {
	case r := <-done:
		return r.db, r.err
	case <-time.After(timeout):
		return nil, fmt.Errorf("%w (waited %s)", ErrConnectTimeout, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// dsn renders the gosnowflake connection string for the given user.
func (c *Connector) dsn(user string) (string, error) {
	dsn, err := sf.DSN(&sf.Config{
		Account:       c.Config.Account,
		User:          user,
		Role:          c.Config.Role,
		Warehouse:     c.Config.Warehouse,
		Database:      c.Config.Database,
		Schema:        c.Config.Schema,
		Authenticator: sf.AuthTypeExternalBrowser,
	})
	if err != nil {
		return "", fmt.Errorf("Connector.dsn: building DSN: %w", err)
	}
	return dsn, nil
}

func (c *Connector) prompt(reason string) (string, error) {
	if c.Prompter == nil {
		return "", errors.New("no identity configured and no prompter available")
	}
	user, err := c.Prompter.PromptIdentity(reason)
	if err != nil {
		return "", err
	}
	if user == "" {
		return "", errors.New("no identity entered")
	}
	return user, nil
}

func (c *Connector) report(format string, args ...any) {
	if c.Reporter == nil {
		return
	}
	c.Reporter.Report(progress.Event{
		Stage:   progress.StageConnect,
		Message: fmt.Sprintf(format, args...),
	})
}

func openAndPing(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("authenticating: %w", err)
	}
	return db, nil
}

func isUserMismatch(err error) bool {
	return err != nil && strings.Contains(err.Error(), userMismatchMarker)
}
