// Package steps provides step definitions for BDD integration tests.
package steps

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/finance-tracker/budget-sync/config"
	"github.com/finance-tracker/budget-sync/internal/infra/dependency"
	"github.com/finance-tracker/budget-sync/internal/integration/adapters"
	"github.com/finance-tracker/budget-sync/test/integration/mock"
)

const testJWTSecret = "test-jwt-secret-key-for-testing-purposes"

// testContext holds the state of one scenario.
type testContext struct {
	server  *httptest.Server
	client  *http.Client
	db      *mock.Db
	cfg     *config.Config
	headers map[string]string

	response *response

	accessToken   string
	currentUserID uuid.UUID
	categories    map[string]uuid.UUID
	seedClock     time.Time
}

type response struct {
	status int
	body   any
}

// InitializeTestSuite sets up resources before any scenarios run.
func InitializeTestSuite(ctx *godog.TestSuiteContext) {
	ctx.BeforeSuite(func() {
		gin.SetMode(gin.TestMode)
		_ = os.Setenv("ENV", "test")

		// Migrate once; scenarios only clear rows.
		mock.NewDb()
		mock.NewRedis()
	})
}

// InitializeScenario registers all step definitions.
func InitializeScenario(ctx *godog.ScenarioContext) {
	test := &testContext{
		client: &http.Client{Timeout: 10 * time.Second},
	}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, test.before()
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if test.server != nil {
			test.server.Close()
			test.server = nil
		}
		return ctx, nil
	})

	// Background steps
	ctx.Given(`^the API server is running$`, test.theAPIServerIsRunning)
	ctx.Given(`^the import lock is backed by redis$`, test.theImportLockIsBackedByRedis)

	// Auth steps
	ctx.Given(`^I am authenticated as a new user$`, test.iAmAuthenticatedAsANewUser)
	ctx.Given(`^my access token has expired$`, test.myAccessTokenHasExpired)

	// Data setup steps
	ctx.Given(`^I have an account "([^"]*)" of type "([^"]*)"$`, test.iHaveAnAccountOfType)
	ctx.Given(`^another user has an account "([^"]*)"$`, test.anotherUserHasAnAccount)
	ctx.Given(`^a system category "([^"]*)" exists$`, test.aSystemCategoryExists)
	ctx.Given(`^I have a category "([^"]*)"$`, test.iHaveACategory)
	ctx.Given(`^the category "([^"]*)" has a subcategory "([^"]*)"$`, test.theCategoryHasASubcategory)
	ctx.Given(`^I have a transaction with external id "([^"]*)"$`, test.iHaveATransactionWithExternalID)
	ctx.Given(`^I have a default budget with entries:$`, test.iHaveADefaultBudgetWithEntries)
	ctx.Given(`^I have a budget for (\d+)-(\d+)$`, test.iHaveABudgetFor)
	ctx.Given(`^another import is running for me$`, test.anotherImportIsRunningForMe)

	// Header steps
	ctx.Given(`^the header contains the key "([^"]*)" with "([^"]*)"$`, test.theHeaderContainsTheKeyWith)

	// Request steps
	ctx.When(`^I send a "([^"]*)" request to "([^"]*)"$`, test.iSendARequestTo)
	ctx.When(`^I send a "([^"]*)" request to "([^"]*)" with body:$`, test.iSendARequestToWithBody)
	ctx.When(`^I upload "([^"]*)" to "([^"]*)" with content:$`, test.iUploadToWithContent)

	// Response assertion steps
	ctx.Then(`^the response status should be (\d+)$`, test.theResponseStatusShouldBe)
	ctx.Then(`^the response field "([^"]*)" should be "([^"]*)"$`, test.theResponseFieldShouldBe)
	ctx.Then(`^the response field "([^"]*)" should exist$`, test.theResponseFieldShouldExist)
	ctx.Then(`^the response field "([^"]*)" should have (\d+) items?$`, test.theResponseFieldShouldHaveItems)

	// Database assertion steps
	ctx.Then(`^the db should contain (\d+) objects in the "([^"]*)" table$`, test.theDbShouldContainObjectsInTheTable)
	ctx.Then(`^the db should contain (\d+) objects in "([^"]*)" with the values$`, test.theDbShouldContainObjectsInWithTheValues)
	ctx.Then(`^the import lock should be released$`, test.theImportLockShouldBeReleased)
}

func (t *testContext) before() error {
	t.headers = make(map[string]string)
	t.response = nil
	t.accessToken = ""
	t.currentUserID = uuid.Nil
	t.categories = make(map[string]uuid.UUID)
	t.seedClock = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	cfg := config.Load()
	cfg.Server.Environment = "test"
	cfg.JWT.Secret = testJWTSecret
	cfg.Redis.Enabled = false
	cfg.Scheduler.Enabled = false
	cfg.Metrics.Enabled = true
	cfg.Import.MaxRows = 50
	cfg.Import.MaxUploadBytes = 1 << 20
	t.cfg = cfg

	t.db = mock.NewDb()
	if err := t.db.ClearDB(); err != nil {
		return err
	}
	return mock.ClearRedis(mock.NewRedis())
}

func (t *testContext) startServer() {
	if t.server != nil {
		t.server.Close()
	}

	var injector *dependency.Injector
	if t.cfg.Redis.Enabled {
		injector = dependency.NewInjector(t.cfg, t.db.DbConn, mock.NewRedis(), func() bool { return true })
	} else {
		injector = dependency.NewInjector(t.cfg, t.db.DbConn, nil, func() bool { return true })
	}

	t.server = httptest.NewServer(injector.Router.Setup(t.cfg.Server.Environment))
}

func (t *testContext) theAPIServerIsRunning() error {
	t.startServer()

	resp, err := t.client.Get(t.server.URL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %d", resp.StatusCode)
	}
	return nil
}

func (t *testContext) theImportLockIsBackedByRedis() error {
	t.cfg.Redis.Enabled = true
	t.startServer()
	return nil
}

func (t *testContext) iAmAuthenticatedAsANewUser() error {
	t.currentUserID = uuid.New()
	token, err := adapters.NewTokenService(testJWTSecret).
		IssueAccessToken(t.currentUserID, "importer@example.com", time.Hour)
	if err != nil {
		return err
	}
	t.accessToken = token
	return nil
}

func (t *testContext) myAccessTokenHasExpired() error {
	token, err := adapters.NewTokenService(testJWTSecret).
		IssueAccessToken(t.currentUserID, "importer@example.com", -time.Minute)
	if err != nil {
		return err
	}
	t.accessToken = token
	return nil
}

func (t *testContext) theHeaderContainsTheKeyWith(key, value string) error {
	t.headers[key] = value
	return nil
}

// tick returns strictly increasing timestamps so seeded rows have a stable order.
func (t *testContext) tick() time.Time {
	t.seedClock = t.seedClock.Add(time.Second)
	return t.seedClock
}
