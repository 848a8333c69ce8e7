package rest_test

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shillien-project/portal/api/rest"
	"github.com/shillien-project/portal/cache"
	"github.com/shillien-project/portal/config"
	"github.com/shillien-project/portal/game/droprate"
	"github.com/shillien-project/portal/game/item"
	"github.com/shillien-project/portal/game/market"
	mw "github.com/shillien-project/portal/middleware"
	"github.com/shillien-project/portal/resource"
	"github.com/shillien-project/portal/scheduler"
	"github.com/shillien-project/portal/testutil"
)

const testAdminKey = "test-admin-key"

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	cache  cache.Cache
	pubsub cache.PubSub
	sched  *scheduler.Scheduler
}

// newTestEnv wires the full API surface against in-memory backends,
// mirroring the route layout in main.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	c, ps := testutil.SetupTestCache(t)
	logger := zap.NewNop()

	res := resource.NewLoader(t.TempDir())
	require.NoError(t, res.Load())

	sec := config.SecurityConfig{JWTSecret: "test-secret", JWTTTLH: 72 * time.Hour}
	gameCfg := config.GameConfig{MaxCharacters: 3, StarterAdena: 1000}
	marketCfg := config.MarketConfig{
		StackableMinPrice: 10, StackableMaxPrice: 500,
		UniqueMinPrice: 1000, UniqueMaxPrice: 50000,
		CatalogTTL: time.Hour,
	}

	items := item.NewService(db, res, gameCfg, logger)
	marketSvc := market.NewService(c, res, marketCfg, rand.New(rand.NewSource(1)), logger)
	drops := droprate.NewService(res)
	sched := scheduler.New(logger)
	t.Cleanup(sched.Stop)

	authH := rest.NewAuthHandler(db, c, sec)
	charH := rest.NewCharacterHandler(db, items, gameCfg)
	invH := rest.NewInventoryHandler(db, items)
	marketH := rest.NewMarketHandler(db, items, marketSvc, nil, logger)
	dropH := rest.NewDropRateHandler(drops)
	adminH := rest.NewAdminHandler(db, marketSvc, ps, sched, logger)

	r := gin.New()
	api := r.Group("/api")
	{
		api.POST("/auth/login", authH.Login)
		api.POST("/auth/logout", mw.Auth(sec, c), authH.Logout)

		chars := api.Group("/characters", mw.Auth(sec, c))
		chars.GET("", charH.List)
		chars.POST("", charH.Create)
		chars.DELETE("/:id", charH.Delete)
		chars.GET("/:id/inventory", invH.List)
		chars.POST("/:id/inventory/split", invH.Split)
		chars.POST("/:id/inventory/combine", invH.Combine)

		mkt := api.Group("/market", mw.Auth(sec, c))
		mkt.GET("/catalog", marketH.Catalog)
		mkt.POST("/buy", marketH.Buy)
		mkt.POST("/sell", marketH.Sell)

		api.GET("/droprates", dropH.List)
		api.GET("/droprates/:monster", dropH.Monster)

		admin := api.Group("/admin", rest.AdminAuth(testAdminKey))
		admin.GET("/metrics", adminH.Metrics)
		admin.POST("/announce", adminH.Announce)
		admin.POST("/accounts/:id/ban", adminH.BanAccount)
	}

	return &testEnv{router: r, db: db, cache: c, pubsub: ps, sched: sched}
}

func (e *testEnv) do(method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// login registers (first call) or authenticates and returns the bearer token.
func (e *testEnv) login(t *testing.T, username string) string {
	t.Helper()
	w := e.do(http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": "pass1234",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := decode(t, w)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

// createCharacter makes a character for the token's account and returns its ID.
func (e *testEnv) createCharacter(t *testing.T, token, name string) int64 {
	t.Helper()
	w := e.do(http.MethodPost, "/api/characters", map[string]string{
		"name":  name,
		"class": "Human Fighter",
	}, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id, _ := decode(t, w)["id"].(float64)
	require.NotZero(t, id)
	return int64(id)
}

func bearer(token string) []string { return []string{"Authorization", "Bearer " + token} }
