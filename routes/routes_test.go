package routes

import (
	"io"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/ratelimit"
	"github.com/junaidrashid-git/storefront-api/storage"
	"github.com/junaidrashid-git/storefront-api/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

func newEngine(t *testing.T, authLimit int) *gin.Engine {
	db := testutil.NewDB(t)
	r := gin.New()
	SetupRoutes(r, Deps{
		DB:                db,
		Tokens:            auth.NewTokens(db, "secret", time.Hour),
		Images:            storage.New(afero.NewMemMapFs()),
		AuthLimiter:       ratelimit.NewMemory(ratelimit.Config{Name: "auth", Limit: authLimit, Window: time.Hour}),
		APILimiter:        ratelimit.NewMemory(ratelimit.Config{Name: "api", Limit: 100, Window: time.Hour}),
		StoragePublicPath: "/storage",
	})
	return r
}

func withToken(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func register(t *testing.T, r http.Handler, email string) string {
	t.Helper()
	w := testutil.Serve(r, testutil.JSONRequest(http.MethodPost, "/register",
		`{"name":"Ada","email":"`+email+`","password":"password123","password_confirmation":"password123"}`))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return testutil.Decode(t, w)["access_token"].(string)
}

func TestShoppingFlow(t *testing.T) {
	r := newEngine(t, 100)
	seller := register(t, r, "seller@example.com")
	buyer := register(t, r, "buyer@example.com")

	w := testutil.Serve(r, withToken(testutil.JSONRequest(http.MethodGet, "/user", ""), buyer))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "buyer@example.com", testutil.Decode(t, w)["user"].(map[string]any)["email"])

	w = testutil.Serve(r, withToken(testutil.JSONRequest(http.MethodPost, "/categories", `{"name":"Shoes"}`), seller))
	require.Equal(t, http.StatusCreated, w.Code)
	categoryID := testutil.Decode(t, w)["category"].(map[string]any)["id"].(float64)

	req := testutil.MultipartRequest(t, http.MethodPost, "/products", map[string]string{
		"name":        "Red Shoe",
		"description": "A comfortable red shoe.",
		"price":       "25.00",
		"stock":       "4",
		"category_id": strconv.Itoa(int(categoryID)),
	}, map[string]testutil.File{"img": {Name: "shoe.png", Content: testutil.PNG}})
	w = testutil.Serve(r, withToken(req, seller))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	product := testutil.Decode(t, w)["product"].(map[string]any)
	productID := strconv.Itoa(int(product["id"].(float64)))

	// the image is publicly served
	w = testutil.Serve(r, testutil.JSONRequest(http.MethodGet, "/storage/"+product["img"].(string), ""))
	require.Equal(t, http.StatusOK, w.Code)
	got, _ := io.ReadAll(w.Body)
	require.Equal(t, testutil.PNG, got)

	w = testutil.Serve(r, withToken(testutil.JSONRequest(http.MethodPost, "/cart/add/"+productID, `{"quantity":3}`), buyer))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = testutil.Serve(r, withToken(testutil.JSONRequest(http.MethodPost, "/checkout", ""), buyer))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := testutil.Decode(t, w)["order"].(map[string]any)
	require.Equal(t, "Pending", order["status"])

	w = testutil.Serve(r, withToken(testutil.JSONRequest(http.MethodGet, "/products/"+productID, ""), buyer))
	require.EqualValues(t, 1, testutil.Decode(t, w)["product"].(map[string]any)["stock"])

	w = testutil.Serve(r, withToken(testutil.JSONRequest(http.MethodGet, "/cart", ""), buyer))
	require.Empty(t, testutil.Decode(t, w)["cart"].(map[string]any)["products"])

	w = testutil.Serve(r, withToken(testutil.JSONRequest(http.MethodGet, "/orders", ""), buyer))
	require.EqualValues(t, 1, testutil.Decode(t, w)["orders"].(map[string]any)["total"])
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	r := newEngine(t, 100)
	for _, path := range []string{"/user", "/categories", "/products", "/cart", "/orders"} {
		w := testutil.Serve(r, testutil.JSONRequest(http.MethodGet, path, ""))
		require.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestLoggedOutTokenIsRejected(t *testing.T) {
	r := newEngine(t, 100)
	token := register(t, r, "ada@example.com")

	w := testutil.Serve(r, withToken(testutil.JSONRequest(http.MethodGet, "/cart", ""), token))
	require.Equal(t, http.StatusOK, w.Code)

	w = testutil.Serve(r, withToken(testutil.JSONRequest(http.MethodPost, "/logout", ""), token))
	require.Equal(t, http.StatusNoContent, w.Code)

	w = testutil.Serve(r, withToken(testutil.JSONRequest(http.MethodGet, "/cart", ""), token))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRoutesAreThrottled(t *testing.T) {
	r := newEngine(t, 2)
	body := `{"email":"nobody@example.com","password":"password123"}`

	for i := 0; i < 2; i++ {
		w := testutil.Serve(r, testutil.JSONRequest(http.MethodPost, "/login", body))
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w := testutil.Serve(r, testutil.JSONRequest(http.MethodPost, "/login", body))
	require.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestHealthz(t *testing.T) {
	r := newEngine(t, 1)
	w := testutil.Serve(r, testutil.JSONRequest(http.MethodGet, "/healthz", ""))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"ok":true,"status":"up"}`, w.Body.String())
}
