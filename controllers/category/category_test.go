package categorycontroller

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

func router(db *gorm.DB) *gin.Engine {
	r := gin.New()
	r.GET("/categories", Index(db))
	r.POST("/categories", Store(db))
	r.GET("/categories/:id", Show(db))
	r.PUT("/categories/:id", Update(db))
	r.DELETE("/categories/:id", Destroy(db))
	return r
}

func TestStore(t *testing.T) {
	db := testutil.NewDB(t)
	r := router(db)

	w := testutil.Serve(r, testutil.JSONRequest(http.MethodPost, "/categories", `{"name":"Shoes"}`))
	require.Equal(t, http.StatusCreated, w.Code)
	body := testutil.Decode(t, w)
	require.Equal(t, "Category created successfully", body["message"])
	require.Equal(t, "Shoes", body["category"].(map[string]any)["name"])
	require.Equal(t, true, body["category"].(map[string]any)["is_available"])

	w = testutil.Serve(r, testutil.JSONRequest(http.MethodPost, "/categories", `{"name":"Shoes"}`))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Contains(t, testutil.Decode(t, w)["errors"], "name")

	w = testutil.Serve(r, testutil.JSONRequest(http.MethodPost, "/categories", `{"name":"ab"}`))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestShowMissing(t *testing.T) {
	r := router(testutil.NewDB(t))

	w := testutil.Serve(r, testutil.JSONRequest(http.MethodGet, "/categories/999", ""))
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, false, testutil.Decode(t, w)["ok"])

	w = testutil.Serve(r, testutil.JSONRequest(http.MethodGet, "/categories/abc", ""))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDestroyKeepsRowUnavailable(t *testing.T) {
	db := testutil.NewDB(t)
	shoes := testutil.CreateCategory(t, db, "Shoes")
	testutil.CreateCategory(t, db, "Hats")
	r := router(db)

	w := testutil.Serve(r, testutil.JSONRequest(http.MethodDelete, "/categories/"+itoa(shoes.ID), ""))
	require.Equal(t, http.StatusOK, w.Code)

	var stored models.Category
	require.NoError(t, db.First(&stored, shoes.ID).Error)
	require.False(t, stored.IsAvailable)

	w = testutil.Serve(r, testutil.JSONRequest(http.MethodGet, "/categories", ""))
	require.Equal(t, http.StatusOK, w.Code)
	body := testutil.Decode(t, w)
	available := body["categoriesAvailable"].([]any)
	unavailable := body["categoriesUnavailable"].([]any)
	require.Len(t, available, 1)
	require.Len(t, unavailable, 1)
	require.Equal(t, "Shoes", unavailable[0].(map[string]any)["name"])
}

func TestUpdate(t *testing.T) {
	db := testutil.NewDB(t)
	shoes := testutil.CreateCategory(t, db, "Shoes")
	testutil.CreateCategory(t, db, "Hats")
	r := router(db)
	path := "/categories/" + itoa(shoes.ID)

	// renaming to itself is allowed
	w := testutil.Serve(r, testutil.JSONRequest(http.MethodPut, path, `{"name":"Shoes"}`))
	require.Equal(t, http.StatusOK, w.Code)

	w = testutil.Serve(r, testutil.JSONRequest(http.MethodPut, path, `{"name":"Hats"}`))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	require.NoError(t, db.Model(&shoes).Update("is_available", false).Error)
	w = testutil.Serve(r, testutil.JSONRequest(http.MethodPut, path, `{"name":"Sneakers","is_available":true}`))
	require.Equal(t, http.StatusOK, w.Code)
	cat := testutil.Decode(t, w)["category"].(map[string]any)
	require.Equal(t, "Sneakers", cat["name"])
	require.Equal(t, true, cat["is_available"])
}

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }
