package test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/binhbb2204/BookHub/internal/api"
	"github.com/binhbb2204/BookHub/internal/book"
	"github.com/binhbb2204/BookHub/internal/events"
	"github.com/binhbb2204/BookHub/internal/library"
	"github.com/binhbb2204/BookHub/internal/ratelimit"
	"github.com/binhbb2204/BookHub/pkg/logger"
	"github.com/binhbb2204/BookHub/pkg/models"
	"github.com/binhbb2204/BookHub/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() {
	logger.Init(logger.ERROR, true, nil)
	gin.SetMode(gin.TestMode)
}

type failingTallyStore struct {
	*library.MemoryStore
}

func (failingTallyStore) RatingTally(context.Context, string) (library.Tally, error) {
	return nil, errors.New("ratings unavailable")
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type client struct {
	t      *testing.T
	router *gin.Engine
	userID string
	token  string
}

func newRouter(t *testing.T, limiter *ratelimit.KeyedRateLimiter) *gin.Engine {
	return newRouterWithStore(t, library.NewMemoryStore(), limiter)
}

func newRouterWithStore(t *testing.T, store library.Store, limiter *ratelimit.KeyedRateLimiter) *gin.Engine {
	svc := library.NewService(store, library.Options{})
	return api.NewRouter(api.Options{
		JWTSecret:   testSecret,
		FrontendURL: "http://localhost:3000",
		Service:     svc,
		Limiter:     limiter,
	})
}

func newClient(t *testing.T, router *gin.Engine) *client {
	userID := library.NewID()
	token, err := utils.GenerateJWT(userID, "reader-"+userID[:8], testSecret)
	require.NoError(t, err)
	return &client{t: t, router: router, userID: userID, token: token}
}

func (c *client) do(method, path string, body interface{}) (int, envelope) {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(c.t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp := httptest.NewRecorder()
	c.router.ServeHTTP(resp, req)

	var env envelope
	require.NoError(c.t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	return resp.Code, env
}

func (c *client) addBook(title string) models.Book {
	code, env := c.do("POST", "/v1/book", gin.H{"title": title, "author": "Someone", "description": "Words"})
	require.Equal(c.t, http.StatusCreated, code)
	require.Equal(c.t, "Added Successfully", env.Message)

	var book models.Book
	require.NoError(c.t, json.Unmarshal(env.Data, &book))
	return book
}

func TestAddAndListBooks(t *testing.T) {
	router := newRouter(t, nil)
	c := newClient(t, router)

	dune := c.addBook("Dune")
	assert.Equal(t, c.userID, dune.AddedBy)
	c.addBook("Emma")

	code, env := c.do("GET", "/v1/book", nil)
	require.Equal(t, http.StatusOK, code)
	var books []models.Book
	require.NoError(t, json.Unmarshal(env.Data, &books))
	assert.Len(t, books, 2)

	code, env = c.do("GET", "/v1/book?q=dun", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &books))
	require.Len(t, books, 1)
	assert.Equal(t, dune.ID, books[0].ID)
}

func TestAddBook_MissingField(t *testing.T) {
	c := newClient(t, newRouter(t, nil))

	code, env := c.do("POST", "/v1/book", gin.H{"title": "Dune", "description": "Spice"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)
	assert.Equal(t, "Author is missing", env.Message)
}

func TestRequiresToken(t *testing.T) {
	c := newClient(t, newRouter(t, nil))
	c.token = ""

	code, env := c.do("GET", "/v1/book", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)
}

func TestBookDetail(t *testing.T) {
	router := newRouter(t, nil)
	c := newClient(t, router)
	book := c.addBook("Dune")

	code, env := c.do("GET", "/v1/book/"+book.ID, nil)
	require.Equal(t, http.StatusOK, code)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &raw))
	assert.Equal(t, book.ID, raw["_id"])
	assert.Equal(t, false, raw["inFavourite"])
	assert.Equal(t, map[string]interface{}{
		"avgRating":      0.0,
		"reviewCount":    0.0,
		"recommendation": 0.0,
		"individualPerc": map[string]interface{}{"1": 0.0, "2": 0.0, "3": 0.0, "4": 0.0, "5": 0.0},
	}, raw["rating"])

	code, env = c.do("GET", "/v1/book/"+library.NewID(), nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "No such Book was found", env.Message)

	code, env = c.do("GET", "/v1/book/not-an-id", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid Book ID", env.Message)
}

func TestRatingFlow(t *testing.T) {
	router := newRouter(t, nil)
	owner := newClient(t, router)
	book := owner.addBook("Dune")

	for _, v := range []int{5, 5, 5, 1} {
		code, env := newClient(t, router).do("POST", "/v1/book/rating", gin.H{"book": book.ID, "rating": v})
		require.Equal(t, http.StatusCreated, code)
		require.Equal(t, "Added Rating", env.Message)
	}

	code, env := owner.do("POST", "/v1/book/rating", `{"book":"`+book.ID+`","rating":"1"}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Added Rating", env.Message)

	code, env = owner.do("POST", "/v1/book/rating", gin.H{"book": book.ID, "rating": 1})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Updated Rating", env.Message)

	code, env = owner.do("GET", "/v1/book/"+book.ID+"/statistics", nil)
	require.Equal(t, http.StatusOK, code)
	var stats models.RatingStatistics
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 3.4, stats.AvgRating)
	assert.Equal(t, 5, stats.ReviewCount)
	assert.Equal(t, 60.0, stats.Recommendation)
	assert.Equal(t, 40, stats.IndividualPerc["1"])
	assert.Equal(t, 60, stats.IndividualPerc["5"])
}

func TestRating_Invalid(t *testing.T) {
	c := newClient(t, newRouter(t, nil))
	book := c.addBook("Dune")

	for _, body := range []string{
		`{"book":"` + book.ID + `","rating":0}`,
		`{"book":"` + book.ID + `","rating":6}`,
		`{"book":"` + book.ID + `","rating":"3.5"}`,
		`{"book":"` + book.ID + `","rating":"abc"}`,
		`{"book":"` + book.ID + `"}`,
	} {
		code, env := c.do("POST", "/v1/book/rating", body)
		assert.Equal(t, http.StatusBadRequest, code, body)
		assert.Equal(t, "Invalid Rating", env.Message, body)
	}

	code, env := c.do("POST", "/v1/book/rating", `{"book":"abc","rating":"abc"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid Book ID", env.Message)
}

func TestFavourites(t *testing.T) {
	router := newRouter(t, nil)
	owner := newClient(t, router)
	reader := newClient(t, router)
	book := owner.addBook("Dune")

	code, env := reader.do("POST", "/v1/book/"+book.ID+"/favourite", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Added to favourites", env.Message)

	code, env = reader.do("GET", "/v1/book/favourites", nil)
	require.Equal(t, http.StatusOK, code)
	var books []models.Book
	require.NoError(t, json.Unmarshal(env.Data, &books))
	require.Len(t, books, 1)

	code, env = reader.do("POST", "/v1/book/"+book.ID+"/favourite", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Removed from favourites", env.Message)

	code, env = reader.do("POST", "/v1/book/"+library.NewID()+"/favourite", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestDeleteBook(t *testing.T) {
	router := newRouter(t, nil)
	owner := newClient(t, router)
	reader := newClient(t, router)
	book := owner.addBook("Dune")

	code, _ := reader.do("POST", "/v1/book/"+book.ID+"/favourite", nil)
	require.Equal(t, http.StatusOK, code)

	code, env := reader.do("DELETE", "/v1/book/"+book.ID, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.False(t, env.Success)

	code, env = owner.do("DELETE", "/v1/book/"+book.ID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Deleted Successfully", env.Message)

	code, env = reader.do("GET", "/v1/book/favourites", nil)
	require.Equal(t, http.StatusOK, code)
	var books []models.Book
	require.NoError(t, json.Unmarshal(env.Data, &books))
	assert.Empty(t, books)
}

func TestRateLimitedWrites(t *testing.T) {
	limiter := ratelimit.New(0.001, 1)
	defer limiter.Stop()
	c := newClient(t, newRouter(t, limiter))

	c.addBook("Dune")
	code, env := c.do("POST", "/v1/book", gin.H{"title": "Emma", "author": "Austen", "description": "d"})
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.False(t, env.Success)
}

func TestPublicRoutes(t *testing.T) {
	c := newClient(t, newRouter(t, nil))
	c.token = ""

	code, env := c.do("GET", "/test", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Backend is working fine.", env.Message)

	code, env = c.do("GET", "/nowhere", nil)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "No such matching route was found", env.Message)
}

func TestBookDetail_StatisticsUnavailable(t *testing.T) {
	router := newRouterWithStore(t, failingTallyStore{library.NewMemoryStore()}, nil)
	c := newClient(t, router)
	book := c.addBook("Dune")

	code, _ := c.do("POST", "/v1/book/rating", gin.H{"book": book.ID, "rating": 5})
	require.Equal(t, http.StatusCreated, code)

	code, env := c.do("GET", "/v1/book/"+book.ID, nil)
	require.Equal(t, http.StatusOK, code)
	require.True(t, env.Success)

	var detail models.BookDetail
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, book.ID, detail.ID)
	assert.Equal(t, c.userID, detail.AddedBy)
	assert.Equal(t, library.ZeroStatistics(), detail.Rating)

	code, env = c.do("GET", "/v1/book/"+book.ID+"/statistics", nil)
	require.Equal(t, http.StatusOK, code)
	var stats models.RatingStatistics
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, library.ZeroStatistics(), stats)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.EventType
}

func (p *recordingPublisher) Publish(_ string, eventType events.EventType, _ interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
}

func TestPublishedActivity(t *testing.T) {
	store := library.NewMemoryStore()
	svc := library.NewService(store, library.Options{})
	pub := &recordingPublisher{}
	h := book.NewHandler(svc, pub)

	userID := library.NewID()
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})
	router.POST("/book/:id/favourite", h.ToggleFavourite)
	router.POST("/book/rating", h.AddRating)
	router.DELETE("/book/:id", h.DeleteBook)

	b, err := svc.AddBook(context.Background(), userID, models.AddBookRequest{Title: "Dune", Author: "Frank Herbert", Description: "Spice"})
	require.NoError(t, err)

	c := &client{t: t, router: router}
	code, _ := c.do("POST", "/book/"+b.ID+"/favourite", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, pub.events, "favourite toggles stay private")

	code, _ = c.do("POST", "/book/rating", gin.H{"book": b.ID, "rating": 4})
	require.Equal(t, http.StatusCreated, code)
	code, _ = c.do("DELETE", "/book/"+b.ID, nil)
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, []events.EventType{events.EventRatingUpdated, events.EventBookDeleted}, pub.events)
}
