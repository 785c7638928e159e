package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createBookViaAPI(t *testing.T, server *Server, token, ownerEmail, title string) string {
	t.Helper()

	body := fmt.Sprintf(`{
		"email": %q,
		"book_title": %q,
		"book_author": "Some Author",
		"book_category": "Fiction",
		"total_page": 300,
		"reading_status": "Reading"
	}`, ownerEmail, title)

	rec := doRequest(t, server, http.MethodPost, "/add-book", body, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	data := decodeData(t, rec)
	id, ok := data["_id"].(string)
	require.True(t, ok)
	return id
}

func TestCreateBookCoercesPageCountString(t *testing.T) {
	server, _ := setupTestServer(t)
	token := createTestUserWithToken(t, server, "alice@example.com")

	body := `{
		"email": "alice@example.com",
		"book_title": "String Pages",
		"book_author": "Some Author",
		"book_category": "Fiction",
		"total_page": "120",
		"reading_status": "Reading"
	}`
	rec := doRequest(t, server, http.MethodPost, "/add-book", body, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	data := decodeData(t, rec)
	// Stored and returned as a number regardless of input form.
	assert.Equal(t, float64(120), data["total_page"])
}

func TestCreateBookEmailMismatchStoresNothing(t *testing.T) {
	server, _ := setupTestServer(t)
	token := createTestUserWithToken(t, server, "alice@example.com")

	body := `{
		"email": "mallory@example.com",
		"book_title": "Planted",
		"book_author": "Some Author",
		"book_category": "Fiction"
	}`
	rec := doRequest(t, server, http.MethodPost, "/add-book", body, token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, server, http.MethodGet, "/books?email=alice@example.com", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeDataSlice(t, rec))
}

func TestListOwnBooksEmailGuard(t *testing.T) {
	server, _ := setupTestServer(t)
	token := createTestUserWithToken(t, server, "alice@example.com")
	createBookViaAPI(t, server, token, "alice@example.com", "Mine")

	// Matching email returns the owner's books.
	rec := doRequest(t, server, http.MethodGet, "/books?email=alice@example.com", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeDataSlice(t, rec), 1)

	// A different email is rejected, not silently swapped.
	rec = doRequest(t, server, http.MethodGet, "/books?email=bob@example.com", "", token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Missing email is a bad request.
	rec = doRequest(t, server, http.MethodGet, "/books", "", token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetBookPublic(t *testing.T) {
	server, _ := setupTestServer(t)
	token := createTestUserWithToken(t, server, "alice@example.com")
	bookID := createBookViaAPI(t, server, token, "alice@example.com", "Public Read")

	rec := doRequest(t, server, http.MethodGet, "/book/"+bookID, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	assert.Equal(t, "Public Read", data["book_title"])

	rec = doRequest(t, server, http.MethodGet, "/book/book-missing", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetBookForEditOwnerOnly(t *testing.T) {
	server, _ := setupTestServer(t)
	aliceToken := createTestUserWithToken(t, server, "alice@example.com")
	bobToken := createTestUserWithToken(t, server, "bob@example.com")
	bookID := createBookViaAPI(t, server, aliceToken, "alice@example.com", "Editable")

	rec := doRequest(t, server, http.MethodGet, "/update-book/"+bookID, "", aliceToken)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, server, http.MethodGet, "/update-book/"+bookID, "", bobToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, server, http.MethodGet, "/update-book/book-missing", "", aliceToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateBookOwnerOnly(t *testing.T) {
	server, _ := setupTestServer(t)
	aliceToken := createTestUserWithToken(t, server, "alice@example.com")
	bobToken := createTestUserWithToken(t, server, "bob@example.com")
	bookID := createBookViaAPI(t, server, aliceToken, "alice@example.com", "Before")

	update := `{
		"email": "alice@example.com",
		"book_title": "After",
		"book_author": "Some Author",
		"book_category": "Fiction",
		"total_page": "365",
		"reading_status": "Read"
	}`
	rec := doRequest(t, server, http.MethodPatch, "/update-book/"+bookID, update, aliceToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	assert.Equal(t, "After", data["book_title"])
	assert.Equal(t, float64(365), data["total_page"])

	hijack := `{
		"email": "bob@example.com",
		"book_title": "Hijacked",
		"book_author": "Some Author",
		"book_category": "Fiction"
	}`
	rec = doRequest(t, server, http.MethodPatch, "/update-book/"+bookID, hijack, bobToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, server, http.MethodGet, "/book/"+bookID, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "After", decodeData(t, rec)["book_title"])
}

func TestUpvoteSelfReturnsMessage(t *testing.T) {
	server, _ := setupTestServer(t)
	token := createTestUserWithToken(t, server, "alice@example.com")
	bookID := createBookViaAPI(t, server, token, "alice@example.com", "Self Vote")

	rec := doRequest(t, server, http.MethodPatch, "/upvote/"+bookID, `{"email":"alice@example.com"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "You cannot upvote your own book", env.Message)
	assert.Nil(t, env.Data)

	// Upvote list unchanged.
	rec = doRequest(t, server, http.MethodGet, "/book/"+bookID, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeData(t, rec)["upvote"])
}

func TestUpvoteByOtherUser(t *testing.T) {
	server, _ := setupTestServer(t)
	aliceToken := createTestUserWithToken(t, server, "alice@example.com")
	bookID := createBookViaAPI(t, server, aliceToken, "alice@example.com", "Voted")

	rec := doRequest(t, server, http.MethodPatch, "/upvote/"+bookID, `{"email":"bob@example.com"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeData(t, rec)
	upvotes, ok := data["upvote"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"bob@example.com"}, upvotes)
}

func TestUpvoteMissingBook(t *testing.T) {
	server, _ := setupTestServer(t)

	rec := doRequest(t, server, http.MethodPatch, "/upvote/book-missing", `{"email":"bob@example.com"}`, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, server, http.MethodPatch, "/upvote/book-missing", `{}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetReadingStatus(t *testing.T) {
	server, _ := setupTestServer(t)
	token := createTestUserWithToken(t, server, "alice@example.com")
	bookID := createBookViaAPI(t, server, token, "alice@example.com", "Status Book")

	rec := doRequest(t, server, http.MethodPatch, "/book/"+bookID, `{"status":"Read"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Read", decodeData(t, rec)["reading_status"])

	rec = doRequest(t, server, http.MethodPatch, "/book/"+bookID, `{"status":"Skimming"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteBook(t *testing.T) {
	server, _ := setupTestServer(t)
	aliceToken := createTestUserWithToken(t, server, "alice@example.com")
	bobToken := createTestUserWithToken(t, server, "bob@example.com")
	bookID := createBookViaAPI(t, server, aliceToken, "alice@example.com", "Doomed")

	rec := doRequest(t, server, http.MethodDelete, "/books/"+bookID, "", bobToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, server, http.MethodDelete, "/books/"+bookID, "", aliceToken)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, server, http.MethodDelete, "/books/"+bookID, "", aliceToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListBooksPaginationWindows(t *testing.T) {
	server, _ := setupTestServer(t)
	token := createTestUserWithToken(t, server, "alice@example.com")

	const total = 12
	for i := range total {
		createBookViaAPI(t, server, token, "alice@example.com", fmt.Sprintf("Book %02d", i))
	}

	rec := doRequest(t, server, http.MethodGet, "/all-books?page=1&limit=9", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page1 := decodeData(t, rec)
	assert.Equal(t, float64(total), page1["totalBooks"])
	assert.Equal(t, float64(2), page1["totalPages"])
	assert.Len(t, page1["books"].([]any), 9)

	rec = doRequest(t, server, http.MethodGet, "/all-books?page=2&limit=9", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page2 := decodeData(t, rec)
	assert.Len(t, page2["books"].([]any), 3)

	// Windows are disjoint.
	seen := make(map[string]bool)
	for _, page := range []map[string]any{page1, page2} {
		for _, item := range page["books"].([]any) {
			book := item.(map[string]any)
			id := book["_id"].(string)
			assert.False(t, seen[id])
			seen[id] = true
		}
	}
	assert.Len(t, seen, total)
}

func TestListBooksFilters(t *testing.T) {
	server, _ := setupTestServer(t)
	token := createTestUserWithToken(t, server, "alice@example.com")
	createBookViaAPI(t, server, token, "alice@example.com", "Distributed Systems")
	createBookViaAPI(t, server, token, "alice@example.com", "Cooking at Home")

	rec := doRequest(t, server, http.MethodGet, "/all-books?searchParams=distributed", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	assert.Equal(t, float64(1), data["totalBooks"])

	rec = doRequest(t, server, http.MethodGet, "/all-books?filteredStatus=Reading", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data = decodeData(t, rec)
	assert.Equal(t, float64(2), data["totalBooks"])
}

func TestListPopularBooksCapped(t *testing.T) {
	server, _ := setupTestServer(t)
	aliceToken := createTestUserWithToken(t, server, "alice@example.com")

	var bookIDs []string
	for i := range 8 {
		bookIDs = append(bookIDs, createBookViaAPI(t, server, aliceToken, "alice@example.com", fmt.Sprintf("Book %d", i)))
	}

	// Book 7 gets two votes, book 6 gets one.
	for range 2 {
		rec := doRequest(t, server, http.MethodPatch, "/upvote/"+bookIDs[7], `{"email":"bob@example.com"}`, "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := doRequest(t, server, http.MethodPatch, "/upvote/"+bookIDs[6], `{"email":"bob@example.com"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, server, http.MethodGet, "/popular-books", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	books := decodeDataSlice(t, rec)
	require.Len(t, books, 6)
	first := books[0].(map[string]any)
	second := books[1].(map[string]any)
	assert.Equal(t, "Book 7", first["book_title"])
	assert.Equal(t, "Book 6", second["book_title"])
}

func TestListBooksByCategory(t *testing.T) {
	server, _ := setupTestServer(t)
	token := createTestUserWithToken(t, server, "alice@example.com")
	createBookViaAPI(t, server, token, "alice@example.com", "A Novel")

	rec := doRequest(t, server, http.MethodGet, "/categories/fiction", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeDataSlice(t, rec), 1)

	rec = doRequest(t, server, http.MethodGet, "/categories/history", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeDataSlice(t, rec))
}
