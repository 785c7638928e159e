package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndListReviews(t *testing.T) {
	server, _ := setupTestServer(t)
	aliceToken := createTestUserWithToken(t, server, "alice@example.com")
	bookID := createBookViaAPI(t, server, aliceToken, "alice@example.com", "Reviewed")

	rec := doRequest(t, server, http.MethodPost, "/reviews",
		`{"reviewerEmail":"bob@example.com","reviewedBookId":"`+bookID+`","comment":"Great read"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	data := decodeData(t, rec)
	assert.Equal(t, "bob@example.com", data["reviewerEmail"])
	assert.Equal(t, bookID, data["reviewedBookId"])

	rec = doRequest(t, server, http.MethodGet, "/all-reviews/"+bookID, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	reviews := decodeDataSlice(t, rec)
	require.Len(t, reviews, 1)
	assert.Equal(t, "Great read", reviews[0].(map[string]any)["comment"])
}

func TestDuplicateReviewReturnsMessage(t *testing.T) {
	server, _ := setupTestServer(t)
	aliceToken := createTestUserWithToken(t, server, "alice@example.com")
	bookID := createBookViaAPI(t, server, aliceToken, "alice@example.com", "Reviewed")

	rec := doRequest(t, server, http.MethodPost, "/reviews",
		`{"reviewerEmail":"bob@example.com","reviewedBookId":"`+bookID+`","comment":"First"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, server, http.MethodPost, "/reviews",
		`{"reviewerEmail":"bob@example.com","reviewedBookId":"`+bookID+`","comment":"Second"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "You have already added a review for this book", env.Message)

	// The original review is untouched.
	rec = doRequest(t, server, http.MethodGet, "/all-reviews/"+bookID, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	reviews := decodeDataSlice(t, rec)
	require.Len(t, reviews, 1)
	assert.Equal(t, "First", reviews[0].(map[string]any)["comment"])
}

func TestCreateReviewDanglingBookReference(t *testing.T) {
	server, _ := setupTestServer(t)

	// No catalog check on the reviewed book id.
	rec := doRequest(t, server, http.MethodPost, "/reviews",
		`{"reviewerEmail":"carol@example.com","reviewedBookId":"book-gone","comment":"Ghost review"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doRequest(t, server, http.MethodGet, "/all-reviews/book-gone", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeDataSlice(t, rec), 1)
}

func TestUpdateReview(t *testing.T) {
	server, _ := setupTestServer(t)
	aliceToken := createTestUserWithToken(t, server, "alice@example.com")
	bookID := createBookViaAPI(t, server, aliceToken, "alice@example.com", "Reviewed")

	rec := doRequest(t, server, http.MethodPost, "/reviews",
		`{"reviewerEmail":"bob@example.com","reviewedBookId":"`+bookID+`","comment":"Before"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	reviewID := decodeData(t, rec)["_id"].(string)

	rec = doRequest(t, server, http.MethodPatch, "/update-review/"+reviewID, `{"comment":"After"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "After", decodeData(t, rec)["comment"])

	rec = doRequest(t, server, http.MethodPatch, "/update-review/review-missing", `{"comment":"Nope"}`, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteReview(t *testing.T) {
	server, _ := setupTestServer(t)
	aliceToken := createTestUserWithToken(t, server, "alice@example.com")
	bookID := createBookViaAPI(t, server, aliceToken, "alice@example.com", "Reviewed")

	rec := doRequest(t, server, http.MethodPost, "/reviews",
		`{"reviewerEmail":"bob@example.com","reviewedBookId":"`+bookID+`","comment":"Doomed"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	reviewID := decodeData(t, rec)["_id"].(string)

	rec = doRequest(t, server, http.MethodDelete, "/reviews/"+reviewID, "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, server, http.MethodDelete, "/reviews/"+reviewID, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContactFormDeliversMessage(t *testing.T) {
	server, mailer := setupTestServer(t)

	rec := doRequest(t, server, http.MethodPost, "/contact",
		`{"name":"Visitor","email":"visitor@example.com","message":"I love the catalog"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data := decodeData(t, rec)
	assert.NotEmpty(t, data["reference_id"])

	require.Len(t, mailer.Sent, 1)
	assert.Equal(t, "visitor@example.com", mailer.Sent[0].Email)
}

func TestContactFormValidation(t *testing.T) {
	server, mailer := setupTestServer(t)

	rec := doRequest(t, server, http.MethodPost, "/contact",
		`{"name":"Visitor","email":"not-an-email","message":"hi"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, mailer.Sent)
}
