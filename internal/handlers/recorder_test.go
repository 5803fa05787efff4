package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

type testRecorder struct {
	*httptest.ResponseRecorder
}

func (r *testRecorder) body() string {
	return r.ResponseRecorder.Body.String()
}

func (r *testRecorder) doc(t *testing.T) *goquery.Document {
	t.Helper()
	return parseDoc(t, r.ResponseRecorder)
}
