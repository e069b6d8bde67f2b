package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nebari-dev/quill/internal/service"
)

func TestBindJSON_TypeErrorsUseJSONNames(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		body    string
		field   string
		message string
	}{
		{"status number", `{"status":5}`, "status", "Status must be a string"},
		{"title object", `{"title":{}}`, "title", "Title must be a string"},
		{"content array", `{"content":[1]}`, "content", "Content must be a string"},
		{"empty body", ``, "body", "Request body is required"},
		{"broken json", `{"title":`, "body", "Invalid JSON body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var req service.UpdateArticle
			if bindJSON(c, &req) {
				t.Fatal("expected bind to fail")
			}
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}

			var body ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(body.Errors) != 1 || body.Errors[0].Field != tt.field || body.Errors[0].Message != tt.message {
				t.Errorf("unexpected errors %+v", body.Errors)
			}
		})
	}
}

func TestJSONKind(t *testing.T) {
	tests := []struct {
		value interface{}
		want  string
	}{
		{"", "a string"},
		{new(int), "a number"},
		{1.5, "a number"},
		{true, "a boolean"},
		{[]string{}, "an array"},
		{map[string]int{}, "an object"},
		{struct{}{}, "an object"},
	}
	for _, tt := range tests {
		if got := jsonKind(reflect.TypeOf(tt.value)); got != tt.want {
			t.Errorf("%T: expected %q, got %q", tt.value, tt.want, got)
		}
	}
}
