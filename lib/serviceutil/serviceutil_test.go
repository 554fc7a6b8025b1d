package serviceutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerifyAccessToken(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	cases := []struct {
		name   string
		token  string
		header string
		status int
	}{
		{name: "disabled", token: "", header: "", status: http.StatusNoContent},
		{name: "missing", token: "secret", header: "", status: http.StatusUnauthorized},
		{name: "wrong", token: "secret", header: "Bearer nope", status: http.StatusUnauthorized},
		{name: "malformed", token: "secret", header: "secret", status: http.StatusUnauthorized},
		{name: "match", token: "secret", header: "Bearer secret", status: http.StatusNoContent},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			handler := VerifyAccessToken(c.token)(ok)
			req := httptest.NewRequest(http.MethodGet, "/ruc/20100070970", nil)
			if c.header != "" {
				req.Header.Set("Authorization", c.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			require.Equal(t, c.status, rec.Code)
		})
	}
}
