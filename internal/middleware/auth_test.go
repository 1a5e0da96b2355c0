package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quiz_stats_backend/internal/config"
	"quiz_stats_backend/internal/util"

	"github.com/gin-gonic/gin"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newRouter(cfg *config.Config, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/", AuthMiddleware(cfg))
	if len(roles) > 0 {
		g.Use(RoleMiddleware(roles...))
	}
	g.GET("/ping", func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": user.UserID})
	})
	return r
}

func do(r http.Handler, token string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestAuthMiddleware(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: testSecret}}
	r := newRouter(cfg)

	valid, err := util.GenerateJWT(42, util.RoleStudent, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	expired, err := util.GenerateJWT(42, util.RoleStudent, testSecret, -time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	forged, err := util.GenerateJWT(42, util.RoleStudent, "another-secret-another-secret-xx", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	cases := []struct {
		name  string
		token string
		want  int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "not-a-jwt", http.StatusUnauthorized},
		{"expired", expired, http.StatusUnauthorized},
		{"wrong secret", forged, http.StatusUnauthorized},
		{"valid", valid, http.StatusOK},
	}
	for _, tc := range cases {
		if got := do(r, tc.token); got != tc.want {
			t.Fatalf("%s: want=%d got=%d", tc.name, tc.want, got)
		}
	}
}

func TestRoleMiddleware(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: testSecret}}
	r := newRouter(cfg, "reviewer")

	student, _ := util.GenerateJWT(1, util.RoleStudent, testSecret, time.Hour)
	reviewer, _ := util.GenerateJWT(2, "reviewer", testSecret, time.Hour)
	admin, _ := util.GenerateJWT(3, util.RoleAdmin, testSecret, time.Hour)

	if got := do(r, student); got != http.StatusForbidden {
		t.Fatalf("student: want=%d got=%d", http.StatusForbidden, got)
	}
	if got := do(r, reviewer); got != http.StatusOK {
		t.Fatalf("reviewer: want=%d got=%d", http.StatusOK, got)
	}
	if got := do(r, admin); got != http.StatusOK {
		t.Fatalf("admin: want=%d got=%d", http.StatusOK, got)
	}
}
