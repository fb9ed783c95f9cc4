package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/infra/security"
)

func newAuthTestRouter(t *testing.T, roles ...string) (*gin.Engine, *security.JWTManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := security.NewJWTManager("0123456789abcdef0123456789abcdef", 15*time.Minute)
	if err != nil {
		t.Fatalf("NewJWTManager returned error: %v", err)
	}

	r := gin.New()
	chain := []gin.HandlerFunc{RequireAuth(tokens)}
	if len(roles) > 0 {
		chain = append(chain, RequireRole(roles...))
	}
	chain = append(chain, func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/protected", chain...)

	return r, tokens
}

func doProtected(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuthRejectsMissingHeader(t *testing.T) {
	r, _ := newAuthTestRouter(t)

	if w := doProtected(r, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if w := doProtected(r, "Token abc"); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for non-bearer scheme, got %d", w.Code)
	}
	if w := doProtected(r, "Bearer "); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for empty token, got %d", w.Code)
	}
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	r, tokens := newAuthTestRouter(t)

	token, err := tokens.Issue(uuid.NewString(), "alice@example.com", []string{"user"})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if w := doProtected(r, "Bearer "+token); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRequireAuthRejectsGarbageToken(t *testing.T) {
	r, _ := newAuthTestRouter(t)

	if w := doProtected(r, "Bearer not.a.token"); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireRoleEnforcesMembership(t *testing.T) {
	r, tokens := newAuthTestRouter(t, "auditor", "admin")

	userToken, err := tokens.Issue(uuid.NewString(), "alice@example.com", []string{"user"})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	auditorToken, err := tokens.Issue(uuid.NewString(), "carol@example.com", []string{"auditor"})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if w := doProtected(r, "Bearer "+userToken); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for user role, got %d", w.Code)
	}
	if w := doProtected(r, "Bearer "+auditorToken); w.Code != http.StatusOK {
		t.Fatalf("expected 200 for auditor role, got %d", w.Code)
	}
}
