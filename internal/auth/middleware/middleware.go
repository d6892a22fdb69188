package auth

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pathwise/pathwise/internal/rbac"
)

type AuthService struct{ hmac []byte }

func NewAuthService(secret string) *AuthService { return &AuthService{hmac: []byte(secret)} }

type Claims struct {
	Sub       string `json:"sub"`
	Role      string `json:"role"` // "student" or "admin"
	SessionID string `json:"sid"`  // progress-store scope
	jwt.RegisteredClaims
}

func (a *AuthService) IssueJWT(sub, role, sessionID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Sub:       sub,
		Role:      role,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "pathwise",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(30 * 24 * time.Hour)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.hmac)
}

func (a *AuthService) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.hmac, nil
	})
	if err != nil || !token.Valid {
		return nil, err
	}
	c, _ := token.Claims.(*Claims)
	return c, nil
}

// AdminCredentials checks a login against the configured admin account
// and then the users table.
type AdminCredentials struct {
	Username string
	PassHash string // bcrypt
}

// POST /auth/session  -> anonymous learner session token
func SessionHandler(a *AuthService, db *sql.DB) http.HandlerFunc {
	type out struct {
		AccessToken string `json:"access_token"`
		SessionID   string `json:"session_id"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := uuid.NewString()
		sub := "learner|" + sessionID

		if db != nil {
			_, _ = db.ExecContext(r.Context(),
				`INSERT INTO users (id, username, role, created_at) VALUES ($1,$2,$3,$4)`,
				sub, "learner-"+sessionID[:8], "student", time.Now().Unix())
		}

		tok, err := a.IssueJWT(sub, "student", sessionID)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(out{AccessToken: tok, SessionID: sessionID})
	}
}

// POST /auth/login  { "username": "...", "password": "..." }  -> admin token
func LoginHandler(a *AuthService, db *sql.DB, admin AdminCredentials) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		role, ok := verify(r, db, admin, req.Username, req.Password)
		if !ok {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		tok, err := a.IssueJWT(req.Username, role, uuid.NewString())
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": tok, "role": role})
	}
}

func verify(r *http.Request, db *sql.DB, admin AdminCredentials, username, password string) (string, bool) {
	if username == admin.Username && admin.PassHash != "" {
		if bcrypt.CompareHashAndPassword([]byte(admin.PassHash), []byte(password)) == nil {
			return "admin", true
		}
		return "", false
	}
	if db == nil {
		return "", false
	}
	var role, hash string
	err := db.QueryRowContext(r.Context(),
		`SELECT role, password_hash FROM users WHERE username=$1`, username).Scan(&role, &hash)
	if err != nil || hash == "" {
		return "", false
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", false
	}
	return role, true
}

// JWTMiddleware authenticates the request and stashes subject, role and
// session ID in the context.
func JWTMiddleware(a *AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "missing bearer", http.StatusUnauthorized)
				return
			}
			claims, err := a.Parse(strings.TrimPrefix(h, "Bearer "))
			if err != nil || claims == nil {
				http.Error(w, "bad token", http.StatusUnauthorized)
				return
			}
			ctx := WithSubject(r.Context(), claims.Sub)
			ctx = WithSessionID(ctx, claims.SessionID)
			ctx = rbac.WithRole(ctx, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
