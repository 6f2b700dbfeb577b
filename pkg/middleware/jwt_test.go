package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testSecret はテスト用のJWTシークレット。
const testSecret = "test-secret-key-for-unit-tests"

// TestGenerateJWT はGenerateJWT関数を検証する。
func TestGenerateJWT(t *testing.T) {
	t.Parallel()

	t.Run("正常にJWTトークンを生成できること", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := GenerateJWT(testSecret, "user-123", "alice", "team-456")
		if err != nil {
			t.Fatalf("GenerateJWT()でエラーが発生: %v", err)
		}
		if tokenStr == "" {
			t.Fatal("GenerateJWT()が空文字列を返した")
		}

		claims, err := ParseClaims(testSecret, tokenStr)
		if err != nil {
			t.Fatalf("トークンのパースに失敗: %v", err)
		}

		if claims.UserID != "user-123" {
			t.Errorf("UserID = %q, want %q", claims.UserID, "user-123")
		}
		if claims.Username != "alice" {
			t.Errorf("Username = %q, want %q", claims.Username, "alice")
		}
		if claims.TeamID != "team-456" {
			t.Errorf("TeamID = %q, want %q", claims.TeamID, "team-456")
		}
		if claims.Issuer != "teamhub" {
			t.Errorf("Issuer = %q, want %q", claims.Issuer, "teamhub")
		}
	})

	t.Run("チーム未所属ユーザーのTeamIDが空文字列であること", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := GenerateJWT(testSecret, "user-lonely", "bob", "")
		if err != nil {
			t.Fatalf("GenerateJWT()でエラーが発生: %v", err)
		}

		claims, err := ParseClaims(testSecret, tokenStr)
		if err != nil {
			t.Fatalf("トークンのパースに失敗: %v", err)
		}
		if claims.TeamID != "" {
			t.Errorf("TeamID = %q, want 空文字列", claims.TeamID)
		}
	})

	t.Run("トークンの有効期限が24時間後であること", func(t *testing.T) {
		t.Parallel()

		before := time.Now()
		tokenStr, err := GenerateJWT(testSecret, "user-exp", "carol", "team-1")
		if err != nil {
			t.Fatalf("GenerateJWT()でエラーが発生: %v", err)
		}

		claims, err := ParseClaims(testSecret, tokenStr)
		if err != nil {
			t.Fatalf("トークンのパースに失敗: %v", err)
		}

		expectedExpiry := before.Add(24 * time.Hour)
		// 有効期限が24時間後の前後1分以内であること
		if claims.ExpiresAt.Time.Before(expectedExpiry.Add(-1 * time.Minute)) {
			t.Errorf("ExpiresAt = %v, 期待する最小値: %v", claims.ExpiresAt.Time, expectedExpiry.Add(-1*time.Minute))
		}
		if claims.ExpiresAt.Time.After(expectedExpiry.Add(1 * time.Minute)) {
			t.Errorf("ExpiresAt = %v, 期待する最大値: %v", claims.ExpiresAt.Time, expectedExpiry.Add(1*time.Minute))
		}
	})
}

// TestParseClaims はParseClaims関数を検証する。
func TestParseClaims(t *testing.T) {
	t.Parallel()

	t.Run("期限切れトークンを拒否すること", func(t *testing.T) {
		t.Parallel()

		claims := JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Hour)),
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-25 * time.Hour)),
				Issuer:    "teamhub",
			},
			UserID:   "user-expired",
			Username: "dave",
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString([]byte(testSecret))
		if err != nil {
			t.Fatalf("テスト用トークンの署名に失敗: %v", err)
		}

		if _, err := ParseClaims(testSecret, signed); err == nil {
			t.Error("期限切れトークンでエラーが返らなかった")
		}
	})

	t.Run("別のシークレットで署名されたトークンを拒否すること", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := GenerateJWT("other-secret", "user-1", "eve", "")
		if err != nil {
			t.Fatalf("GenerateJWT()でエラーが発生: %v", err)
		}

		if _, err := ParseClaims(testSecret, tokenStr); err == nil {
			t.Error("署名不正トークンでエラーが返らなかった")
		}
	})

	t.Run("トークンでない文字列を拒否すること", func(t *testing.T) {
		t.Parallel()

		if _, err := ParseClaims(testSecret, "not-a-jwt-token"); err == nil {
			t.Error("不正な文字列でエラーが返らなかった")
		}
	})
}

// setupAuthRouter はJWTAuthミドルウェアを適用したテスト用ルーターを構築する。
func setupAuthRouter(requireTeam bool) *gin.Engine {
	router := gin.New()
	handlers := []gin.HandlerFunc{JWTAuth(testSecret)}
	if requireTeam {
		handlers = append(handlers, RequireTeam())
	}
	group := router.Group("/", handlers...)
	group.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":  GetUserID(c),
			"username": GetUsername(c),
			"team_id":  GetTeamID(c),
		})
	})
	return router
}

// TestJWTAuth はJWTAuthミドルウェアを検証する。
func TestJWTAuth(t *testing.T) {
	t.Parallel()

	t.Run("有効なトークンでコンテキストにクレームが設定されること", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := GenerateJWT(testSecret, "user-ctx", "frank", "team-ctx")
		if err != nil {
			t.Fatalf("GenerateJWT()でエラーが発生: %v", err)
		}

		router := setupAuthRouter(false)
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+tokenStr)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}

		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("レスポンスのパースに失敗: %v", err)
		}
		if body["user_id"] != "user-ctx" {
			t.Errorf("user_id = %q, want %q", body["user_id"], "user-ctx")
		}
		if body["username"] != "frank" {
			t.Errorf("username = %q, want %q", body["username"], "frank")
		}
		if body["team_id"] != "team-ctx" {
			t.Errorf("team_id = %q, want %q", body["team_id"], "team-ctx")
		}
	})

	t.Run("Authorizationヘッダーなしで401を返すこと", func(t *testing.T) {
		t.Parallel()

		router := setupAuthRouter(false)
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})

	t.Run("Bearer形式でないヘッダーで401を返すこと", func(t *testing.T) {
		t.Parallel()

		router := setupAuthRouter(false)
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})

	t.Run("無効なトークンで401を返すこと", func(t *testing.T) {
		t.Parallel()

		router := setupAuthRouter(false)
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer invalid-token")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})
}

// TestRequireTeam はRequireTeamミドルウェアを検証する。
func TestRequireTeam(t *testing.T) {
	t.Parallel()

	t.Run("チーム所属ユーザーが通過できること", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := GenerateJWT(testSecret, "user-team", "grace", "team-ok")
		if err != nil {
			t.Fatalf("GenerateJWT()でエラーが発生: %v", err)
		}

		router := setupAuthRouter(true)
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+tokenStr)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("チーム未所属ユーザーに400を返すこと", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := GenerateJWT(testSecret, "user-noteam", "henry", "")
		if err != nil {
			t.Fatalf("GenerateJWT()でエラーが発生: %v", err)
		}

		router := setupAuthRouter(true)
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+tokenStr)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}
