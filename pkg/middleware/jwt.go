package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims はJWTトークンのクレーム（ペイロード）を表す。
// REST APIとWebSocketハンドシェイクの両方で同じクレームを使用する。
type JWTClaims struct {
	jwt.RegisteredClaims
	// UserID は認証済みユーザーの一意識別子。
	UserID string `json:"user_id"`
	// Username はユーザーのログイン名。
	Username string `json:"username"`
	// TeamID はユーザーが所属するチームのID。無所属の場合は空文字列。
	TeamID string `json:"team_id"`
}

// GenerateJWT はユーザー情報からJWTトークンを生成する。
// ログイン成功時、およびチーム所属が変わった際の再発行時に呼び出す。
func GenerateJWT(secret, userID, username, teamID string) (string, error) {
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "teamhub",
		},
		UserID:   userID,
		Username: username,
		TeamID:   teamID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("JWTトークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// ParseClaims はJWTトークンを検証しクレームを返す。
// 署名不正・期限切れの場合はエラーを返す。HTTPミドルウェアと
// WebSocketハンドシェイクの双方がこの関数を通してトークンを検証する。
func ParseClaims(secret, tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("JWTトークンの検証に失敗: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("JWTトークンが無効")
	}
	return claims, nil
}

// JWTAuth はJWTトークンを検証するGinミドルウェアを返す。
// 検証に成功した場合、コンテキストに "user_id"・"username"・"team_id" を設定する。
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorizationヘッダーが必要です",
			})
			return
		}

		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Bearer トークン形式が不正です",
			})
			return
		}

		claims, err := ParseClaims(secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "トークンが無効です",
			})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("team_id", claims.TeamID)
		c.Next()
	}
}

// RequireTeam はチーム所属を必須とするGinミドルウェアを返す。
// JWTAuthの後段で使用し、チーム未所属のユーザーには400を返す。
func RequireTeam() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetTeamID(c) == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "チームIDが必要です",
			})
			return
		}
		c.Next()
	}
}

// GetUserID はGinコンテキストからユーザーIDを取得する。
// JWTAuthミドルウェアが事前に適用されている必要がある。
func GetUserID(c *gin.Context) string {
	return getStringValue(c, "user_id")
}

// GetUsername はGinコンテキストからユーザー名を取得する。
func GetUsername(c *gin.Context) string {
	return getStringValue(c, "username")
}

// GetTeamID はGinコンテキストからチームIDを取得する。
// チーム未所属の場合は空文字列を返す。
func GetTeamID(c *gin.Context) string {
	return getStringValue(c, "team_id")
}

// getStringValue はGinコンテキストから文字列値を取得する共通処理。
func getStringValue(c *gin.Context, key string) string {
	v, _ := c.Get(key)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
