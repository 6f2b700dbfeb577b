package hub

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/nao1215/teamhub/pkg/middleware"
)

// newConnectionID は接続IDを採番する。
func newConnectionID() string {
	return uuid.New().String()
}

// Handler はWebSocket接続を受け付けるGinハンドラを返す。
// ベアラートークンをクエリパラメータ "token" またはAuthorizationヘッダーから
// 受け取り、検証に失敗した場合はアップグレード前に401で拒否する。
// このとき部分的な状態（ルーム参加等）は一切作られない。
// 検証に成功した接続はHubに登録され、読み書きポンプが起動する。
func (h *Hub) Handler(secret string, allowedOrigins []string) gin.HandlerFunc {
	originSet := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originSet[o] = struct{}{}
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			_, ok := originSet[origin]
			return ok
		},
	}

	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			if authHeader := c.GetHeader("Authorization"); authHeader != "" {
				after, ok := strings.CutPrefix(authHeader, "Bearer ")
				if !ok {
					c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorizationヘッダーの形式が不正です"})
					return
				}
				token = after
			}
		}
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "トークンが必要です"})
			return
		}

		claims, err := middleware.ParseClaims(secret, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "トークンが無効です"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgradeが失敗した時点でレスポンスは書き込み済み
			log.Printf("WebSocketアップグレードに失敗: %v", err)
			return
		}

		client := newClient(h, conn, claims)
		h.register(client)

		go client.writePump()
		go client.readPump()
	}
}
