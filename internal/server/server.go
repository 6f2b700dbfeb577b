package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/teamhub/internal/hub"
	teamhubdb "github.com/nao1215/teamhub/internal/server/db"
	"github.com/nao1215/teamhub/pkg/middleware"
	_ "modernc.org/sqlite"
)

// Server はteamhubのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// queries はsqlcが生成したクエリ実行オブジェクト。
	queries *teamhubdb.Queries
	// db はSQLiteデータベース接続。
	db *sql.DB
	// hub はWebSocket接続のルーム管理とイベント配信を担う。
	hub *hub.Hub
	// jwtSecret はJWTの署名検証キー。
	jwtSecret string
}

// NewServer は新しいteamhubサーバーを生成する。
// SQLiteデータベースの初期化とマイグレーション適用を行う。
func NewServer(port string) (*Server, error) {
	dbPath := getEnvOr("DB_PATH", "/data/teamhub.db")
	sqlDB, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	if err := applyMigrations(sqlDB); err != nil {
		return nil, fmt.Errorf("マイグレーション適用に失敗: %w", err)
	}

	frontendURL := getEnvOr("FRONTEND_URL", "http://localhost:3000")

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS([]string{frontendURL}))

	s := &Server{
		router:    router,
		port:      port,
		queries:   teamhubdb.New(sqlDB),
		db:        sqlDB,
		hub:       hub.NewHub(),
		jwtSecret: getEnvOr("JWT_SECRET", "dev-secret-key"),
	}
	s.setupRoutes(frontendURL)

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes(frontendURL string) {
	auth := s.router.Group("/api/auth")
	{
		// ユーザー登録
		auth.POST("/register", s.handleRegister())
		// ログイン
		auth.POST("/login", s.handleLogin())

		authed := auth.Group("", middleware.JWTAuth(s.jwtSecret))
		{
			// 自分のユーザー情報取得
			authed.GET("/me", s.handleGetMe())
			// 全ユーザー一覧取得
			authed.GET("/users", s.handleListUsers())
		}
	}

	team := s.router.Group("/api/team", middleware.JWTAuth(s.jwtSecret))
	{
		// チーム作成
		team.POST("", s.handleCreateTeam())
		// 自分の所属チームIDの再解決（トークン再発行）
		team.GET("/get-team-id", s.handleFindTeamID())

		withTeam := team.Group("", middleware.RequireTeam())
		{
			// チーム情報取得
			withTeam.GET("", s.handleGetTeam())
			// オーナー変更
			withTeam.POST("/change", s.handleChangeTeamOwner())
			// チーム削除
			withTeam.DELETE("/delete-team", s.handleDeleteTeam())
			// メンバー追加
			withTeam.POST("/members", s.handleAddMember())
			// メンバー除名
			withTeam.DELETE("/members", s.handleRemoveMember())
			// チーム退出
			withTeam.DELETE("/me", s.handleLeaveTeam())
		}
	}

	schedules := s.router.Group("/api/schedules", middleware.JWTAuth(s.jwtSecret), middleware.RequireTeam())
	{
		// 予定作成
		schedules.POST("", s.handleCreateSchedule())
		// チームの予定一覧取得
		schedules.GET("", s.handleListSchedules())
		// 月単位の予定一覧取得（タスク進捗付き）
		schedules.GET("/month", s.handleListSchedulesByMonth())
		// 予定更新
		schedules.PUT("/:scheduleId", s.handleUpdateSchedule())
		// 予定削除
		schedules.DELETE("/:scheduleId", s.handleDeleteSchedule())
	}

	tasks := s.router.Group("/api/task", middleware.JWTAuth(s.jwtSecret), middleware.RequireTeam())
	{
		// タスク作成
		tasks.POST("/:scheduleId", s.handleCreateTask())
		// 予定のタスク一覧取得
		tasks.GET("/:scheduleId", s.handleListTasks())
		// タスク完了状態の変更
		tasks.PUT("/:taskId", s.handleCompleteTask())
		// タスク削除
		tasks.DELETE("/:taskId", s.handleDeleteTask())
	}

	// リアルタイム通知用WebSocketエンドポイント
	s.router.GET("/ws", s.hub.Handler(s.jwtSecret, []string{frontendURL}))

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "teamhub"})
	})
}

// sqliteDSN はWALジャーナルとビジータイムアウトを有効にした接続文字列を返す。
func sqliteDSN(path string) string {
	return fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
}

// getEnvOr は環境変数の値を返す。未設定の場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
